package logger

import (
	"fmt"
	"io"
	"log"
)

// StdErrLogger writes leveled lines through a standard library logger. The
// zero value logs to stderr through the default logger.
type StdErrLogger struct {
	logLevel LogLevel
	out      *log.Logger
}

// NewWriterLogger logs to w without timestamps
func NewWriterLogger(w io.Writer, level LogLevel) *StdErrLogger {
	return &StdErrLogger{logLevel: level, out: log.New(w, "", 0)}
}

func (l *StdErrLogger) Printf(level LogLevel, format string, a ...interface{}) {
	if level < l.logLevel {
		return
	}
	txt := level.String() + ": " + fmt.Sprintf(format, a...)
	if l.out == nil {
		log.Println(txt)
		return
	}
	l.out.Println(txt)
}

func (l *StdErrLogger) Debugf(format string, a ...interface{}) {
	l.Printf(LogDebug, format, a...)
}

func (l *StdErrLogger) Infof(format string, a ...interface{}) {
	l.Printf(LogInfo, format, a...)
}

// Errorf is emitted regardless of the configured level
func (l *StdErrLogger) Errorf(format string, a ...interface{}) {
	l.Printf(LogError, format, a...)
}

func (l *StdErrLogger) SetLogLevel(level LogLevel) {
	l.logLevel = level
}

func (l *StdErrLogger) GetLogLevel() LogLevel {
	return l.logLevel
}
