package logger

import (
	"fmt"
	"strings"
)

// LogLevel is the minimum severity a logger emits
type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	// LogError never exits the process
	LogError
)

var logLevelNames = map[LogLevel]string{
	LogDebug: "DEBUG",
	LogInfo:  "INFO",
	LogError: "ERROR",
}

func (l LogLevel) String() string {
	if name, ok := logLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

// ParseLogLevel accepts debug, info or error in any case
func ParseLogLevel(s string) (LogLevel, error) {
	for level, name := range logLevelNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return level, nil
		}
	}
	return LogInfo, fmt.Errorf("unknown log level %q (want debug, info or error)", s)
}

// ILogger is what the rest of the code logs through
type ILogger interface {
	Printf(level LogLevel, format string, a ...interface{})
	Debugf(format string, a ...interface{})
	Infof(format string, a ...interface{})
	Errorf(format string, a ...interface{})
}
