package logger

// NullLogger discards everything, for tests and library callers that want silence
type NullLogger struct{}

func (NullLogger) Printf(level LogLevel, format string, a ...interface{}) {}
func (NullLogger) Debugf(format string, a ...interface{})                 {}
func (NullLogger) Infof(format string, a ...interface{})                  {}
func (NullLogger) Errorf(format string, a ...interface{})                 {}
