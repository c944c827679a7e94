package core

import (
	"log"
	"os"
	"runtime/debug"
	"strings"
)

// ConfigLogger is the key for the logger in the facts passed to Approach.Configure().
const ConfigLogger = "Core.Logger"

// Logger defines the output interface used by labelshark components.
type Logger interface {
	Info(...interface{})
	Infof(string, ...interface{})
	Warn(...interface{})
	Warnf(string, ...interface{})
	Error(...interface{})
	Errorf(string, ...interface{})
	Critical(...interface{})
	Criticalf(string, ...interface{})
}

// DefaultLogger is the default logger used by the dispatcher, and wraps the standard
// log library.
type DefaultLogger struct {
	I *log.Logger
	W *log.Logger
	E *log.Logger
}

// NewLogger returns a configured default logger.
func NewLogger() *DefaultLogger {
	return &DefaultLogger{
		I: log.New(os.Stdout, "[INFO] ", log.LstdFlags),
		W: log.New(os.Stdout, "[WARN] ", log.LstdFlags),
		E: log.New(os.Stderr, "[ERROR] ", log.LstdFlags),
	}
}

// LoggerFromFacts returns the logger stored under ConfigLogger or a new DefaultLogger.
func LoggerFromFacts(facts map[string]interface{}) Logger {
	if l, exists := facts[ConfigLogger].(Logger); exists && l != nil {
		return l
	}
	return NewLogger()
}

// Info writes to info logger
func (d *DefaultLogger) Info(v ...interface{}) { d.I.Print(v...) }

// Infof writes to info logger
func (d *DefaultLogger) Infof(f string, v ...interface{}) { d.I.Printf(f, v...) }

// Warn writes to the warning logger
func (d *DefaultLogger) Warn(v ...interface{}) { d.W.Print(v...) }

// Warnf writes to the warning logger
func (d *DefaultLogger) Warnf(f string, v ...interface{}) { d.W.Printf(f, v...) }

// Error writes to the error logger
func (d *DefaultLogger) Error(v ...interface{}) { d.E.Print(v...) }

// Errorf writes to the error logger
func (d *DefaultLogger) Errorf(f string, v ...interface{}) { d.E.Printf(f, v...) }

// Critical writes to the error logger and appends the stack trace of the caller.
func (d *DefaultLogger) Critical(v ...interface{}) {
	d.E.Print(v...)
	d.logStacktraceToErr()
}

// Criticalf writes to the error logger and appends the stack trace of the caller.
func (d *DefaultLogger) Criticalf(f string, v ...interface{}) {
	d.E.Printf(f, v...)
	d.logStacktraceToErr()
}

func (d *DefaultLogger) logStacktraceToErr() {
	d.E.Println("stacktrace:\n" + stacktraceAfter("logStacktraceToErr"))
}

// stacktraceAfter drops the frames up to and including the named function
// together with the Critical wrapper.
func stacktraceAfter(fn string) string {
	lines := strings.Split(string(debug.Stack()), "\n")
	for i, line := range lines {
		if strings.Contains(line, fn) && i+4 < len(lines) {
			// each frame is two lines: the function and the file
			return strings.Join(lines[i+4:], "\n")
		}
	}
	return strings.Join(lines, "\n")
}
