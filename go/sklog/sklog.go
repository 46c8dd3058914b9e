// This package defines the logging functions (e.g. Info, Errorf, etc.).

package sklog

import (
	"fmt"
	"os"
	"sync"
)

// Severity of a log line.
type Severity int

const (
	DEBUG Severity = iota
	INFO
	WARNING
	ERROR
	FATAL
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Logger is the destination of every log line emitted through this package.
//
// Log is called with depth relative to the caller of the sklog function, so a
// Logger that reports file and line numbers should skip depth frames. An empty
// format means the args are formatted with fmt.Sprint.
type Logger interface {
	Log(depth int, severity Severity, format string, args ...interface{})
	Flush()
}

var (
	mutex   sync.RWMutex
	current Logger
)

// WE MUST set a logger in an init function; otherwise there's a very good
// chance of getting a nil pointer panic.
func init() {
	SetLogger(NewStdLogger(os.Stderr))
}

// SetLogger changes the Logger used by all the logging functions.
func SetLogger(l Logger) {
	mutex.Lock()
	defer mutex.Unlock()
	current = l
}

func getLogger() Logger {
	mutex.RLock()
	defer mutex.RUnlock()
	return current
}

func log(depth int, severity Severity, format string, args ...interface{}) {
	getLogger().Log(depth+1, severity, format, args...)
}

// Functions to log at various levels.
// Debug, Info, Warning, Error, and Fatal use fmt.Sprint to format the
// arguments.
// Functions ending in f use fmt.Sprintf to format the arguments.
// Functions ending in WithDepth allow the caller to change where the stacktrace
// starts. 0 (the default in all other calls) means to report starting at the
// caller. 1 would mean one level above, the caller's caller.  2 would be a
// level above that and so on.
func Debug(msg ...interface{}) {
	log(1, DEBUG, "", msg...)
}

func Debugf(format string, v ...interface{}) {
	log(1, DEBUG, format, v...)
}

func Info(msg ...interface{}) {
	log(1, INFO, "", msg...)
}

func Infof(format string, v ...interface{}) {
	log(1, INFO, format, v...)
}

func Warning(msg ...interface{}) {
	log(1, WARNING, "", msg...)
}

func Warningf(format string, v ...interface{}) {
	log(1, WARNING, format, v...)
}

func Error(msg ...interface{}) {
	log(1, ERROR, "", msg...)
}

func Errorf(format string, v ...interface{}) {
	log(1, ERROR, format, v...)
}

func ErrorfWithDepth(depth int, format string, v ...interface{}) {
	log(1+depth, ERROR, format, v...)
}

// Fatal* exits the program after logging.
func Fatal(msg ...interface{}) {
	log(1, FATAL, "", msg...)
}

func Fatalf(format string, v ...interface{}) {
	log(1, FATAL, format, v...)
}

func Flush() {
	getLogger().Flush()
}
