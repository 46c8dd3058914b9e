package sklog

import (
	"github.com/jcgregorio/logger"
)

// stdlog implements Logger and writes to a logger.SyncWriter.
type stdlog struct {
	logger *logger.Logger
}

// NewStdLogger returns a Logger that writes to a SyncWriter, such as
// os.Stdout or os.Stderr.
func NewStdLogger(dst logger.SyncWriter) Logger {
	l := logger.NewFromOptions(&logger.Options{
		SyncWriter:   dst,
		DepthDelta:   3,
		IncludeDebug: true,
	})
	return &stdlog{
		logger: l,
	}
}

// Log implements Logger.
func (s stdlog) Log(_ int, severity Severity, fmt string, args ...interface{}) {
	switch severity {
	case DEBUG:
		if fmt == "" {
			s.logger.Debug(args...)
		} else {
			s.logger.Debugf(fmt, args...)
		}
	case INFO:
		if fmt == "" {
			s.logger.Info(args...)
		} else {
			s.logger.Infof(fmt, args...)
		}
	case WARNING:
		if fmt == "" {
			s.logger.Warning(args...)
		} else {
			s.logger.Warningf(fmt, args...)
		}
	case ERROR:
		if fmt == "" {
			s.logger.Error(args...)
		} else {
			s.logger.Errorf(fmt, args...)
		}
	case FATAL:
		if fmt == "" {
			s.logger.Fatal(args...)
		} else {
			s.logger.Fatalf(fmt, args...)
		}
	default:
		s.logger.Errorf(fmt, args...)
	}
}

// Flush implements Logger.
func (s stdlog) Flush() {
	// noop
}

// Assert that we implement the Logger interface.
var _ Logger = stdlog{}
