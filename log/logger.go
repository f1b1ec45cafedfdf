package log

import (
	"io"
	"os"

	"github.com/op/go-logging"
)

type Level logging.Level

// The levels that can be passed to SetLevel.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var format = logging.MustStringFormatter(
	`%{color}%{time:15:04:05.000} %{module} %{level:.4s}%{color:reset} %{message}`,
)

var leveledBackend logging.LeveledBackend

// Logger is the leveled logging interface handed out to subsystems.
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// Create a new named logger.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// Override the backend output sink. All named loggers share the same sink.
func SetSink(sink io.Writer) {
	backend := logging.NewLogBackend(sink, "", 0)
	leveledBackend = logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))
	leveledBackend.SetLevel(logging.NOTICE, "")
	logging.SetBackend(leveledBackend)
}

// Set verbosity for all named loggers.
func SetLevel(level Level) {
	leveledBackend.SetLevel(toBackendLevel(level), "")
}

// Set verbosity for a single named logger.
func SetLevelFor(name string, level Level) {
	leveledBackend.SetLevel(toBackendLevel(level), name)
}

func toBackendLevel(level Level) logging.Level {
	switch level {
	case Debug:
		return logging.DEBUG
	case Info:
		return logging.INFO
	case Notice:
		return logging.NOTICE
	case Warning:
		return logging.WARNING
	default:
		return logging.ERROR
	}
}

func init() {
	SetSink(os.Stderr)
}
