package sentryotel

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Logger is the diagnostics sink. Lines are human readable and
// best-effort; nothing parses them.
type Logger interface {
	Debug(msg string)
}

// LoggerFunc adapts a plain function to Logger.
type LoggerFunc func(msg string)

func (f LoggerFunc) Debug(msg string) { f(msg) }

// NopLogger discards everything.
var NopLogger Logger = LoggerFunc(func(string) {})

type logrusLogger struct {
	entry *logrus.Entry
}

// LogrusLogger sends diagnostics to logrus at debug level tagged
// with component=sentryotel.
func LogrusLogger(log logrus.FieldLogger) Logger {
	return logrusLogger{entry: log.WithField("component", "sentryotel")}
}

func (l logrusLogger) Debug(msg string) { l.entry.Debug(msg) }

func debugf(log Logger, format string, args ...interface{}) {
	log.Debug(fmt.Sprintf(format, args...))
}
