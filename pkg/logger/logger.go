package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

// Init builds the process logger. format is "json" or "text".
func Init(level, format string) *logrus.Logger {
	log := logrus.New()

	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", level).Warn("Invalid log level, using INFO")
	}

	if strings.ToLower(format) == "text" {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	}

	log.SetOutput(os.Stdout)

	Logger = log
	return log
}

// Get returns the process logger, creating a default one on first use.
func Get() *logrus.Logger {
	if Logger == nil {
		return Init("info", "json")
	}
	return Logger
}

// WithComponent tags entries with the emitting component.
func WithComponent(name string) *logrus.Entry {
	return Get().WithField("component", name)
}

// Discard returns an entry that drops everything. Used as the default for
// constructors that were not handed a logger.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
