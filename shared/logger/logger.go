package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	base *logrus.Logger
	once sync.Once
)

// New builds a logrus logger for the given level and format ("json" or "text").
func New(level, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// Init configures the process-wide logger. Only the first call has effect.
func Init(level, format string) *logrus.Logger {
	once.Do(func() {
		base = New(level, format)
	})
	return base
}

// Get returns the process-wide logger, falling back to logrus defaults if Init was never called.
func Get() *logrus.Logger {
	once.Do(func() {
		base = logrus.New()
	})
	return base
}

// WithComponent tags log lines with the emitting component.
func WithComponent(name string) *logrus.Entry {
	return Get().WithField("component", name)
}
