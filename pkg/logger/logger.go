package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// InitLogger configures structured JSON logging to stdout. The level can be
// overridden with LOG_LEVEL.
func InitLogger() {
	Log.Out = os.Stdout
	Log.SetFormatter(&logrus.JSONFormatter{})

	level := logrus.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := logrus.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	Log.SetLevel(level)

	logrus.SetOutput(os.Stdout)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(level)
}
