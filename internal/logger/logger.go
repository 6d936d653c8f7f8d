package logger

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

type Options struct {
	File   string
	Level  string
	Format string
}

// Setup points logrus at a rotating file, or stdout when File is "-".
func Setup(opts Options) {
	var out io.Writer = os.Stdout
	if opts.File != "" && opts.File != "-" {
		out = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 7,
			MaxAge:     7, // days
			Compress:   true,
		}
	}
	logrus.SetOutput(out)

	if opts.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{
			FieldMap:        logrus.FieldMap{logrus.FieldKeyMsg: "message"},
			TimestampFormat: time.RFC3339,
		})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)
}

// GormLogger returns the standard Logrus logger for GORM
func GormLogger() *logrus.Logger {
	return logrus.StandardLogger()
}
