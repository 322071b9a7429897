package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  *logrus.Logger
	WarnLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

func init() {
	InfoLogger = stdoutLogger(logrus.InfoLevel)
	WarnLogger = stdoutLogger(logrus.WarnLevel)
	ErrorLogger = stdoutLogger(logrus.ErrorLevel)
}

func stdoutLogger(level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// newLogger builds a logrus logger that writes to stdout and a rotated file.
func newLogger(level logrus.Level, filename string) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	l.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return l
}

// InitLoggers reconfigures the shared loggers to also write rotated log
// files under LOG_DIR. Until it runs, logs go to stdout only.
func InitLoggers() {
	dir := os.Getenv("LOG_DIR")
	if dir == "" {
		dir = "logs"
	}
	dir = strings.TrimRight(dir, "/")

	InfoLogger = newLogger(logrus.InfoLevel, dir+"/info.log")
	WarnLogger = newLogger(logrus.WarnLevel, dir+"/warn.log")
	ErrorLogger = newLogger(logrus.ErrorLevel, dir+"/error.log")
}
