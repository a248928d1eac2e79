package utils

import (
	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. InitLogger is called once from main;
// everything else just imports utils.Log.
var Log = logrus.New()

func InitLogger(level string) {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	Log.SetLevel(parsed)
}
