package logging

import (
	"github.com/hostpool/sls/config"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithFields(logrus.Fields{"service": config.ServiceName})

func GetLogger() *logrus.Entry {
	return log
}

func SetupLogging(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
