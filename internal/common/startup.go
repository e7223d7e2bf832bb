package common

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/weaveworks/promrus"
)

// ConfigureCommandLineLogging sets up logrus for command line use: full timestamps on stdout,
// and a hook counting log messages by level on the default prometheus registry.
func ConfigureCommandLineLogging() {
	log.SetFormatter(&log.TextFormatter{ForceColors: true, FullTimestamp: true})
	log.SetOutput(os.Stdout)

	hook, err := promrus.NewPrometheusHook()
	if err != nil {
		log.WithError(err).Warn("log message metrics are unavailable")
		return
	}
	log.AddHook(hook)
}

func SetLogLevel(level string) error {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return errors.WithStack(err)
	}
	log.SetLevel(parsed)
	return nil
}
