package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/computeplane/computeplane/master/pkg/logger"
)

// version is set at link time.
var version = "dev"

func main() {
	logger.SetLogrus(*logger.DefaultConfig())

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Fatal("fatal error running compute master")
	}
}
