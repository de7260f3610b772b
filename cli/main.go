// Command beedash serves and exports the bee colony dashboard.
package main

import (
	"os"

	gateway "github.com/hivewatch/beedash/apigateway"
	"github.com/sirupsen/logrus"
)

var (
	logrusLogger = logrus.New()
	logSampling  gateway.LogSamplingConfig
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrusLogger.Error(err)
		os.Exit(1)
	}
}
