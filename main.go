package main

import (
	"fmt"
	"http_relay/internal/bootstrap"
	"http_relay/internal/config"
	"http_relay/internal/logging"
	"http_relay/internal/version"
	"os"

	"go.uber.org/zap"
)

const usage = `usage: http_relay <address>

addresses:
  http://host[:port]/path   issue the configured request for this URI over tcp
  http-request:<inner>      issue the configured request over an inner address
  tcp:host:port             plain TCP
  ssh:host:port             TCP through the SSH_HOST jump server
`

func main() {
	if len(os.Args) != 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if os.Args[1] == "-version" || os.Args[1] == "--version" {
		fmt.Println(version.GetVersion())
		return
	}

	conf, err := config.MustLoad()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %s\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.LogLevel())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %s\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	app, err := bootstrap.New(conf, logger)
	if err != nil {
		logger.Error("Failed to initialize", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	if err = app.Run(os.Args[1]); err != nil {
		logger.Error("Relay failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
