// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/nats-io/nats.go"

	"github.com/salesloop/call-ingest-service/internal/domain/models"
	"github.com/salesloop/call-ingest-service/internal/logging"
)

// flags are the command line flags for the call ingest service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the call ingest service.
type environment struct {
	Port    string
	NatsURL string

	// WebhookSecrets holds the per-platform HMAC secrets. A platform with an
	// empty secret accepts unsigned deliveries.
	WebhookSecrets map[string]string
}

// parseFlags parses command line flags for the call ingest service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the call ingest service
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}

	webhookSecrets := map[string]string{
		models.PlatformFathom:    os.Getenv("FATHOM_WEBHOOK_SECRET"),
		models.PlatformFireflies: os.Getenv("FIREFLIES_WEBHOOK_SECRET"),
		models.PlatformZoom:      os.Getenv("ZOOM_WEBHOOK_SECRET"),
		models.PlatformClaap:     os.Getenv("CLAAP_WEBHOOK_SECRET"),
	}

	return environment{
		Port:           port,
		NatsURL:        natsURL,
		WebhookSecrets: webhookSecrets,
	}
}
