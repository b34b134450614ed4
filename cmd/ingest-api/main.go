// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

// Package main is the call ingest service API that receives call-recording
// webhooks from third-party meeting platforms and turns them into canonical
// call records for downstream analysis.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/salesloop/call-ingest-service/internal/handlers"
	"github.com/salesloop/call-ingest-service/internal/infrastructure/messaging"
	"github.com/salesloop/call-ingest-service/internal/logging"
	"github.com/salesloop/call-ingest-service/internal/service"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup tracing
	shutdownTracing, err := setupTracing(ctx)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up tracing")
		os.Exit(1)
	}

	// Setup webhook signature validators
	webhookRegistry := setupWebhookRegistry(env)

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Initialize services
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	transcriptAssembler := service.NewTranscriptAssembler()
	normalizer := service.NewPayloadNormalizer(transcriptAssembler)
	resolver := service.NewSalesRepResolver(repos.User)
	detector := service.NewDuplicateDetector(repos.CallRecord)
	ingestService := service.NewCallIngestService(
		repos.User,
		repos.CallRecord,
		messageBuilder,
		normalizer,
		resolver,
		detector,
	)

	// Initialize handlers
	webhookHandler := handlers.NewCallWebhookHandler(ingestService, webhookRegistry)
	healthHandler := handlers.NewHealthHandler(webhookHandler.HandlerReady)

	httpServer := setupHTTPServer(flags, webhookHandler, healthHandler, &gracefulCloseWG)

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)

	if err := shutdownTracing(context.Background()); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down tracing")
	}
}
