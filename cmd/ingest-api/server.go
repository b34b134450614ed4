// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/salesloop/call-ingest-service/internal/handlers"
	"github.com/salesloop/call-ingest-service/internal/logging"
	"github.com/salesloop/call-ingest-service/internal/middleware"
)

// setupHTTPServer configures and starts the HTTP server
func setupHTTPServer(flags flags, webhookHandler *handlers.CallWebhookHandler, healthHandler *handlers.HealthHandler, gracefulCloseWG *sync.WaitGroup) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhooks/{platform}/{ownerIdentifier}", webhookHandler.HandleWebhook)
	mux.HandleFunc("GET /livez", healthHandler.HandleLivez)
	mux.HandleFunc("GET /readyz", healthHandler.HandleReadyz)

	var handler http.Handler = mux
	handler = otelhttp.NewHandler(handler, "call-ingest-api")

	// Add HTTP middleware
	// Note: Order matters - RequestIDMiddleware should come first in the chain,
	// so it should be the last middleware added to the handler since it is executed in reverse order.
	handler = middleware.RequestLoggerMiddleware()(handler)
	handler = middleware.RequestIDMiddleware()(handler)

	// Set up http listener in a goroutine using provided command line parameters.
	var addr string
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	} else {
		addr = flags.Bind + ":" + flags.Port
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 3 * time.Second,
	}
	gracefulCloseWG.Add(1)
	go func() {
		slog.With("addr", addr).Debug("starting http server, listening on port " + flags.Port)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("http listener error")
			os.Exit(1)
		}
		// Because ErrServerClosed is *immediately* returned when Shutdown is
		// called, not when when Shutdown completes, this must not yet decrement
		// the wait group.
	}()

	return httpServer
}
