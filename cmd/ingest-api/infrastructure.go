// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/salesloop/call-ingest-service/internal/domain"
	"github.com/salesloop/call-ingest-service/internal/infrastructure/store"
	"github.com/salesloop/call-ingest-service/internal/infrastructure/webhook"
	"github.com/salesloop/call-ingest-service/internal/logging"
)

const serviceName = "call-ingest-service"

// setupNATS connects to the NATS server. The connection drains gracefully on
// shutdown; the wait group is released once the connection is fully closed.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	gracefulCloseWG.Add(1)
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.DrainTimeout(25*time.Second),
		nats.ConnectHandler(func(_ *nats.Conn) {
			slog.InfoContext(ctx, "NATS connection established", "url", env.NatsURL)
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			slog.ErrorContext(ctx, "NATS error", logging.ErrKey, err)
		}),
		nats.ClosedHandler(func(conn *nats.Conn) {
			if err := conn.LastError(); err != nil {
				slog.ErrorContext(ctx, "NATS connection closed with error", logging.ErrKey, err)
			} else {
				slog.InfoContext(ctx, "NATS connection closed")
			}
			gracefulCloseWG.Done()
			select {
			case done <- os.Interrupt:
			default:
			}
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, err
	}

	return natsConn, nil
}

// repositories bundles the KV-backed repositories of the service.
type repositories struct {
	CallRecord domain.CallRecordRepository
	User       domain.UserRepository
}

// getKeyValueStores binds the JetStream KV buckets and wraps them in
// repositories. The call-records bucket is created on first start; the users
// bucket belongs to the account service and must already exist.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, err
	}

	callRecordsKV, err := js.KeyValue(ctx, store.KVStoreNameCallRecords)
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketNotFound) {
			return nil, err
		}
		callRecordsKV, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:  store.KVStoreNameCallRecords,
			History: 5,
		})
		if err != nil {
			return nil, err
		}
	}

	usersKV, err := js.KeyValue(ctx, store.KVStoreNameUsers)
	if err != nil {
		return nil, err
	}

	return &repositories{
		CallRecord: store.NewNatsCallRecordRepository(callRecordsKV),
		User:       store.NewNatsUserRepository(usersKV),
	}, nil
}

// setupWebhookRegistry registers a signature validator for every supported
// platform.
func setupWebhookRegistry(env environment) *webhook.Registry {
	registry := webhook.NewRegistry()
	for platform, secret := range env.WebhookSecrets {
		registry.RegisterValidator(platform, webhook.NewHMACValidator(secret))
		if secret == "" {
			slog.Warn("no webhook secret configured, accepting unsigned deliveries", "platform", platform)
		}
	}
	return registry
}

// setupTracing configures the OTLP trace exporter when an endpoint is
// configured; otherwise tracing stays on the default no-op provider.
func setupTracing(ctx context.Context) (func(context.Context) error, error) {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}

// gracefulShutdown drains in-flight HTTP requests and the NATS connection.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
	}
	gracefulCloseWG.Done()

	if natsConn != nil && !natsConn.IsClosed() {
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
		}
	}

	cancel()
	gracefulCloseWG.Wait()
}
