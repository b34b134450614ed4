// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/salesloop/call-ingest-service/internal/logging"
	"github.com/salesloop/call-ingest-service/pkg/constants"
)

// RequestIDMiddleware ensures every request carries a request ID. An inbound
// X-REQUEST-ID header is honored so IDs correlate across services; otherwise a
// new one is generated. The ID is echoed on the response and attached to the
// request context for logging.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(constants.RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			w.Header().Set(constants.RequestIDHeader, requestID)

			ctx := context.WithValue(r.Context(), constants.RequestIDContextID, requestID)
			ctx = logging.AppendCtx(ctx, slog.String("request_id", requestID))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
