// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesloop/call-ingest-service/pkg/constants"
)

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	var seenID string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seenID, _ = r.Context().Value(constants.RequestIDContextID).(string)
	})

	rec := httptest.NewRecorder()
	RequestIDMiddleware()(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	require.NotEmpty(t, seenID)
	_, err := uuid.Parse(seenID)
	assert.NoError(t, err)
	assert.Equal(t, seenID, rec.Header().Get(constants.RequestIDHeader))
}

func TestRequestIDMiddlewareHonorsInboundID(t *testing.T) {
	var seenID string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seenID, _ = r.Context().Value(constants.RequestIDContextID).(string)
	})

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set(constants.RequestIDHeader, "upstream-id")

	rec := httptest.NewRecorder()
	RequestIDMiddleware()(next).ServeHTTP(rec, req)

	assert.Equal(t, "upstream-id", seenID)
	assert.Equal(t, "upstream-id", rec.Header().Get(constants.RequestIDHeader))
}
