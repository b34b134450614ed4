// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleLivez(t *testing.T) {
	handler := NewHealthHandler(func() bool { return false })

	rec := httptest.NewRecorder()
	handler.HandleLivez(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandleReadyz(t *testing.T) {
	tests := []struct {
		name     string
		ready    func() bool
		wantCode int
	}{
		{
			name:     "ready",
			ready:    func() bool { return true },
			wantCode: http.StatusOK,
		},
		{
			name:     "not ready",
			ready:    func() bool { return false },
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:     "nil ready function",
			ready:    nil,
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewHealthHandler(tc.ready)
			rec := httptest.NewRecorder()
			handler.HandleReadyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}
