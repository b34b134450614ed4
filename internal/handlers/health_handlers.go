// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package handlers

import (
	"net/http"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	ready func() bool
}

// NewHealthHandler creates a new health handler. The ready function reports
// whether all service dependencies are usable.
func NewHealthHandler(ready func() bool) *HealthHandler {
	return &HealthHandler{ready: ready}
}

// HandleLivez handles GET /livez.
func (h *HealthHandler) HandleLivez(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// HandleReadyz handles GET /readyz.
func (h *HealthHandler) HandleReadyz(w http.ResponseWriter, _ *http.Request) {
	if h.ready == nil || !h.ready() {
		http.Error(w, "service not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
