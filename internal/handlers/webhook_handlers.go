// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/salesloop/call-ingest-service/internal/domain"
	"github.com/salesloop/call-ingest-service/internal/logging"
	"github.com/salesloop/call-ingest-service/internal/service"
	"github.com/salesloop/call-ingest-service/pkg/constants"
)

// maxWebhookBodyBytes bounds how much of a delivery body is read. Transcripts
// can be large but a delivery should never approach this.
const maxWebhookBodyBytes = 10 << 20

// CallWebhookHandler handles inbound call-recording webhook deliveries.
type CallWebhookHandler struct {
	ingestService *service.CallIngestService
	registry      domain.WebhookRegistry
}

// NewCallWebhookHandler creates a new call webhook handler.
func NewCallWebhookHandler(ingestService *service.CallIngestService, registry domain.WebhookRegistry) *CallWebhookHandler {
	return &CallWebhookHandler{
		ingestService: ingestService,
		registry:      registry,
	}
}

// HandlerReady checks if the handler is ready to process requests.
func (h *CallWebhookHandler) HandlerReady() bool {
	return h.ingestService != nil && h.ingestService.ServiceReady()
}

// HandleWebhook handles POST /webhooks/{platform}/{ownerIdentifier}.
//
// The response is 200 with a per-unit result summary even when some units
// failed; the delivery as a whole only gets a 4xx for an unknown platform or
// owner, a bad signature, or an unparseable top-level body. The sender's own
// retry semantics are the outer retry mechanism, and duplicate detection is
// what makes those retries safe.
func (h *CallWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	platform := r.PathValue("platform")
	ownerIdentifier := r.PathValue("ownerIdentifier")
	ctx = logging.AppendCtx(ctx, slog.String("platform", platform))

	if !h.registry.IsSupported(platform) {
		slog.WarnContext(ctx, "webhook delivery for unsupported platform")
		writeJSONError(w, http.StatusNotFound, "unsupported platform")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		slog.ErrorContext(ctx, "failed to read webhook body", logging.ErrKey, err)
		writeJSONError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	validator, err := h.registry.GetValidator(platform)
	if err != nil {
		slog.ErrorContext(ctx, "no validator registered for platform", logging.ErrKey, err)
		writeJSONError(w, http.StatusNotFound, "unsupported platform")
		return
	}
	// Platforms without a configured secret are accepted unsigned.
	if validator.GetSecretToken() != "" {
		signature := r.Header.Get(constants.WebhookSignatureHeader)
		timestamp := r.Header.Get(constants.WebhookTimestampHeader)
		if err := validator.ValidateSignature(body, signature, timestamp); err != nil {
			slog.WarnContext(ctx, "webhook signature validation failed", logging.ErrKey, err)
			writeJSONError(w, http.StatusUnauthorized, "invalid webhook signature")
			return
		}
	}

	owner, err := h.ingestService.ResolveOwner(ctx, ownerIdentifier)
	if err != nil {
		switch domain.GetErrorType(err) {
		case domain.ErrorTypeNotFound:
			slog.WarnContext(ctx, "webhook delivery for unknown owner", "owner_identifier", ownerIdentifier)
			writeJSONError(w, http.StatusNotFound, "unknown owner identifier")
		case domain.ErrorTypeValidation:
			writeJSONError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(ctx, "failed to resolve webhook owner", logging.ErrKey, err)
			writeJSONError(w, http.StatusServiceUnavailable, "owner lookup failed")
		}
		return
	}
	ctx = logging.AppendCtx(ctx, slog.String("organization_uid", owner.OrganizationUID))

	summary, err := h.ingestService.ProcessDelivery(ctx, platform, owner, body)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeValidation {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(ctx, "failed to process webhook delivery", logging.ErrKey, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to process delivery")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response body", logging.ErrKey, err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
