// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/salesloop/call-ingest-service/internal/domain"
	"github.com/salesloop/call-ingest-service/internal/domain/models"
	"github.com/salesloop/call-ingest-service/internal/logging"
)

// CallIngestService orchestrates the ingestion pipeline for webhook
// deliveries: normalize, resolve the sales rep, check for duplicates, write
// the canonical record, dispatch the analysis job. Units within one delivery
// are processed sequentially and failures are isolated per unit.
type CallIngestService struct {
	userRepository       domain.UserRepository
	callRecordRepository domain.CallRecordRepository
	messageBuilder       domain.MessageBuilder
	normalizer           *PayloadNormalizer
	resolver             *SalesRepResolver
	detector             *DuplicateDetector
}

// NewCallIngestService creates a new call ingest service.
func NewCallIngestService(
	userRepository domain.UserRepository,
	callRecordRepository domain.CallRecordRepository,
	messageBuilder domain.MessageBuilder,
	normalizer *PayloadNormalizer,
	resolver *SalesRepResolver,
	detector *DuplicateDetector,
) *CallIngestService {
	return &CallIngestService{
		userRepository:       userRepository,
		callRecordRepository: callRecordRepository,
		messageBuilder:       messageBuilder,
		normalizer:           normalizer,
		resolver:             resolver,
		detector:             detector,
	}
}

// ServiceReady checks if the service is ready to process deliveries.
func (s *CallIngestService) ServiceReady() bool {
	return s.userRepository != nil &&
		s.callRecordRepository != nil &&
		s.messageBuilder != nil
}

// ResolveOwner finds the webhook-owning account. The path identifier is
// either an internal user UID or an external auth-provider account ID; both
// are accepted.
func (s *CallIngestService) ResolveOwner(ctx context.Context, ownerIdentifier string) (*models.User, error) {
	if strings.TrimSpace(ownerIdentifier) == "" {
		return nil, domain.NewValidationError("owner identifier is required")
	}

	user, err := s.userRepository.Get(ctx, ownerIdentifier)
	if err == nil {
		return user, nil
	}
	if domain.GetErrorType(err) != domain.ErrorTypeNotFound {
		return nil, err
	}

	return s.userRepository.FindUserByExternalAccountID(ctx, ownerIdentifier)
}

// ProcessDelivery processes one webhook delivery body. The body may be a
// single unit, an array of units, or an envelope whose "data" field contains
// stringified JSON. Only an unparseable top-level body is an error; unit
// failures are reflected in the summary instead.
func (s *CallIngestService) ProcessDelivery(ctx context.Context, platform string, owner *models.User, body []byte) (*models.DeliverySummary, error) {
	units, err := splitUnits(body)
	if err != nil {
		return nil, err
	}

	summary := &models.DeliverySummary{}
	for i, unit := range units {
		result := s.processUnit(ctx, platform, owner, unit)
		result.Index = i
		summary.Add(result)
	}

	slog.InfoContext(ctx, "processed webhook delivery",
		"platform", platform,
		"owner_uid", owner.UID,
		"units", summary.Total,
		"succeeded", summary.Succeeded,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)

	return summary, nil
}

// processUnit runs one call unit to a terminal state. It never panics the
// batch: every failure is captured in the returned result.
func (s *CallIngestService) processUnit(ctx context.Context, platform string, owner *models.User, unit map[string]any) models.UnitResult {
	event, err := s.normalizer.Normalize(ctx, platform, unit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to normalize payload unit", logging.ErrKey, err, "platform", platform)
		return models.UnitResult{Status: models.UnitStatusError, Error: err.Error()}
	}

	resolution := s.resolver.Resolve(ctx, owner.OrganizationUID, event.OwnerEmail, event.OwnerName, owner)

	check, err := s.detector.Check(ctx, &models.DuplicateCandidate{
		OrganizationUID:    owner.OrganizationUID,
		SalesRepUID:        resolution.User.UID,
		ScheduledStartTime: event.ScheduledStartTime,
		Title:              event.Title,
		OwnerEmail:         event.OwnerEmail,
		OwnerName:          event.OwnerName,
		Invitees:           event.Invitees,
		ExternalID:         event.ExternalID,
	})
	if err != nil {
		slog.ErrorContext(ctx, "duplicate check failed", logging.ErrKey, err, "external_id", event.ExternalID)
		return models.UnitResult{Status: models.UnitStatusError, Error: err.Error()}
	}
	if check.IsDuplicate {
		slog.InfoContext(ctx, "skipping duplicate call unit",
			"match_type", check.MatchType,
			"existing_uid", check.ExistingUID,
			"reason", check.Reason,
		)
		return models.UnitResult{
			Status:        models.UnitStatusSkipped,
			CallRecordUID: check.ExistingUID,
			Reason:        check.Reason,
		}
	}

	record := s.buildCallRecord(event, resolution, owner)
	if err := s.callRecordRepository.Create(ctx, record); err != nil {
		// Another delivery won the insert race; that is a benign duplicate,
		// not a failure.
		if domain.GetErrorType(err) == domain.ErrorTypeConflict {
			slog.InfoContext(ctx, "concurrent delivery already wrote this call, skipping",
				"external_id", event.ExternalID)
			return models.UnitResult{
				Status: models.UnitStatusSkipped,
				Reason: fmt.Sprintf("external ID '%s' was written concurrently", event.ExternalID),
			}
		}
		slog.ErrorContext(ctx, "failed to write call record", logging.ErrKey, err, "external_id", event.ExternalID)
		return models.UnitResult{Status: models.UnitStatusError, Error: err.Error()}
	}

	if err := s.messageBuilder.SendCallProcess(ctx, models.CallProcessMessage{
		CallRecordUID: record.UID,
		Source:        platform,
	}); err != nil {
		// The record exists but no analysis job is queued. Flag it loudly so a
		// sweep job or a human can recover it; dispatch is not retried inline.
		slog.ErrorContext(ctx, "orphaned record: call record written but analysis dispatch failed",
			logging.ErrKey, err,
			logging.PriorityCritical(),
			"call_record_uid", record.UID,
		)
		return models.UnitResult{
			Status:        models.UnitStatusError,
			CallRecordUID: record.UID,
			Error:         fmt.Sprintf("record written but analysis dispatch failed: %v", err),
		}
	}

	// Best-effort analytics mirror; never affects the unit outcome.
	if err := s.messageBuilder.SendAnalyticsMirror(ctx, record); err != nil {
		slog.WarnContext(ctx, "failed to mirror call record to analytics", logging.ErrKey, err,
			"call_record_uid", record.UID)
	}

	slog.InfoContext(ctx, "wrote call record and dispatched analysis job",
		"call_record_uid", record.UID,
		"external_id", record.ExternalID,
		"sales_rep_uid", record.SalesRepUID,
		"resolution_method", resolution.Method,
	)

	return models.UnitResult{Status: models.UnitStatusSuccess, CallRecordUID: record.UID}
}

func (s *CallIngestService) buildCallRecord(event *models.NormalizedCallEvent, resolution *models.SalesRepResolution, owner *models.User) *models.CallRecord {
	now := time.Now().UTC()

	metadata := event.Metadata
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata["payload_generation"] = string(event.Generation)
	metadata["resolution_method"] = resolution.Method
	if event.SynthesizedID {
		metadata["synthesized_external_id"] = true
	}

	return &models.CallRecord{
		UID:                      uuid.NewString(),
		OrganizationUID:          owner.OrganizationUID,
		SalesRepUID:              resolution.User.UID,
		Platform:                 event.Platform,
		ExternalID:               event.ExternalID,
		ExternalIDs:              map[string]string{event.Platform: event.ExternalID},
		Title:                    event.Title,
		ScheduledStartTime:       event.ScheduledStartTime,
		ScheduledEndTime:         event.ScheduledEndTime,
		ActualStartTime:          event.ActualStartTime,
		ActualEndTime:            event.ActualEndTime,
		DurationMinutes:          event.DurationMinutes,
		ScheduledDurationMinutes: event.ScheduledDurationMinutes,
		Transcript:               event.Transcript,
		RecordingURL:             event.RecordingURL,
		ShareURL:                 event.ShareURL,
		OwnerEmail:               event.OwnerEmail,
		OwnerName:                event.OwnerName,
		Invitees:                 event.Invitees,
		Metadata:                 metadata,
		Status:                   models.CallStatusPending,
		Source:                   event.Platform,
		CreatedAt:                &now,
		UpdatedAt:                &now,
	}
}

// splitUnits parses a delivery body into individual call units. The body may
// be one object, an array of objects, or an envelope whose "data" field holds
// stringified JSON. Per-unit string-encoded transcript fields are unwrapped
// too.
func splitUnits(body []byte) ([]map[string]any, error) {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, domain.NewValidationError("request body is not valid JSON", err)
	}

	root, err := unwrapEnvelope(root, 0)
	if err != nil {
		return nil, err
	}

	var rawUnits []any
	switch v := root.(type) {
	case []any:
		rawUnits = v
	case map[string]any:
		rawUnits = []any{v}
	default:
		return nil, domain.NewValidationError("request body must be a JSON object or array")
	}

	units := make([]map[string]any, 0, len(rawUnits))
	for _, rawUnit := range rawUnits {
		unit, ok := rawUnit.(map[string]any)
		if !ok {
			return nil, domain.NewValidationError("delivery contains a non-object unit")
		}
		unwrapStringEncodedTranscript(unit)
		units = append(units, unit)
	}

	return units, nil
}

// unwrapEnvelope unwraps double-encoded "data" envelopes: a top-level object
// whose data field is itself JSON (stringified or not). Depth is bounded to
// guard against pathological nesting.
func unwrapEnvelope(root any, depth int) (any, error) {
	if depth > 3 {
		return root, nil
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return root, nil
	}
	data, ok := obj["data"]
	if !ok {
		return root, nil
	}

	switch v := data.(type) {
	case string:
		var inner any
		if err := json.Unmarshal([]byte(v), &inner); err != nil {
			return nil, domain.NewValidationError("envelope data field is not valid JSON", err)
		}
		return unwrapEnvelope(inner, depth+1)
	case []any, map[string]any:
		return unwrapEnvelope(v, depth+1)
	default:
		return root, nil
	}
}

// unwrapStringEncodedTranscript parses a transcript field that arrives as
// stringified JSON instead of a turn array. A plain-text transcript string is
// left alone.
func unwrapStringEncodedTranscript(unit map[string]any) {
	encoded, ok := unit["transcript"].(string)
	if !ok || !strings.HasPrefix(strings.TrimSpace(encoded), "[") {
		return
	}

	var turns []any
	if err := json.Unmarshal([]byte(encoded), &turns); err != nil {
		return
	}
	unit["transcript"] = turns
}
