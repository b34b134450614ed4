// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/akamensky/base58"

	"github.com/salesloop/call-ingest-service/internal/domain"
	"github.com/salesloop/call-ingest-service/internal/domain/models"
	"github.com/salesloop/call-ingest-service/pkg/utils"
)

// timestampLayouts are the formats platforms have been observed sending.
// RFC 3339 is the documented format; the rest cover drift in older payloads.
var timestampLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// PayloadNormalizer detects which schema generation a raw payload unit uses
// and extracts the canonical field set. Normalization never fails on missing
// optional data; only an unparseable payload shape is an error.
type PayloadNormalizer struct {
	transcriptAssembler *TranscriptAssembler
}

// NewPayloadNormalizer creates a new payload normalizer.
func NewPayloadNormalizer(transcriptAssembler *TranscriptAssembler) *PayloadNormalizer {
	return &PayloadNormalizer{
		transcriptAssembler: transcriptAssembler,
	}
}

// Normalize classifies one raw payload unit and extracts a normalized call
// event. The returned event always has a non-empty ExternalID (synthesized
// when the payload carries no identifier) and a non-empty Title.
func (n *PayloadNormalizer) Normalize(ctx context.Context, platform string, unit map[string]any) (*models.NormalizedCallEvent, error) {
	if len(unit) == 0 {
		return nil, domain.NewValidationError("payload unit is empty")
	}

	generation := models.ClassifyPayload(unit)

	var (
		event *models.NormalizedCallEvent
		err   error
	)
	switch generation {
	case models.GenerationModern:
		event, err = n.normalizeModern(unit)
	case models.GenerationNested:
		event, err = n.normalizeNested(unit)
	default:
		event, err = n.normalizeLegacy(unit)
	}
	if err != nil {
		return nil, domain.NewValidationError(
			fmt.Sprintf("failed to parse %s generation payload", generation), err)
	}

	event.Generation = generation
	event.Platform = platform

	if strings.TrimSpace(event.Title) == "" {
		event.Title = models.DefaultCallTitle
	}
	if event.ExternalID == "" {
		event.ExternalID = n.synthesizeExternalID(event)
		event.SynthesizedID = true
		slog.DebugContext(ctx, "payload carried no external identifier, synthesized one",
			"external_id", event.ExternalID, "platform", platform)
	}

	return event, nil
}

func (n *PayloadNormalizer) normalizeModern(unit map[string]any) (*models.NormalizedCallEvent, error) {
	payload, err := models.ToModernPayload(unit)
	if err != nil {
		return nil, err
	}

	externalID := ""
	switch {
	case payload.RecordingID != 0:
		externalID = strconv.FormatInt(payload.RecordingID, 10)
	case payload.ID != 0:
		externalID = strconv.FormatInt(payload.ID, 10)
	case payload.Recording.ID != 0:
		externalID = strconv.FormatInt(payload.Recording.ID, 10)
	}

	invitees := payload.Invitees
	if len(invitees) == 0 {
		invitees = payload.Meeting.Invitees
	}

	scheduledStart := parseTimestamp(payload.Meeting.ScheduledStartTime)
	scheduledEnd := parseTimestamp(payload.Meeting.ScheduledEndTime)
	actualStart := parseTimestamp(payload.Recording.StartedAt)
	actualEnd := parseTimestamp(payload.Recording.EndedAt)

	event := &models.NormalizedCallEvent{
		ExternalID:         externalID,
		Title:              utils.CoalesceString(payload.Meeting.Title, payload.Title),
		OwnerName:          payload.RecordedBy.Name,
		OwnerEmail:         payload.RecordedBy.Email,
		ScheduledStartTime: scheduledStart,
		ScheduledEndTime:   scheduledEnd,
		ActualStartTime:    actualStart,
		ActualEndTime:      actualEnd,
		// Provided duration fields are not trusted for this generation;
		// durations come from the timestamp pairs or stay zero.
		DurationMinutes:          derivedMinutes(actualStart, actualEnd),
		ScheduledDurationMinutes: derivedMinutes(scheduledStart, scheduledEnd),
		Transcript:               n.transcriptAssembler.Assemble(payload.Transcript),
		RecordingURL:             utils.CoalesceString(payload.Recording.URL, payload.URL),
		ShareURL:                 utils.CoalesceString(payload.Recording.ShareURL, payload.ShareURL),
		Invitees:                 toInvitees(invitees),
	}
	if payload.RecordedBy.Team != "" {
		event.Metadata = map[string]any{"team": payload.RecordedBy.Team}
	}

	return event, nil
}

func (n *PayloadNormalizer) normalizeNested(unit map[string]any) (*models.NormalizedCallEvent, error) {
	payload, err := models.ToNestedPayload(unit)
	if err != nil {
		return nil, err
	}

	owner := payload.RecordedBy
	if owner.Email == "" && owner.Name == "" {
		owner = payload.User
	}

	externalID := utils.CoalesceString(payload.ID, payload.Recording.ExternalID, payload.Meeting.ExternalID)

	scheduledStart := parseTimestamp(payload.Meeting.ScheduledStartTime)
	scheduledEnd := parseTimestamp(payload.Meeting.ScheduledEndTime)
	actualStart := parseTimestamp(payload.Recording.StartTime)
	actualEnd := parseTimestamp(payload.Recording.EndTime)

	duration := payload.Recording.DurationInMinutes
	if duration == 0 {
		duration = derivedMinutes(actualStart, actualEnd)
	}
	scheduledDuration := payload.Meeting.ScheduledDurationInMinutes
	if scheduledDuration == 0 {
		scheduledDuration = derivedMinutes(scheduledStart, scheduledEnd)
	}

	event := &models.NormalizedCallEvent{
		ExternalID:               externalID,
		Title:                    payload.Meeting.Title,
		OwnerName:                owner.Name,
		OwnerEmail:               owner.Email,
		ScheduledStartTime:       scheduledStart,
		ScheduledEndTime:         scheduledEnd,
		ActualStartTime:          actualStart,
		ActualEndTime:            actualEnd,
		DurationMinutes:          duration,
		ScheduledDurationMinutes: scheduledDuration,
		Transcript:               n.transcriptAssembler.AssembleOrPlaintext(payload.Transcript, payload.TranscriptPlaintext),
		RecordingURL:             payload.Recording.URL,
		ShareURL:                 payload.Recording.ShareURL,
	}
	if owner.Team != "" {
		event.Metadata = map[string]any{"team": owner.Team}
	}

	return event, nil
}

func (n *PayloadNormalizer) normalizeLegacy(unit map[string]any) (*models.NormalizedCallEvent, error) {
	payload, err := models.ToLegacyPayload(unit)
	if err != nil {
		return nil, err
	}

	scheduledStart := parseTimestamp(payload.MeetingScheduledStartTime)
	scheduledEnd := parseTimestamp(payload.MeetingScheduledEndTime)
	actualStart := parseTimestamp(payload.RecordingStartTime)
	actualEnd := parseTimestamp(payload.RecordingEndTime)

	duration := 0
	if payload.RecordingDurationInMinutes != "" {
		if parsed, err := strconv.ParseFloat(payload.RecordingDurationInMinutes, 64); err == nil {
			duration = int(parsed)
		}
	}
	if duration == 0 {
		duration = derivedMinutes(actualStart, actualEnd)
	}

	var invitees []models.Invitee
	if invitee, ok := parseLegacyInvitee(payload.MeetingInvitee); ok {
		invitees = append(invitees, invitee)
	}

	return &models.NormalizedCallEvent{
		ExternalID:               payload.ID,
		Title:                    payload.MeetingTitle,
		OwnerName:                payload.RecordedByName,
		OwnerEmail:               payload.RecordedByEmail,
		ScheduledStartTime:       scheduledStart,
		ScheduledEndTime:         scheduledEnd,
		ActualStartTime:          actualStart,
		ActualEndTime:            actualEnd,
		DurationMinutes:          duration,
		ScheduledDurationMinutes: derivedMinutes(scheduledStart, scheduledEnd),
		Transcript:               payload.TranscriptPlaintext,
		RecordingURL:             payload.RecordingURL,
		ShareURL:                 payload.RecordingShareURL,
		Invitees:                 invitees,
	}, nil
}

// synthesizeExternalID builds a stable fallback identifier for payloads that
// carry no identifier at all. The same payload re-delivered synthesizes the
// same identifier, so the duplicate detector still absorbs it.
func (n *PayloadNormalizer) synthesizeExternalID(event *models.NormalizedCallEvent) string {
	start := ""
	if event.ScheduledStartTime != nil {
		start = event.ScheduledStartTime.UTC().Format(time.RFC3339)
	} else if event.ActualStartTime != nil {
		start = event.ActualStartTime.UTC().Format(time.RFC3339)
	}

	fingerprint := strings.Join([]string{
		event.Platform,
		strings.ToLower(strings.TrimSpace(event.Title)),
		start,
		strings.ToLower(strings.TrimSpace(event.OwnerEmail)),
	}, "|")

	sum := sha256.Sum256([]byte(fingerprint))
	return "syn-" + base58.Encode(sum[:])
}

// parseLegacyInvitee parses the newline-delimited "key: value" single-invitee
// encoding of flat legacy payloads.
func parseLegacyInvitee(encoded string) (models.Invitee, bool) {
	var invitee models.Invitee
	found := false

	for _, line := range strings.Split(encoded, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		switch key {
		case "email":
			invitee.Email = value
			found = true
		case "name":
			invitee.Name = value
			found = true
		case "is_external":
			invitee.IsExternal = strings.EqualFold(value, "true")
			found = true
		}
	}

	return invitee, found
}

// parseTimestamp parses a platform timestamp leniently. A missing or
// unparseable timestamp resolves to nil rather than failing the unit.
func parseTimestamp(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}

	slog.Debug("unparseable timestamp in payload, ignoring", "value", value)
	return nil
}

// derivedMinutes computes (end - start) in whole minutes. Missing boundaries
// yield zero rather than a guess.
func derivedMinutes(start, end *time.Time) int {
	if start == nil || end == nil {
		return 0
	}
	minutes := int(end.Sub(*start).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}

func toInvitees(payloadInvitees []models.PayloadInvitee) []models.Invitee {
	if len(payloadInvitees) == 0 {
		return nil
	}
	invitees := make([]models.Invitee, 0, len(payloadInvitees))
	for _, invitee := range payloadInvitees {
		invitees = append(invitees, models.Invitee{
			Email:      invitee.Email,
			Name:       invitee.Name,
			IsExternal: invitee.IsExternal,
		})
	}
	return invitees
}
