// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"fmt"
)

// TranscriptSpeaker identifies who spoke a transcript turn.
type TranscriptSpeaker struct {
	DisplayName         string `json:"display_name,omitempty"`
	MatchedInviteeEmail string `json:"matched_invitee_email,omitempty"`
}

// TranscriptTurn is one speaker turn in a structured transcript.
type TranscriptTurn struct {
	Speaker   TranscriptSpeaker `json:"speaker"`
	Text      string            `json:"text,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"`
}

// PayloadInvitee is the structured invitee shape used by modern payloads.
type PayloadInvitee struct {
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	IsExternal bool   `json:"is_external,omitempty"`
}

// PayloadOwner is the nested owning-user object carried by modern and nested
// generation payloads.
type PayloadOwner struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Team  string `json:"team,omitempty"`
}

// ModernRecordingPayload is the newest webhook generation: numeric recording
// identifier, structured invitee list, timestamps for both the recording
// window and the scheduled window. Duration fields the platform provides are
// ignored; durations are derived from the timestamp pairs.
type ModernRecordingPayload struct {
	ID          int64            `json:"id,omitempty"`
	RecordingID int64            `json:"recording_id,omitempty"`
	Title       string           `json:"title,omitempty"`
	URL         string           `json:"url,omitempty"`
	ShareURL    string           `json:"share_url,omitempty"`
	RecordedBy  PayloadOwner     `json:"recorded_by,omitempty"`
	Invitees    []PayloadInvitee `json:"invitees,omitempty"`
	Transcript  []TranscriptTurn `json:"transcript,omitempty"`

	Recording struct {
		ID        int64  `json:"id,omitempty"`
		URL       string `json:"url,omitempty"`
		ShareURL  string `json:"share_url,omitempty"`
		StartedAt string `json:"started_at,omitempty"`
		EndedAt   string `json:"ended_at,omitempty"`
	} `json:"recording,omitempty"`

	Meeting struct {
		Title              string           `json:"title,omitempty"`
		ScheduledStartTime string           `json:"scheduled_start_time,omitempty"`
		ScheduledEndTime   string           `json:"scheduled_end_time,omitempty"`
		Invitees           []PayloadInvitee `json:"invitees,omitempty"`
	} `json:"meeting,omitempty"`
}

// NestedRecordingPayload is the middle webhook generation: a nested owning
// user object with meeting/recording sub-objects, without the modern markers.
// Duration fields are read directly from the sub-objects when present.
type NestedRecordingPayload struct {
	ID         string           `json:"id,omitempty"`
	RecordedBy PayloadOwner     `json:"recorded_by,omitempty"`
	User       PayloadOwner     `json:"user,omitempty"`
	Transcript []TranscriptTurn `json:"transcript,omitempty"`

	// Some deliveries of this generation flatten the transcript already.
	TranscriptPlaintext string `json:"transcript_plaintext,omitempty"`

	Meeting struct {
		ExternalID                 string `json:"external_id,omitempty"`
		Title                      string `json:"title,omitempty"`
		ScheduledStartTime         string `json:"scheduled_start_time,omitempty"`
		ScheduledEndTime           string `json:"scheduled_end_time,omitempty"`
		ScheduledDurationInMinutes int    `json:"scheduled_duration_in_minutes,omitempty"`
	} `json:"meeting,omitempty"`

	Recording struct {
		ExternalID        string `json:"external_id,omitempty"`
		URL               string `json:"url,omitempty"`
		ShareURL          string `json:"share_url,omitempty"`
		StartTime         string `json:"start_time,omitempty"`
		EndTime           string `json:"end_time,omitempty"`
		DurationInMinutes int    `json:"duration_in_minutes,omitempty"`
	} `json:"recording,omitempty"`
}

// LegacyRecordingPayload is the oldest webhook generation: every field is a
// top-level scalar string, and the single invitee is encoded as
// newline-delimited "key: value" pairs in MeetingInvitee.
type LegacyRecordingPayload struct {
	ID                         string `json:"id,omitempty"`
	MeetingTitle               string `json:"meeting_title,omitempty"`
	MeetingScheduledStartTime  string `json:"meeting_scheduled_start_time,omitempty"`
	MeetingScheduledEndTime    string `json:"meeting_scheduled_end_time,omitempty"`
	MeetingInvitee             string `json:"meeting_invitee,omitempty"`
	RecordingStartTime         string `json:"recording_start_time,omitempty"`
	RecordingEndTime           string `json:"recording_end_time,omitempty"`
	RecordingDurationInMinutes string `json:"recording_duration_in_minutes,omitempty"`
	RecordingURL               string `json:"recording_url,omitempty"`
	RecordingShareURL          string `json:"recording_share_url,omitempty"`
	TranscriptPlaintext        string `json:"transcript_plaintext,omitempty"`
	RecordedByName             string `json:"recorded_by_name,omitempty"`
	RecordedByEmail            string `json:"recorded_by_email,omitempty"`
}

// ClassifyPayload determines which schema generation a raw payload unit uses.
// Checks run in fixed priority order because legacy markers can be a subset of
// newer ones; first match wins.
func ClassifyPayload(unit map[string]any) PayloadGeneration {
	// Modern: numeric recording identifier or structured invitee list.
	if isJSONNumber(unit["recording_id"]) || isJSONNumber(unit["id"]) {
		return GenerationModern
	}
	if recording, ok := unit["recording"].(map[string]any); ok && isJSONNumber(recording["id"]) {
		return GenerationModern
	}
	if hasStructuredInvitees(unit["invitees"]) {
		return GenerationModern
	}
	if meeting, ok := unit["meeting"].(map[string]any); ok && hasStructuredInvitees(meeting["invitees"]) {
		return GenerationModern
	}

	// Nested: an owning-user object without the modern markers.
	if _, ok := unit["recorded_by"].(map[string]any); ok {
		return GenerationNested
	}
	if _, ok := unit["user"].(map[string]any); ok {
		return GenerationNested
	}

	return GenerationLegacy
}

// isJSONNumber reports whether a decoded JSON value is numeric. Flat legacy
// payloads carry string identifiers, so a numeric id is a modern marker.
func isJSONNumber(v any) bool {
	switch v.(type) {
	case float64, json.Number:
		return true
	}
	return false
}

// hasStructuredInvitees reports whether the value is a non-empty array of
// invitee objects.
func hasStructuredInvitees(v any) bool {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return false
	}
	_, ok = list[0].(map[string]any)
	return ok
}

// decodePayload round-trips a raw unit through JSON into a typed payload.
func decodePayload[T any](unit map[string]any) (*T, error) {
	data, err := json.Marshal(unit)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return &payload, nil
}

// ToModernPayload converts a raw unit to the modern generation shape.
func ToModernPayload(unit map[string]any) (*ModernRecordingPayload, error) {
	return decodePayload[ModernRecordingPayload](unit)
}

// ToNestedPayload converts a raw unit to the nested generation shape.
func ToNestedPayload(unit map[string]any) (*NestedRecordingPayload, error) {
	return decodePayload[NestedRecordingPayload](unit)
}

// ToLegacyPayload converts a raw unit to the flat legacy generation shape.
func ToLegacyPayload(unit map[string]any) (*LegacyRecordingPayload, error) {
	return decodePayload[LegacyRecordingPayload](unit)
}
