// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// PayloadGeneration identifies which webhook schema generation a raw payload
// unit uses. Platforms have shipped several incompatible payload shapes over
// time; each generation gets its own parser.
type PayloadGeneration string

const (
	// GenerationModern payloads carry a numeric recording identifier and a
	// structured invitee list.
	GenerationModern PayloadGeneration = "modern"
	// GenerationNested payloads carry a nested owning-user object with
	// meeting/recording sub-objects.
	GenerationNested PayloadGeneration = "nested"
	// GenerationLegacy payloads are flat top-level scalar strings, including a
	// newline-delimited single-invitee encoding.
	GenerationLegacy PayloadGeneration = "legacy"
)

// DefaultCallTitle is used when a payload carries no meeting title.
const DefaultCallTitle = "Untitled call"

// NormalizedCallEvent is the canonical extraction from one raw webhook unit.
// Every event has a non-empty ExternalID (real or synthesized) and a
// non-empty Title.
type NormalizedCallEvent struct {
	Generation PayloadGeneration `json:"generation"`
	Platform   string            `json:"platform"`

	// ExternalID is the platform's call identifier, or a synthesized stable
	// fallback when the payload carries no identifier at all.
	ExternalID    string `json:"external_id"`
	SynthesizedID bool   `json:"synthesized_id,omitempty"`

	Title      string `json:"title"`
	OwnerName  string `json:"owner_name,omitempty"`
	OwnerEmail string `json:"owner_email,omitempty"`

	ScheduledStartTime *time.Time `json:"scheduled_start_time,omitempty"`
	ScheduledEndTime   *time.Time `json:"scheduled_end_time,omitempty"`
	ActualStartTime    *time.Time `json:"actual_start_time,omitempty"`
	ActualEndTime      *time.Time `json:"actual_end_time,omitempty"`

	// Durations are minutes. For modern payloads they are always derived from
	// the timestamp pairs, never read from a provided duration field.
	DurationMinutes          int `json:"duration_minutes"`
	ScheduledDurationMinutes int `json:"scheduled_duration_minutes"`

	Transcript   string         `json:"transcript,omitempty"`
	RecordingURL string         `json:"recording_url,omitempty"`
	ShareURL     string         `json:"share_url,omitempty"`
	Invitees     []Invitee      `json:"invitees,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Resolution methods for crediting a call to a sales rep.
const (
	ResolutionByEmail  = "email-match"
	ResolutionByName   = "name-match"
	ResolutionFallback = "fallback-owner"
)

// SalesRepResolution is the outcome of identity resolution. User is never nil:
// the webhook-owning account is the resolution floor.
type SalesRepResolution struct {
	User   *User  `json:"user"`
	Method string `json:"method"`
}

// Duplicate match types, strongest signal first.
const (
	MatchTypeExternalID   = "external-id"
	MatchTypeCompositeKey = "composite-key"
	MatchTypeNone         = "none"
)

// DuplicateCheckResult describes whether an incoming normalized event already
// has a stored call record, and how the match was made.
type DuplicateCheckResult struct {
	IsDuplicate bool   `json:"is_duplicate"`
	MatchType   string `json:"match_type"`
	ExistingUID string `json:"existing_uid,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// DuplicateCandidate bundles the signals the duplicate detector matches on.
type DuplicateCandidate struct {
	OrganizationUID    string
	SalesRepUID        string
	ScheduledStartTime *time.Time
	Title              string
	OwnerEmail         string
	OwnerName          string
	Invitees           []Invitee
	ExternalID         string
}
