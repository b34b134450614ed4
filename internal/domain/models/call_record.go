// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"strings"
	"time"
)

// Call record lifecycle statuses.
const (
	CallStatusPending    = "pending"
	CallStatusProcessing = "processing"
	CallStatusEvaluated  = "evaluated"
	CallStatusArchived   = "archived"
)

// Source platforms that deliver call recordings.
const (
	PlatformFathom    = "fathom"
	PlatformFireflies = "fireflies"
	PlatformZoom      = "zoom"
	PlatformClaap     = "claap"
)

// Invitee is one participant invited to a call.
type Invitee struct {
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	IsExternal bool   `json:"is_external"`
}

// CallRecord is the canonical persisted record of one sales call.
// It is created exactly once per unique call by the ingest pipeline;
// re-delivery of the same webhook is absorbed before a write occurs.
type CallRecord struct {
	UID             string `json:"uid"`
	OrganizationUID string `json:"organization_uid"`
	SalesRepUID     string `json:"sales_rep_uid"`
	Platform        string `json:"platform"`

	// ExternalID is the canonical platform identifier the record was first
	// written under. ExternalIDs holds every identifier this call has been
	// reported under, keyed by platform, so the duplicate detector can match
	// re-deliveries that arrive under a different identifier field.
	ExternalID  string            `json:"external_id"`
	ExternalIDs map[string]string `json:"external_ids,omitempty"`

	Title                    string         `json:"title"`
	ScheduledStartTime       *time.Time     `json:"scheduled_start_time,omitempty"`
	ScheduledEndTime         *time.Time     `json:"scheduled_end_time,omitempty"`
	ActualStartTime          *time.Time     `json:"actual_start_time,omitempty"`
	ActualEndTime            *time.Time     `json:"actual_end_time,omitempty"`
	DurationMinutes          int            `json:"duration_minutes"`
	ScheduledDurationMinutes int            `json:"scheduled_duration_minutes"`
	Transcript               string         `json:"transcript,omitempty"`
	RecordingURL             string         `json:"recording_url,omitempty"`
	ShareURL                 string         `json:"share_url,omitempty"`
	OwnerEmail               string         `json:"owner_email,omitempty"`
	OwnerName                string         `json:"owner_name,omitempty"`
	Invitees                 []Invitee      `json:"invitees,omitempty"`
	Metadata                 map[string]any `json:"metadata,omitempty"`
	Status                   string         `json:"status"`
	Source                   string         `json:"source"`
	CreatedAt                *time.Time     `json:"created_at,omitempty"`
	UpdatedAt                *time.Time     `json:"updated_at,omitempty"`
}

// AllExternalIDs returns every identifier the record is known under,
// including the canonical one.
func (c *CallRecord) AllExternalIDs() []string {
	ids := make([]string, 0, len(c.ExternalIDs)+1)
	if c.ExternalID != "" {
		ids = append(ids, c.ExternalID)
	}
	for _, id := range c.ExternalIDs {
		if id != "" && id != c.ExternalID {
			ids = append(ids, id)
		}
	}
	return ids
}

// HasExternalID reports whether the record is known under the given identifier
// on any platform.
func (c *CallRecord) HasExternalID(externalID string) bool {
	if externalID == "" {
		return false
	}
	for _, id := range c.AllExternalIDs() {
		if id == externalID {
			return true
		}
	}
	return false
}

// TitleMatches compares titles case-insensitively.
func (c *CallRecord) TitleMatches(title string) bool {
	return title != "" && strings.EqualFold(strings.TrimSpace(c.Title), strings.TrimSpace(title))
}

// SameCalendarDate reports whether the record's scheduled start falls on the
// same UTC calendar date as the given time. Scheduling systems report slightly
// different start times for the same event across platforms, so the duplicate
// detector compares dates, not timestamps.
func (c *CallRecord) SameCalendarDate(t *time.Time) bool {
	if c.ScheduledStartTime == nil || t == nil {
		return false
	}
	y1, m1, d1 := c.ScheduledStartTime.UTC().Date()
	y2, m2, d2 := t.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
