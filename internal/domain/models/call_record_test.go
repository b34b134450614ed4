// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCallRecordExternalIDs(t *testing.T) {
	record := &CallRecord{
		ExternalID: "555",
		ExternalIDs: map[string]string{
			PlatformFathom: "555",
			PlatformClaap:  "abc123",
		},
	}

	assert.ElementsMatch(t, []string{"555", "abc123"}, record.AllExternalIDs())
	assert.True(t, record.HasExternalID("555"))
	assert.True(t, record.HasExternalID("abc123"))
	assert.False(t, record.HasExternalID("999"))
	assert.False(t, record.HasExternalID(""))
}

func TestCallRecordTitleMatches(t *testing.T) {
	record := &CallRecord{Title: "Discovery call"}

	assert.True(t, record.TitleMatches("discovery call"))
	assert.True(t, record.TitleMatches("  Discovery Call  "))
	assert.False(t, record.TitleMatches("Pricing review"))
	assert.False(t, record.TitleMatches(""))
}

func TestCallRecordSameCalendarDate(t *testing.T) {
	start := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
	record := &CallRecord{ScheduledStartTime: &start}

	sameDay := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	assert.True(t, record.SameCalendarDate(&sameDay))

	// Comparison is on the UTC date, not the local one.
	offset := time.FixedZone("UTC+2", 2*60*60)
	nextDayLocal := time.Date(2024, 1, 2, 1, 0, 0, 0, offset)
	assert.True(t, record.SameCalendarDate(&nextDayLocal))

	nextDay := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	assert.False(t, record.SameCalendarDate(&nextDay))

	assert.False(t, record.SameCalendarDate(nil))
	assert.False(t, (&CallRecord{}).SameCalendarDate(&sameDay))
}
