// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/salesloop/call-ingest-service/internal/domain"
	"github.com/salesloop/call-ingest-service/internal/domain/mocks"
	"github.com/salesloop/call-ingest-service/internal/domain/models"
)

func storedCallRecord() *models.CallRecord {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	return &models.CallRecord{
		UID:                "rec-1",
		OrganizationUID:    "org-1",
		SalesRepUID:        "rep-1",
		Platform:           models.PlatformFathom,
		ExternalID:         "555",
		ExternalIDs:        map[string]string{models.PlatformFathom: "555"},
		Title:              "Discovery call",
		ScheduledStartTime: &start,
		OwnerEmail:         "jane@acme.com",
		OwnerName:          "Jane Doe",
		Invitees: []models.Invitee{
			{Email: "buyer@client.com", Name: "Buyer", IsExternal: true},
		},
	}
}

func TestDuplicateDetectorExternalIDMatch(t *testing.T) {
	repo := &mocks.MockCallRecordRepository{}
	repo.On("FindByExternalID", mock.Anything, "org-1", "555").Return(storedCallRecord(), nil)

	detector := NewDuplicateDetector(repo)
	result, err := detector.Check(context.Background(), &models.DuplicateCandidate{
		OrganizationUID: "org-1",
		SalesRepUID:     "rep-1",
		ExternalID:      "555",
	})
	require.NoError(t, err)

	assert.True(t, result.IsDuplicate)
	assert.Equal(t, models.MatchTypeExternalID, result.MatchType)
	assert.Equal(t, "rec-1", result.ExistingUID)
	// The identifier check short-circuits; no listing happens.
	repo.AssertNotCalled(t, "ListByOrganizationAndRep", mock.Anything, mock.Anything, mock.Anything)
}

func TestDuplicateDetectorCrossFormatCompositeKeyMatch(t *testing.T) {
	// The same physical call first arrived as a modern payload with numeric id
	// 555, then re-arrived as a legacy payload with string id abc123. The
	// identifiers differ, so only the composite key can catch it.
	repo := &mocks.MockCallRecordRepository{}
	repo.On("FindByExternalID", mock.Anything, "org-1", "abc123").
		Return(nil, domain.NewNotFoundError("call record not found"))
	repo.On("ListByOrganizationAndRep", mock.Anything, "org-1", "rep-1").
		Return([]*models.CallRecord{storedCallRecord()}, nil)

	start := time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC)
	detector := NewDuplicateDetector(repo)
	result, err := detector.Check(context.Background(), &models.DuplicateCandidate{
		OrganizationUID:    "org-1",
		SalesRepUID:        "rep-1",
		ExternalID:         "abc123",
		Title:              "discovery call",
		ScheduledStartTime: &start,
		OwnerEmail:         "jane@acme.com",
	})
	require.NoError(t, err)

	assert.True(t, result.IsDuplicate)
	assert.Equal(t, models.MatchTypeCompositeKey, result.MatchType)
	assert.Equal(t, "rec-1", result.ExistingUID)
	assert.Contains(t, result.Reason, "title")
}

func TestDuplicateDetectorCompositeKeyVariants(t *testing.T) {
	sameDay := time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC)
	nextDay := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		candidate *models.DuplicateCandidate
		wantDup   bool
	}{
		{
			name: "invitee overlap stands in for a changed title",
			candidate: &models.DuplicateCandidate{
				OrganizationUID:    "org-1",
				SalesRepUID:        "rep-1",
				ExternalID:         "other-id",
				Title:              "Renamed meeting",
				ScheduledStartTime: &sameDay,
				OwnerEmail:         "jane@acme.com",
				Invitees:           []models.Invitee{{Email: "BUYER@CLIENT.COM"}},
			},
			wantDup: true,
		},
		{
			name: "different title and no invitee overlap is a distinct call",
			candidate: &models.DuplicateCandidate{
				OrganizationUID:    "org-1",
				SalesRepUID:        "rep-1",
				ExternalID:         "other-id",
				Title:              "Renamed meeting",
				ScheduledStartTime: &sameDay,
				OwnerEmail:         "jane@acme.com",
				Invitees:           []models.Invitee{{Email: "someone@else.com"}},
			},
			wantDup: false,
		},
		{
			name: "same title on a different date is a distinct call",
			candidate: &models.DuplicateCandidate{
				OrganizationUID:    "org-1",
				SalesRepUID:        "rep-1",
				ExternalID:         "other-id",
				Title:              "Discovery call",
				ScheduledStartTime: &nextDay,
				OwnerEmail:         "jane@acme.com",
			},
			wantDup: false,
		},
		{
			name: "owner mismatch vetoes the match",
			candidate: &models.DuplicateCandidate{
				OrganizationUID:    "org-1",
				SalesRepUID:        "rep-1",
				ExternalID:         "other-id",
				Title:              "Discovery call",
				ScheduledStartTime: &sameDay,
				OwnerEmail:         "bob@acme.com",
				OwnerName:          "Bob Smith",
			},
			wantDup: false,
		},
		{
			name: "candidate without owner signal cannot veto",
			candidate: &models.DuplicateCandidate{
				OrganizationUID:    "org-1",
				SalesRepUID:        "rep-1",
				ExternalID:         "other-id",
				Title:              "Discovery call",
				ScheduledStartTime: &sameDay,
			},
			wantDup: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mocks.MockCallRecordRepository{}
			repo.On("FindByExternalID", mock.Anything, "org-1", "other-id").
				Return(nil, domain.NewNotFoundError("call record not found"))
			repo.On("ListByOrganizationAndRep", mock.Anything, "org-1", "rep-1").
				Return([]*models.CallRecord{storedCallRecord()}, nil)

			detector := NewDuplicateDetector(repo)
			result, err := detector.Check(context.Background(), tc.candidate)
			require.NoError(t, err)
			assert.Equal(t, tc.wantDup, result.IsDuplicate)
			if !tc.wantDup {
				assert.Equal(t, models.MatchTypeNone, result.MatchType)
			}
		})
	}
}

func TestDuplicateDetectorNoMatch(t *testing.T) {
	repo := &mocks.MockCallRecordRepository{}
	repo.On("FindByExternalID", mock.Anything, "org-1", "999").
		Return(nil, domain.NewNotFoundError("call record not found"))
	repo.On("ListByOrganizationAndRep", mock.Anything, "org-1", "rep-1").
		Return([]*models.CallRecord{}, nil)

	detector := NewDuplicateDetector(repo)
	result, err := detector.Check(context.Background(), &models.DuplicateCandidate{
		OrganizationUID: "org-1",
		SalesRepUID:     "rep-1",
		ExternalID:      "999",
	})
	require.NoError(t, err)

	assert.False(t, result.IsDuplicate)
	assert.Equal(t, models.MatchTypeNone, result.MatchType)
}

func TestDuplicateDetectorLookupErrorPropagates(t *testing.T) {
	repo := &mocks.MockCallRecordRepository{}
	repo.On("FindByExternalID", mock.Anything, "org-1", "555").
		Return(nil, domain.NewUnavailableError("nats unavailable"))

	detector := NewDuplicateDetector(repo)
	_, err := detector.Check(context.Background(), &models.DuplicateCandidate{
		OrganizationUID: "org-1",
		SalesRepUID:     "rep-1",
		ExternalID:      "555",
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}
