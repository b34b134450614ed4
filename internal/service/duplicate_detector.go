// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/salesloop/call-ingest-service/internal/domain"
	"github.com/salesloop/call-ingest-service/internal/domain/models"
)

// DuplicateDetector decides whether an incoming normalized event already has a
// stored call record. The same physical call can arrive with different
// external identifiers, so identifier equality alone is insufficient; but a
// purely fuzzy composite key risks false positives. The detector checks the
// identifier first and only then the composite key, preferring the stronger
// signal. It is read-only; the storage layer's first-writer-wins insert is
// what closes the remaining check-then-write race.
type DuplicateDetector struct {
	callRecordRepository domain.CallRecordRepository
}

// NewDuplicateDetector creates a new duplicate detector.
func NewDuplicateDetector(callRecordRepository domain.CallRecordRepository) *DuplicateDetector {
	return &DuplicateDetector{
		callRecordRepository: callRecordRepository,
	}
}

// Check runs the duplicate checks for one candidate event.
func (d *DuplicateDetector) Check(ctx context.Context, candidate *models.DuplicateCandidate) (*models.DuplicateCheckResult, error) {
	if candidate.ExternalID != "" {
		existing, err := d.callRecordRepository.FindByExternalID(ctx, candidate.OrganizationUID, candidate.ExternalID)
		if err != nil && domain.GetErrorType(err) != domain.ErrorTypeNotFound {
			return nil, err
		}
		if existing != nil {
			return &models.DuplicateCheckResult{
				IsDuplicate: true,
				MatchType:   models.MatchTypeExternalID,
				ExistingUID: existing.UID,
				Reason: fmt.Sprintf("external ID '%s' already belongs to call record %s",
					candidate.ExternalID, existing.UID),
			}, nil
		}
	}

	records, err := d.callRecordRepository.ListByOrganizationAndRep(ctx, candidate.OrganizationUID, candidate.SalesRepUID)
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		if matches, reason := d.compositeKeyMatch(record, candidate); matches {
			return &models.DuplicateCheckResult{
				IsDuplicate: true,
				MatchType:   models.MatchTypeCompositeKey,
				ExistingUID: record.UID,
				Reason:      reason,
			}, nil
		}
	}

	return &models.DuplicateCheckResult{IsDuplicate: false, MatchType: models.MatchTypeNone}, nil
}

// compositeKeyMatch applies the fuzzy duplicate signal: same calendar date
// (scheduling systems report slightly different start times for the same
// event across platforms, so dates are compared, not timestamps), plus a
// title match or invitee overlap, plus an owner match.
func (d *DuplicateDetector) compositeKeyMatch(record *models.CallRecord, candidate *models.DuplicateCandidate) (bool, string) {
	if !record.SameCalendarDate(candidate.ScheduledStartTime) {
		return false, ""
	}

	titleMatch := record.TitleMatches(candidate.Title)
	inviteeMatch := inviteeOverlap(record.Invitees, candidate.Invitees)
	if !titleMatch && !inviteeMatch {
		return false, ""
	}

	if !ownerMatch(record, candidate) {
		return false, ""
	}

	signal := "title"
	if !titleMatch {
		signal = "invitee overlap"
	}
	return true, fmt.Sprintf("call record %s matches on calendar date, %s and owner", record.UID, signal)
}

// ownerMatch compares the reported owner against the stored record's owner,
// by email first, then name. A candidate with no owner signal at all cannot
// veto the match.
func ownerMatch(record *models.CallRecord, candidate *models.DuplicateCandidate) bool {
	candidateEmail := strings.TrimSpace(candidate.OwnerEmail)
	candidateName := strings.TrimSpace(candidate.OwnerName)

	if candidateEmail == "" && candidateName == "" {
		return true
	}
	if candidateEmail != "" && strings.EqualFold(strings.TrimSpace(record.OwnerEmail), candidateEmail) {
		return true
	}
	if candidateName != "" && strings.EqualFold(strings.TrimSpace(record.OwnerName), candidateName) {
		return true
	}
	return false
}

// inviteeOverlap reports whether the two invitee sets share at least one email
// or display name, case-insensitively.
func inviteeOverlap(stored, incoming []models.Invitee) bool {
	if len(stored) == 0 || len(incoming) == 0 {
		return false
	}

	emails := make(map[string]bool, len(stored))
	names := make(map[string]bool, len(stored))
	for _, invitee := range stored {
		if email := strings.ToLower(strings.TrimSpace(invitee.Email)); email != "" {
			emails[email] = true
		}
		if name := strings.ToLower(strings.TrimSpace(invitee.Name)); name != "" {
			names[name] = true
		}
	}

	for _, invitee := range incoming {
		if email := strings.ToLower(strings.TrimSpace(invitee.Email)); email != "" && emails[email] {
			return true
		}
		if name := strings.ToLower(strings.TrimSpace(invitee.Name)); name != "" && names[name] {
			return true
		}
	}
	return false
}
