// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/salesloop/call-ingest-service/internal/domain"
	"github.com/salesloop/call-ingest-service/internal/domain/models"
	"github.com/salesloop/call-ingest-service/internal/logging"
)

// SalesRepResolver determines which team member actually owns a call. A
// webhook arrives under one integration-holder's credentials, but the call
// may belong to a different rep, e.g. a manager's integration account
// receiving recordings for the whole team.
type SalesRepResolver struct {
	userRepository domain.UserRepository
}

// NewSalesRepResolver creates a new sales rep resolver.
func NewSalesRepResolver(userRepository domain.UserRepository) *SalesRepResolver {
	return &SalesRepResolver{
		userRepository: userRepository,
	}
}

// Resolve credits a call to a sales rep. Resolution order, first match wins:
// exact case-insensitive email match against an active user of the
// organization, then exact case-insensitive full-name match, then the
// webhook-owning account. The fallback guarantees a non-nil result; directory
// lookups never create or mutate users.
func (r *SalesRepResolver) Resolve(ctx context.Context, organizationUID, reportedEmail, reportedName string, fallbackUser *models.User) *models.SalesRepResolution {
	users, err := r.userRepository.FindActiveUsersByOrganization(ctx, organizationUID)
	if err != nil {
		slog.WarnContext(ctx, "failed to list organization users, falling back to webhook owner",
			logging.ErrKey, err, "organization_uid", organizationUID)
		return &models.SalesRepResolution{User: fallbackUser, Method: models.ResolutionFallback}
	}

	if email := strings.TrimSpace(reportedEmail); email != "" {
		for _, user := range users {
			if strings.EqualFold(strings.TrimSpace(user.Email), email) {
				return &models.SalesRepResolution{User: user, Method: models.ResolutionByEmail}
			}
		}
	}

	// Exact full-name match only. Two active users sharing a display name is
	// an ambiguous signal, so it falls through to the fallback instead of
	// guessing.
	if name := strings.TrimSpace(reportedName); name != "" {
		var matched *models.User
		ambiguous := false
		for _, user := range users {
			if strings.EqualFold(strings.TrimSpace(user.FullName()), name) {
				if matched != nil {
					ambiguous = true
					break
				}
				matched = user
			}
		}
		if matched != nil && !ambiguous {
			return &models.SalesRepResolution{User: matched, Method: models.ResolutionByName}
		}
		if ambiguous {
			slog.InfoContext(ctx, "ambiguous full-name match, falling back to webhook owner",
				"organization_uid", organizationUID, "reported_name", name)
		}
	}

	return &models.SalesRepResolution{User: fallbackUser, Method: models.ResolutionFallback}
}
