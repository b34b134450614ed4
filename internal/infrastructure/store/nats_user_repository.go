// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/salesloop/call-ingest-service/internal/domain"
	"github.com/salesloop/call-ingest-service/internal/domain/models"
)

// NatsUserRepository is a read-only view over the user directory bucket. The
// bucket is populated and maintained by the account service; the ingest
// pipeline only queries it to attribute calls to sales reps.
type NatsUserRepository struct {
	*NatsBaseRepository[models.User]
	keyBuilder *KeyBuilder
}

// NewNatsUserRepository creates a new NATS KV store repository for users.
func NewNatsUserRepository(kvStore INatsKeyValue) *NatsUserRepository {
	return &NatsUserRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.User](kvStore, "user"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

// Get retrieves a user by UID.
func (r *NatsUserRepository) Get(ctx context.Context, userUID string) (*models.User, error) {
	if userUID == "" {
		return nil, domain.NewValidationError("user UID is required")
	}
	return r.NatsBaseRepository.Get(ctx, r.keyBuilder.EntityKeyEncoded(KeyPrefixUser, userUID))
}

// FindActiveUsersByOrganization returns the active users of an organization.
func (r *NatsUserRepository) FindActiveUsersByOrganization(ctx context.Context, organizationUID string) ([]*models.User, error) {
	if organizationUID == "" {
		return nil, domain.NewValidationError("organization UID is required")
	}

	users, err := r.ListEntitiesEncoded(ctx, fmt.Sprintf("%s/", KeyPrefixUser), r.keyBuilder)
	if err != nil {
		return nil, err
	}

	var active []*models.User
	for _, user := range users {
		if user.OrganizationUID == organizationUID && user.IsActive() {
			active = append(active, user)
		}
	}

	return active, nil
}

// FindUserByEmail finds an active user of an organization by email address.
// Matching is case-insensitive.
func (r *NatsUserRepository) FindUserByEmail(ctx context.Context, organizationUID, email string) (*models.User, error) {
	if email == "" {
		return nil, domain.NewValidationError("email is required")
	}

	users, err := r.FindActiveUsersByOrganization(ctx, organizationUID)
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		if strings.EqualFold(strings.TrimSpace(user.Email), strings.TrimSpace(email)) {
			return user, nil
		}
	}

	return nil, domain.NewNotFoundError(fmt.Sprintf("no active user with email '%s'", email))
}

// FindUserByExternalAccountID finds a user by the account identifier a
// recording platform reports for them.
func (r *NatsUserRepository) FindUserByExternalAccountID(ctx context.Context, externalAccountID string) (*models.User, error) {
	if externalAccountID == "" {
		return nil, domain.NewValidationError("external account ID is required")
	}

	users, err := r.ListEntitiesEncoded(ctx, fmt.Sprintf("%s/", KeyPrefixUser), r.keyBuilder)
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		if user.ExternalAccountID == externalAccountID {
			return user, nil
		}
	}

	return nil, domain.NewNotFoundError(
		fmt.Sprintf("no user with external account ID '%s'", externalAccountID))
}
