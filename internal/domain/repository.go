// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/salesloop/call-ingest-service/internal/domain/models"
)

// CallRecordRepository is the storage interface for canonical call records.
//
// Create must be insert-if-absent: it fails with a Conflict error when any of
// the record's external identifiers is already indexed for the organization.
// That storage-level uniqueness is the correctness floor that closes the
// duplicate check-then-write race across concurrent deliveries.
type CallRecordRepository interface {
	Create(ctx context.Context, record *models.CallRecord) error
	Exists(ctx context.Context, callRecordUID string) (bool, error)
	Get(ctx context.Context, callRecordUID string) (*models.CallRecord, error)
	GetWithRevision(ctx context.Context, callRecordUID string) (*models.CallRecord, uint64, error)
	Update(ctx context.Context, record *models.CallRecord, revision uint64) error
	Delete(ctx context.Context, callRecordUID string, revision uint64) error

	// FindByExternalID looks up a record by any identifier it has ever been
	// reported under, across all platforms of the organization.
	FindByExternalID(ctx context.Context, organizationUID, externalID string) (*models.CallRecord, error)

	// ListByOrganizationAndRep returns the records the duplicate detector
	// evaluates for composite-key matches.
	ListByOrganizationAndRep(ctx context.Context, organizationUID, salesRepUID string) ([]*models.CallRecord, error)
}

// UserRepository is the read-only query surface over the identity/account
// directory. The ingest pipeline never creates or mutates users.
type UserRepository interface {
	Get(ctx context.Context, userUID string) (*models.User, error)
	FindActiveUsersByOrganization(ctx context.Context, organizationUID string) ([]*models.User, error)
	FindUserByEmail(ctx context.Context, organizationUID, email string) (*models.User, error)
	FindUserByExternalAccountID(ctx context.Context, externalAccountID string) (*models.User, error)
}
