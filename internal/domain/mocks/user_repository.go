// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/salesloop/call-ingest-service/internal/domain/models"
)

// MockUserRepository is a mock implementation of UserRepository for use in
// tests.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Get(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindActiveUsersByOrganization(ctx context.Context, organizationUID string) ([]*models.User, error) {
	args := m.Called(ctx, organizationUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, organizationUID, email string) (*models.User, error) {
	args := m.Called(ctx, organizationUID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByExternalAccountID(ctx context.Context, externalAccountID string) (*models.User, error) {
	args := m.Called(ctx, externalAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
