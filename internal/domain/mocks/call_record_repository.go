// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/salesloop/call-ingest-service/internal/domain/models"
)

// MockCallRecordRepository is a mock implementation of CallRecordRepository
// for use in tests.
type MockCallRecordRepository struct {
	mock.Mock
}

func (m *MockCallRecordRepository) Create(ctx context.Context, record *models.CallRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockCallRecordRepository) Exists(ctx context.Context, callRecordUID string) (bool, error) {
	args := m.Called(ctx, callRecordUID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCallRecordRepository) Get(ctx context.Context, callRecordUID string) (*models.CallRecord, error) {
	args := m.Called(ctx, callRecordUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CallRecord), args.Error(1)
}

func (m *MockCallRecordRepository) GetWithRevision(ctx context.Context, callRecordUID string) (*models.CallRecord, uint64, error) {
	args := m.Called(ctx, callRecordUID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(uint64), args.Error(2)
	}
	return args.Get(0).(*models.CallRecord), args.Get(1).(uint64), args.Error(2)
}

func (m *MockCallRecordRepository) Update(ctx context.Context, record *models.CallRecord, revision uint64) error {
	args := m.Called(ctx, record, revision)
	return args.Error(0)
}

func (m *MockCallRecordRepository) Delete(ctx context.Context, callRecordUID string, revision uint64) error {
	args := m.Called(ctx, callRecordUID, revision)
	return args.Error(0)
}

func (m *MockCallRecordRepository) FindByExternalID(ctx context.Context, organizationUID, externalID string) (*models.CallRecord, error) {
	args := m.Called(ctx, organizationUID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CallRecord), args.Error(1)
}

func (m *MockCallRecordRepository) ListByOrganizationAndRep(ctx context.Context, organizationUID, salesRepUID string) ([]*models.CallRecord, error) {
	args := m.Called(ctx, organizationUID, salesRepUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CallRecord), args.Error(1)
}
