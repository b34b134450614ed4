// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/salesloop/call-ingest-service/internal/domain/models"
)

// MockMessageBuilder is a mock implementation of MessageBuilder for use in
// tests.
type MockMessageBuilder struct {
	mock.Mock
}

func (m *MockMessageBuilder) SendCallProcess(ctx context.Context, data models.CallProcessMessage) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendAnalyticsMirror(ctx context.Context, record *models.CallRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}
