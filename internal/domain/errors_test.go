// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{
			name: "validation error",
			err:  NewValidationError("bad input"),
			want: ErrorTypeValidation,
		},
		{
			name: "not found error",
			err:  NewNotFoundError("missing"),
			want: ErrorTypeNotFound,
		},
		{
			name: "conflict error",
			err:  NewConflictError("already exists"),
			want: ErrorTypeConflict,
		},
		{
			name: "unavailable error",
			err:  NewUnavailableError("down"),
			want: ErrorTypeUnavailable,
		},
		{
			name: "wrapped domain error",
			err:  fmt.Errorf("outer: %w", NewConflictError("already exists")),
			want: ErrorTypeConflict,
		},
		{
			name: "plain error defaults to internal",
			err:  errors.New("boom"),
			want: ErrorTypeInternal,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GetErrorType(tc.err))
		})
	}
}

func TestDomainErrorMessage(t *testing.T) {
	underlying := errors.New("key exists")
	err := NewConflictError("record already written", underlying)

	assert.Equal(t, "record already written: key exists", err.Error())
	assert.ErrorIs(t, err, underlying)

	bare := NewNotFoundError("missing")
	assert.Equal(t, "missing", bare.Error())
}
