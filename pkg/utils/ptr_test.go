// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimePtr(t *testing.T) {
	now := time.Now()
	ptr := TimePtr(now)
	require.NotNil(t, ptr)
	assert.True(t, now.Equal(*ptr))
}

func TestTimeValue(t *testing.T) {
	now := time.Now()
	assert.True(t, now.Equal(TimeValue(&now)))
	assert.True(t, TimeValue(nil).IsZero())
}
