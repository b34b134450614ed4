// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBuilderEntityKey(t *testing.T) {
	kb := NewKeyBuilder("")

	assert.Equal(t, "call-record/uid-123", kb.EntityKey(KeyPrefixCallRecord, "uid-123"))
	assert.Equal(t, "user/uid-456", kb.EntityKey(KeyPrefixUser, "uid-456"))
}

func TestKeyBuilderIndexKey(t *testing.T) {
	kb := NewKeyBuilder("")

	assert.Equal(t, "index/external-id/org-1/ext-9", kb.IndexKey(KeyPrefixIndexExternalID, "org-1", "ext-9"))
	assert.Equal(t, "index/sales-rep/org-1/rep-1/rec-1", kb.IndexKey(KeyPrefixIndexSalesRep, "org-1", "rep-1", "rec-1"))
}

func TestKeyBuilderEncodeDecodeRoundTrip(t *testing.T) {
	kb := NewKeyBuilder("")

	tests := []struct {
		name string
		key  string
	}{
		{
			name: "entity key",
			key:  "call-record/uid-123",
		},
		{
			name: "index key with special characters",
			key:  "index/external-id/org-1/ext:9/with.dots",
		},
		{
			name: "key with spaces",
			key:  "call-record/some key with spaces",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := kb.EncodeKey(tc.key)
			require.NoError(t, err)

			decoded, err := kb.DecodeKey(encoded)
			require.NoError(t, err)
			assert.Equal(t, "/"+tc.key, decoded)
		})
	}
}

func TestKeyBuilderEncodeKeyPreservesWildcards(t *testing.T) {
	kb := NewKeyBuilder("")

	encoded, err := kb.EncodeKey("index/external-id/>")
	require.NoError(t, err)
	assert.Contains(t, encoded, ">")
}

func TestKeyBuilderEntityKeyEncoded(t *testing.T) {
	kb := NewKeyBuilder("")

	encoded := kb.EntityKeyEncoded(KeyPrefixCallRecord, "uid-123")
	decoded, err := kb.DecodeKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, "/call-record/uid-123", decoded)
}
