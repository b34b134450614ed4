// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signBody(secret string, body []byte, timestamp string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(fmt.Sprintf("v0:%s:%s", timestamp, string(body))))
	return "v0=" + hex.EncodeToString(h.Sum(nil))
}

func TestHMACValidatorValidateSignature(t *testing.T) {
	secret := "test-secret"
	body := []byte(`{"recording_id": 555}`)
	now := strconv.FormatInt(time.Now().Unix(), 10)

	validator := NewHMACValidator(secret)

	t.Run("valid signature", func(t *testing.T) {
		err := validator.ValidateSignature(body, signBody(secret, body, now), now)
		assert.NoError(t, err)
	})

	t.Run("signature without v0 prefix", func(t *testing.T) {
		sig := signBody(secret, body, now)
		err := validator.ValidateSignature(body, sig[len("v0="):], now)
		assert.NoError(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		err := validator.ValidateSignature(body, signBody("other-secret", body, now), now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid webhook signature")
	})

	t.Run("tampered body", func(t *testing.T) {
		err := validator.ValidateSignature([]byte(`{"recording_id": 556}`), signBody(secret, body, now), now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid webhook signature")
	})

	t.Run("stale timestamp", func(t *testing.T) {
		old := strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10)
		err := validator.ValidateSignature(body, signBody(secret, body, old), old)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timestamp too old")
	})

	t.Run("non-numeric timestamp", func(t *testing.T) {
		err := validator.ValidateSignature(body, signBody(secret, body, "soon"), "soon")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid timestamp format")
	})

	t.Run("missing signature", func(t *testing.T) {
		err := validator.ValidateSignature(body, "", now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing webhook signature")
	})

	t.Run("missing timestamp", func(t *testing.T) {
		err := validator.ValidateSignature(body, signBody(secret, body, now), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing webhook timestamp")
	})

	t.Run("unconfigured secret", func(t *testing.T) {
		unconfigured := NewHMACValidator("")
		err := unconfigured.ValidateSignature(body, signBody(secret, body, now), now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not configured")
	})
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterValidator("fathom", NewHMACValidator("secret-a"))

	assert.True(t, registry.IsSupported("fathom"))
	assert.False(t, registry.IsSupported("unknown"))

	validator, err := registry.GetValidator("fathom")
	require.NoError(t, err)
	assert.Equal(t, "secret-a", validator.GetSecretToken())

	_, err = registry.GetValidator("unknown")
	assert.Error(t, err)
}
