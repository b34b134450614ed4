// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HMACValidator handles validation of webhook delivery signatures. All the
// recording platforms we ingest from sign deliveries the same way: an
// HMAC-SHA256 over "v0:timestamp:body" with a per-platform shared secret.
type HMACValidator struct {
	secretToken string
}

// NewHMACValidator creates a new webhook signature validator
func NewHMACValidator(secretToken string) *HMACValidator {
	return &HMACValidator{
		secretToken: secretToken,
	}
}

// ValidateSignature validates the webhook delivery signature
func (v *HMACValidator) ValidateSignature(body []byte, signature, timestamp string) error {
	if v.secretToken == "" {
		return fmt.Errorf("webhook secret token not configured")
	}

	if signature == "" {
		return fmt.Errorf("missing webhook signature")
	}

	if timestamp == "" {
		return fmt.Errorf("missing webhook timestamp")
	}

	// Parse timestamp for replay protection
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp format: %w", err)
	}

	// Check if request is too old (5 minutes tolerance)
	now := time.Now().Unix()
	if now-ts > 300 {
		return fmt.Errorf("request timestamp too old")
	}

	// Create the message to sign: v0:timestamp:body
	message := fmt.Sprintf("v0:%s:%s", timestamp, string(body))

	// Calculate HMAC-SHA256
	h := hmac.New(sha256.New, []byte(v.secretToken))
	h.Write([]byte(message))
	expectedSignature := hex.EncodeToString(h.Sum(nil))

	// Extract signature from header (remove "v0=" prefix if present)
	providedSignature := strings.TrimPrefix(signature, "v0=")

	// Compare signatures using constant-time comparison
	if !hmac.Equal([]byte(providedSignature), []byte(expectedSignature)) {
		return fmt.Errorf("invalid webhook signature")
	}

	return nil
}

// GetSecretToken returns the configured secret token
func (v *HMACValidator) GetSecretToken() string {
	return v.secretToken
}
