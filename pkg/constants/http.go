// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package constants

// Constants for the HTTP request headers
const (
	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"

	// WebhookSignatureHeader is the header name for the webhook HMAC signature
	WebhookSignatureHeader string = "x-webhook-signature"

	// WebhookTimestampHeader is the header name for the webhook signature timestamp
	WebhookTimestampHeader string = "x-webhook-timestamp"
)

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"
