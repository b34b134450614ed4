// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package domain

// WebhookValidator validates webhook delivery signatures for one platform.
type WebhookValidator interface {
	ValidateSignature(body []byte, signature, timestamp string) error
	GetSecretToken() string
}

// WebhookRegistry resolves the validator for a source platform and reports
// which platforms the service accepts deliveries from.
type WebhookRegistry interface {
	IsSupported(platform string) bool
	GetValidator(platform string) (WebhookValidator, error)
}
