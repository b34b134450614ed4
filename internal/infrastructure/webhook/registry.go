// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package webhook

import (
	"fmt"
	"sync"

	"github.com/salesloop/call-ingest-service/internal/domain"
)

// Registry implements domain.WebhookRegistry
type Registry struct {
	validators map[string]domain.WebhookValidator
	mu         sync.RWMutex
}

// NewRegistry creates a new webhook registry
func NewRegistry() *Registry {
	return &Registry{
		validators: make(map[string]domain.WebhookValidator),
	}
}

// IsSupported reports whether deliveries from the platform are accepted
func (r *Registry) IsSupported(platform string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.validators[platform]
	return exists
}

// GetValidator returns the signature validator for the specified platform
func (r *Registry) GetValidator(platform string) (domain.WebhookValidator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	validator, exists := r.validators[platform]
	if !exists {
		return nil, fmt.Errorf("webhook validator for platform %s not found", platform)
	}

	return validator, nil
}

// RegisterValidator registers a signature validator for a platform
func (r *Registry) RegisterValidator(platform string, validator domain.WebhookValidator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.validators[platform] = validator
}
