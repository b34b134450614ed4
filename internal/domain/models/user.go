// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"strings"
	"time"
)

// User statuses in the account directory.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User represents a member of an organization in the account directory.
// The ingest pipeline only ever reads users; it never creates or mutates them.
type User struct {
	UID               string     `json:"uid"`
	OrganizationUID   string     `json:"organization_uid"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Email             string     `json:"email"`
	Status            string     `json:"status"`
	ExternalAccountID string     `json:"external_account_id,omitempty"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// FullName returns the user's display name as "First Last".
func (u *User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// IsActive reports whether the user can be credited with calls.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
