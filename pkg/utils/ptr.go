// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

// Package utils contains small helpers shared across the call ingest service.
package utils

import "time"

// TimePtr converts a time to a pointer to a time.
func TimePtr(t time.Time) *time.Time {
	return &t
}

// TimeValue safely dereferences a time pointer, returning the zero time if nil.
func TimeValue(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Time{}
}
