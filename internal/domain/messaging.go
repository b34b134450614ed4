// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/salesloop/call-ingest-service/internal/domain/models"
)

// CallJobSender publishes the asynchronous analysis job for a newly written
// call record. Exactly one publish per write; never on duplicate paths.
type CallJobSender interface {
	SendCallProcess(ctx context.Context, data models.CallProcessMessage) error
}

// AnalyticsMirrorSender mirrors canonical records into the external analytics
// store. Best-effort: callers must never let a mirror failure affect the
// ingestion outcome.
type AnalyticsMirrorSender interface {
	SendAnalyticsMirror(ctx context.Context, record *models.CallRecord) error
}

// MessageBuilder composes all outbound messaging capabilities of the service.
type MessageBuilder interface {
	CallJobSender
	AnalyticsMirrorSender
}
