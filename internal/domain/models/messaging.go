// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

// NATS subjects that the call ingest service sends messages about.
const (
	// CallProcessSubject is the subject for the asynchronous call analysis job.
	// The subject is of the form: call.process
	CallProcessSubject = "call.process"

	// CallAnalyticsMirrorSubject is the subject for the best-effort analytics
	// mirror of canonical call records.
	// The subject is of the form: call.analytics.mirror
	CallAnalyticsMirrorSubject = "call.analytics.mirror"
)

// CallProcessMessage is the fire-and-forget job message emitted exactly once
// per newly written call record. It is never re-emitted on duplicate
// detection.
type CallProcessMessage struct {
	CallRecordUID string `json:"callRecordId"`
	Source        string `json:"source"`
}

// CallAnalyticsMessage is the msgpack-encoded mirror of a canonical call
// record sent to the analytics store. Delivery is best-effort; failures never
// affect ingestion outcome.
type CallAnalyticsMessage struct {
	CallRecordUID   string         `msgpack:"call_record_uid" json:"call_record_uid"`
	OrganizationUID string         `msgpack:"organization_uid" json:"organization_uid"`
	Platform        string         `msgpack:"platform" json:"platform"`
	Record          map[string]any `msgpack:"record" json:"record"`
}
