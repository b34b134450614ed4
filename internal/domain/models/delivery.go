// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package models

// Terminal states for one unit of a webhook delivery.
const (
	UnitStatusSuccess = "success"
	UnitStatusSkipped = "skipped"
	UnitStatusError   = "error"
)

// UnitResult is the terminal outcome of one call unit within a delivery.
type UnitResult struct {
	Index         int    `json:"index"`
	Status        string `json:"status"`
	CallRecordUID string `json:"call_record_uid,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Error         string `json:"error,omitempty"`
}

// DeliverySummary is the per-unit result summary returned for a webhook
// delivery. The delivery as a whole is acknowledged even when some units
// failed; the counts let the sender decide whether to resend.
type DeliverySummary struct {
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Skipped   int          `json:"skipped"`
	Failed    int          `json:"failed"`
	Results   []UnitResult `json:"results"`
}

// Add records one unit outcome in the summary.
func (s *DeliverySummary) Add(result UnitResult) {
	s.Total++
	switch result.Status {
	case UnitStatusSuccess:
		s.Succeeded++
	case UnitStatusSkipped:
		s.Skipped++
	case UnitStatusError:
		s.Failed++
	}
	s.Results = append(s.Results, result)
}
