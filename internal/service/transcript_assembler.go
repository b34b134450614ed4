// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"strings"

	"github.com/salesloop/call-ingest-service/internal/domain/models"
	"github.com/salesloop/call-ingest-service/pkg/utils"
)

// Defaults for transcript turns missing speaker or timestamp data.
const (
	UnknownSpeaker   = "Unknown"
	DefaultTimestamp = "00:00:00"
)

// TranscriptAssembler converts speaker-turn sequences or pre-flattened
// plaintext into one ordered transcript string. It is pure: deterministic on
// input, no side effects.
type TranscriptAssembler struct{}

// NewTranscriptAssembler creates a new transcript assembler.
func NewTranscriptAssembler() *TranscriptAssembler {
	return &TranscriptAssembler{}
}

// Assemble flattens an ordered turn sequence into one line per turn formatted
// as "[timestamp] speaker: text". Input order is preserved since platform
// delivery order is assumed chronological.
func (a *TranscriptAssembler) Assemble(turns []models.TranscriptTurn) string {
	if len(turns) == 0 {
		return ""
	}

	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		speaker := utils.CoalesceString(
			strings.TrimSpace(turn.Speaker.DisplayName),
			strings.TrimSpace(turn.Speaker.MatchedInviteeEmail),
			UnknownSpeaker,
		)
		timestamp := utils.CoalesceString(strings.TrimSpace(turn.Timestamp), DefaultTimestamp)

		lines = append(lines, fmt.Sprintf("[%s] %s: %s", timestamp, speaker, turn.Text))
	}

	return strings.Join(lines, "\n")
}

// AssembleOrPlaintext prefers the structured turn sequence and falls back to
// the pre-flattened plaintext when no turns are present.
func (a *TranscriptAssembler) AssembleOrPlaintext(turns []models.TranscriptTurn, plaintext string) string {
	if len(turns) > 0 {
		return a.Assemble(turns)
	}
	return plaintext
}
