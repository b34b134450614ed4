// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/go-viper/mapstructure/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/salesloop/call-ingest-service/internal/domain/models"
	"github.com/salesloop/call-ingest-service/internal/logging"
)

// INatsConn is the NATS connection interface the message builder needs.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder is the builder for the message and sends it to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// sendMessage sends the message to the NATS server.
func (m *MessageBuilder) sendMessage(ctx context.Context, subject string, data []byte) error {
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// SendCallProcess publishes the analysis job for a newly written call record.
func (m *MessageBuilder) SendCallProcess(ctx context.Context, data models.CallProcessMessage) error {
	messageBytes, err := json.Marshal(data)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message into JSON", logging.ErrKey, err)
		return err
	}

	slog.DebugContext(ctx, "publishing call process job",
		"subject", models.CallProcessSubject,
		"call_record_uid", data.CallRecordUID,
		"source", data.Source,
	)

	return m.sendMessage(ctx, models.CallProcessSubject, messageBytes)
}

// SendAnalyticsMirror publishes a msgpack-encoded mirror of a call record for
// the analytics store. The record is flattened into a map keyed by its JSON
// field names since that is what the analytics consumer expects.
func (m *MessageBuilder) SendAnalyticsMirror(ctx context.Context, record *models.CallRecord) error {
	var recordMap map[string]any
	config := mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &recordMap,
	}
	decoder, err := mapstructure.NewDecoder(&config)
	if err != nil {
		slog.ErrorContext(ctx, "error creating decoder", logging.ErrKey, err)
		return err
	}
	if err := decoder.Decode(record); err != nil {
		slog.ErrorContext(ctx, "error decoding call record", logging.ErrKey, err)
		return err
	}

	message := models.CallAnalyticsMessage{
		CallRecordUID:   record.UID,
		OrganizationUID: record.OrganizationUID,
		Platform:        record.Platform,
		Record:          recordMap,
	}

	messageBytes, err := msgpack.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message into msgpack", logging.ErrKey, err)
		return err
	}

	slog.DebugContext(ctx, "publishing analytics mirror",
		"subject", models.CallAnalyticsMirrorSubject,
		"call_record_uid", record.UID,
	)

	return m.sendMessage(ctx, models.CallAnalyticsMirrorSubject, messageBytes)
}
