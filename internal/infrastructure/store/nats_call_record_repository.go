// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/salesloop/call-ingest-service/internal/domain"
	"github.com/salesloop/call-ingest-service/internal/domain/models"
	"github.com/salesloop/call-ingest-service/internal/logging"
	"github.com/salesloop/call-ingest-service/pkg/concurrent"
)

// NatsCallRecordRepository is the NATS KV store repository for canonical call
// records. Alongside each record it maintains two kinds of index entries in
// the same bucket:
//
//   - index/external-id/{org}/{externalID} -> record UID, one per identifier
//     the record has ever been reported under. These are created with
//     first-writer-wins semantics, so two concurrent writes of the same
//     external call cannot both succeed.
//   - index/sales-rep/{org}/{rep}/{uid} -> record UID, used to enumerate the
//     records considered for composite-key duplicate matching.
type NatsCallRecordRepository struct {
	*NatsBaseRepository[models.CallRecord]
	keyBuilder *KeyBuilder
}

// NewNatsCallRecordRepository creates a new NATS KV store repository for call records.
func NewNatsCallRecordRepository(kvStore INatsKeyValue) *NatsCallRecordRepository {
	return &NatsCallRecordRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.CallRecord](kvStore, "call record"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

func (r *NatsCallRecordRepository) externalIDIndexKey(organizationUID, externalID string) string {
	return r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexExternalID, organizationUID, externalID)
}

func (r *NatsCallRecordRepository) salesRepIndexKey(organizationUID, salesRepUID, recordUID string) string {
	return r.keyBuilder.IndexKeyEncoded(KeyPrefixIndexSalesRep, organizationUID, salesRepUID, recordUID)
}

// Create writes a new call record and its index entries. The external-id index
// entries are claimed before the record itself: if any identifier is already
// claimed, the claims made so far are rolled back and a Conflict error is
// returned, so the caller can treat the delivery as a duplicate.
func (r *NatsCallRecordRepository) Create(ctx context.Context, record *models.CallRecord) error {
	if record.UID == "" || record.OrganizationUID == "" {
		return domain.NewValidationError("call record UID and organization UID are required")
	}

	var claimed []string
	for _, externalID := range record.AllExternalIDs() {
		indexKey := r.externalIDIndexKey(record.OrganizationUID, externalID)
		if err := r.CreateIndex(ctx, indexKey, record.UID); err != nil {
			for _, key := range claimed {
				if delErr := r.DeleteIndex(ctx, key); delErr != nil {
					slog.WarnContext(ctx, "failed to roll back external ID index claim",
						logging.ErrKey, delErr, "index_key", key)
				}
			}
			if domain.GetErrorType(err) == domain.ErrorTypeConflict {
				return domain.NewConflictError(
					fmt.Sprintf("external ID '%s' is already claimed by another call record", externalID), err)
			}
			return err
		}
		claimed = append(claimed, indexKey)
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixCallRecord, record.UID)
	if err := r.NatsBaseRepository.Create(ctx, key, record); err != nil {
		for _, indexKey := range claimed {
			if delErr := r.DeleteIndex(ctx, indexKey); delErr != nil {
				slog.WarnContext(ctx, "failed to roll back external ID index claim",
					logging.ErrKey, delErr, "index_key", indexKey)
			}
		}
		return err
	}

	if record.SalesRepUID != "" {
		repIndexKey := r.salesRepIndexKey(record.OrganizationUID, record.SalesRepUID, record.UID)
		if err := r.CreateIndex(ctx, repIndexKey, record.UID); err != nil &&
			domain.GetErrorType(err) != domain.ErrorTypeConflict {
			slog.WarnContext(ctx, "failed to create sales rep index for call record",
				logging.ErrKey, err, "call_record_uid", record.UID)
		}
	}

	return nil
}

// Exists checks whether a call record exists.
func (r *NatsCallRecordRepository) Exists(ctx context.Context, callRecordUID string) (bool, error) {
	return r.NatsBaseRepository.Exists(ctx, r.keyBuilder.EntityKeyEncoded(KeyPrefixCallRecord, callRecordUID))
}

// Get retrieves a call record by UID.
func (r *NatsCallRecordRepository) Get(ctx context.Context, callRecordUID string) (*models.CallRecord, error) {
	return r.NatsBaseRepository.Get(ctx, r.keyBuilder.EntityKeyEncoded(KeyPrefixCallRecord, callRecordUID))
}

// GetWithRevision retrieves a call record with its KV revision.
func (r *NatsCallRecordRepository) GetWithRevision(ctx context.Context, callRecordUID string) (*models.CallRecord, uint64, error) {
	return r.NatsBaseRepository.GetWithRevision(ctx, r.keyBuilder.EntityKeyEncoded(KeyPrefixCallRecord, callRecordUID))
}

// Update rewrites a call record with optimistic concurrency control and makes
// sure every external identifier the record now carries is indexed. Existing
// index claims are left untouched.
func (r *NatsCallRecordRepository) Update(ctx context.Context, record *models.CallRecord, revision uint64) error {
	if record.UID == "" {
		return domain.NewValidationError("call record UID is required")
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixCallRecord, record.UID)
	if err := r.NatsBaseRepository.Update(ctx, key, record, revision); err != nil {
		return err
	}

	for _, externalID := range record.AllExternalIDs() {
		indexKey := r.externalIDIndexKey(record.OrganizationUID, externalID)
		if err := r.CreateIndex(ctx, indexKey, record.UID); err != nil &&
			domain.GetErrorType(err) != domain.ErrorTypeConflict {
			slog.WarnContext(ctx, "failed to index external ID for call record",
				logging.ErrKey, err, "call_record_uid", record.UID)
		}
	}

	return nil
}

// Delete removes a call record and its index entries.
func (r *NatsCallRecordRepository) Delete(ctx context.Context, callRecordUID string, revision uint64) error {
	record, err := r.Get(ctx, callRecordUID)
	if err != nil {
		return err
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixCallRecord, callRecordUID)
	if err := r.NatsBaseRepository.Delete(ctx, key, revision); err != nil {
		return err
	}

	for _, externalID := range record.AllExternalIDs() {
		indexKey := r.externalIDIndexKey(record.OrganizationUID, externalID)
		if delErr := r.DeleteIndex(ctx, indexKey); delErr != nil {
			slog.WarnContext(ctx, "failed to delete external ID index for call record",
				logging.ErrKey, delErr, "call_record_uid", callRecordUID)
		}
	}
	if record.SalesRepUID != "" {
		repIndexKey := r.salesRepIndexKey(record.OrganizationUID, record.SalesRepUID, callRecordUID)
		if delErr := r.DeleteIndex(ctx, repIndexKey); delErr != nil {
			slog.WarnContext(ctx, "failed to delete sales rep index for call record",
				logging.ErrKey, delErr, "call_record_uid", callRecordUID)
		}
	}

	return nil
}

// FindByExternalID looks up a call record by any identifier it has ever been
// reported under, across all platforms of the organization.
func (r *NatsCallRecordRepository) FindByExternalID(ctx context.Context, organizationUID, externalID string) (*models.CallRecord, error) {
	if organizationUID == "" || externalID == "" {
		return nil, domain.NewValidationError("organization UID and external ID are required")
	}

	indexKey := r.externalIDIndexKey(organizationUID, externalID)
	recordUID, err := r.GetIndex(ctx, indexKey)
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, recordUID)
}

// ListByOrganizationAndRep returns all call records attributed to one sales
// rep within an organization. Records are fetched concurrently since the index
// scan can surface many keys.
func (r *NatsCallRecordRepository) ListByOrganizationAndRep(ctx context.Context, organizationUID, salesRepUID string) ([]*models.CallRecord, error) {
	if organizationUID == "" || salesRepUID == "" {
		return nil, domain.NewValidationError("organization UID and sales rep UID are required")
	}

	keys, err := r.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	indexPrefix := fmt.Sprintf("/%s/%s/%s/%s/", KeyPrefixIndex, KeyPrefixIndexSalesRep, organizationUID, salesRepUID)

	var recordUIDs []string
	for _, encodedKey := range keys {
		decodedKey, err := r.keyBuilder.DecodeKey(encodedKey)
		if err != nil {
			continue
		}
		if strings.HasPrefix(decodedKey, indexPrefix) {
			recordUIDs = append(recordUIDs, strings.TrimPrefix(decodedKey, indexPrefix))
		}
	}

	var (
		mu      sync.Mutex
		records []*models.CallRecord
	)
	pool := concurrent.NewWorkerPool(10)
	tasks := make([]func() error, 0, len(recordUIDs))
	for _, recordUID := range recordUIDs {
		tasks = append(tasks, func() error {
			record, err := r.Get(ctx, recordUID)
			if err != nil {
				// Index entries can briefly outlive their record.
				slog.WarnContext(ctx, "failed to get call record from index, skipping",
					logging.ErrKey, err, "call_record_uid", recordUID)
				return nil
			}
			mu.Lock()
			records = append(records, record)
			mu.Unlock()
			return nil
		})
	}
	if err := pool.Run(ctx, tasks...); err != nil {
		return nil, err
	}

	return records, nil
}
