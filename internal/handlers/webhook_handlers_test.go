// Copyright Salesloop, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/salesloop/call-ingest-service/internal/domain"
	"github.com/salesloop/call-ingest-service/internal/domain/mocks"
	"github.com/salesloop/call-ingest-service/internal/domain/models"
	"github.com/salesloop/call-ingest-service/internal/infrastructure/webhook"
	"github.com/salesloop/call-ingest-service/internal/service"
	"github.com/salesloop/call-ingest-service/pkg/constants"
)

type handlerFixture struct {
	handler        *CallWebhookHandler
	userRepo       *mocks.MockUserRepository
	callRecordRepo *mocks.MockCallRecordRepository
	messageBuilder *mocks.MockMessageBuilder
	mux            *http.ServeMux
}

func setupWebhookHandlerForTesting(secrets map[string]string) *handlerFixture {
	userRepo := &mocks.MockUserRepository{}
	callRecordRepo := &mocks.MockCallRecordRepository{}
	messageBuilder := &mocks.MockMessageBuilder{}

	assembler := service.NewTranscriptAssembler()
	ingestService := service.NewCallIngestService(
		userRepo,
		callRecordRepo,
		messageBuilder,
		service.NewPayloadNormalizer(assembler),
		service.NewSalesRepResolver(userRepo),
		service.NewDuplicateDetector(callRecordRepo),
	)

	registry := webhook.NewRegistry()
	for platform, secret := range secrets {
		registry.RegisterValidator(platform, webhook.NewHMACValidator(secret))
	}

	handler := NewCallWebhookHandler(ingestService, registry)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhooks/{platform}/{ownerIdentifier}", handler.HandleWebhook)

	return &handlerFixture{
		handler:        handler,
		userRepo:       userRepo,
		callRecordRepo: callRecordRepo,
		messageBuilder: messageBuilder,
		mux:            mux,
	}
}

func (f *handlerFixture) expectKnownOwner() *models.User {
	owner := &models.User{
		UID:             "owner-1",
		OrganizationUID: "org-1",
		Email:           "jane@acme.com",
		Status:          models.UserStatusActive,
	}
	f.userRepo.On("Get", mock.Anything, "owner-1").Return(owner, nil)
	f.userRepo.On("FindActiveUsersByOrganization", mock.Anything, "org-1").
		Return([]*models.User{owner}, nil)
	return owner
}

func (f *handlerFixture) expectSuccessfulWrite() {
	f.callRecordRepo.On("FindByExternalID", mock.Anything, "org-1", mock.Anything).
		Return(nil, domain.NewNotFoundError("call record not found"))
	f.callRecordRepo.On("ListByOrganizationAndRep", mock.Anything, "org-1", mock.Anything).
		Return([]*models.CallRecord{}, nil)
	f.callRecordRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.messageBuilder.On("SendCallProcess", mock.Anything, mock.Anything).Return(nil)
	f.messageBuilder.On("SendAnalyticsMirror", mock.Anything, mock.Anything).Return(nil)
}

func signWebhookBody(secret, body, timestamp string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(fmt.Sprintf("v0:%s:%s", timestamp, body)))
	return "v0=" + hex.EncodeToString(h.Sum(nil))
}

const handlerTestBody = `{"recording_id": 555, "meeting": {"title": "Discovery call"}}`

func TestHandleWebhookSuccess(t *testing.T) {
	f := setupWebhookHandlerForTesting(map[string]string{"fathom": ""})
	f.expectKnownOwner()
	f.expectSuccessfulWrite()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/fathom/owner-1", strings.NewReader(handlerTestBody))
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var summary models.DeliverySummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, models.UnitStatusSuccess, summary.Results[0].Status)
	assert.NotEmpty(t, summary.Results[0].CallRecordUID)
}

func TestHandleWebhookSignedDelivery(t *testing.T) {
	f := setupWebhookHandlerForTesting(map[string]string{"fathom": "test-secret"})
	f.expectKnownOwner()
	f.expectSuccessfulWrite()

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/fathom/owner-1", strings.NewReader(handlerTestBody))
	req.Header.Set(constants.WebhookSignatureHeader, signWebhookBody("test-secret", handlerTestBody, timestamp))
	req.Header.Set(constants.WebhookTimestampHeader, timestamp)

	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleWebhookInvalidSignature(t *testing.T) {
	f := setupWebhookHandlerForTesting(map[string]string{"fathom": "test-secret"})

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/fathom/owner-1", strings.NewReader(handlerTestBody))
	req.Header.Set(constants.WebhookSignatureHeader, signWebhookBody("wrong-secret", handlerTestBody, timestamp))
	req.Header.Set(constants.WebhookTimestampHeader, timestamp)

	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// Nothing past the signature check runs.
	f.userRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestHandleWebhookUnsupportedPlatform(t *testing.T) {
	f := setupWebhookHandlerForTesting(map[string]string{"fathom": ""})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/otter/owner-1", strings.NewReader(handlerTestBody))
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleWebhookUnknownOwner(t *testing.T) {
	f := setupWebhookHandlerForTesting(map[string]string{"fathom": ""})
	f.userRepo.On("Get", mock.Anything, "nobody").
		Return(nil, domain.NewNotFoundError("user not found"))
	f.userRepo.On("FindUserByExternalAccountID", mock.Anything, "nobody").
		Return(nil, domain.NewNotFoundError("user not found"))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/fathom/nobody", strings.NewReader(handlerTestBody))
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleWebhookOwnerLookupUnavailable(t *testing.T) {
	f := setupWebhookHandlerForTesting(map[string]string{"fathom": ""})
	f.userRepo.On("Get", mock.Anything, "owner-1").
		Return(nil, domain.NewUnavailableError("nats unavailable"))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/fathom/owner-1", strings.NewReader(handlerTestBody))
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleWebhookUnparseableBody(t *testing.T) {
	f := setupWebhookHandlerForTesting(map[string]string{"fathom": ""})
	f.expectKnownOwner()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/fathom/owner-1", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleWebhookPartialFailureStillReturns200(t *testing.T) {
	f := setupWebhookHandlerForTesting(map[string]string{"fathom": ""})
	f.expectKnownOwner()
	f.expectSuccessfulWrite()

	body := `[{"recording_id": 555, "meeting": {"title": "First"}}, {}]`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/fathom/owner-1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var summary models.DeliverySummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
}

func TestHandlerReady(t *testing.T) {
	f := setupWebhookHandlerForTesting(map[string]string{"fathom": ""})
	assert.True(t, f.handler.HandlerReady())

	var empty CallWebhookHandler
	assert.False(t, empty.HandlerReady())
}
