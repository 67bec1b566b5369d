// internal/server/server_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"childcare-assistant/internal/common/config"
	apperrors "childcare-assistant/internal/common/errors"
	"childcare-assistant/internal/common/logger"
	"childcare-assistant/internal/models"
)

type fakeClassifier struct {
	intent models.Intent
}

func (f *fakeClassifier) Classify(ctx context.Context, utterance string, conv models.ConversationContext) models.Intent {
	return f.intent
}

type fakeResponder struct {
	blocks []models.Block
	err    error
}

func (f *fakeResponder) Build(ctx context.Context, intent models.Intent, conv models.ConversationContext, userID string) ([]models.Block, error) {
	return f.blocks, f.err
}

type fakeContexts struct {
	recorded int
}

func (f *fakeContexts) Load(ctx context.Context, conversationID string) models.ConversationContext {
	return models.ConversationContext{ConversationID: conversationID}
}

func (f *fakeContexts) Record(ctx context.Context, conv models.ConversationContext, intent models.Intent, blocks []models.Block) error {
	f.recorded++
	return nil
}

type fakeEngine struct {
	result     *models.ActionResult
	confirmErr error
	cancelErr  error
	lastUser   string
}

func (f *fakeEngine) Confirm(ctx context.Context, intentID, requestingUserID string) (*models.ActionResult, error) {
	f.lastUser = requestingUserID
	return f.result, f.confirmErr
}

func (f *fakeEngine) Cancel(ctx context.Context, intentID, requestingUserID string) error {
	f.lastUser = requestingUserID
	return f.cancelErr
}

func newTestServer(t *testing.T, classify Classifier, responder Responder, engine ActionEngine) (*Server, *fakeContexts) {
	t.Helper()
	contexts := &fakeContexts{}
	cfg := &config.Config{}
	cfg.App.Version = "test"
	return New(cfg, classify, responder, contexts, engine, nil, logger.NewTestLogger(t)), contexts
}

func doRequest(s *Server, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleChat_Success(t *testing.T) {
	classify := &fakeClassifier{intent: models.Intent{Type: models.IntentSearch, Confidence: 0.92}}
	responder := &fakeResponder{blocks: []models.Block{{Type: models.BlockText, Text: "결과입니다"}}}
	s, contexts := newTestServer(t, classify, responder, &fakeEngine{})

	rec := doRequest(s, http.MethodPost, "/api/v1/chat", "user-1", map[string]string{
		"conversationId": "conv-1",
		"message":        "어린이집 찾아줘",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.IntentSearch, resp.Intent.Type)
	assert.InDelta(t, 0.92, resp.Intent.Confidence, 0.001)
	assert.Len(t, resp.Blocks, 1)
	assert.Equal(t, 1, contexts.recorded)
}

func TestHandleChat_MissingUser(t *testing.T) {
	s, _ := newTestServer(t, &fakeClassifier{}, &fakeResponder{}, &fakeEngine{})

	rec := doRequest(s, http.MethodPost, "/api/v1/chat", "", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleChat_MissingMessage(t *testing.T) {
	s, _ := newTestServer(t, &fakeClassifier{}, &fakeResponder{}, &fakeEngine{})

	rec := doRequest(s, http.MethodPost, "/api/v1/chat", "user-1", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChat_StagingFailure(t *testing.T) {
	classify := &fakeClassifier{intent: models.Intent{Type: models.IntentWaitlistJoin, Confidence: 0.9}}
	responder := &fakeResponder{err: apperrors.NewStoreUnavailableError(assert.AnError)}
	s, _ := newTestServer(t, classify, responder, &fakeEngine{})

	rec := doRequest(s, http.MethodPost, "/api/v1/chat", "user-1", map[string]string{"message": "대기 신청해줘"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleConfirm_Success(t *testing.T) {
	engine := &fakeEngine{result: &models.ActionResult{Message: "완료", Data: map[string]interface{}{"position": 3}}}
	s, _ := newTestServer(t, &fakeClassifier{}, &fakeResponder{}, engine)

	rec := doRequest(s, http.MethodPost, "/api/v1/actions/abc-123/confirm", "user-1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", engine.lastUser)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "executed", resp["status"])
	assert.Equal(t, "완료", resp["message"])
}

func TestHandleConfirm_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "not found", err: apperrors.NewActionNotFoundError("abc"), wantStatus: http.StatusNotFound, wantCode: "ACTION_NOT_FOUND"},
		{name: "forbidden", err: apperrors.NewActionForbiddenError("abc"), wantStatus: http.StatusForbidden, wantCode: "ACTION_FORBIDDEN"},
		{name: "expired", err: apperrors.NewActionExpiredError("abc", string(models.StatusExpired)), wantStatus: http.StatusGone, wantCode: "ACTION_EXPIRED"},
		{name: "executor failed", err: apperrors.NewExecutorFailedError("abc", assert.AnError), wantStatus: http.StatusUnprocessableEntity, wantCode: "EXECUTOR_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{confirmErr: tt.err}
			s, _ := newTestServer(t, &fakeClassifier{}, &fakeResponder{}, engine)

			rec := doRequest(s, http.MethodPost, "/api/v1/actions/abc/confirm", "user-1", nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp map[string]map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp["error"]["code"])
		})
	}
}

func TestHandleConfirm_MissingUser(t *testing.T) {
	s, _ := newTestServer(t, &fakeClassifier{}, &fakeResponder{}, &fakeEngine{})

	rec := doRequest(s, http.MethodPost, "/api/v1/actions/abc/confirm", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleCancel(t *testing.T) {
	engine := &fakeEngine{}
	s, _ := newTestServer(t, &fakeClassifier{}, &fakeResponder{}, engine)

	rec := doRequest(s, http.MethodDelete, "/api/v1/actions/abc/cancel", "user-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code) // only DELETE /actions/:id is routed

	rec = doRequest(s, http.MethodDelete, "/api/v1/actions/abc", "user-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-1", engine.lastUser)
}

func TestHandleQuickAction(t *testing.T) {
	s, _ := newTestServer(t, &fakeClassifier{}, &fakeResponder{}, &fakeEngine{})

	rec := doRequest(s, http.MethodGet, "/api/v1/quick-actions/search_nearby", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var qa models.QuickAction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &qa))
	assert.Equal(t, "search_nearby", qa.ID)
	assert.NotEmpty(t, qa.Label)
	assert.NotEmpty(t, qa.Utterance)

	rec = doRequest(s, http.MethodGet, "/api/v1/quick-actions/no-such-action", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t, &fakeClassifier{}, &fakeResponder{}, &fakeEngine{})

	rec := doRequest(s, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
