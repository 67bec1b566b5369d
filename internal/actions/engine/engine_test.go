// internal/actions/engine/engine_test.go
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"childcare-assistant/internal/actions/registry"
	"childcare-assistant/internal/actions/store"
	commonerrors "childcare-assistant/internal/common/errors"
	"childcare-assistant/internal/common/logger"
	"childcare-assistant/internal/models"
)

type countingExecutor struct {
	actionType models.ActionType
	calls      int64
	err        error
}

func (c *countingExecutor) ActionType() models.ActionType {
	return c.actionType
}

func (c *countingExecutor) Execute(ctx context.Context, params map[string]interface{}, userID string) (*models.ActionResult, error) {
	atomic.AddInt64(&c.calls, 1)
	if c.err != nil {
		return nil, c.err
	}
	return &models.ActionResult{Message: "완료", Data: map[string]interface{}{"user": userID}}, nil
}

func newTestEngine(t *testing.T, exec *countingExecutor) (*Engine, *store.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logger.NewTestLogger(t)
	st := store.New(client, time.Hour, log)
	reg := registry.New(log, exec)
	return New(st, reg, log), st
}

func stage(t *testing.T, st *store.Store, userID string, ttl time.Duration) *models.ActionIntent {
	t.Helper()
	intent, err := st.Create(context.Background(), userID, models.ActionWaitlistJoin,
		map[string]interface{}{"facilityId": "F123", "childAge": 5},
		"F123 시설에 5세 아동 대기 신청", ttl)
	require.NoError(t, err)
	return intent
}

func TestConfirm_Success(t *testing.T) {
	exec := &countingExecutor{actionType: models.ActionWaitlistJoin}
	e, st := newTestEngine(t, exec)
	intent := stage(t, st, "user-1", 5*time.Minute)

	result, err := e.Confirm(context.Background(), intent.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "완료", result.Message)
	assert.Equal(t, "user-1", result.Data["user"])
	assert.EqualValues(t, 1, exec.calls)

	loaded, err := st.Get(context.Background(), intent.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExecuted, loaded.Status)
	assert.Equal(t, "완료", loaded.ResultSummary)
}

func TestConfirm_DoubleConfirm(t *testing.T) {
	exec := &countingExecutor{actionType: models.ActionWaitlistJoin}
	e, st := newTestEngine(t, exec)
	intent := stage(t, st, "user-1", 5*time.Minute)

	_, err := e.Confirm(context.Background(), intent.ID, "user-1")
	require.NoError(t, err)

	_, err = e.Confirm(context.Background(), intent.ID, "user-1")
	assert.Equal(t, commonerrors.ErrCodeActionExpired, commonerrors.CodeOf(err))
	assert.EqualValues(t, 1, exec.calls)
}

func TestConfirm_ConcurrentConfirmsDispatchOnce(t *testing.T) {
	exec := &countingExecutor{actionType: models.ActionWaitlistJoin}
	e, st := newTestEngine(t, exec)
	intent := stage(t, st, "user-1", 5*time.Minute)

	const attempts = 20
	var wg sync.WaitGroup
	var succeeded int64
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.Confirm(context.Background(), intent.ID, "user-1"); err == nil {
				atomic.AddInt64(&succeeded, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, succeeded)
	assert.EqualValues(t, 1, exec.calls)
}

func TestConfirm_NonOwnerForbidden(t *testing.T) {
	exec := &countingExecutor{actionType: models.ActionWaitlistJoin}
	e, st := newTestEngine(t, exec)
	intent := stage(t, st, "user-1", 5*time.Minute)

	_, err := e.Confirm(context.Background(), intent.ID, "user-2")
	assert.Equal(t, commonerrors.ErrCodeActionForbidden, commonerrors.CodeOf(err))
	assert.Zero(t, exec.calls)

	// Ownership failure leaves the record pending for the real owner.
	loaded, getErr := st.Get(context.Background(), intent.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.StatusPending, loaded.Status)
}

func TestConfirm_NonOwnerForbiddenEvenWhenExpired(t *testing.T) {
	exec := &countingExecutor{actionType: models.ActionWaitlistJoin}
	e, st := newTestEngine(t, exec)
	intent := stage(t, st, "user-1", -time.Second)

	_, err := e.Confirm(context.Background(), intent.ID, "user-2")
	assert.Equal(t, commonerrors.ErrCodeActionForbidden, commonerrors.CodeOf(err))
}

func TestConfirm_Expired(t *testing.T) {
	exec := &countingExecutor{actionType: models.ActionWaitlistJoin}
	e, st := newTestEngine(t, exec)
	intent := stage(t, st, "user-1", -time.Second)

	_, err := e.Confirm(context.Background(), intent.ID, "user-1")
	assert.Equal(t, commonerrors.ErrCodeActionExpired, commonerrors.CodeOf(err))
	assert.Zero(t, exec.calls)
}

func TestConfirm_NotFound(t *testing.T) {
	e, _ := newTestEngine(t, &countingExecutor{actionType: models.ActionWaitlistJoin})

	_, err := e.Confirm(context.Background(), "no-such-id", "user-1")
	assert.Equal(t, commonerrors.ErrCodeActionNotFound, commonerrors.CodeOf(err))
}

func TestConfirm_ExecutorFailure(t *testing.T) {
	exec := &countingExecutor{actionType: models.ActionWaitlistJoin, err: assert.AnError}
	e, st := newTestEngine(t, exec)
	intent := stage(t, st, "user-1", 5*time.Minute)

	_, err := e.Confirm(context.Background(), intent.ID, "user-1")
	assert.Equal(t, commonerrors.ErrCodeExecutorFailed, commonerrors.CodeOf(err))

	loaded, getErr := st.Get(context.Background(), intent.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.StatusFailed, loaded.Status)
	assert.NotEmpty(t, loaded.FailureReason)
}

func TestConfirm_FailureIsTerminal(t *testing.T) {
	exec := &countingExecutor{actionType: models.ActionWaitlistJoin, err: assert.AnError}
	e, st := newTestEngine(t, exec)
	intent := stage(t, st, "user-1", 5*time.Minute)

	_, err := e.Confirm(context.Background(), intent.ID, "user-1")
	require.Error(t, err)

	_, err = e.Confirm(context.Background(), intent.ID, "user-1")
	assert.Equal(t, commonerrors.ErrCodeActionExpired, commonerrors.CodeOf(err))
	assert.EqualValues(t, 1, exec.calls)
}

func TestCancel_Owner(t *testing.T) {
	e, st := newTestEngine(t, &countingExecutor{actionType: models.ActionWaitlistJoin})
	intent := stage(t, st, "user-1", 5*time.Minute)

	require.NoError(t, e.Cancel(context.Background(), intent.ID, "user-1"))

	loaded, err := st.Get(context.Background(), intent.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, loaded.Status)
}

func TestCancel_NonOwnerForbidden(t *testing.T) {
	e, st := newTestEngine(t, &countingExecutor{actionType: models.ActionWaitlistJoin})
	intent := stage(t, st, "user-1", 5*time.Minute)

	err := e.Cancel(context.Background(), intent.ID, "user-2")
	assert.Equal(t, commonerrors.ErrCodeActionForbidden, commonerrors.CodeOf(err))
}

func TestCancel_AfterExecutionRefused(t *testing.T) {
	exec := &countingExecutor{actionType: models.ActionWaitlistJoin}
	e, st := newTestEngine(t, exec)
	intent := stage(t, st, "user-1", 5*time.Minute)

	_, err := e.Confirm(context.Background(), intent.ID, "user-1")
	require.NoError(t, err)

	err = e.Cancel(context.Background(), intent.ID, "user-1")
	assert.Equal(t, commonerrors.ErrCodeActionExpired, commonerrors.CodeOf(err))
}
