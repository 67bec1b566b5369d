// internal/actions/registry/registry_test.go
package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "childcare-assistant/internal/common/errors"
	"childcare-assistant/internal/common/logger"
	"childcare-assistant/internal/models"
)

type stubExecutor struct {
	actionType models.ActionType
	lastUser   string
	err        error
}

func (s *stubExecutor) ActionType() models.ActionType { return s.actionType }

func (s *stubExecutor) Execute(ctx context.Context, params map[string]interface{}, userID string) (*models.ActionResult, error) {
	s.lastUser = userID
	if s.err != nil {
		return nil, s.err
	}
	return &models.ActionResult{Message: "ok"}, nil
}

func TestDispatch_RoutesByActionType(t *testing.T) {
	waitlist := &stubExecutor{actionType: models.ActionWaitlistJoin}
	interest := &stubExecutor{actionType: models.ActionInterestAdd}
	reg := New(logger.NewTestLogger(t), waitlist, interest)

	result, err := reg.Dispatch(context.Background(), models.ActionInterestAdd, map[string]interface{}{}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Message)
	assert.Equal(t, "user-1", interest.lastUser)
	assert.Empty(t, waitlist.lastUser)
}

func TestDispatch_UnknownActionType(t *testing.T) {
	reg := New(logger.NewTestLogger(t))

	_, err := reg.Dispatch(context.Background(), models.ActionWaitlistJoin, nil, "user-1")
	assert.Equal(t, commonerrors.ErrCodeUnknownActionType, commonerrors.CodeOf(err))
}

func TestDispatch_ExecutorErrorPassedThrough(t *testing.T) {
	failing := &stubExecutor{actionType: models.ActionWaitlistJoin, err: assert.AnError}
	reg := New(logger.NewTestLogger(t), failing)

	_, err := reg.Dispatch(context.Background(), models.ActionWaitlistJoin, nil, "user-1")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRegistered(t *testing.T) {
	reg := New(logger.NewTestLogger(t), &stubExecutor{actionType: models.ActionWaitlistJoin})

	assert.True(t, reg.Registered(models.ActionWaitlistJoin))
	assert.False(t, reg.Registered(models.ActionSubscriptionCancel))
}
