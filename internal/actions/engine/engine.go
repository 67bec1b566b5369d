// internal/actions/engine/engine.go
package engine

import (
	"context"

	commonerrors "childcare-assistant/internal/common/errors"
	"childcare-assistant/internal/common/logger"
	"childcare-assistant/internal/common/metrics"
	"childcare-assistant/internal/models"

	"childcare-assistant/internal/actions/registry"
	"childcare-assistant/internal/actions/store"
)

// Engine validates confirmation requests against the store and dispatches
// confirmed actions to the executor registry exactly once per intent id.
type Engine struct {
	store    *store.Store
	registry *registry.Registry
	logger   logger.Logger
}

func New(st *store.Store, reg *registry.Registry, log logger.Logger) *Engine {
	return &Engine{
		store:    st,
		registry: reg,
		logger:   log.WithFields(map[string]interface{}{"component": "action-engine"}),
	}
}

// Confirm executes a staged action on behalf of its owner. The ownership
// check runs before any state change and independently of expiry; the
// pending -> confirmed step is atomic in the store, so concurrent confirms
// for the same id resolve to exactly one dispatch. No locks are held across
// the executor call.
func (e *Engine) Confirm(ctx context.Context, intentID, requestingUserID string) (*models.ActionResult, error) {
	intent, err := e.store.Get(ctx, intentID)
	if err != nil {
		metrics.ConfirmRejected.WithLabelValues("not_found").Inc()
		return nil, err
	}

	if intent.UserID != requestingUserID {
		metrics.ConfirmRejected.WithLabelValues("forbidden").Inc()
		e.logger.Warn("confirm by non-owner rejected", map[string]interface{}{
			"intentId": intentID,
		})
		return nil, commonerrors.NewActionForbiddenError(intentID)
	}

	if err := e.store.TransitionToConfirmed(ctx, intentID); err != nil {
		metrics.ConfirmRejected.WithLabelValues("consumed").Inc()
		return nil, err
	}

	e.logger.Info("action intent confirmed, dispatching", map[string]interface{}{
		"intentId":   intentID,
		"actionType": intent.ActionType,
	})

	// Params are exactly those previewed at creation; the executor is
	// attributed to the intent owner, never to anything inside params.
	result, execErr := e.registry.Dispatch(ctx, intent.ActionType, intent.Params, intent.UserID)
	if execErr != nil {
		if err := e.store.MarkFailed(ctx, intentID, execErr.Error()); err != nil {
			e.logger.Error("failed to record failed state", map[string]interface{}{
				"intentId": intentID,
				"error":    err.Error(),
			})
		}
		metrics.ActionsResolved.WithLabelValues(string(intent.ActionType), string(models.StatusFailed)).Inc()
		return nil, commonerrors.NewExecutorFailedError(string(intent.ActionType), execErr)
	}

	if err := e.store.MarkExecuted(ctx, intentID, result.Message); err != nil {
		// The effect is applied; a bookkeeping failure must not convert a
		// success into a user-visible error.
		e.logger.Error("failed to record executed state", map[string]interface{}{
			"intentId": intentID,
			"error":    err.Error(),
		})
	}
	metrics.ActionsResolved.WithLabelValues(string(intent.ActionType), string(models.StatusExecuted)).Inc()

	return result, nil
}

// Cancel withdraws a pending action. Same ownership binding as Confirm;
// anything past pending is refused as already consumed.
func (e *Engine) Cancel(ctx context.Context, intentID, requestingUserID string) error {
	intent, err := e.store.Get(ctx, intentID)
	if err != nil {
		return err
	}

	if intent.UserID != requestingUserID {
		metrics.ConfirmRejected.WithLabelValues("forbidden").Inc()
		return commonerrors.NewActionForbiddenError(intentID)
	}

	if err := e.store.Cancel(ctx, intentID); err != nil {
		return err
	}

	metrics.ActionsResolved.WithLabelValues(string(intent.ActionType), string(models.StatusCancelled)).Inc()
	e.logger.Info("action intent cancelled", map[string]interface{}{
		"intentId":   intentID,
		"actionType": intent.ActionType,
	})
	return nil
}
