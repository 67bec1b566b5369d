// internal/actions/registry/registry.go
package registry

import (
	"context"
	"time"

	commonerrors "childcare-assistant/internal/common/errors"
	"childcare-assistant/internal/common/logger"
	"childcare-assistant/internal/common/metrics"
	"childcare-assistant/internal/models"
)

// Executor applies one action type's real-world effect given validated,
// already-previewed params. The mutation is attributed to the userID the
// engine passes in, never to any id found inside params.
type Executor interface {
	ActionType() models.ActionType
	Execute(ctx context.Context, params map[string]interface{}, userID string) (*models.ActionResult, error)
}

// Registry is the closed executor table. It is built explicitly at startup
// and passed into the engine; there is no ambient singleton, and dispatch
// against an unwired type is a typed failure, not a panic.
type Registry struct {
	executors map[models.ActionType]Executor
	logger    logger.Logger
}

func New(log logger.Logger, executors ...Executor) *Registry {
	table := make(map[models.ActionType]Executor, len(executors))
	for _, e := range executors {
		table[e.ActionType()] = e
	}
	return &Registry{
		executors: table,
		logger:    log.WithFields(map[string]interface{}{"component": "executor-registry"}),
	}
}

// Dispatch routes validated params to the executor for actionType.
func (r *Registry) Dispatch(ctx context.Context, actionType models.ActionType, params map[string]interface{}, userID string) (*models.ActionResult, error) {
	executor, ok := r.executors[actionType]
	if !ok {
		return nil, commonerrors.NewUnknownActionTypeError(string(actionType))
	}

	start := time.Now()
	result, err := executor.Execute(ctx, params, userID)
	metrics.ExecutorDuration.WithLabelValues(string(actionType)).Observe(time.Since(start).Seconds())

	if err != nil {
		r.logger.Warn("executor reported failure", map[string]interface{}{
			"actionType": actionType,
			"error":      err.Error(),
		})
		return nil, err
	}
	return result, nil
}

// Registered reports whether an executor is wired for actionType. The
// responder checks this before staging so a user is never asked to confirm
// an action nothing can execute.
func (r *Registry) Registered(actionType models.ActionType) bool {
	_, ok := r.executors[actionType]
	return ok
}
