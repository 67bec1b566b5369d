// internal/actions/executors/waitlist-join/handler.go
package waitlistjoin

import (
	"context"
	"errors"
	"fmt"

	"database/sql"

	"github.com/lib/pq"

	"childcare-assistant/internal/common/logger"
	"childcare-assistant/internal/models"
)

var (
	ErrAlreadyOnWaitlist = errors.New("ALREADY_ON_WAITLIST")
	ErrFacilityNotFound  = errors.New("FACILITY_NOT_FOUND")
)

// Notifier delivers the best-effort waitlist confirmation push.
type Notifier interface {
	Publish(ctx context.Context, topicARN, subject, message string) error
}

// Handler enrolls a child on a facility waitlist. Input params arrive
// already validated and previewed; the entry is always attributed to the
// engine-passed userID.
type Handler struct {
	config   *Config
	db       *sql.DB
	notifier Notifier
	logger   logger.Logger
}

func NewHandler(config *Config, db *sql.DB, notifier Notifier, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		db:       db,
		notifier: notifier,
		logger:   log.WithFields(map[string]interface{}{"actionType": models.ActionWaitlistJoin}),
	}
}

func (h *Handler) ActionType() models.ActionType {
	return models.ActionWaitlistJoin
}

func (h *Handler) Execute(ctx context.Context, raw map[string]interface{}, userID string) (*models.ActionResult, error) {
	params, err := parseParams(raw)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO waitlist_entries (user_id, facility_id, child_age, created_at)
		VALUES ($1, $2, $3, NOW())`,
		userID, params.FacilityID, params.ChildAge)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return nil, ErrAlreadyOnWaitlist
			case "foreign_key_violation":
				return nil, ErrFacilityNotFound
			}
		}
		return nil, fmt.Errorf("insert waitlist entry: %w", err)
	}

	var position int
	if err := h.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM waitlist_entries WHERE facility_id = $1`,
		params.FacilityID).Scan(&position); err != nil {
		// Entry exists; a position lookup failure degrades the message only.
		h.logger.Warn("waitlist position lookup failed", map[string]interface{}{
			"facilityId": params.FacilityID,
			"error":      err.Error(),
		})
		position = 0
	}

	h.notify(ctx, params, position)

	message := fmt.Sprintf("%s 시설에 %d세 아동 대기 신청이 완료되었어요.", params.FacilityID, params.ChildAge)
	if position > 0 {
		message = fmt.Sprintf("%s 현재 대기 순번은 %d번입니다.", message, position)
	}

	return &models.ActionResult{
		Message: message,
		Data: map[string]interface{}{
			"facilityId": params.FacilityID,
			"childAge":   params.ChildAge,
			"position":   position,
		},
	}, nil
}

func (h *Handler) notify(ctx context.Context, params *Params, position int) {
	if h.notifier == nil || h.config.SNSTopicARN == "" {
		return
	}
	message := fmt.Sprintf("waitlist_join facility=%s age=%d position=%d", params.FacilityID, params.ChildAge, position)
	if err := h.notifier.Publish(ctx, h.config.SNSTopicARN, "waitlist joined", message); err != nil {
		h.logger.Warn("waitlist notification failed", map[string]interface{}{
			"facilityId": params.FacilityID,
			"error":      err.Error(),
		})
	}
}
