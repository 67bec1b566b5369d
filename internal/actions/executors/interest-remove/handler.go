// internal/actions/executors/interest-remove/handler.go
package interestremove

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"childcare-assistant/internal/common/logger"
	"childcare-assistant/internal/models"
)

var ErrNotInterested = errors.New("NOT_IN_INTEREST_LIST")

// Handler removes a facility bookmark. Removing a bookmark that does not
// exist is reported as a failure so the user learns the list was already
// clean.
type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"actionType": models.ActionInterestRemove}),
	}
}

func (h *Handler) ActionType() models.ActionType {
	return models.ActionInterestRemove
}

func (h *Handler) Execute(ctx context.Context, raw map[string]interface{}, userID string) (*models.ActionResult, error) {
	params, err := parseParams(raw)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	res, err := h.db.ExecContext(ctx, `
		DELETE FROM facility_interests WHERE user_id = $1 AND facility_id = $2`,
		userID, params.FacilityID)
	if err != nil {
		return nil, fmt.Errorf("delete facility interest: %w", err)
	}

	removed, _ := res.RowsAffected()
	if removed == 0 {
		return nil, ErrNotInterested
	}

	return &models.ActionResult{
		Message: fmt.Sprintf("%s 시설을 관심 목록에서 해제했어요.", params.FacilityID),
		Data: map[string]interface{}{
			"facilityId": params.FacilityID,
		},
	}, nil
}
