// internal/actions/executors/interest-add/handler.go
package interestadd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"childcare-assistant/internal/common/logger"
	"childcare-assistant/internal/models"
)

var ErrFacilityNotFound = errors.New("FACILITY_NOT_FOUND")

// Handler bookmarks a facility for the user. Re-adding an existing bookmark
// is a no-op success so repeated taps never surface an error.
type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"actionType": models.ActionInterestAdd}),
	}
}

func (h *Handler) ActionType() models.ActionType {
	return models.ActionInterestAdd
}

func (h *Handler) Execute(ctx context.Context, raw map[string]interface{}, userID string) (*models.ActionResult, error) {
	params, err := parseParams(raw)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	res, err := h.db.ExecContext(ctx, `
		INSERT INTO facility_interests (user_id, facility_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, facility_id) DO NOTHING`,
		userID, params.FacilityID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return nil, ErrFacilityNotFound
		}
		return nil, fmt.Errorf("insert facility interest: %w", err)
	}

	inserted, _ := res.RowsAffected()
	message := fmt.Sprintf("%s 시설을 관심 목록에 추가했어요.", params.FacilityID)
	if inserted == 0 {
		message = fmt.Sprintf("%s 시설은 이미 관심 목록에 있어요.", params.FacilityID)
	}

	return &models.ActionResult{
		Message: message,
		Data: map[string]interface{}{
			"facilityId": params.FacilityID,
			"added":      inserted > 0,
		},
	}, nil
}
