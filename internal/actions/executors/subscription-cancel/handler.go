// internal/actions/executors/subscription-cancel/handler.go
package subscriptioncancel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"childcare-assistant/internal/common/logger"
	"childcare-assistant/internal/models"
)

var ErrNoActiveSubscription = errors.New("NO_ACTIVE_SUBSCRIPTION")

// Mailer delivers the best-effort cancellation receipt.
type Mailer interface {
	SendEmail(ctx context.Context, sender, recipient, subject, body string) error
}

// Handler cancels the user's active subscription. The subscription row is
// kept with a cancelled_at timestamp so billing history survives.
type Handler struct {
	config *Config
	db     *sql.DB
	mailer Mailer
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, mailer Mailer, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		mailer: mailer,
		logger: log.WithFields(map[string]interface{}{"actionType": models.ActionSubscriptionCancel}),
	}
}

func (h *Handler) ActionType() models.ActionType {
	return models.ActionSubscriptionCancel
}

func (h *Handler) Execute(ctx context.Context, raw map[string]interface{}, userID string) (*models.ActionResult, error) {
	params := parseParams(raw)

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	var email sql.NullString
	err := h.db.QueryRowContext(ctx, `
		UPDATE subscriptions
		SET status = 'cancelled', cancelled_at = NOW(), cancel_reason = $2
		WHERE user_id = $1 AND status = 'active'
		RETURNING contact_email`,
		userID, nullableReason(params.Reason)).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveSubscription
	}
	if err != nil {
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}

	h.sendReceipt(ctx, email)

	return &models.ActionResult{
		Message: "구독이 해지되었어요. 언제든 다시 구독하실 수 있어요.",
		Data: map[string]interface{}{
			"reason": params.Reason,
		},
	}, nil
}

func (h *Handler) sendReceipt(ctx context.Context, email sql.NullString) {
	if h.mailer == nil || h.config.SESSender == "" || !email.Valid || email.String == "" {
		return
	}
	body := "알림 구독이 해지되었습니다. 더 이상 시설 소식을 받지 않습니다."
	if err := h.mailer.SendEmail(ctx, h.config.SESSender, email.String, "구독 해지 안내", body); err != nil {
		h.logger.Warn("cancellation receipt failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func nullableReason(reason string) interface{} {
	if reason == "" {
		return nil
	}
	return reason
}
