// internal/actions/executors/subscription-cancel/models.go
package subscriptioncancel

import "childcare-assistant/internal/models"

// Params is the validated payload for a subscription_cancel action. Reason
// is optional free text kept for churn analysis.
type Params struct {
	Reason string `json:"reason,omitempty"`
}

func parseParams(raw map[string]interface{}) *Params {
	params := &Params{}
	if reason, ok := raw[models.SlotReason].(string); ok {
		params.Reason = reason
	}
	return params
}
