// internal/actions/executors/waitlist-join/models.go
package waitlistjoin

import (
	"fmt"

	"childcare-assistant/internal/models"
)

// Params is the validated payload for a waitlist_join action.
type Params struct {
	FacilityID string `json:"facilityId"`
	ChildAge   int    `json:"childAge"`
}

// parseParams narrows the generic params map. The payload was schema-checked
// at staging time, so failures here indicate a programming error, not user
// input.
func parseParams(raw map[string]interface{}) (*Params, error) {
	facilityID, ok := raw[models.SlotFacilityID].(string)
	if !ok || facilityID == "" {
		return nil, fmt.Errorf("facilityId missing from params")
	}

	var age int
	switch v := raw[models.SlotChildAge].(type) {
	case int:
		age = v
	case int64:
		age = int(v)
	case float64:
		age = int(v)
	default:
		return nil, fmt.Errorf("childAge missing from params")
	}

	return &Params{FacilityID: facilityID, ChildAge: age}, nil
}
