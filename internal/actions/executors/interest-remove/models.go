// internal/actions/executors/interest-remove/models.go
package interestremove

import (
	"fmt"

	"childcare-assistant/internal/models"
)

// Params is the validated payload for an interest_remove action.
type Params struct {
	FacilityID string `json:"facilityId"`
}

func parseParams(raw map[string]interface{}) (*Params, error) {
	facilityID, ok := raw[models.SlotFacilityID].(string)
	if !ok || facilityID == "" {
		return nil, fmt.Errorf("facilityId missing from params")
	}
	return &Params{FacilityID: facilityID}, nil
}
