// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"childcare-assistant/internal/models"
)

func TestValidateActionParams(t *testing.T) {
	tests := []struct {
		name       string
		actionType models.ActionType
		params     map[string]interface{}
		wantErr    bool
	}{
		{
			name:       "waitlist join valid",
			actionType: models.ActionWaitlistJoin,
			params:     map[string]interface{}{"facilityId": "F123", "childAge": 5},
		},
		{
			name:       "waitlist join bad facility id",
			actionType: models.ActionWaitlistJoin,
			params:     map[string]interface{}{"facilityId": "123", "childAge": 5},
			wantErr:    true,
		},
		{
			name:       "waitlist join age out of range",
			actionType: models.ActionWaitlistJoin,
			params:     map[string]interface{}{"facilityId": "F123", "childAge": 13},
			wantErr:    true,
		},
		{
			name:       "waitlist join missing age",
			actionType: models.ActionWaitlistJoin,
			params:     map[string]interface{}{"facilityId": "F123"},
			wantErr:    true,
		},
		{
			name:       "waitlist join extra field rejected",
			actionType: models.ActionWaitlistJoin,
			params:     map[string]interface{}{"facilityId": "F123", "childAge": 5, "userId": "someone-else"},
			wantErr:    true,
		},
		{
			name:       "interest add valid",
			actionType: models.ActionInterestAdd,
			params:     map[string]interface{}{"facilityId": "F9"},
		},
		{
			name:       "interest remove missing facility",
			actionType: models.ActionInterestRemove,
			params:     map[string]interface{}{},
			wantErr:    true,
		},
		{
			name:       "subscription cancel empty params ok",
			actionType: models.ActionSubscriptionCancel,
			params:     nil,
		},
		{
			name:       "subscription cancel with reason",
			actionType: models.ActionSubscriptionCancel,
			params:     map[string]interface{}{"reason": "이사"},
		},
		{
			name:       "unknown action type",
			actionType: models.ActionType("self_destruct"),
			params:     map[string]interface{}{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateActionParams(tt.actionType, tt.params)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequiredSlots(t *testing.T) {
	assert.Equal(t, []string{models.SlotFacilityID, models.SlotChildAge}, RequiredSlots(models.ActionWaitlistJoin))
	assert.Equal(t, []string{models.SlotFacilityID}, RequiredSlots(models.ActionInterestAdd))
	assert.Equal(t, []string{models.SlotFacilityID}, RequiredSlots(models.ActionInterestRemove))
	assert.Nil(t, RequiredSlots(models.ActionSubscriptionCancel))
}
