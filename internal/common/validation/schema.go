// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"childcare-assistant/internal/models"
)

// actionSchemas holds the JSON schema for each action type's params. The
// table is closed: staging a params payload that does not validate against
// its schema is rejected before any ActionIntent is created, so executors
// may treat their input as already validated.
var actionSchemas = map[models.ActionType]map[string]interface{}{
	models.ActionWaitlistJoin: {
		"type": "object",
		"properties": map[string]interface{}{
			"facilityId": map[string]interface{}{
				"type":    "string",
				"pattern": "^F[0-9]+$",
			},
			"childAge": map[string]interface{}{
				"type":    "number",
				"minimum": 0,
				"maximum": 12,
			},
		},
		"required":             []interface{}{"facilityId", "childAge"},
		"additionalProperties": false,
	},
	models.ActionInterestAdd: {
		"type": "object",
		"properties": map[string]interface{}{
			"facilityId": map[string]interface{}{
				"type":    "string",
				"pattern": "^F[0-9]+$",
			},
		},
		"required":             []interface{}{"facilityId"},
		"additionalProperties": false,
	},
	models.ActionInterestRemove: {
		"type": "object",
		"properties": map[string]interface{}{
			"facilityId": map[string]interface{}{
				"type":    "string",
				"pattern": "^F[0-9]+$",
			},
		},
		"required":             []interface{}{"facilityId"},
		"additionalProperties": false,
	},
	models.ActionSubscriptionCancel: {
		"type": "object",
		"properties": map[string]interface{}{
			"reason": map[string]interface{}{
				"type":      "string",
				"maxLength": 500,
			},
		},
		"additionalProperties": false,
	},
}

// ValidateActionParams checks a params payload against the schema for its
// action type. Returns a descriptive error listing every violation.
func ValidateActionParams(actionType models.ActionType, params map[string]interface{}) error {
	schema, ok := actionSchemas[actionType]
	if !ok {
		return fmt.Errorf("no params schema for action type %q", actionType)
	}

	if params == nil {
		params = map[string]interface{}{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(params)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("params validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// RequiredSlots maps an action type to the slot names the extractor must fill
// before the responder will stage an intent. Missing entries mean the
// responder asks a clarifying question instead of staging.
func RequiredSlots(actionType models.ActionType) []string {
	switch actionType {
	case models.ActionWaitlistJoin:
		return []string{models.SlotFacilityID, models.SlotChildAge}
	case models.ActionInterestAdd, models.ActionInterestRemove:
		return []string{models.SlotFacilityID}
	case models.ActionSubscriptionCancel:
		return nil
	}
	return nil
}
