// internal/chat/responder/preview.go
package responder

import (
	"fmt"

	"childcare-assistant/internal/models"
)

// buildPreview renders the human-readable summary shown on the confirmation
// card. It is computed once, at staging time, from the exact params that the
// executor will later receive; execution never sees different values.
func buildPreview(actionType models.ActionType, params map[string]interface{}) string {
	switch actionType {
	case models.ActionWaitlistJoin:
		return fmt.Sprintf("%s 시설에 %d세 아동 대기 신청", params[models.SlotFacilityID], toInt(params[models.SlotChildAge]))
	case models.ActionInterestAdd:
		return fmt.Sprintf("%s 시설을 관심 목록에 추가", params[models.SlotFacilityID])
	case models.ActionInterestRemove:
		return fmt.Sprintf("%s 시설을 관심 목록에서 삭제", params[models.SlotFacilityID])
	case models.ActionSubscriptionCancel:
		return "구독 해지 (이번 결제 주기 종료일까지 이용 가능)"
	}
	return string(actionType)
}

// toInt tolerates the int/float64 split between freshly-extracted slots and
// JSON round-tripped params.
func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
