// internal/chat/responder/quickactions.go
package responder

import "childcare-assistant/internal/models"

// quickActionTable is the closed mapping from quick-action identifiers to
// either a navigation route or a canned follow-up utterance that re-enters
// the classifier loop. Extending it is a deploy, not a runtime operation.
var quickActionTable = []models.QuickAction{
	{ID: "search_nearby", Label: "근처 어린이집 찾기", Utterance: "근처 어린이집 찾아줘"},
	{ID: "recommend", Label: "어린이집 추천받기", Utterance: "어린이집 추천해줘"},
	{ID: "view_waitlist", Label: "내 대기 현황", Route: "/me/waitlist"},
	{ID: "my_interests", Label: "관심 목록", Route: "/me/interests"},
	{ID: "cancel_subscription", Label: "구독 해지", Utterance: "구독 해지할래"},
	{ID: "help", Label: "도움말", Route: "/help"},
}

// QuickAction resolves one identifier from the closed table.
func QuickAction(id string) (models.QuickAction, bool) {
	for _, qa := range quickActionTable {
		if qa.ID == id {
			return qa, true
		}
	}
	return models.QuickAction{}, false
}

// defaultQuickActions are attached to clarifying replies to offer one-tap
// re-entry without re-typing.
func defaultQuickActions() []models.QuickAction {
	return []models.QuickAction{
		quickActionTable[0], // search_nearby
		quickActionTable[1], // recommend
		quickActionTable[5], // help
	}
}
