// internal/nlu/slots/extractor.go
package slots

import (
	"regexp"
	"strconv"
	"strings"

	"childcare-assistant/internal/models"
)

var (
	facilityIDPattern = regexp.MustCompile(`(?i)\bf(\d+)\b`)
	childAgePattern   = regexp.MustCompile(`(\d+)\s*(?:세|살)|\bage[d]?\s+(\d+)\b`)
)

// ordinalWords resolves ordinal references against the last rendered
// facility list ("두 번째" / "the second one"). Ordered slice: when an
// utterance mentions several ordinals, the one appearing last in the text
// wins, and the pick must not depend on table order.
var ordinalWords = []struct {
	word    string
	ordinal int
}{
	{"첫 번째", 1}, {"첫번째", 1}, {"first", 1},
	{"두 번째", 2}, {"두번째", 2}, {"second", 2},
	{"세 번째", 3}, {"세번째", 3}, {"third", 3},
	{"네 번째", 4}, {"네번째", 4}, {"fourth", 4},
}

// pronounWords refer back to the single most recent facility in context.
var pronounWords = []string{"거기", "그 시설", "그 어린이집", "저기", "that one", "there"}

// knownRegions is the closed region vocabulary for search filtering.
var knownRegions = []string{
	"강남구", "서초구", "송파구", "마포구", "성동구", "은평구", "노원구",
	"서울", "부산", "인천", "대구", "대전", "광주", "수원", "성남", "판교",
}

// Extract pulls the structured parameters for one candidate intent type out
// of a normalized utterance. Slot grammars are intent-specific; references
// that cannot be resolved against the context leave the slot absent rather
// than guessing.
func Extract(text string, intentType models.IntentType, ctx models.ConversationContext) map[string]interface{} {
	out := make(map[string]interface{})

	switch intentType {
	case models.IntentSearch, models.IntentRecommend:
		if region := findRegion(text); region != "" {
			out[models.SlotRegion] = region
		}
		if age, ok := findChildAge(text); ok {
			out[models.SlotChildAge] = age
		}
		if kw := keywordRemainder(text); kw != "" {
			out[models.SlotKeywords] = kw
		}

	case models.IntentCompare:
		ids := findFacilityIDs(text, ctx)
		if len(ids) >= 2 {
			out[models.SlotFacilityIDs] = ids
		}

	case models.IntentWaitlistJoin:
		if id := resolveFacility(text, ctx); id != "" {
			out[models.SlotFacilityID] = id
		}
		if age, ok := findChildAge(text); ok {
			out[models.SlotChildAge] = age
		}

	case models.IntentInterestAdd, models.IntentInterestRemove:
		if id := resolveFacility(text, ctx); id != "" {
			out[models.SlotFacilityID] = id
		}

	case models.IntentSubscriptionCancel:
		// reason is optional free text; anything after the trigger phrase.
		if reason := cancelReason(text); reason != "" {
			out[models.SlotReason] = reason
		}
	}

	return out
}

// resolveFacility finds a facility id explicitly, by ordinal, by pronoun, or
// falls back to the conversation's most recent facility. Returns "" when no
// antecedent exists.
func resolveFacility(text string, ctx models.ConversationContext) string {
	if m := facilityIDPattern.FindStringSubmatch(text); m != nil {
		return "F" + m[1]
	}

	if ordinal := lastOrdinal(text); ordinal > 0 {
		return ctx.FacilityAt(ordinal)
	}

	for _, word := range pronounWords {
		if strings.Contains(text, word) {
			return ctx.LastFacilityID()
		}
	}

	return ctx.LastFacilityID()
}

// lastOrdinal returns the ordinal mentioned last in the text, so
// "첫 번째 말고 두 번째" resolves to the second entry. 0 when none present.
func lastOrdinal(text string) int {
	ordinal, bestIdx := 0, -1
	for _, ow := range ordinalWords {
		if idx := strings.LastIndex(text, ow.word); idx > bestIdx {
			ordinal, bestIdx = ow.ordinal, idx
		}
	}
	return ordinal
}

func findFacilityIDs(text string, ctx models.ConversationContext) []string {
	matches := facilityIDPattern.FindAllStringSubmatch(text, -1)
	ids := make([]string, 0, len(matches))
	seen := make(map[string]bool)
	for _, m := range matches {
		id := "F" + m[1]
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	// "compare them" against the last rendered list
	if len(ids) < 2 && len(ctx.LastFacilities) >= 2 {
		return ctx.LastFacilities
	}
	return ids
}

func findChildAge(text string) (int, bool) {
	m := childAgePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}
	age, err := strconv.Atoi(raw)
	if err != nil || age < 0 || age > 12 {
		return 0, false
	}
	return age, true
}

func findRegion(text string) string {
	for _, region := range knownRegions {
		if strings.Contains(text, region) {
			return region
		}
	}
	return ""
}

// searchStopwords are trigger/filler tokens stripped when deriving the
// residual keyword slot for search intents.
var searchStopwords = map[string]bool{
	"검색": true, "검색해줘": true, "찾아줘": true, "찾아": true, "알려줘": true,
	"어린이집": true, "시설": true, "근처": true, "좀": true, "추천": true,
	"추천해줘": true, "search": true, "find": true, "recommend": true,
	"facilities": true, "daycare": true,
}

func keywordRemainder(text string) string {
	var kept []string
	for _, tok := range strings.Fields(text) {
		if searchStopwords[tok] || findRegionToken(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

func findRegionToken(tok string) bool {
	for _, region := range knownRegions {
		if strings.Contains(tok, region) {
			return true
		}
	}
	return false
}

var cancelTriggerPattern = regexp.MustCompile(`(구독\s*(?:취소|해지)(?:해줘|할래|하고\s*싶어)?|cancel\s+(?:my\s+)?subscription)`)

func cancelReason(text string) string {
	loc := cancelTriggerPattern.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	rest := strings.TrimSpace(text[loc[1]:])
	if rest == "" {
		rest = strings.TrimSpace(text[:loc[0]])
	}
	return rest
}
