// internal/nlu/classifier/rules.go
package classifier

import (
	"regexp"
	"strings"

	"childcare-assistant/internal/models"
)

// matchBand orders the confidence bands: exact keyword > synonym > fuzzy.
type matchBand int

const (
	bandNone matchBand = iota
	bandFuzzy
	bandSynonym
	bandExact
)

// Base score per band. The final score adds a small per-slot bonus, capped
// at the band ceiling so bands never overlap.
var bandScores = map[matchBand]struct{ base, cap float64 }{
	bandExact:   {0.90, 1.00},
	bandSynonym: {0.70, 0.89},
	bandFuzzy:   {0.50, 0.69},
}

// rule is one declaration in the ordered rule table. Declaration order is the
// final tie-breaker, so more specific intents come first.
type rule struct {
	intent   models.IntentType
	exact    []string
	synonyms []string
	fuzzy    []*regexp.Regexp
}

func (r rule) match(text string) matchBand {
	for _, kw := range r.exact {
		if strings.Contains(text, kw) {
			return bandExact
		}
	}
	for _, kw := range r.synonyms {
		if strings.Contains(text, kw) {
			return bandSynonym
		}
	}
	for _, p := range r.fuzzy {
		if p.MatchString(text) {
			return bandFuzzy
		}
	}
	return bandNone
}

// defaultRules is the closed rule table. Mutating intents precede
// informational ones, and interest_remove precedes interest_add so that
// "찜 취소" resolves to removal on the declaration-order tie-break.
var defaultRules = []rule{
	{
		intent:   models.IntentWaitlistJoin,
		exact:    []string{"대기 신청", "대기신청", "waitlist"},
		synonyms: []string{"대기 등록", "대기 걸어", "줄 서", "join the wait"},
		fuzzy: []*regexp.Regexp{
			regexp.MustCompile(`대기.*(신청|등록|걸)`),
		},
	},
	{
		intent:   models.IntentInterestRemove,
		exact:    []string{"관심 해제", "관심 삭제", "찜 취소", "찜 해제", "remove interest"},
		synonyms: []string{"관심 빼", "관심에서 빼", "unfavorite"},
		fuzzy: []*regexp.Regexp{
			regexp.MustCompile(`관심.*(해제|삭제|취소|빼)`),
		},
	},
	{
		intent:   models.IntentInterestAdd,
		exact:    []string{"관심 등록", "관심등록", "찜", "add interest"},
		synonyms: []string{"관심 추가", "관심 목록에", "favorite", "저장해줘"},
		fuzzy: []*regexp.Regexp{
			regexp.MustCompile(`관심.*(등록|추가|넣)`),
		},
	},
	{
		intent:   models.IntentSubscriptionCancel,
		exact:    []string{"구독 취소", "구독 해지", "구독취소", "cancel my subscription"},
		synonyms: []string{"구독 끊", "멤버십 해지", "cancel subscription"},
		fuzzy: []*regexp.Regexp{
			regexp.MustCompile(`구독.*(취소|해지|끊)`),
			regexp.MustCompile(`cancel.*subscription`),
		},
	},
	{
		intent:   models.IntentCompare,
		exact:    []string{"비교", "compare"},
		synonyms: []string{"뭐가 나아", "어디가 더", "차이가"},
		fuzzy: []*regexp.Regexp{
			regexp.MustCompile(`(시설|어린이집).*(비교|차이)`),
		},
	},
	{
		intent:   models.IntentRecommend,
		exact:    []string{"추천", "recommend"},
		synonyms: []string{"괜찮은 곳", "좋은 어린이집", "suggest"},
		fuzzy: []*regexp.Regexp{
			regexp.MustCompile(`(어디가|어떤 곳이).*(좋|괜찮)`),
		},
	},
	{
		intent:   models.IntentSearch,
		exact:    []string{"검색", "찾아줘", "search"},
		synonyms: []string{"찾아", "알아봐", "보여줘", "find"},
		fuzzy: []*regexp.Regexp{
			regexp.MustCompile(`(어린이집|시설|유치원).*(찾|검색|알려|보여)`),
		},
	},
}
