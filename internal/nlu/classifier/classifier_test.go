// internal/nlu/classifier/classifier_test.go
package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"childcare-assistant/internal/common/logger"
	"childcare-assistant/internal/models"
)

type fakeModel struct {
	intent models.Intent
	err    error
	calls  int
}

func (f *fakeModel) Classify(ctx context.Context, utterance string, conv models.ConversationContext) (models.Intent, error) {
	f.calls++
	return f.intent, f.err
}

func newTestClassifier(t *testing.T, fallback ModelClassifier) *Classifier {
	t.Helper()
	return New(Config{ConfidenceThreshold: 0.5}, fallback, logger.NewTestLogger(t))
}

func contextWithFacility(id string) models.ConversationContext {
	return models.ConversationContext{
		ConversationID: "conv-1",
		Turns: []models.Turn{
			{Intent: models.Intent{
				Type:  models.IntentSearch,
				Slots: map[string]interface{}{models.SlotFacilityID: id},
			}},
		},
	}
}

func TestClassify_WaitlistJoinWithContext(t *testing.T) {
	c := newTestClassifier(t, nil)

	intent := c.Classify(context.Background(), "5세 아이 대기 신청해줘", contextWithFacility("F123"))

	assert.Equal(t, models.IntentWaitlistJoin, intent.Type)
	assert.GreaterOrEqual(t, intent.Confidence, 0.8)
	assert.Equal(t, "F123", intent.Slots[models.SlotFacilityID])
	assert.Equal(t, 5, intent.Slots[models.SlotChildAge])
}

func TestClassify_Table(t *testing.T) {
	c := newTestClassifier(t, nil)

	tests := []struct {
		name      string
		utterance string
		conv      models.ConversationContext
		wantType  models.IntentType
	}{
		{name: "search by region", utterance: "강남구 어린이집 찾아줘", wantType: models.IntentSearch},
		{name: "search english", utterance: "search daycare near 서초구", wantType: models.IntentSearch},
		{name: "recommend", utterance: "판교 쪽에 괜찮은 곳 추천해줘", wantType: models.IntentRecommend},
		{name: "compare two facilities", utterance: "F12랑 F34 비교해줘", wantType: models.IntentCompare},
		{name: "interest add", utterance: "F55 관심 등록해줘", wantType: models.IntentInterestAdd},
		{name: "interest remove wins over add", utterance: "찜 취소해줘", wantType: models.IntentInterestRemove},
		{name: "subscription cancel", utterance: "구독 취소하고 싶어", wantType: models.IntentSubscriptionCancel},
		{name: "waitlist fuzzy", utterance: "F123 대기 좀 걸어줘", wantType: models.IntentWaitlistJoin},
		{name: "gibberish", utterance: "ㅁㄴㅇㄹ qwerty", wantType: models.IntentUnknown},
		{name: "empty", utterance: "   ", wantType: models.IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := c.Classify(context.Background(), tt.utterance, tt.conv)
			assert.Equal(t, tt.wantType, intent.Type)
		})
	}
}

func TestClassify_UnknownHasNoSlots(t *testing.T) {
	c := newTestClassifier(t, nil)

	intent := c.Classify(context.Background(), "오늘 날씨 어때", models.ConversationContext{})

	assert.Equal(t, models.IntentUnknown, intent.Type)
	assert.Zero(t, intent.Confidence)
	assert.Empty(t, intent.Slots)
	assert.Equal(t, "오늘 날씨 어때", intent.RawText)
}

func TestClassify_Deterministic(t *testing.T) {
	c := newTestClassifier(t, nil)
	conv := contextWithFacility("F123")

	first := c.Classify(context.Background(), "5세 아이 대기 신청해줘", conv)
	second := c.Classify(context.Background(), "5세 아이 대기 신청해줘", conv)

	assert.Equal(t, first, second)
}

func TestClassify_BandsDoNotOverlap(t *testing.T) {
	c := newTestClassifier(t, nil)

	exact := c.Classify(context.Background(), "대기 신청", models.ConversationContext{})
	synonym := c.Classify(context.Background(), "대기 등록 부탁해", models.ConversationContext{})

	require.Equal(t, models.IntentWaitlistJoin, exact.Type)
	require.Equal(t, models.IntentWaitlistJoin, synonym.Type)
	assert.GreaterOrEqual(t, exact.Confidence, 0.90)
	assert.Less(t, synonym.Confidence, 0.90)
	assert.GreaterOrEqual(t, synonym.Confidence, 0.70)
}

func TestClassify_ModelFallbackUsed(t *testing.T) {
	model := &fakeModel{intent: models.Intent{
		Type:       models.IntentRecommend,
		Confidence: 0.85,
		Slots:      map[string]interface{}{models.SlotRegion: "서울"},
	}}
	c := newTestClassifier(t, model)

	intent := c.Classify(context.Background(), "애 맡길 데가 마땅치 않네", models.ConversationContext{})

	assert.Equal(t, models.IntentRecommend, intent.Type)
	assert.Equal(t, 1, model.calls)
}

func TestClassify_ModelFallbackSkippedWhenRulesMatch(t *testing.T) {
	model := &fakeModel{intent: models.Intent{Type: models.IntentRecommend, Confidence: 0.99}}
	c := newTestClassifier(t, model)

	intent := c.Classify(context.Background(), "강남구 어린이집 찾아줘", models.ConversationContext{})

	assert.Equal(t, models.IntentSearch, intent.Type)
	assert.Zero(t, model.calls)
}

func TestClassify_ModelFallbackErrorDegradesToUnknown(t *testing.T) {
	model := &fakeModel{err: assert.AnError}
	c := newTestClassifier(t, model)

	intent := c.Classify(context.Background(), "애 맡길 데가 마땅치 않네", models.ConversationContext{})

	assert.Equal(t, models.IntentUnknown, intent.Type)
	assert.Equal(t, 1, model.calls)
}

func TestClassify_ModelBelowThresholdIgnored(t *testing.T) {
	model := &fakeModel{intent: models.Intent{Type: models.IntentSearch, Confidence: 0.3}}
	c := newTestClassifier(t, model)

	intent := c.Classify(context.Background(), "애 맡길 데가 마땅치 않네", models.ConversationContext{})

	assert.Equal(t, models.IntentUnknown, intent.Type)
}
