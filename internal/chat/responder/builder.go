// internal/chat/responder/builder.go
package responder

import (
	"context"
	"fmt"
	"time"

	commonerrors "childcare-assistant/internal/common/errors"
	"childcare-assistant/internal/common/logger"
	"childcare-assistant/internal/common/metrics"
	"childcare-assistant/internal/common/validation"
	"childcare-assistant/internal/models"
)

// FacilityBackend is the informational query collaborator. Query execution
// lives behind it; the responder only shapes results into blocks.
type FacilityBackend interface {
	Search(ctx context.Context, region, keywords string, childAge int) ([]models.Facility, error)
	Details(ctx context.Context, facilityIDs []string) ([]models.Facility, error)
	Recommend(ctx context.Context, region string, childAge int) ([]models.Facility, error)
}

// ActionStager is the staging half of the action intent store.
type ActionStager interface {
	Create(ctx context.Context, userID string, actionType models.ActionType, params map[string]interface{}, preview string, ttl time.Duration) (*models.ActionIntent, error)
}

// TTLPolicy resolves the confirmation window per action type.
type TTLPolicy interface {
	TTLFor(actionType string) time.Duration
}

// ExecutorTable reports which action types have a wired executor, so the
// builder never stages an action nothing can execute.
type ExecutorTable interface {
	Registered(actionType models.ActionType) bool
}

// Builder turns a classified Intent into the ordered block sequence of one
// assistant reply. Staging an ActionIntent for a mutating intent with
// complete slots is its only side effect; everything else is shaping.
type Builder struct {
	backend   FacilityBackend
	stager    ActionStager
	ttl       TTLPolicy
	executors ExecutorTable
	logger    logger.Logger
}

func New(backend FacilityBackend, stager ActionStager, ttl TTLPolicy, executors ExecutorTable, log logger.Logger) *Builder {
	return &Builder{
		backend:   backend,
		stager:    stager,
		ttl:       ttl,
		executors: executors,
		logger:    log.WithFields(map[string]interface{}{"component": "responder"}),
	}
}

// Build renders the reply for one turn. It never returns an error for
// malformed or ambiguous input; degraded paths emit clarifying or error
// blocks instead. The returned error is reserved for staging-store failures
// on the mutating path, where silently dropping the confirmation card would
// lose the user's request.
func (b *Builder) Build(ctx context.Context, intent models.Intent, conv models.ConversationContext, userID string) ([]models.Block, error) {
	switch intent.Type {
	case models.IntentUnknown:
		return b.clarifyUnknown(), nil
	case models.IntentSearch:
		return b.buildSearch(ctx, intent), nil
	case models.IntentCompare:
		return b.buildCompare(ctx, intent), nil
	case models.IntentRecommend:
		return b.buildRecommend(ctx, intent), nil
	}

	if intent.Type.Mutating() {
		return b.buildMutating(ctx, intent, userID)
	}

	b.logger.Warn("no block path for intent type", map[string]interface{}{
		"intentType": intent.Type,
	})
	return b.clarifyUnknown(), nil
}

// --- informational paths ---

func (b *Builder) buildSearch(ctx context.Context, intent models.Intent) []models.Block {
	region, _ := intent.Slots[models.SlotRegion].(string)
	keywords, _ := intent.Slots[models.SlotKeywords].(string)
	age := toInt(intent.Slots[models.SlotChildAge])

	facilities, err := b.backend.Search(ctx, region, keywords, age)
	if err != nil {
		return b.backendError(err)
	}
	if len(facilities) == 0 {
		return []models.Block{textBlock("조건에 맞는 시설을 찾지 못했어요. 지역이나 조건을 바꿔서 다시 찾아볼까요?")}
	}

	header := "어린이집 검색 결과예요."
	if region != "" {
		header = fmt.Sprintf("'%s' 지역 어린이집 검색 결과예요.", region)
	}
	return []models.Block{
		textBlock(header),
		{Type: models.BlockFacilityCardList, Facilities: facilities},
		{Type: models.BlockQuickActionList, QuickActions: defaultQuickActions()},
	}
}

func (b *Builder) buildCompare(ctx context.Context, intent models.Intent) []models.Block {
	ids := toStringSlice(intent.Slots[models.SlotFacilityIDs])
	if len(ids) < 2 {
		return []models.Block{textBlock("비교할 시설을 두 곳 이상 알려주세요. 예: \"F123 F456 비교해줘\"")}
	}

	facilities, err := b.backend.Details(ctx, ids)
	if err != nil {
		return b.backendError(err)
	}
	return []models.Block{
		textBlock(fmt.Sprintf("%d개 시설을 비교해 봤어요.", len(facilities))),
		{Type: models.BlockFacilityCardList, Facilities: facilities},
	}
}

func (b *Builder) buildRecommend(ctx context.Context, intent models.Intent) []models.Block {
	region, _ := intent.Slots[models.SlotRegion].(string)
	age := toInt(intent.Slots[models.SlotChildAge])

	facilities, err := b.backend.Recommend(ctx, region, age)
	if err != nil {
		return b.backendError(err)
	}
	if len(facilities) == 0 {
		return []models.Block{textBlock("추천할 만한 시설을 찾지 못했어요. 지역을 알려주시면 더 정확하게 추천해 드릴게요.")}
	}
	return []models.Block{
		textBlock("이런 곳은 어떠세요?"),
		{Type: models.BlockFacilityCardList, Facilities: facilities},
	}
}

// --- mutating path ---

// buildMutating is the only path by which a mutating action becomes visible
// to the user, and no mutation happens here: complete slots stage a pending
// ActionIntent and emit exactly one confirmation card; incomplete slots ask
// a clarifying question and stage nothing.
func (b *Builder) buildMutating(ctx context.Context, intent models.Intent, userID string) ([]models.Block, error) {
	actionType := intent.Type.ActionType()

	if !b.executors.Registered(actionType) {
		b.logger.Error("no executor wired for action type", map[string]interface{}{
			"actionType": actionType,
		})
		return []models.Block{{
			Type:      models.BlockError,
			Text:      "지금은 이 요청을 처리할 수 없어요. 잠시 후 다시 시도해 주세요.",
			ErrorCode: string(commonerrors.ErrCodeUnknownActionType),
		}}, nil
	}

	if missing := missingSlots(actionType, intent.Slots); len(missing) > 0 {
		return []models.Block{textBlock(clarifyQuestion(actionType, missing[0]))}, nil
	}

	params := paramsFor(actionType, intent.Slots)
	if err := validation.ValidateActionParams(actionType, params); err != nil {
		b.logger.Warn("extracted params failed schema validation", map[string]interface{}{
			"actionType": actionType,
			"error":      err.Error(),
		})
		return []models.Block{textBlock(clarifyQuestion(actionType, ""))}, nil
	}

	preview := buildPreview(actionType, params)
	staged, err := b.stager.Create(ctx, userID, actionType, params, preview, b.ttl.TTLFor(string(actionType)))
	if err != nil {
		return nil, err
	}

	metrics.ActionsStaged.WithLabelValues(string(actionType)).Inc()

	return []models.Block{
		textBlock("아래 내용으로 진행할까요? 확인을 눌러주세요."),
		{
			Type: models.BlockConfirmationCard,
			Confirmation: &models.Confirmation{
				ActionIntentID: staged.ID,
				ActionType:     string(staged.ActionType),
				Preview:        staged.Preview,
				ExpiresAt:      staged.ExpiresAt,
			},
		},
	}, nil
}

// --- degraded paths ---

func (b *Builder) clarifyUnknown() []models.Block {
	return []models.Block{
		textBlock("무슨 말씀인지 잘 이해하지 못했어요. 아래 버튼을 이용하거나 다시 말씀해 주세요."),
		{Type: models.BlockQuickActionList, QuickActions: defaultQuickActions()},
	}
}

func (b *Builder) backendError(err error) []models.Block {
	b.logger.Error("facility backend query failed", map[string]interface{}{
		"error": err.Error(),
	})
	return []models.Block{{
		Type:      models.BlockError,
		Text:      "시설 정보를 불러오지 못했어요. 잠시 후 다시 시도해 주세요.",
		ErrorCode: string(commonerrors.CodeOf(err)),
	}}
}

// --- helpers ---

func textBlock(text string) models.Block {
	return models.Block{Type: models.BlockText, Text: text}
}

func missingSlots(actionType models.ActionType, slots map[string]interface{}) []string {
	var missing []string
	for _, name := range validation.RequiredSlots(actionType) {
		if _, ok := slots[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// clarifyQuestion asks for the first missing slot instead of staging an
// incomplete action.
func clarifyQuestion(actionType models.ActionType, slot string) string {
	switch slot {
	case models.SlotFacilityID:
		return "어떤 시설을 말씀하시는지 알려주세요. 시설 번호(예: F123)나 이름을 입력해 주세요."
	case models.SlotChildAge:
		return "아이의 나이를 알려주세요. 예: \"5세\""
	}
	return fmt.Sprintf("%s 요청에 필요한 정보가 부족해요. 조금 더 자세히 말씀해 주세요.", actionLabel(actionType))
}

func actionLabel(actionType models.ActionType) string {
	switch actionType {
	case models.ActionWaitlistJoin:
		return "대기 신청"
	case models.ActionInterestAdd:
		return "관심 등록"
	case models.ActionInterestRemove:
		return "관심 해제"
	case models.ActionSubscriptionCancel:
		return "구독 해지"
	}
	return string(actionType)
}

// paramsFor narrows extracted slots to the schema fields for the action
// type, so stray informational slots never leak into executor params.
func paramsFor(actionType models.ActionType, slots map[string]interface{}) map[string]interface{} {
	params := make(map[string]interface{})
	switch actionType {
	case models.ActionWaitlistJoin:
		params[models.SlotFacilityID] = slots[models.SlotFacilityID]
		params[models.SlotChildAge] = toInt(slots[models.SlotChildAge])
	case models.ActionInterestAdd, models.ActionInterestRemove:
		params[models.SlotFacilityID] = slots[models.SlotFacilityID]
	case models.ActionSubscriptionCancel:
		if reason, ok := slots[models.SlotReason].(string); ok && reason != "" {
			params[models.SlotReason] = reason
		}
	}
	return params
}

func toStringSlice(v interface{}) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}
