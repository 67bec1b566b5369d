// internal/chat/conversation/store.go
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"childcare-assistant/internal/common/logger"
	"childcare-assistant/internal/models"
)

const keyPrefix = "conversation:context:"

// Store keeps per-conversation context in redis so reference resolution
// ("거기", "두 번째") survives across stateless chat requests. Context is
// advisory: a missing or unreadable key degrades to an empty context.
type Store struct {
	client   *redis.Client
	maxTurns int
	ttl      time.Duration
	logger   logger.Logger
}

func New(client *redis.Client, maxTurns int, ttl time.Duration, log logger.Logger) *Store {
	if maxTurns <= 0 {
		maxTurns = 5
	}
	return &Store{
		client:   client,
		maxTurns: maxTurns,
		ttl:      ttl,
		logger:   log.WithFields(map[string]interface{}{"component": "conversation-store"}),
	}
}

// Load returns the stored context for the conversation, or an empty one.
func (s *Store) Load(ctx context.Context, conversationID string) models.ConversationContext {
	empty := models.ConversationContext{ConversationID: conversationID}
	if conversationID == "" {
		return empty
	}

	raw, err := s.client.Get(ctx, keyPrefix+conversationID).Result()
	if err == redis.Nil {
		return empty
	}
	if err != nil {
		s.logger.Warn("context load failed", map[string]interface{}{
			"conversationId": conversationID,
			"error":          err.Error(),
		})
		return empty
	}

	var conv models.ConversationContext
	if err := json.Unmarshal([]byte(raw), &conv); err != nil {
		s.logger.Warn("context unmarshal failed", map[string]interface{}{
			"conversationId": conversationID,
			"error":          err.Error(),
		})
		return empty
	}
	conv.ConversationID = conversationID
	return conv
}

// Record appends the classified turn, tracks facility ids rendered in the
// response blocks, trims to the configured window, and re-arms the TTL.
// Load-then-store with no write guard: concurrent turns on one conversation
// can drop a turn. Context is advisory only, so a lost turn degrades slot
// resolution for one exchange and nothing else; action correctness never
// reads from here.
func (s *Store) Record(ctx context.Context, conv models.ConversationContext, intent models.Intent, blocks []models.Block) error {
	if conv.ConversationID == "" {
		return nil
	}

	conv.Turns = append(conv.Turns, models.Turn{Intent: intent, Timestamp: time.Now().UTC()})
	if len(conv.Turns) > s.maxTurns {
		conv.Turns = conv.Turns[len(conv.Turns)-s.maxTurns:]
	}
	if ids := facilityIDs(blocks); len(ids) > 0 {
		conv.LastFacilities = ids
	}
	conv.UpdatedAt = time.Now().UTC()

	raw, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("marshal conversation context: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+conv.ConversationID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("store conversation context: %w", err)
	}
	return nil
}

func facilityIDs(blocks []models.Block) []string {
	var ids []string
	for _, block := range blocks {
		if block.Type != models.BlockFacilityCardList {
			continue
		}
		for _, facility := range block.Facilities {
			ids = append(ids, facility.ID)
		}
	}
	return ids
}
