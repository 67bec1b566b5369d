// internal/models/conversation.go
package models

import "time"

// Turn is one prior classified exchange kept for reference resolution.
type Turn struct {
	Intent    Intent    `json:"intent"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationContext carries the last few turns of a conversation. The
// classifier and slot extractor use it to resolve references like "that one"
// or ordinals against the most recent facility list; it is read-only for them.
type ConversationContext struct {
	ConversationID string    `json:"conversationId"`
	Turns          []Turn    `json:"turns"`
	LastFacilities []string  `json:"lastFacilities,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// LastFacilityID returns the most recently referenced facility id, or "".
func (c ConversationContext) LastFacilityID() string {
	for i := len(c.Turns) - 1; i >= 0; i-- {
		if id, ok := c.Turns[i].Intent.Slots[SlotFacilityID].(string); ok && id != "" {
			return id
		}
	}
	if len(c.LastFacilities) > 0 {
		return c.LastFacilities[0]
	}
	return ""
}

// FacilityAt resolves a 1-based ordinal reference against the last rendered
// facility list. Returns "" when out of range.
func (c ConversationContext) FacilityAt(ordinal int) string {
	if ordinal < 1 || ordinal > len(c.LastFacilities) {
		return ""
	}
	return c.LastFacilities[ordinal-1]
}
