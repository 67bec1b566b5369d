// internal/models/block.go
package models

import "time"

// BlockType enumerates the renderable chat output units.
type BlockType string

const (
	BlockText             BlockType = "text"
	BlockFacilityCardList BlockType = "facility-card-list"
	BlockQuickActionList  BlockType = "quick-action-list"
	BlockConfirmationCard BlockType = "confirmation-card"
	BlockError            BlockType = "error"
)

// Block is one renderable unit of an assistant reply. Blocks are emitted in
// order and immutable once emitted; a confirmation card only references an
// ActionIntent id, it carries no execution authority itself.
type Block struct {
	Type         BlockType     `json:"type"`
	Text         string        `json:"text,omitempty"`
	Facilities   []Facility    `json:"facilities,omitempty"`
	QuickActions []QuickAction `json:"quickActions,omitempty"`
	Confirmation *Confirmation `json:"confirmation,omitempty"`
	ErrorCode    string        `json:"errorCode,omitempty"`
}

// Confirmation is the payload of a confirmation-card block.
type Confirmation struct {
	ActionIntentID string    `json:"actionIntentId"`
	ActionType     string    `json:"actionType"`
	Preview        string    `json:"preview"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// QuickAction is one entry of the closed quick-action table. Exactly one of
// Route or Utterance is set: Route navigates, Utterance re-enters the
// classifier loop as if the user had typed it.
type QuickAction struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Route     string `json:"route,omitempty"`
	Utterance string `json:"utterance,omitempty"`
}
