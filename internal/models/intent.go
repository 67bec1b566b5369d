// internal/models/intent.go
package models

// IntentType identifies one interpretation of a user utterance.
// The set is closed; adding a type means wiring a rule in the classifier
// and, for mutating types, an executor in the registry.
type IntentType string

const (
	IntentSearch             IntentType = "search"
	IntentCompare            IntentType = "compare"
	IntentRecommend          IntentType = "recommend"
	IntentWaitlistJoin       IntentType = "waitlist_join"
	IntentInterestAdd        IntentType = "interest_add"
	IntentInterestRemove     IntentType = "interest_remove"
	IntentSubscriptionCancel IntentType = "subscription_cancel"
	IntentUnknown            IntentType = "unknown"
)

// Mutating reports whether an intent of this type stages a side-effecting
// action (and therefore requires explicit confirmation).
func (t IntentType) Mutating() bool {
	switch t {
	case IntentWaitlistJoin, IntentInterestAdd, IntentInterestRemove, IntentSubscriptionCancel:
		return true
	}
	return false
}

// ActionType returns the executor key for a mutating intent, or "" for
// informational intents.
func (t IntentType) ActionType() ActionType {
	switch t {
	case IntentWaitlistJoin:
		return ActionWaitlistJoin
	case IntentInterestAdd:
		return ActionInterestAdd
	case IntentInterestRemove:
		return ActionInterestRemove
	case IntentSubscriptionCancel:
		return ActionSubscriptionCancel
	}
	return ""
}

// Intent is the classifier output for a single utterance. Immutable once
// produced.
type Intent struct {
	Type       IntentType             `json:"type"`
	Confidence float64                `json:"confidence"`
	Slots      map[string]interface{} `json:"slots"`
	RawText    string                 `json:"rawText"`
}

// Slot names shared between the extractor, the responder and the executors.
const (
	SlotFacilityID  = "facilityId"
	SlotFacilityIDs = "facilityIds"
	SlotChildAge    = "childAge"
	SlotRegion      = "region"
	SlotKeywords    = "keywords"
	SlotReason      = "reason"
)
