// internal/models/action.go
package models

import "time"

// ActionType is the closed executor key set. Every value here must have an
// executor wired into the registry at startup; Dispatch rejects anything else.
type ActionType string

const (
	ActionWaitlistJoin       ActionType = "waitlist_join"
	ActionInterestAdd        ActionType = "interest_add"
	ActionInterestRemove     ActionType = "interest_remove"
	ActionSubscriptionCancel ActionType = "subscription_cancel"
)

// AllActionTypes lists every executor key, in declaration order.
var AllActionTypes = []ActionType{
	ActionWaitlistJoin,
	ActionInterestAdd,
	ActionInterestRemove,
	ActionSubscriptionCancel,
}

// ActionStatus is the ActionIntent state machine value. Transitions are
// one-way: pending -> confirmed -> executed|failed, pending -> expired,
// pending -> cancelled. Nothing ever returns to pending.
type ActionStatus string

const (
	StatusPending   ActionStatus = "pending"
	StatusConfirmed ActionStatus = "confirmed"
	StatusExecuted  ActionStatus = "executed"
	StatusExpired   ActionStatus = "expired"
	StatusFailed    ActionStatus = "failed"
	StatusCancelled ActionStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
// Confirmed is not terminal: execution resolves it to executed or failed.
func (s ActionStatus) Terminal() bool {
	switch s {
	case StatusExecuted, StatusExpired, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// ActionIntent is a staged, user-bound, time-boxed mutation awaiting explicit
// confirmation. Status is only ever moved by the store's conditional
// transitions; the preview is computed once at creation from the same params
// that are later dispatched to the executor.
type ActionIntent struct {
	ID            string                 `json:"id"`
	UserID        string                 `json:"userId"`
	ActionType    ActionType             `json:"actionType"`
	Params        map[string]interface{} `json:"params"`
	Preview       string                 `json:"preview"`
	Status        ActionStatus           `json:"status"`
	CreatedAt     time.Time              `json:"createdAt"`
	ExpiresAt     time.Time              `json:"expiresAt"`
	ExecutedAt    *time.Time             `json:"executedAt,omitempty"`
	ResultSummary string                 `json:"resultSummary,omitempty"`
	FailureReason string                 `json:"failureReason,omitempty"`
}

// Expired reports lazy expiry: a pending record past its deadline is treated
// as expired at read time regardless of what is stored.
func (a *ActionIntent) Expired(now time.Time) bool {
	return a.Status == StatusPending && now.After(a.ExpiresAt)
}

// ActionResult is what an executor returns on success. Message is rendered
// back to the user on the next turn; Data feeds follow-up blocks.
type ActionResult struct {
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
