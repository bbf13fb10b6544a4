package domain

// Time slot labels for the fixed 3-window day model.
const (
	SlotMorning   = "morning"
	SlotAfternoon = "afternoon"
	SlotEvening   = "evening"
	SlotUnslotted = "unslotted"
)

// Placement policies controlling how existing trip entries are treated.
const (
	PolicyStrict     = "strict"
	PolicyBalanced   = "balanced"
	PolicyAggressive = "aggressive"
)

// Personalization session lifecycle.
const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionConfirmed  = "confirmed"
	SessionAbandoned  = "abandoned"
)

// Swipe actions.
const (
	ActionLiked  = "liked"
	ActionPassed = "passed"
	ActionSaved  = "saved"
)

// Cart item fit outcomes.
const (
	FitPending = "pending"
	FitFitted  = "fitted"
	FitMissed  = "missed"
	FitSwapped = "swapped"
)

// Cart item lifecycle.
const (
	CartPending   = "pending"
	CartConfirmed = "confirmed"
	CartCancelled = "cancelled"
)

func ValidPolicy(p string) bool {
	switch p {
	case PolicyStrict, PolicyBalanced, PolicyAggressive:
		return true
	default:
		return false
	}
}

func ValidSlot(s string) bool {
	switch s {
	case SlotMorning, SlotAfternoon, SlotEvening:
		return true
	default:
		return false
	}
}
