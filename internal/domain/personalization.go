package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PersonalizationSession is one personalization attempt against one trip.
// Lifecycle: in_progress -> completed -> confirmed | abandoned. Nothing leaves
// confirmed or abandoned.
type PersonalizationSession struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	TripID   uuid.UUID `gorm:"type:uuid;column:trip_id;not null;index" json:"trip_id"`
	Trip     *Trip     `gorm:"constraint:OnDelete:CASCADE;foreignKey:TripID;references:ID" json:"trip,omitempty"`
	TenantID uuid.UUID `gorm:"type:uuid;column:tenant_id;not null;index" json:"tenant_id"`

	PreferenceTagsJSON datatypes.JSON `gorm:"column:preference_tags;type:jsonb" json:"preference_tags,omitempty"`
	DeckSize           int            `gorm:"column:deck_size;not null;default:20" json:"deck_size"`

	ViewedCount int `gorm:"column:viewed_count;not null;default:0" json:"viewed_count"`
	LikedCount  int `gorm:"column:liked_count;not null;default:0" json:"liked_count"`
	PassedCount int `gorm:"column:passed_count;not null;default:0" json:"passed_count"`
	SavedCount  int `gorm:"column:saved_count;not null;default:0" json:"saved_count"`

	TotalSwipeMS int64 `gorm:"column:total_swipe_ms;not null;default:0" json:"total_swipe_ms"`

	Status string `gorm:"column:status;not null;default:'in_progress';index" json:"status"`

	StartedAt   time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	ConfirmedAt *time.Time `gorm:"column:confirmed_at" json:"confirmed_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (PersonalizationSession) TableName() string { return "personalization_session" }

func (s *PersonalizationSession) PreferenceTags() []string {
	return decodeStrings(s.PreferenceTagsJSON)
}

// Terminal reports whether no further transitions are allowed.
func (s *PersonalizationSession) Terminal() bool {
	return s.Status == SessionConfirmed || s.Status == SessionAbandoned
}

// DeckInteraction is an append-only log row per swipe. Never mutated.
type DeckInteraction struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	SessionID  uuid.UUID `gorm:"type:uuid;column:session_id;not null;index" json:"session_id"`
	ActivityID uuid.UUID `gorm:"type:uuid;column:activity_id;not null;index" json:"activity_id"`

	Action         string  `gorm:"column:action;not null" json:"action"`
	ViewDurationMS int64   `gorm:"column:view_duration_ms;not null;default:0" json:"view_duration_ms"`
	DeckPosition   int     `gorm:"column:deck_position;not null;default:0" json:"deck_position"`
	SwipeSpeed     float64 `gorm:"column:swipe_speed;not null;default:0" json:"swipe_speed"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (DeckInteraction) TableName() string { return "deck_interaction" }

// CartItem tracks one liked/saved activity per session. Unique per
// (session, activity) among non-cancelled rows. QuotedPrice is frozen at swipe
// time and never recalculated from the activity's current price.
type CartItem struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	SessionID  uuid.UUID `gorm:"type:uuid;column:session_id;not null;index:idx_cart_session_activity" json:"session_id"`
	TripID     uuid.UUID `gorm:"type:uuid;column:trip_id;not null;index" json:"trip_id"`
	ActivityID uuid.UUID `gorm:"type:uuid;column:activity_id;not null;index:idx_cart_session_activity" json:"activity_id"`

	// Source records which swipe action put the row in the cart.
	Source string `gorm:"column:source;not null;default:'liked'" json:"source"`

	QuotedPrice float64 `gorm:"column:quoted_price;not null;default:0" json:"quoted_price"`
	Currency    string  `gorm:"column:currency;not null;default:'EUR'" json:"currency"`

	PlacedDayID  *uuid.UUID `gorm:"type:uuid;column:placed_day_id" json:"placed_day_id,omitempty"`
	AssignedSlot *string    `gorm:"column:assigned_slot" json:"assigned_slot,omitempty"`

	FitStatus string `gorm:"column:fit_status;not null;default:'pending';index" json:"fit_status"`
	FitReason string `gorm:"column:fit_reason" json:"fit_reason,omitempty"`

	SwapCandidateID *uuid.UUID `gorm:"type:uuid;column:swap_candidate_id" json:"swap_candidate_id,omitempty"`

	Status string `gorm:"column:status;not null;default:'pending';index" json:"status"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CartItem) TableName() string { return "cart_item" }
