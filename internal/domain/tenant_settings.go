package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TenantSettings carries the per-tenant personalization knobs the engine reads.
type TenantSettings struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	TenantID uuid.UUID `gorm:"type:uuid;column:tenant_id;not null;uniqueIndex" json:"tenant_id"`

	PersonalizationEnabled bool `gorm:"column:personalization_enabled;not null;default:true" json:"personalization_enabled"`

	DefaultDeckSize  int     `gorm:"column:default_deck_size;not null;default:20" json:"default_deck_size"`
	PlacementPolicy  string  `gorm:"column:placement_policy;not null;default:'balanced'" json:"placement_policy"`
	MaxActivityPrice float64 `gorm:"column:max_activity_price;not null;default:0" json:"max_activity_price"`

	AllowedCategoriesJSON datatypes.JSON `gorm:"column:allowed_categories;type:jsonb" json:"allowed_categories,omitempty"`

	// PaymentInfoJSON is passed through to the reveal payload untouched.
	PaymentInfoJSON datatypes.JSON `gorm:"column:payment_info;type:jsonb" json:"payment_info,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TenantSettings) TableName() string { return "tenant_settings" }

func (s *TenantSettings) AllowedCategories() []uuid.UUID {
	if len(s.AllowedCategoriesJSON) == 0 {
		return nil
	}
	var raw []string
	if err := json.Unmarshal(s.AllowedCategoriesJSON, &raw); err != nil {
		return nil
	}
	out := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		id, err := uuid.Parse(v)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (s *TenantSettings) PaymentInfo() map[string]interface{} {
	if len(s.PaymentInfoJSON) == 0 {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(s.PaymentInfoJSON, &out); err != nil {
		return nil
	}
	return out
}
