package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity is the catalog row the personalization engine reads. CRUD lives
// elsewhere; only the fields the engine consumes are modeled here.
type Activity struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	TenantID uuid.UUID `gorm:"type:uuid;column:tenant_id;not null;index" json:"tenant_id"`

	Title  string `gorm:"column:title;not null" json:"title"`
	Active bool   `gorm:"column:active;not null;default:true;index" json:"active"`

	Price    float64 `gorm:"column:price;not null;default:0" json:"price"`
	Currency string  `gorm:"column:currency;not null;default:'EUR'" json:"currency"`

	DurationValue int    `gorm:"column:duration_value;not null;default:0" json:"duration_value"`
	DurationUnit  string `gorm:"column:duration_unit;not null;default:'minutes'" json:"duration_unit"`

	PreferredSlot string `gorm:"column:preferred_slot" json:"preferred_slot,omitempty"`

	// BlockedWeekdaysJSON holds int weekdays (time.Weekday numbering, Sunday=0).
	BlockedWeekdaysJSON datatypes.JSON `gorm:"column:blocked_weekdays;type:jsonb" json:"blocked_weekdays,omitempty"`

	CategoryID *uuid.UUID     `gorm:"type:uuid;column:category_id;index" json:"category_id,omitempty"`
	TagsJSON   datatypes.JSON `gorm:"column:tags;type:jsonb" json:"tags,omitempty"`

	Rating      float64 `gorm:"column:rating;not null;default:0" json:"rating"`
	ReviewCount int     `gorm:"column:review_count;not null;default:0" json:"review_count"`
	Featured    bool    `gorm:"column:featured;not null;default:false" json:"featured"`

	LocationText   string         `gorm:"column:location_text" json:"location_text,omitempty"`
	Description    string         `gorm:"column:description;type:text" json:"description,omitempty"`
	ImagesJSON     datatypes.JSON `gorm:"column:images;type:jsonb" json:"images,omitempty"`
	HighlightsJSON datatypes.JSON `gorm:"column:highlights;type:jsonb" json:"highlights,omitempty"`

	Latitude  *float64 `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"column:longitude" json:"longitude,omitempty"`

	ReadinessScore float64 `gorm:"column:readiness_score;not null;default:0" json:"readiness_score"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Activity) TableName() string { return "activity" }

func (a *Activity) Tags() []string {
	return decodeStrings(a.TagsJSON)
}

func (a *Activity) Images() []string {
	return decodeStrings(a.ImagesJSON)
}

func (a *Activity) Highlights() []string {
	return decodeStrings(a.HighlightsJSON)
}

func (a *Activity) BlockedWeekdays() []time.Weekday {
	if len(a.BlockedWeekdaysJSON) == 0 {
		return nil
	}
	var raw []int
	if err := json.Unmarshal(a.BlockedWeekdaysJSON, &raw); err != nil {
		return nil
	}
	out := make([]time.Weekday, 0, len(raw))
	for _, d := range raw {
		if d >= 0 && d <= 6 {
			out = append(out, time.Weekday(d))
		}
	}
	return out
}

func (a *Activity) WeekdayBlocked(d time.Weekday) bool {
	for _, b := range a.BlockedWeekdays() {
		if b == d {
			return true
		}
	}
	return false
}

func (a *Activity) HeroImage() string {
	imgs := a.Images()
	if len(imgs) == 0 {
		return ""
	}
	return imgs[0]
}

func decodeStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func EncodeStrings(vals []string) datatypes.JSON {
	if len(vals) == 0 {
		return nil
	}
	raw, err := json.Marshal(vals)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func EncodeInts(vals []int) datatypes.JSON {
	if len(vals) == 0 {
		return nil
	}
	raw, err := json.Marshal(vals)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
