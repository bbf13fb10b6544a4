package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Trip struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	TenantID uuid.UUID `gorm:"type:uuid;column:tenant_id;not null;index" json:"tenant_id"`
	Title    string    `gorm:"column:title;not null" json:"title"`

	Currency   string  `gorm:"column:currency;not null;default:'EUR'" json:"currency"`
	TotalPrice float64 `gorm:"column:total_price;not null;default:0" json:"total_price"`

	StartDate *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Trip) TableName() string { return "trip" }

type TripDay struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	TripID uuid.UUID `gorm:"type:uuid;column:trip_id;not null;index" json:"trip_id"`
	Trip   *Trip     `gorm:"constraint:OnDelete:CASCADE;foreignKey:TripID;references:ID" json:"trip,omitempty"`

	DayNumber int       `gorm:"column:day_number;not null" json:"day_number"`
	Date      time.Time `gorm:"column:date;not null" json:"date"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TripDay) TableName() string { return "trip_day" }

type TripEntry struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	DayID uuid.UUID `gorm:"type:uuid;column:day_id;not null;index" json:"day_id"`
	Day   *TripDay  `gorm:"constraint:OnDelete:CASCADE;foreignKey:DayID;references:ID" json:"day,omitempty"`

	ActivityID *uuid.UUID `gorm:"type:uuid;column:activity_id;index" json:"activity_id,omitempty"`

	Title           string  `gorm:"column:title;not null" json:"title"`
	TimeSlot        string  `gorm:"column:time_slot;not null;default:'unslotted';index" json:"time_slot"`
	DurationMinutes int     `gorm:"column:duration_minutes;not null;default:0" json:"duration_minutes"`
	Price           float64 `gorm:"column:price;not null;default:0" json:"price"`
	Currency        string  `gorm:"column:currency;not null;default:'EUR'" json:"currency"`

	// AgencyLocked entries were placed by the agency and are never displaced.
	AgencyLocked bool `gorm:"column:agency_locked;not null;default:false" json:"agency_locked"`

	Position int `gorm:"column:position;not null;default:0" json:"position"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (TripEntry) TableName() string { return "trip_entry" }
