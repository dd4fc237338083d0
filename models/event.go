package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Event is created once per wizard launch and owned by the signed-in user.
type Event struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"event_id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`

	// LaunchKey is the idempotency key of the wizard launch that created the
	// event. A retried launch finds the existing row instead of inserting.
	LaunchKey *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"-"`
	Slug      string     `json:"slug"`

	Name               string  `gorm:"not null" json:"name"`
	Date               string  `gorm:"not null" json:"date"`
	Venue              string  `gorm:"not null" json:"venue"`
	StartTime          *string `json:"start_time"`
	EndTime            *string `json:"end_time"`
	ChuppahStartTime   *string `json:"chuppah_start_time"`
	DressCode          *string `json:"dress_code"`
	LocationMap        *string `json:"location_map"`
	SpecialNotes       *string `json:"special_notes"`
	InvitationMessage  *string `gorm:"type:text" json:"invitation_message"`
	InvitationImageURL *string `json:"invitation_image_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Slug == "" {
		e.Slug = slug.Make(e.Name)
	}
	return
}
