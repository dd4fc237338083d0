package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is an inbound guest reply. Replies the RSVP parser could not
// classify are flagged for a human.
type Message struct {
	ID      uuid.UUID  `gorm:"type:uuid;primary_key" json:"message_id"`
	EventID *uuid.UUID `gorm:"type:uuid;index" json:"event_id"`
	GuestID *uuid.UUID `gorm:"type:uuid;index" json:"guest_id"`

	Message            string  `gorm:"type:text;not null" json:"message"`
	Response           *string `gorm:"type:text" json:"response,omitempty"`
	Channel            Channel `gorm:"type:varchar(20)" json:"channel"`
	NeedsHumanFollowup bool    `gorm:"index" json:"needs_human_followup"`

	CreatedAt time.Time `json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
