// models/reminder_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DispatchInvitation = "invitation"
	DispatchReminder   = "reminder"

	DispatchSent   = "sent"
	DispatchFailed = "failed"
)

// ReminderLog records one outbound message to one guest.
type ReminderLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EventID      uuid.UUID `gorm:"type:uuid;index;not null" json:"event_id"`
	GuestID      uuid.UUID `gorm:"type:uuid;index;not null" json:"guest_id"`
	Kind         string    `gorm:"type:varchar(20)" json:"kind"` // invitation, reminder
	Round        int       `json:"round"`
	Message      string    `gorm:"type:text" json:"message"`
	Status       string    `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	Channel      Channel   `gorm:"type:varchar(20)" json:"channel"`
	ProviderSID  string    `json:"provider_sid,omitempty"`
	SentAt       time.Time `json:"sent_at"`
}

func (r *ReminderLog) BeforeCreate(tx *gorm.DB) (err error) {
	r.ID = uuid.New()
	return
}
