package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Channel is the messaging channel a guest prefers.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// ParseChannel maps free text to a channel; anything that is not
// "whatsapp" (case-insensitive) falls back to SMS.
func ParseChannel(value string) Channel {
	if strings.EqualFold(strings.TrimSpace(value), string(ChannelWhatsApp)) {
		return ChannelWhatsApp
	}
	return ChannelSMS
}

// RSVPStatus represents the attendance confirmation status
type RSVPStatus string

const (
	RSVPPending   RSVPStatus = "pending"
	RSVPAttending RSVPStatus = "attending"
	RSVPDeclined  RSVPStatus = "declined"
	RSVPMaybe     RSVPStatus = "maybe"
	// RSVPConfirmed is written by older clients and counts as attending.
	RSVPConfirmed RSVPStatus = "confirmed"
)

// IsPending treats an empty status as pending.
func (s RSVPStatus) IsPending() bool {
	return s == "" || s == RSVPPending
}

func (s RSVPStatus) IsAttending() bool {
	return s == RSVPAttending || s == RSVPConfirmed
}

type Guest struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"guest_id"`
	EventID uuid.UUID `gorm:"type:uuid;index;not null" json:"event_id"`

	Name                string     `gorm:"not null" json:"name"`
	PhoneNumber         string     `gorm:"not null;uniqueIndex" json:"phone_number"`
	RSVPStatus          RSVPStatus `gorm:"column:rsvp_status;type:varchar(20)" json:"rsvp_status"`
	MessagingPreference Channel    `gorm:"type:varchar(20)" json:"messaging_preference"`
	InvitationReceived  bool       `json:"invitation_received"`

	Email               *string `json:"email,omitempty"`
	PlusOneAllowed      bool    `json:"plus_one_allowed"`
	DietaryRestrictions *string `json:"dietary_restrictions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (g *Guest) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.RSVPStatus == "" {
		g.RSVPStatus = RSVPPending
	}
	if g.MessagingPreference == "" {
		g.MessagingPreference = ChannelSMS
	}
	return
}
