package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReminderStageNotStarted is the stage of an event before any reminder round
// went out.
const ReminderStageNotStarted = "not started"

// MaxReminderRounds bounds rsvp_reminder_count.
const MaxReminderRounds = 3

// ReminderStage names the stage after the given round was dispatched.
func ReminderStage(round int) string {
	if round <= 0 {
		return ReminderStageNotStarted
	}
	return fmt.Sprintf("reminder %d sent", round)
}

// EventStatus carries the schedule and the aggregate RSVP counters of one
// event. It is upserted keyed by event id.
type EventStatus struct {
	EventID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"event_id"`
	EventName string    `json:"event_name"`

	InvitationSendDate         *string `json:"invitation_send_date"`
	ClientConfirmationReceived bool    `json:"client_confirmation_received"`
	InvitationsSentOut         bool    `json:"invitations_sent_out"`
	GuestListReceived          bool    `json:"guest_list_received"`

	RSVPReminderCount int     `gorm:"column:rsvp_reminder_count" json:"rsvp_reminder_count"`
	RSVPReminderDate1 *string `gorm:"column:rsvp_reminder_date_1" json:"rsvp_reminder_date_1"`
	RSVPReminderDate2 *string `gorm:"column:rsvp_reminder_date_2" json:"rsvp_reminder_date_2"`
	RSVPReminderDate3 *string `gorm:"column:rsvp_reminder_date_3" json:"rsvp_reminder_date_3"`
	RSVPReminderStage string  `gorm:"column:rsvp_reminder_stage" json:"rsvp_reminder_stage"`
	RSVPRemindersSent int     `gorm:"column:rsvp_reminders_sent" json:"rsvp_reminders_sent"`

	RSVPSameMessageForAll      bool    `gorm:"column:rsvp_same_message_for_all" json:"rsvp_same_message_for_all"`
	RSVPReminderMessageDefault string  `gorm:"column:rsvp_reminder_message_default;type:text" json:"rsvp_reminder_message_default"`
	RSVPReminderMessage1       *string `gorm:"column:rsvp_reminder_message_1;type:text" json:"rsvp_reminder_message_1"`
	RSVPReminderMessage2       *string `gorm:"column:rsvp_reminder_message_2;type:text" json:"rsvp_reminder_message_2"`
	RSVPReminderMessage3       *string `gorm:"column:rsvp_reminder_message_3;type:text" json:"rsvp_reminder_message_3"`

	TotalGuests    int `json:"total_guests"`
	TotalConfirmed int `json:"total_confirmed"`
	TotalPending   int `json:"total_pending"`
	TotalDeclined  int `json:"total_declined"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (EventStatus) TableName() string {
	return "event_status"
}

// ReminderDate returns the scheduled date of a round (1-based), or nil.
func (s *EventStatus) ReminderDate(round int) *string {
	switch round {
	case 1:
		return s.RSVPReminderDate1
	case 2:
		return s.RSVPReminderDate2
	case 3:
		return s.RSVPReminderDate3
	}
	return nil
}

// ReminderMessage returns the body for a round, honouring the shared default.
func (s *EventStatus) ReminderMessage(round int) string {
	if s.RSVPSameMessageForAll {
		return s.RSVPReminderMessageDefault
	}
	var msg *string
	switch round {
	case 1:
		msg = s.RSVPReminderMessage1
	case 2:
		msg = s.RSVPReminderMessage2
	case 3:
		msg = s.RSVPReminderMessage3
	}
	if msg == nil || *msg == "" {
		return s.RSVPReminderMessageDefault
	}
	return *msg
}
