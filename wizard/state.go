// Package wizard implements the event-creation wizard: the cumulative form
// state, the five-step controller, per-step validation, guest CSV import and
// the launch orchestration that turns the state into persisted records.
package wizard

import (
	"strings"

	"ari-backend/models"
	"ari-backend/utils"
)

// Defaults a fresh wizard starts from.
const (
	DefaultInvitationMessage = "You're invited to celebrate with us!"
	DefaultReminderMessage   = "Hi! Just a friendly reminder to RSVP. Please reply:\n1️⃣ Coming\n2️⃣ Not Coming\n3️⃣ Ask Me Later"
)

// GuestDraft is a guest held in the wizard until launch.
type GuestDraft struct {
	Name                string         `json:"name"`
	PhoneNumber         string         `json:"phone_number"`
	MessagingPreference models.Channel `json:"messaging_preference"`
	Email               string         `json:"email,omitempty"`
	PlusOneAllowed      bool           `json:"plus_one_allowed,omitempty"`
	DietaryRestrictions string         `json:"dietary_restrictions,omitempty"`
}

// Valid reports whether the draft has a name and a phone number that passes
// the live phone check.
func (g GuestDraft) Valid() bool {
	return strings.TrimSpace(g.Name) != "" && utils.ValidatePhone(g.PhoneNumber)
}

// State accumulates the fields of every step. Fields of a step that has not
// been reached keep their zero value (or the wizard default).
type State struct {
	// basic info
	Name             string `json:"name"`
	Date             string `json:"date"`
	Venue            string `json:"venue"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	ChuppahStartTime string `json:"chuppah_start_time"`
	DressCode        string `json:"dress_code"`
	LocationMap      string `json:"location_map"`
	SpecialNotes     string `json:"special_notes"`
	SkipInvitations  bool   `json:"skip_invitations"`

	// invitation
	InvitationMessage  string `json:"invitation_message"`
	InvitationImageURL string `json:"invitation_image_url"`

	// guests
	Guests []GuestDraft `json:"guests"`

	// scheduling
	InvitationSendDate         string `json:"invitation_send_date"`
	RSVPReminderCount          int    `json:"rsvp_reminder_count"`
	RSVPReminderDate1          string `json:"rsvp_reminder_date_1"`
	RSVPReminderDate2          string `json:"rsvp_reminder_date_2"`
	RSVPReminderDate3          string `json:"rsvp_reminder_date_3"`
	RSVPSameMessageForAll      bool   `json:"rsvp_same_message_for_all"`
	RSVPReminderMessageDefault string `json:"rsvp_reminder_message_default"`
	RSVPReminderMessage1       string `json:"rsvp_reminder_message_1"`
	RSVPReminderMessage2       string `json:"rsvp_reminder_message_2"`
	RSVPReminderMessage3       string `json:"rsvp_reminder_message_3"`
}

// NewState returns the state a new wizard session starts with.
func NewState() State {
	return State{
		InvitationMessage:          DefaultInvitationMessage,
		Guests:                     []GuestDraft{},
		RSVPReminderCount:          1,
		RSVPSameMessageForAll:      true,
		RSVPReminderMessageDefault: DefaultReminderMessage,
	}
}

// ReminderDate returns the date of a reminder round (1-based).
func (s State) ReminderDate(round int) string {
	switch round {
	case 1:
		return s.RSVPReminderDate1
	case 2:
		return s.RSVPReminderDate2
	case 3:
		return s.RSVPReminderDate3
	}
	return ""
}

// ReminderMessage returns the per-round body (1-based), ignoring the default.
func (s State) ReminderMessage(round int) string {
	switch round {
	case 1:
		return s.RSVPReminderMessage1
	case 2:
		return s.RSVPReminderMessage2
	case 3:
		return s.RSVPReminderMessage3
	}
	return ""
}

// clone copies the state so callers never share the guest slice.
func (s State) clone() State {
	out := s
	out.Guests = make([]GuestDraft, len(s.Guests))
	copy(out.Guests, s.Guests)
	return out
}
