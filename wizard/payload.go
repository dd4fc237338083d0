package wizard

import (
	"strings"

	"ari-backend/models"
	"ari-backend/utils"

	"github.com/google/uuid"
)

// optional maps an empty or blank value to nil (a NULL column).
func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// EventFromState builds the event row from the basic-info and invitation
// fields.
func EventFromState(ownerID uuid.UUID, s State, launchKey uuid.UUID) *models.Event {
	return &models.Event{
		UserID:             ownerID,
		LaunchKey:          &launchKey,
		Name:               strings.TrimSpace(s.Name),
		Date:               strings.TrimSpace(s.Date),
		Venue:              strings.TrimSpace(s.Venue),
		StartTime:          optional(s.StartTime),
		EndTime:            optional(s.EndTime),
		ChuppahStartTime:   optional(s.ChuppahStartTime),
		DressCode:          optional(s.DressCode),
		LocationMap:        optional(s.LocationMap),
		SpecialNotes:       optional(s.SpecialNotes),
		InvitationMessage:  optional(s.InvitationMessage),
		InvitationImageURL: optional(s.InvitationImageURL),
	}
}

// GuestsFromState tags every draft with the event id. In RSVP-only mode the
// guests were invited elsewhere, so they start with invitation_received set.
func GuestsFromState(eventID uuid.UUID, s State) []models.Guest {
	guests := make([]models.Guest, 0, len(s.Guests))
	for _, g := range s.Guests {
		channel := g.MessagingPreference
		if channel == "" {
			channel = models.ChannelSMS
		}
		guests = append(guests, models.Guest{
			EventID:             eventID,
			Name:                strings.TrimSpace(g.Name),
			PhoneNumber:         utils.CleanPhone(g.PhoneNumber),
			RSVPStatus:          models.RSVPPending,
			MessagingPreference: channel,
			InvitationReceived:  s.SkipInvitations,
			Email:               optional(g.Email),
			PlusOneAllowed:      g.PlusOneAllowed,
			DietaryRestrictions: optional(g.DietaryRestrictions),
		})
	}
	return guests
}

// EventStatusFromState builds the status row. Every guest starts pending.
func EventStatusFromState(eventID uuid.UUID, s State) *models.EventStatus {
	total := len(s.Guests)
	status := &models.EventStatus{
		EventID:                    eventID,
		EventName:                  strings.TrimSpace(s.Name),
		ClientConfirmationReceived: true,
		InvitationsSentOut:         s.SkipInvitations,
		GuestListReceived:          total > 0,
		RSVPReminderCount:          s.RSVPReminderCount,
		RSVPReminderDate1:          optional(s.RSVPReminderDate1),
		RSVPReminderDate2:          optional(s.RSVPReminderDate2),
		RSVPReminderDate3:          optional(s.RSVPReminderDate3),
		RSVPReminderStage:          models.ReminderStageNotStarted,
		RSVPSameMessageForAll:      s.RSVPSameMessageForAll,
		RSVPReminderMessageDefault: s.RSVPReminderMessageDefault,
		RSVPReminderMessage1:       optional(s.RSVPReminderMessage1),
		RSVPReminderMessage2:       optional(s.RSVPReminderMessage2),
		RSVPReminderMessage3:       optional(s.RSVPReminderMessage3),
		TotalGuests:                total,
		TotalPending:               total,
	}
	if !s.SkipInvitations {
		status.InvitationSendDate = optional(s.InvitationSendDate)
	}
	return status
}
