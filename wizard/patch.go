package wizard

import "ari-backend/models"

// Patch is a partial update produced by exactly one step. Only fields that
// are set (non-nil) overwrite the state; the set of implementations is
// closed to this package.
type Patch interface {
	Step() Step
	apply(s *State)
}

// BasicInfoPatch carries the event identity fields and the RSVP-only flag.
type BasicInfoPatch struct {
	Name             *string `json:"name"`
	Date             *string `json:"date"`
	Venue            *string `json:"venue"`
	StartTime        *string `json:"start_time"`
	EndTime          *string `json:"end_time"`
	ChuppahStartTime *string `json:"chuppah_start_time"`
	DressCode        *string `json:"dress_code"`
	LocationMap      *string `json:"location_map"`
	SpecialNotes     *string `json:"special_notes"`
	SkipInvitations  *bool   `json:"skip_invitations"`
}

func (BasicInfoPatch) Step() Step { return StepBasicInfo }

func (p BasicInfoPatch) apply(s *State) {
	set(&s.Name, p.Name)
	set(&s.Date, p.Date)
	set(&s.Venue, p.Venue)
	set(&s.StartTime, p.StartTime)
	set(&s.EndTime, p.EndTime)
	set(&s.ChuppahStartTime, p.ChuppahStartTime)
	set(&s.DressCode, p.DressCode)
	set(&s.LocationMap, p.LocationMap)
	set(&s.SpecialNotes, p.SpecialNotes)
	set(&s.SkipInvitations, p.SkipInvitations)
}

// InvitationPatch carries the invitation template and image reference.
type InvitationPatch struct {
	InvitationMessage  *string `json:"invitation_message"`
	InvitationImageURL *string `json:"invitation_image_url"`
}

func (InvitationPatch) Step() Step { return StepInvitation }

func (p InvitationPatch) apply(s *State) {
	set(&s.InvitationMessage, p.InvitationMessage)
	set(&s.InvitationImageURL, p.InvitationImageURL)
}

// GuestsPatch replaces the roster when Guests is set.
type GuestsPatch struct {
	Guests *[]GuestDraft `json:"guests"`
}

func (GuestsPatch) Step() Step { return StepGuests }

func (p GuestsPatch) apply(s *State) {
	if p.Guests == nil {
		return
	}
	guests := make([]GuestDraft, len(*p.Guests))
	for i, g := range *p.Guests {
		if g.MessagingPreference == "" {
			g.MessagingPreference = models.ChannelSMS
		}
		guests[i] = g
	}
	s.Guests = guests
}

// SchedulingPatch carries the invitation date and the reminder rounds.
type SchedulingPatch struct {
	InvitationSendDate         *string `json:"invitation_send_date"`
	RSVPReminderCount          *int    `json:"rsvp_reminder_count"`
	RSVPReminderDate1          *string `json:"rsvp_reminder_date_1"`
	RSVPReminderDate2          *string `json:"rsvp_reminder_date_2"`
	RSVPReminderDate3          *string `json:"rsvp_reminder_date_3"`
	RSVPSameMessageForAll      *bool   `json:"rsvp_same_message_for_all"`
	RSVPReminderMessageDefault *string `json:"rsvp_reminder_message_default"`
	RSVPReminderMessage1       *string `json:"rsvp_reminder_message_1"`
	RSVPReminderMessage2       *string `json:"rsvp_reminder_message_2"`
	RSVPReminderMessage3       *string `json:"rsvp_reminder_message_3"`
}

func (SchedulingPatch) Step() Step { return StepScheduling }

func (p SchedulingPatch) apply(s *State) {
	set(&s.InvitationSendDate, p.InvitationSendDate)
	set(&s.RSVPReminderCount, p.RSVPReminderCount)
	set(&s.RSVPReminderDate1, p.RSVPReminderDate1)
	set(&s.RSVPReminderDate2, p.RSVPReminderDate2)
	set(&s.RSVPReminderDate3, p.RSVPReminderDate3)
	set(&s.RSVPSameMessageForAll, p.RSVPSameMessageForAll)
	set(&s.RSVPReminderMessageDefault, p.RSVPReminderMessageDefault)
	set(&s.RSVPReminderMessage1, p.RSVPReminderMessage1)
	set(&s.RSVPReminderMessage2, p.RSVPReminderMessage2)
	set(&s.RSVPReminderMessage3, p.RSVPReminderMessage3)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Apply returns s with p applied, for callers that edit persisted schedule
// fields outside a wizard session.
func Apply(s State, p Patch) State {
	out := s.clone()
	p.apply(&out)
	return out
}
