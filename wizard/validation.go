package wizard

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"ari-backend/models"
	"ari-backend/utils"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a field name (the state's JSON name) to a message.
type FieldErrors map[string]string

func (fe FieldErrors) Valid() bool {
	return len(fe) == 0
}

// Fields returns the failing field names in a stable order.
func (fe FieldErrors) Fields() []string {
	names := make([]string, 0, len(fe))
	for name := range fe {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrStepInvalid is matched by every *StepError.
var ErrStepInvalid = errors.New("wizard: step is incomplete")

// StepError reports why a step cannot be left.
type StepError struct {
	Step   Step
	Fields FieldErrors
}

func (e *StepError) Error() string {
	return fmt.Sprintf("wizard: %s step is incomplete: %s", e.Step, strings.Join(e.Fields.Fields(), ", "))
}

func (e *StepError) Unwrap() error {
	return ErrStepInvalid
}

// ValidateStep dispatches to the validator of one step. The review step has
// nothing of its own to validate.
func ValidateStep(step Step, s State) FieldErrors {
	switch step {
	case StepBasicInfo:
		return ValidateBasicInfo(s)
	case StepInvitation:
		return ValidateInvitation(s)
	case StepGuests:
		return ValidateGuests(s.Guests)
	case StepScheduling:
		return ValidateScheduling(s)
	}
	return FieldErrors{}
}

type basicInfoFields struct {
	Name        string `json:"name" validate:"required,min=2"`
	Date        string `json:"date" validate:"required"`
	Venue       string `json:"venue" validate:"required,min=2"`
	StartTime   string `json:"start_time" validate:"required"`
	LocationMap string `json:"location_map" validate:"omitempty,http_url"`
}

var fieldLabels = map[string]string{
	"name":         "Event name",
	"date":         "Date",
	"venue":        "Venue",
	"start_time":   "Start time",
	"location_map": "Map link",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateBasicInfo checks the identity fields after trimming whitespace.
func ValidateBasicInfo(s State) FieldErrors {
	in := basicInfoFields{
		Name:        strings.TrimSpace(s.Name),
		Date:        strings.TrimSpace(s.Date),
		Venue:       strings.TrimSpace(s.Venue),
		StartTime:   strings.TrimSpace(s.StartTime),
		LocationMap: strings.TrimSpace(s.LocationMap),
	}
	fields := FieldErrors{}
	err := validate.Struct(in)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fields
	}
	for _, fe := range verrs {
		label := fieldLabels[fe.Field()]
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = label + " is required"
		case "min":
			fields[fe.Field()] = fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		case "http_url":
			fields[fe.Field()] = label + " must be a valid http(s) URL"
		default:
			fields[fe.Field()] = label + " is invalid"
		}
	}
	return fields
}

// ValidateInvitation requires a message unless the event is RSVP-only, in
// which case the step can be skipped.
func ValidateInvitation(s State) FieldErrors {
	fields := FieldErrors{}
	if !s.SkipInvitations && strings.TrimSpace(s.InvitationMessage) == "" {
		fields["invitation_message"] = "Invitation message is required"
	}
	return fields
}

// ValidateGuests requires a non-empty roster where every guest has a name
// and a valid phone number that no earlier guest uses.
func ValidateGuests(guests []GuestDraft) FieldErrors {
	fields := FieldErrors{}
	if len(guests) == 0 {
		fields["guests"] = "Add at least one guest"
		return fields
	}
	seen := make(map[string]int, len(guests))
	for i, g := range guests {
		if strings.TrimSpace(g.Name) == "" {
			fields[fmt.Sprintf("guests[%d].name", i)] = "Name is required"
		}
		if !utils.ValidatePhone(g.PhoneNumber) {
			fields[fmt.Sprintf("guests[%d].phone_number", i)] = "Invalid phone number"
			continue
		}
		phone := utils.CleanPhone(g.PhoneNumber)
		if first, ok := seen[phone]; ok {
			fields[fmt.Sprintf("guests[%d].phone_number", i)] = fmt.Sprintf("Same phone number as guest %d", first+1)
			continue
		}
		seen[phone] = i
	}
	return fields
}

// ValidateScheduling is the conjunction of the date and message rules for
// the active reminder rounds.
func ValidateScheduling(s State) FieldErrors {
	fields := FieldErrors{}
	if !s.SkipInvitations && blank(s.InvitationSendDate) {
		fields["invitation_send_date"] = "Invitation send date is required"
	}

	count := s.RSVPReminderCount
	if count < 1 || count > models.MaxReminderRounds {
		fields["rsvp_reminder_count"] = fmt.Sprintf("Reminder count must be between 1 and %d", models.MaxReminderRounds)
		count = max(1, min(count, models.MaxReminderRounds))
	}

	for round := 1; round <= count; round++ {
		if blank(s.ReminderDate(round)) {
			fields[fmt.Sprintf("rsvp_reminder_date_%d", round)] = fmt.Sprintf("Reminder %d date is required", round)
		}
	}

	if s.RSVPSameMessageForAll {
		if blank(s.RSVPReminderMessageDefault) {
			fields["rsvp_reminder_message_default"] = "Reminder message is required"
		}
	} else {
		for round := 1; round <= count; round++ {
			if blank(s.ReminderMessage(round)) {
				fields[fmt.Sprintf("rsvp_reminder_message_%d", round)] = fmt.Sprintf("Reminder %d message is required", round)
			}
		}
	}

	if !s.SkipInvitations && !blank(s.InvitationSendDate) && !blank(s.RSVPReminderDate1) {
		invite, errInvite := utils.ParseDate(s.InvitationSendDate)
		first, errFirst := utils.ParseDate(s.RSVPReminderDate1)
		if errInvite == nil && errFirst == nil && !first.After(invite) {
			fields["rsvp_reminder_date_1"] = "Reminder date must be after invitation date"
		}
	}
	return fields
}

func blank(v string) bool {
	return strings.TrimSpace(v) == ""
}
