package wizard

import (
	"strings"

	"ari-backend/utils"
)

// Placeholders are the values substituted into invitation and reminder
// templates.
type Placeholders struct {
	GuestName string
	EventName string
	Date      string
	Venue     string
}

// Render replaces every occurrence of {guest_name}, {event_name}, {date} and
// {venue}. Unknown tokens are left as written.
func Render(template string, p Placeholders) string {
	return strings.NewReplacer(
		"{guest_name}", p.GuestName,
		"{event_name}", p.EventName,
		"{date}", p.Date,
		"{venue}", p.Venue,
	).Replace(template)
}

// PreviewPlaceholders are the example values shown while authoring.
func PreviewPlaceholders(s State) Placeholders {
	p := Placeholders{
		GuestName: "John Doe",
		EventName: "Event Name",
		Date:      "Date",
		Venue:     "Venue",
	}
	if v := strings.TrimSpace(s.Name); v != "" {
		p.EventName = v
	}
	if v := strings.TrimSpace(s.Date); v != "" {
		p.Date = utils.FormatLongDate(v)
	}
	if v := strings.TrimSpace(s.Venue); v != "" {
		p.Venue = v
	}
	return p
}

// Preview renders the invitation message with example values.
func Preview(s State) string {
	return Render(s.InvitationMessage, PreviewPlaceholders(s))
}
