package services

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"ari-backend/models"
)

// GuestFilter narrows a guest table. Empty fields and "all" match every
// guest; the "pending" status also matches guests with no status.
type GuestFilter struct {
	Search  string `form:"search"`
	Status  string `form:"status"`
	Channel string `form:"channel"`
}

func (f GuestFilter) Match(g models.Guest) bool {
	if term := strings.TrimSpace(f.Search); term != "" {
		if !strings.Contains(strings.ToLower(g.Name), strings.ToLower(term)) &&
			!strings.Contains(g.PhoneNumber, term) {
			return false
		}
	}
	switch f.Status {
	case "", "all":
	case string(models.RSVPPending):
		if !g.RSVPStatus.IsPending() {
			return false
		}
	default:
		if string(g.RSVPStatus) != f.Status {
			return false
		}
	}
	if f.Channel != "" && f.Channel != "all" && string(g.MessagingPreference) != f.Channel {
		return false
	}
	return true
}

func (f GuestFilter) Apply(guests []models.Guest) []models.Guest {
	out := make([]models.Guest, 0, len(guests))
	for _, g := range guests {
		if f.Match(g) {
			out = append(out, g)
		}
	}
	return out
}

var exportHeader = []string{"Name", "Phone", "Preference", "Invitation Sent", "RSVP Status", "Last Updated"}

// WriteGuestsCSV writes the guest table export.
func WriteGuestsCSV(w io.Writer, guests []models.Guest) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, g := range guests {
		sent := "No"
		if g.InvitationReceived {
			sent = "Yes"
		}
		updated := ""
		if !g.UpdatedAt.IsZero() {
			updated = g.UpdatedAt.UTC().Format(time.RFC3339)
		}
		if err := cw.Write([]string{g.Name, g.PhoneNumber, string(g.MessagingPreference), sent, string(g.RSVPStatus), updated}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
