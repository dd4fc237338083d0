package services

import (
	"math"

	"ari-backend/models"
)

// RSVPCounts aggregates a guest list for the dashboard and the status row.
type RSVPCounts struct {
	Total           int `json:"total"`
	Attending       int `json:"confirmed"`
	Declined        int `json:"declined"`
	Maybe           int `json:"maybe"`
	Pending         int `json:"pending"`
	InvitationsSent int `json:"invitations_sent"`
	WhatsApp        int `json:"whatsapp"`
	SMS             int `json:"sms"`
}

func CountGuests(guests []models.Guest) RSVPCounts {
	c := RSVPCounts{Total: len(guests)}
	for _, g := range guests {
		switch {
		case g.RSVPStatus.IsAttending():
			c.Attending++
		case g.RSVPStatus == models.RSVPDeclined:
			c.Declined++
		case g.RSVPStatus == models.RSVPMaybe:
			c.Maybe++
		case g.RSVPStatus.IsPending():
			c.Pending++
		}
		if g.InvitationReceived {
			c.InvitationsSent++
		}
		if g.MessagingPreference == models.ChannelWhatsApp {
			c.WhatsApp++
		} else {
			c.SMS++
		}
	}
	return c
}

// AcceptanceRate is the share of guests attending, in whole percent.
func (c RSVPCounts) AcceptanceRate() int {
	if c.Total == 0 {
		return 0
	}
	return int(math.Round(float64(c.Attending) / float64(c.Total) * 100))
}
