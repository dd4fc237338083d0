package controllers

import (
	"net/http"
	"strings"
	"testing"

	"ari-backend/models"
	"ari-backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *testServer) withGuestRoutes() *testServer {
	s.api.GET("/events/:id/guests", GetGuests)
	s.api.POST("/events/:id/guests", CreateGuest)
	s.api.GET("/events/:id/guests/export", ExportGuests)
	s.api.PUT("/events/:id/guests/:guestId", UpdateGuest)
	s.api.DELETE("/events/:id/guests/:guestId", DeleteGuest)
	return s
}

func seedGuests() []models.Guest {
	return []models.Guest{
		{Name: "Alice Smith", PhoneNumber: "+15550000001", RSVPStatus: models.RSVPAttending},
		{Name: "Bob Jones", PhoneNumber: "+15550000002", MessagingPreference: models.ChannelWhatsApp},
		{Name: "Carol Smith", PhoneNumber: "+15550000003", RSVPStatus: models.RSVPDeclined},
	}
}

func TestGetGuestsFilters(t *testing.T) {
	s := newTestServer(t).withGuestRoutes()
	event, _ := testutil.SeedEvent(t, s.db, s.userID, "Gala", seedGuests()...)
	base := "/api/events/" + event.ID.String() + "/guests"

	cases := []struct {
		query string
		names []string
	}{
		{"", []string{"Alice Smith", "Bob Jones", "Carol Smith"}},
		{"?search=smith", []string{"Alice Smith", "Carol Smith"}},
		{"?search=0002", []string{"Bob Jones"}},
		{"?status=pending", []string{"Bob Jones"}},
		{"?status=all&channel=sms", []string{"Alice Smith", "Carol Smith"}},
		{"?search=smith&status=declined", []string{"Carol Smith"}},
	}
	for _, tc := range cases {
		w := s.do(http.MethodGet, base+tc.query, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var guests []models.Guest
		decode(t, w, &guests)
		var names []string
		for _, g := range guests {
			names = append(names, g.Name)
		}
		assert.Equal(t, tc.names, names, tc.query)
	}
}

func TestCreateGuestValidatesAndRecounts(t *testing.T) {
	s := newTestServer(t).withGuestRoutes()
	event, _ := testutil.SeedEvent(t, s.db, s.userID, "Gala", seedGuests()...)
	path := "/api/events/" + event.ID.String() + "/guests"

	w := s.do(http.MethodPost, path, map[string]string{"name": "Dan", "phone_number": "12"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, path, map[string]string{"name": "Dan", "phone_number": "+1 (555) 000-0009", "messaging_preference": "whatsapp"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var guest models.Guest
	decode(t, w, &guest)
	assert.Equal(t, "+15550000009", guest.PhoneNumber)
	assert.Equal(t, models.ChannelWhatsApp, guest.MessagingPreference)
	assert.Equal(t, models.RSVPPending, guest.RSVPStatus)

	var status models.EventStatus
	require.NoError(t, s.db.First(&status, "event_id = ?", event.ID).Error)
	assert.Equal(t, 4, status.TotalGuests)
	assert.Equal(t, 2, status.TotalPending)

	w = s.do(http.MethodPost, path, map[string]string{"name": "Dup", "phone_number": "+15550000001"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateAndDeleteGuest(t *testing.T) {
	s := newTestServer(t).withGuestRoutes()
	event, _ := testutil.SeedEvent(t, s.db, s.userID, "Gala", seedGuests()...)
	var bob models.Guest
	require.NoError(t, s.db.First(&bob, "name = ?", "Bob Jones").Error)
	path := "/api/events/" + event.ID.String() + "/guests/" + bob.ID.String()

	w := s.do(http.MethodPut, path, map[string]string{"rsvp_status": "unsure"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, path, map[string]string{"rsvp_status": "attending"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var status models.EventStatus
	require.NoError(t, s.db.First(&status, "event_id = ?", event.ID).Error)
	assert.Equal(t, 2, status.TotalConfirmed)
	assert.Equal(t, 0, status.TotalPending)

	w = s.do(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, s.db.First(&status, "event_id = ?", event.ID).Error)
	assert.Equal(t, 2, status.TotalGuests)

	w = s.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportGuests(t *testing.T) {
	s := newTestServer(t).withGuestRoutes()
	event, _ := testutil.SeedEvent(t, s.db, s.userID, "Summer Gala", seedGuests()...)

	w := s.do(http.MethodGet, "/api/events/"+event.ID.String()+"/guests/export?search=smith", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="summer-gala-guests.csv"`)

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Phone,Preference,Invitation Sent,RSVP Status,Last Updated", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Alice Smith,+15550000001,sms,No,attending,"))
}
