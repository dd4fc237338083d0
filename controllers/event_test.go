package controllers

import (
	"net/http"
	"testing"

	"ari-backend/models"
	"ari-backend/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *testServer) withEventRoutes() *testServer {
	s.api.GET("/events", GetEvents)
	s.api.GET("/events/:id", GetEvent)
	s.api.PUT("/events/:id", UpdateEvent)
	s.api.DELETE("/events/:id", DeleteEvent)
	s.api.GET("/events/:id/dashboard", GetEventDashboard)
	return s
}

func TestGetEventsIsOwnerScopedAndSorted(t *testing.T) {
	s := newTestServer(t).withEventRoutes()
	testutil.SeedEvent(t, s.db, s.userID, "Beta")
	testutil.SeedEvent(t, s.db, s.userID, "Alpha")
	testutil.SeedEvent(t, s.db, uuid.New(), "Someone else's")

	w := s.do(http.MethodGet, "/api/events?sort=name", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var events []models.Event
	decode(t, w, &events)
	require.Len(t, events, 2)
	assert.Equal(t, "Alpha", events[0].Name)
	assert.Equal(t, "Beta", events[1].Name)

	w = s.do(http.MethodGet, "/api/events?sort=-name", nil)
	decode(t, w, &events)
	assert.Equal(t, "Beta", events[0].Name)

	w = s.do(http.MethodGet, "/api/events?sort=venue", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetEventRequiresAuthAndOwnership(t *testing.T) {
	s := newTestServer(t).withEventRoutes()
	event, _ := testutil.SeedEvent(t, s.db, s.userID, "Gala")

	w := s.doAs("", http.MethodGet, "/api/events/"+event.ID.String(), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.doAs(s.tokenFor(uuid.New()), http.MethodGet, "/api/events/"+event.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/events/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/events/"+event.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail EventDetail
	decode(t, w, &detail)
	assert.Equal(t, "Gala", detail.Name)
	require.NotNil(t, detail.Status)
	assert.Equal(t, "Gala", detail.Status.EventName)
}

func TestUpdateEventSyncsStatusName(t *testing.T) {
	s := newTestServer(t).withEventRoutes()
	event, _ := testutil.SeedEvent(t, s.db, s.userID, "Gala")

	w := s.do(http.MethodPut, "/api/events/"+event.ID.String(), map[string]interface{}{
		"name":       "Winter Gala",
		"dress_code": "  ",
		"start_time": "19:00",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Event
	require.NoError(t, s.db.First(&got, "id = ?", event.ID).Error)
	assert.Equal(t, "Winter Gala", got.Name)
	assert.Nil(t, got.DressCode)
	require.NotNil(t, got.StartTime)
	assert.Equal(t, "19:00", *got.StartTime)

	var status models.EventStatus
	require.NoError(t, s.db.First(&status, "event_id = ?", event.ID).Error)
	assert.Equal(t, "Winter Gala", status.EventName)

	w = s.do(http.MethodPut, "/api/events/"+event.ID.String(), map[string]interface{}{"venue": "X"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteEventRemovesDependents(t *testing.T) {
	s := newTestServer(t).withEventRoutes()
	event, _ := testutil.SeedEvent(t, s.db, s.userID, "Gala", models.Guest{Name: "Ann", PhoneNumber: "+15550000001"})
	require.NoError(t, s.db.Create(&models.Message{EventID: &event.ID, Message: "hello?"}).Error)

	w := s.do(http.MethodDelete, "/api/events/"+event.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	for _, model := range []interface{}{&models.Event{}, &models.Guest{}, &models.EventStatus{}, &models.Message{}} {
		var count int64
		require.NoError(t, s.db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestEventDashboard(t *testing.T) {
	s := newTestServer(t).withEventRoutes()
	event, _ := testutil.SeedEvent(t, s.db, s.userID, "Gala",
		models.Guest{Name: "Ann", PhoneNumber: "+15550000001", RSVPStatus: models.RSVPAttending, InvitationReceived: true},
		models.Guest{Name: "Bob", PhoneNumber: "+15550000002", RSVPStatus: models.RSVPDeclined, MessagingPreference: models.ChannelWhatsApp},
		models.Guest{Name: "Cy", PhoneNumber: "+15550000003"},
	)
	require.NoError(t, s.db.Create(&models.Message{EventID: &event.ID, Message: "who is this", NeedsHumanFollowup: true}).Error)

	w := s.do(http.MethodGet, "/api/events/"+event.ID.String()+"/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var dash EventDashboard
	decode(t, w, &dash)
	assert.Equal(t, 3, dash.KPIs.TotalGuests)
	assert.Equal(t, 1, dash.KPIs.Confirmed)
	assert.Equal(t, 1, dash.KPIs.Declined)
	assert.Equal(t, 1, dash.KPIs.Pending)
	assert.Equal(t, 33, dash.KPIs.AcceptanceRate)
	assert.Equal(t, "Not sent yet", dash.KPIs.SentDate)
	assert.Equal(t, ChannelSplit{SMS: 2, WhatsApp: 1}, dash.Channels)
	assert.Equal(t, MessageStats{Total: 1, NeedingAttention: 1}, dash.Messages)
	require.Len(t, dash.Timeline, 3)
	assert.Equal(t, "Invitations Sent", dash.Timeline[0].Label)
	assert.True(t, dash.Timeline[2].Completed, "the seeded event date is in the past")
}
