package services

import (
	"context"
	"testing"

	"ari-backend/models"
	"ari-backend/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboundMessageAddress(t *testing.T) {
	wa := InboundMessage{From: "whatsapp:+1 555 000 0001"}
	assert.Equal(t, models.ChannelWhatsApp, wa.Channel())
	assert.Equal(t, "+15550000001", wa.Phone())

	sms := InboundMessage{From: "+15550000002"}
	assert.Equal(t, models.ChannelSMS, sms.Channel())
	assert.Equal(t, "+15550000002", sms.Phone())
}

func TestHandleReplyUpdatesRSVP(t *testing.T) {
	db := testutil.NewDB(t)
	event, _ := testutil.SeedEvent(t, db, uuid.New(), "Gala",
		models.Guest{Name: "Ann", PhoneNumber: "15550000001"},
		models.Guest{Name: "Bob", PhoneNumber: "+15550000002"},
	)
	svc := NewInboundService(db)

	msg, err := svc.HandleReply(context.Background(), InboundMessage{From: "whatsapp:+15550000001", Body: "1"})
	require.NoError(t, err)
	assert.False(t, msg.NeedsHumanFollowup)
	assert.Equal(t, models.ChannelWhatsApp, msg.Channel)
	require.NotNil(t, msg.Response)
	assert.Contains(t, *msg.Response, "Gala")
	assert.Contains(t, *msg.Response, "June 15, 2025")

	var ann models.Guest
	require.NoError(t, db.First(&ann, "phone_number = ?", "15550000001").Error)
	assert.Equal(t, models.RSVPAttending, ann.RSVPStatus)
	assert.True(t, ann.InvitationReceived)

	var status models.EventStatus
	require.NoError(t, db.First(&status, "event_id = ?", event.ID).Error)
	assert.Equal(t, 1, status.TotalConfirmed)
	assert.Equal(t, 1, status.TotalPending)
}

func TestHandleReplyFlagsUnclearAndUnknown(t *testing.T) {
	db := testutil.NewDB(t)
	event, _ := testutil.SeedEvent(t, db, uuid.New(), "Gala", models.Guest{Name: "Ann", PhoneNumber: "+15550000001"})
	svc := NewInboundService(db)

	msg, err := svc.HandleReply(context.Background(), InboundMessage{From: "+15550000001", Body: "Can I bring my dog?"})
	require.NoError(t, err)
	assert.True(t, msg.NeedsHumanFollowup)
	require.NotNil(t, msg.EventID)
	assert.Equal(t, event.ID, *msg.EventID)
	assert.Nil(t, msg.Response)

	msg, err = svc.HandleReply(context.Background(), InboundMessage{From: "+19990000000", Body: "yes"})
	require.NoError(t, err)
	assert.True(t, msg.NeedsHumanFollowup)
	assert.Nil(t, msg.GuestID)

	var flagged int64
	require.NoError(t, db.Model(&models.Message{}).Where("needs_human_followup = ?", true).Count(&flagged).Error)
	assert.EqualValues(t, 2, flagged)
}
