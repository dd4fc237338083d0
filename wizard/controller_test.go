package wizard

import (
	"encoding/json"
	"errors"
	"testing"

	"ari-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func basicInfo() BasicInfoPatch {
	return BasicInfoPatch{
		Name:      ptr("Sarah & David's Wedding"),
		Date:      ptr("2025-06-15"),
		Venue:     ptr("Grand Hotel"),
		StartTime: ptr("18:00"),
	}
}

func TestNewControllerDefaults(t *testing.T) {
	c := NewController()
	s := c.Snapshot()

	assert.Equal(t, StepBasicInfo, c.Step())
	assert.Equal(t, DefaultInvitationMessage, s.InvitationMessage)
	assert.Equal(t, 1, s.RSVPReminderCount)
	assert.True(t, s.RSVPSameMessageForAll)
	assert.Equal(t, DefaultReminderMessage, s.RSVPReminderMessageDefault)
	assert.NotNil(t, s.Guests)
	assert.Empty(t, s.Guests)
}

func TestMergeKeepsFieldsNotInPatch(t *testing.T) {
	c := NewController()
	require.NoError(t, c.Merge(basicInfo()))
	require.NoError(t, c.Merge(BasicInfoPatch{DressCode: ptr("Black tie")}))

	s := c.Snapshot()
	assert.Equal(t, "Sarah & David's Wedding", s.Name)
	assert.Equal(t, "Grand Hotel", s.Venue)
	assert.Equal(t, "Black tie", s.DressCode)
	assert.Equal(t, DefaultInvitationMessage, s.InvitationMessage)
}

func TestMergeRejectsPatchForOtherStep(t *testing.T) {
	c := NewController()
	err := c.Merge(SchedulingPatch{RSVPReminderCount: ptr(2)})
	require.ErrorIs(t, err, ErrStepMismatch)
	assert.Equal(t, 1, c.Snapshot().RSVPReminderCount)
}

func TestSnapshotIsACopy(t *testing.T) {
	c := NewController()
	require.NoError(t, c.Merge(basicInfo()))
	require.NoError(t, c.Advance())
	require.NoError(t, c.Advance())
	require.NoError(t, c.AddGuest(GuestDraft{Name: "John Doe", PhoneNumber: "+15551234567"}))

	s := c.Snapshot()
	s.Guests[0].Name = "Mallory"
	s.Name = "changed"

	again := c.Snapshot()
	assert.Equal(t, "John Doe", again.Guests[0].Name)
	assert.Equal(t, "Sarah & David's Wedding", again.Name)
}

func TestAdvanceRequiresValidStep(t *testing.T) {
	c := NewController()

	err := c.Advance()
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.True(t, errors.Is(err, ErrStepInvalid))
	assert.Equal(t, StepBasicInfo, stepErr.Step)
	assert.Contains(t, stepErr.Fields, "name")
	assert.Contains(t, stepErr.Fields, "venue")
	assert.Equal(t, StepBasicInfo, c.Step())

	require.NoError(t, c.Merge(basicInfo()))
	require.NoError(t, c.Advance())
	assert.Equal(t, StepInvitation, c.Step())
}

func TestRetreatNeverDiscardsState(t *testing.T) {
	c := NewController()
	require.NoError(t, c.Merge(basicInfo()))
	require.NoError(t, c.Advance())
	require.NoError(t, c.Merge(InvitationPatch{InvitationMessage: ptr("Join us, {guest_name}!")}))

	require.NoError(t, c.Retreat())
	require.NoError(t, c.Retreat())
	assert.Equal(t, StepBasicInfo, c.Step())

	s := c.Snapshot()
	assert.Equal(t, "Join us, {guest_name}!", s.InvitationMessage)
	assert.Equal(t, "Grand Hotel", s.Venue)
}

func TestAdvancePastReview(t *testing.T) {
	c := walkToReview(t, NewController())
	assert.ErrorIs(t, c.Advance(), ErrNoNextStep)
}

func TestGuestRosterEdits(t *testing.T) {
	c := NewController()
	require.NoError(t, c.Merge(basicInfo()))
	require.NoError(t, c.Advance())
	require.NoError(t, c.Advance())

	require.NoError(t, c.AddGuest(GuestDraft{Name: " Ann ", PhoneNumber: "+15550000001"}))
	require.NoError(t, c.AddGuest(GuestDraft{Name: "Bob", PhoneNumber: "123"}))
	assert.Equal(t, Summary{Total: 2, Valid: 1, Invalid: 1}, Summarize(c.Snapshot().Guests))
	assert.Equal(t, models.ChannelSMS, c.Snapshot().Guests[0].MessagingPreference)
	assert.Equal(t, "Ann", c.Snapshot().Guests[0].Name)

	_, isStepErr := c.Advance().(*StepError)
	assert.True(t, isStepErr)

	wa := models.ChannelWhatsApp
	require.NoError(t, c.UpdateGuest(1, GuestEdit{PhoneNumber: ptr("(555) 000-0002 99"), MessagingPreference: &wa}))
	s := c.Snapshot()
	assert.Equal(t, models.ChannelWhatsApp, s.Guests[1].MessagingPreference)
	assert.True(t, Summarize(s.Guests).Ready())

	assert.ErrorIs(t, c.UpdateGuest(5, GuestEdit{}), ErrGuestIndex)
	assert.ErrorIs(t, c.RemoveGuest(-1), ErrGuestIndex)

	require.NoError(t, c.RemoveGuest(0))
	assert.Equal(t, "Bob", c.Snapshot().Guests[0].Name)

	require.NoError(t, c.ClearGuests())
	assert.False(t, Summarize(c.Snapshot().Guests).Ready())
}

func TestImportGuestsReplacesRosterAndKeepsItOnError(t *testing.T) {
	c := NewController()
	require.NoError(t, c.Merge(basicInfo()))
	require.NoError(t, c.Advance())
	require.NoError(t, c.Advance())
	require.NoError(t, c.AddGuest(GuestDraft{Name: "Old", PhoneNumber: "+15550000001"}))

	_, err := c.ImportGuests(stringsReader("name,phone\n"))
	require.ErrorIs(t, err, ErrEmptyFile)
	assert.Len(t, c.Snapshot().Guests, 1)

	res, err := c.ImportGuests(stringsReader("name,phone\nJohn Doe,+15551234567\nJane,\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dropped)
	guests := c.Snapshot().Guests
	require.Len(t, guests, 1)
	assert.Equal(t, "John Doe", guests[0].Name)
}

func TestControllerJSONRoundTrip(t *testing.T) {
	c := NewController()
	require.NoError(t, c.Merge(basicInfo()))
	require.NoError(t, c.Advance())

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"step":"invitation"`)

	restored := &Controller{}
	require.NoError(t, json.Unmarshal(b, restored))
	assert.Equal(t, StepInvitation, restored.Step())
	assert.Equal(t, c.Snapshot(), restored.Snapshot())
	assert.False(t, restored.Closed())

	assert.Error(t, json.Unmarshal([]byte(`{"step":"nowhere"}`), restored))
}

func TestStepNames(t *testing.T) {
	for step := StepBasicInfo; step <= StepReview; step++ {
		parsed, ok := ParseStep(step.String())
		require.True(t, ok)
		assert.Equal(t, step, parsed)
	}
	_, ok := ParseStep("launch")
	assert.False(t, ok)
	assert.Equal(t, "step(9)", Step(9).String())
}

// walkToReview fills every step with the minimal valid input.
func walkToReview(t *testing.T, c *Controller) *Controller {
	t.Helper()
	require.NoError(t, c.Merge(basicInfo()))
	require.NoError(t, c.Advance())
	require.NoError(t, c.Advance())
	_, err := c.ImportGuests(stringsReader("name,phone\nJohn Doe,+15551234567"))
	require.NoError(t, err)
	require.NoError(t, c.Advance())
	require.NoError(t, c.Merge(SchedulingPatch{
		InvitationSendDate:         ptr("2025-05-01"),
		RSVPReminderCount:          ptr(1),
		RSVPReminderDate1:          ptr("2025-06-01"),
		RSVPReminderMessageDefault: ptr("RSVP please"),
	}))
	require.NoError(t, c.Advance())
	require.Equal(t, StepReview, c.Step())
	return c
}
