// services/reminder_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ari-backend/models"
	"ari-backend/utils"
	"ari-backend/wizard"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// Sender delivers one text message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, channel models.Channel, to, body string) (string, error)
}

// TwilioSender sends SMS and WhatsApp messages through Twilio.
type TwilioSender struct {
	client       *twilio.RestClient
	from         string
	whatsappFrom string
}

func NewTwilioSender(accountSID, authToken, from, whatsappFrom string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from:         from,
		whatsappFrom: whatsappFrom,
	}
}

func (s *TwilioSender) Send(_ context.Context, channel models.Channel, to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetBody(body)
	if channel == models.ChannelWhatsApp {
		params.SetTo("whatsapp:" + to)
		params.SetFrom("whatsapp:" + s.whatsappFrom)
	} else {
		params.SetTo(to)
		params.SetFrom(s.from)
	}

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// DispatchReport summarizes one pass over an event.
type DispatchReport struct {
	EventID     uuid.UUID `json:"event_id"`
	Invitations int       `json:"invitations"`
	Round       int       `json:"round,omitempty"`
	Reminders   int       `json:"reminders"`
	Failed      int       `json:"failed"`
}

// ReminderService sends scheduled invitations and RSVP reminders.
type ReminderService struct {
	db     *gorm.DB
	sender Sender
	now    func() time.Time
	cron   *cron.Cron
}

func NewReminderService(db *gorm.DB, sender Sender) *ReminderService {
	return &ReminderService{db: db, sender: sender, now: time.Now}
}

// StartScheduler runs RunDue on the cron spec. A run that is still going
// when the next tick fires makes that tick a no-op.
func (s *ReminderService) StartScheduler(spec string) error {
	logger := cron.PrintfLogger(&log.Logger)
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	if _, err := c.AddFunc(spec, func() {
		s.RunDue(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	c.Start()
	s.cron = c
	log.Info().Str("schedule", spec).Msg("Reminder scheduler started")
	return nil
}

// Stop waits for a running pass to finish.
func (s *ReminderService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// RunDue processes every event whose invitation or next reminder is due.
func (s *ReminderService) RunDue(ctx context.Context) []DispatchReport {
	log.Info().Msg("Starting reminder processing")

	var statuses []models.EventStatus
	if err := s.db.WithContext(ctx).Find(&statuses).Error; err != nil {
		log.Error().Err(err).Msg("Failed to fetch event statuses")
		return nil
	}

	var reports []DispatchReport
	for i := range statuses {
		report, err := s.ProcessEvent(ctx, &statuses[i])
		if err != nil {
			log.Error().Err(err).Str("event_id", statuses[i].EventID.String()).Msg("Failed to process event")
			continue
		}
		if report.Invitations+report.Reminders+report.Failed > 0 {
			reports = append(reports, report)
		}
	}

	log.Info().Int("events", len(reports)).Msg("Reminder processing completed")
	return reports
}

// maxDispatchAttempts bounds the sends tried per guest for one invitation or
// reminder round.
const maxDispatchAttempts = 3

// ProcessEvent sends the invitation when its date is reached, then at most
// one reminder round to guests who have not answered. A pass that leaves a
// guest undelivered with attempts to spare does not move the event on; the
// next pass retries only those guests.
func (s *ReminderService) ProcessEvent(ctx context.Context, status *models.EventStatus) (DispatchReport, error) {
	report := DispatchReport{EventID: status.EventID}
	now := s.now()
	db := s.db.WithContext(ctx)

	var event models.Event
	if err := db.First(&event, "id = ?", status.EventID).Error; err != nil {
		return report, fmt.Errorf("load event: %w", err)
	}
	var guests []models.Guest
	if err := db.Where("event_id = ?", event.ID).Order("created_at, name").Find(&guests).Error; err != nil {
		return report, fmt.Errorf("load guests: %w", err)
	}

	if !status.InvitationsSentOut {
		if status.InvitationSendDate == nil || !utils.IsDue(*status.InvitationSendDate, now) {
			return report, nil
		}
		history, err := dispatchHistory(db, event.ID, models.DispatchInvitation, 0)
		if err != nil {
			return report, err
		}
		body := ""
		if event.InvitationMessage != nil {
			body = *event.InvitationMessage
		}
		retry := 0
		for i := range guests {
			g := &guests[i]
			if g.InvitationReceived || history[g.ID].done() {
				continue
			}
			if s.dispatch(ctx, &event, g, models.DispatchInvitation, 0, body) {
				report.Invitations++
				if err := db.Model(g).Update("invitation_received", true).Error; err != nil {
					return report, fmt.Errorf("mark invitation received: %w", err)
				}
				continue
			}
			report.Failed++
			if history.fail(g.ID) {
				retry++
			}
		}
		if retry > 0 {
			log.Warn().Str("event_id", event.ID.String()).Int("guests", retry).Msg("Invitations incomplete, retrying on next run")
			return report, nil
		}
		status.InvitationsSentOut = true
		if err := db.Model(status).Update("invitations_sent_out", true).Error; err != nil {
			return report, fmt.Errorf("mark invitations sent: %w", err)
		}
	}

	round := status.RSVPRemindersSent + 1
	if round > status.RSVPReminderCount || round > models.MaxReminderRounds {
		return report, nil
	}
	date := status.ReminderDate(round)
	if date == nil || !utils.IsDue(*date, now) {
		return report, nil
	}

	history, err := dispatchHistory(db, event.ID, models.DispatchReminder, round)
	if err != nil {
		return report, err
	}
	report.Round = round
	body := status.ReminderMessage(round)
	retry := 0
	for i := range guests {
		g := &guests[i]
		if !g.RSVPStatus.IsPending() || history[g.ID].done() {
			continue
		}
		if s.dispatch(ctx, &event, g, models.DispatchReminder, round, body) {
			report.Reminders++
			continue
		}
		report.Failed++
		if history.fail(g.ID) {
			retry++
		}
	}
	if retry > 0 {
		log.Warn().Str("event_id", event.ID.String()).Int("round", round).Int("guests", retry).Msg("Reminder round incomplete, retrying on next run")
		return report, nil
	}

	status.RSVPRemindersSent = round
	status.RSVPReminderStage = models.ReminderStage(round)
	if err := db.Model(status).Updates(map[string]interface{}{
		"rsvp_reminders_sent": status.RSVPRemindersSent,
		"rsvp_reminder_stage": status.RSVPReminderStage,
	}).Error; err != nil {
		return report, fmt.Errorf("advance reminder stage: %w", err)
	}
	log.Info().Str("event_id", event.ID.String()).Int("round", round).Int("sent", report.Reminders).Msg("Reminder round sent")
	return report, nil
}

type dispatchTally struct {
	sent     bool
	failures int
}

// done reports whether the guest needs no further attempt.
func (t dispatchTally) done() bool {
	return t.sent || t.failures >= maxDispatchAttempts
}

type dispatchTallies map[uuid.UUID]dispatchTally

// fail records a failed attempt and reports whether the guest has attempts
// left.
func (h dispatchTallies) fail(guestID uuid.UUID) bool {
	t := h[guestID]
	t.failures++
	h[guestID] = t
	if t.done() {
		log.Warn().Str("guest_id", guestID.String()).Int("attempts", t.failures).Msg("Giving up on guest")
		return false
	}
	return true
}

// dispatchHistory tallies earlier sends of one message kind and round per
// guest from the reminder log.
func dispatchHistory(db *gorm.DB, eventID uuid.UUID, kind string, round int) (dispatchTallies, error) {
	var rows []struct {
		GuestID uuid.UUID
		Status  string
		Count   int
	}
	err := db.Model(&models.ReminderLog{}).
		Select("guest_id, status, count(*) AS count").
		Where("event_id = ? AND kind = ? AND round = ?", eventID, kind, round).
		Group("guest_id, status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load dispatch history: %w", err)
	}

	history := make(dispatchTallies, len(rows))
	for _, row := range rows {
		t := history[row.GuestID]
		switch row.Status {
		case models.DispatchSent:
			t.sent = true
		case models.DispatchFailed:
			t.failures += row.Count
		}
		history[row.GuestID] = t
	}
	return history, nil
}

// dispatch sends one rendered message and logs it. It reports success.
func (s *ReminderService) dispatch(ctx context.Context, event *models.Event, g *models.Guest, kind string, round int, template string) bool {
	message := wizard.Render(template, wizard.Placeholders{
		GuestName: g.Name,
		EventName: event.Name,
		Date:      utils.FormatLongDate(event.Date),
		Venue:     event.Venue,
	})
	channel := g.MessagingPreference
	if channel == "" {
		channel = models.ChannelSMS
	}

	var (
		sid string
		err error
	)
	if strings.TrimSpace(message) == "" {
		err = errors.New("empty message body")
	} else {
		sid, err = s.sender.Send(ctx, channel, utils.FormatPhoneE164(g.PhoneNumber, "+1"), message)
	}

	status := models.DispatchSent
	errorMsg := ""
	if err != nil {
		log.Error().Err(err).Str("phone", g.PhoneNumber).Str("kind", kind).Msg("Failed to send message")
		status = models.DispatchFailed
		errorMsg = err.Error()
	}

	reminderLog := models.ReminderLog{
		EventID:      event.ID,
		GuestID:      g.ID,
		Kind:         kind,
		Round:        round,
		Message:      message,
		Status:       status,
		ErrorMessage: errorMsg,
		Channel:      channel,
		ProviderSID:  sid,
		SentAt:       s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&reminderLog).Error; err != nil {
		log.Error().Err(err).Str("guest_id", g.ID.String()).Msg("Failed to log dispatch")
	}
	return status == models.DispatchSent
}
