package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ari-backend/models"
	"ari-backend/utils"
	"ari-backend/wizard"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// InboundMessage is a guest reply as delivered by the messaging provider.
type InboundMessage struct {
	From string
	Body string
}

// Channel derives the channel from the provider's address prefix.
func (m InboundMessage) Channel() models.Channel {
	if strings.HasPrefix(strings.ToLower(m.From), "whatsapp:") {
		return models.ChannelWhatsApp
	}
	return models.ChannelSMS
}

// Phone is the sender's number without the channel prefix.
func (m InboundMessage) Phone() string {
	from := m.From
	if i := strings.Index(from, ":"); i >= 0 {
		from = from[i+1:]
	}
	return utils.CleanPhone(from)
}

var replies = map[models.RSVPStatus]string{
	models.RSVPAttending: "🎉 Wonderful! We've confirmed your attendance for {event_name} on {date}. See you there!",
	models.RSVPDeclined:  "Thank you for letting us know. We're sorry you won't be able to join us for {event_name}.",
	models.RSVPMaybe:     "No problem! We'll check back with you closer to {event_name}.",
}

// InboundService records guest replies and applies clear RSVP answers.
type InboundService struct {
	db *gorm.DB
}

func NewInboundService(db *gorm.DB) *InboundService {
	return &InboundService{db: db}
}

// HandleReply stores the reply as a message. A clear answer from a known
// guest updates the guest and the event totals and gets a confirmation
// text; anything else is flagged for a human.
func (s *InboundService) HandleReply(ctx context.Context, in InboundMessage) (*models.Message, error) {
	db := s.db.WithContext(ctx)
	msg := &models.Message{
		Message: strings.TrimSpace(in.Body),
		Channel: in.Channel(),
	}

	guest, err := s.findGuest(db, in.Phone())
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find guest: %w", err)
	}
	status, clear := ClassifyReply(in.Body)

	if guest == nil || !clear {
		msg.NeedsHumanFollowup = true
		if guest != nil {
			msg.EventID, msg.GuestID = &guest.EventID, &guest.ID
		}
		if err := db.Create(msg).Error; err != nil {
			return nil, fmt.Errorf("store message: %w", err)
		}
		log.Info().Str("phone", in.Phone()).Bool("known_guest", guest != nil).Msg("Reply flagged for followup")
		return msg, nil
	}

	msg.EventID, msg.GuestID = &guest.EventID, &guest.ID
	var event models.Event
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(guest).Updates(map[string]interface{}{
			"rsvp_status":         status,
			"invitation_received": true,
		}).Error; err != nil {
			return err
		}
		if err := tx.First(&event, "id = ?", guest.EventID).Error; err != nil {
			return err
		}
		response := renderReply(status, &event)
		msg.Response = &response
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		_, err := RecountEventStatus(ctx, tx, guest.EventID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("apply rsvp: %w", err)
	}

	log.Info().Str("guest_id", guest.ID.String()).Str("status", string(status)).Msg("RSVP updated")
	return msg, nil
}

// findGuest matches stored numbers with or without the leading '+'.
func (s *InboundService) findGuest(db *gorm.DB, phone string) (*models.Guest, error) {
	if phone == "" {
		return nil, gorm.ErrRecordNotFound
	}
	bare := strings.TrimPrefix(phone, "+")
	var guest models.Guest
	if err := db.Where("phone_number IN ?", []string{bare, "+" + bare}).First(&guest).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

func renderReply(status models.RSVPStatus, event *models.Event) string {
	return wizard.Render(replies[status], wizard.Placeholders{
		EventName: event.Name,
		Date:      utils.FormatLongDate(event.Date),
		Venue:     event.Venue,
	})
}
