package services

import (
	"context"
	"errors"

	"ari-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const guestBatchSize = 100

// EventStore persists launched events. It is the wizard's launch backend.
type EventStore struct {
	db *gorm.DB
}

func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

// CreateEvent inserts the event unless one with the same launch key exists,
// in which case the stored row is returned.
func (s *EventStore) CreateEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	db := s.db.WithContext(ctx)
	if event.LaunchKey != nil {
		existing, err := s.eventByLaunchKey(db, *event.LaunchKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, remoteError(err)
		}
	}

	if err := db.Create(event).Error; err != nil {
		// a concurrent launch with the same key won the insert
		if event.LaunchKey != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, ferr := s.eventByLaunchKey(db, *event.LaunchKey); ferr == nil {
				return existing, nil
			}
		}
		return nil, remoteError(err)
	}
	return event, nil
}

func (s *EventStore) eventByLaunchKey(db *gorm.DB, key uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := db.Where("launch_key = ?", key).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// BulkCreateGuests inserts the whole roster or nothing. The roster of a
// freshly launched event is written once: when the event already has
// guests, an earlier call stored them and nothing is inserted.
func (s *EventStore) BulkCreateGuests(ctx context.Context, guests []models.Guest) error {
	if len(guests) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Guest{}).Where("event_id = ?", guests[0].EventID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}
		return tx.CreateInBatches(&guests, guestBatchSize).Error
	})
	return remoteError(err)
}

// UpsertEventStatus inserts the status row or overwrites the existing row
// of the same event.
func (s *EventStore) UpsertEventStatus(ctx context.Context, status *models.EventStatus) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		UpdateAll: true,
	}).Create(status).Error
	return remoteError(err)
}

// RecountEventStatus recomputes the RSVP totals of an event from its guests.
func RecountEventStatus(ctx context.Context, db *gorm.DB, eventID uuid.UUID) (RSVPCounts, error) {
	var guests []models.Guest
	if err := db.WithContext(ctx).Select("rsvp_status", "messaging_preference", "invitation_received").
		Where("event_id = ?", eventID).Find(&guests).Error; err != nil {
		return RSVPCounts{}, err
	}
	counts := CountGuests(guests)
	err := db.WithContext(ctx).Model(&models.EventStatus{}).Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"total_guests":    counts.Total,
			"total_confirmed": counts.Attending,
			"total_pending":   counts.Pending,
			"total_declined":  counts.Declined,
		}).Error
	return counts, err
}
