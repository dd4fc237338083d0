// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"fmt"
	"testing"

	"ari-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.Migrate(db))
	return db
}

// SeedEvent stores an event owned by ownerID with its status row and the
// given guests.
func SeedEvent(t *testing.T, db *gorm.DB, ownerID uuid.UUID, name string, guests ...models.Guest) (*models.Event, *models.EventStatus) {
	t.Helper()
	event := &models.Event{UserID: ownerID, Name: name, Date: "2025-06-15", Venue: "Grand Hotel"}
	require.NoError(t, db.Create(event).Error)

	for i := range guests {
		guests[i].EventID = event.ID
		require.NoError(t, db.Create(&guests[i]).Error)
	}

	status := &models.EventStatus{
		EventID:                    event.ID,
		EventName:                  name,
		RSVPReminderCount:          1,
		RSVPReminderStage:          models.ReminderStageNotStarted,
		RSVPSameMessageForAll:      true,
		RSVPReminderMessageDefault: "Hi {guest_name}, please RSVP",
		TotalGuests:                len(guests),
		TotalPending:               len(guests),
		GuestListReceived:          len(guests) > 0,
	}
	require.NoError(t, db.Create(status).Error)
	return event, status
}
