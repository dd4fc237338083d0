package models

import "gorm.io/gorm"

// Migrate creates or updates the tables this service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Event{},
		&Guest{},
		&EventStatus{},
		&Message{},
		&ReminderLog{},
		&DemoRequest{},
	)
}
