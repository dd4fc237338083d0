package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DemoRequest is a "book a demo" submission from the marketing site.
type DemoRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null" json:"email"`
	Phone     *string   `json:"phone"`
	EventType string    `gorm:"not null" json:"eventType"`
	Message   *string   `gorm:"type:text" json:"message"`
	Relayed   bool      `json:"relayed"`
	CreatedAt time.Time `json:"createdAt"`
}

func (d *DemoRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}
