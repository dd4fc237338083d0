package controllers

import (
	"ari-backend/config"
	"ari-backend/models"
	"ari-backend/utils"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// eventSorts whitelists the ?sort= values; a leading '-' sorts descending.
var eventSorts = map[string]string{
	"created_at": "created_at",
	"date":       "date",
	"name":       "name",
}

// UpdateEventInput defines the expected JSON structure for updating an event
type UpdateEventInput struct {
	Name               *string `json:"name"`
	Date               *string `json:"date"`
	Venue              *string `json:"venue"`
	StartTime          *string `json:"start_time"`
	EndTime            *string `json:"end_time"`
	ChuppahStartTime   *string `json:"chuppah_start_time"`
	DressCode          *string `json:"dress_code"`
	LocationMap        *string `json:"location_map" binding:"omitempty,http_url"`
	SpecialNotes       *string `json:"special_notes"`
	InvitationMessage  *string `json:"invitation_message"`
	InvitationImageURL *string `json:"invitation_image_url"`
}

type EventDetail struct {
	models.Event
	Status *models.EventStatus `json:"status"`
}

// GetEvents lists the user's events, newest first unless ?sort= says otherwise
func GetEvents(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	order := "created_at DESC"
	if sort := c.Query("sort"); sort != "" {
		column, exists := eventSorts[strings.TrimPrefix(sort, "-")]
		if !exists {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid sort field")
			return
		}
		order = column + " ASC"
		if strings.HasPrefix(sort, "-") {
			order = column + " DESC"
		}
	}

	var events []models.Event
	if err := config.DB.Where("user_id = ?", userID).Order(order).Find(&events).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}

	c.JSON(http.StatusOK, events)
}

func GetEvent(c *gin.Context) {
	event, ok := ownedEvent(c)
	if !ok {
		return
	}

	detail := EventDetail{Event: *event}
	var status models.EventStatus
	err := config.DB.Where("event_id = ?", event.ID).First(&status).Error
	switch {
	case err == nil:
		detail.Status = &status
	case !errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UpdateEvent updates the fields present in the request body
func UpdateEvent(c *gin.Context) {
	event, ok := ownedEvent(c)
	if !ok {
		return
	}

	var input UpdateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) < 2 {
			utils.RespondWithError(c, http.StatusBadRequest, "Event name must be at least 2 characters")
			return
		}
		event.Name = name
	}
	if input.Date != nil {
		if strings.TrimSpace(*input.Date) == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Date is required")
			return
		}
		event.Date = strings.TrimSpace(*input.Date)
	}
	if input.Venue != nil {
		venue := strings.TrimSpace(*input.Venue)
		if len(venue) < 2 {
			utils.RespondWithError(c, http.StatusBadRequest, "Venue must be at least 2 characters")
			return
		}
		event.Venue = venue
	}
	setOptional(&event.StartTime, input.StartTime)
	setOptional(&event.EndTime, input.EndTime)
	setOptional(&event.ChuppahStartTime, input.ChuppahStartTime)
	setOptional(&event.DressCode, input.DressCode)
	setOptional(&event.LocationMap, input.LocationMap)
	setOptional(&event.SpecialNotes, input.SpecialNotes)
	setOptional(&event.InvitationMessage, input.InvitationMessage)
	setOptional(&event.InvitationImageURL, input.InvitationImageURL)

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(event).Error; err != nil {
			return err
		}
		return tx.Model(&models.EventStatus{}).Where("event_id = ?", event.ID).
			Update("event_name", event.Name).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update event")
		return
	}

	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes the event and everything hanging off it
func DeleteEvent(c *gin.Context) {
	event, ok := ownedEvent(c)
	if !ok {
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Message{}, &models.ReminderLog{}, &models.Guest{}, &models.EventStatus{}} {
			if err := tx.Where("event_id = ?", event.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(event).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete event")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

// setOptional stores a trimmed value, or NULL when it is blank.
func setOptional(dst **string, v *string) {
	if v == nil {
		return
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		*dst = nil
		return
	}
	*dst = &trimmed
}
