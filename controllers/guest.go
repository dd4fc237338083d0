package controllers

import (
	"ari-backend/config"
	"ari-backend/models"
	"ari-backend/services"
	"ari-backend/utils"
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// CreateGuestInput defines the expected JSON structure for adding a guest
// to a launched event
type CreateGuestInput struct {
	Name                string  `json:"name" binding:"required"`
	PhoneNumber         string  `json:"phone_number" binding:"required"`
	MessagingPreference string  `json:"messaging_preference" binding:"omitempty,oneof=sms whatsapp"`
	Email               *string `json:"email" binding:"omitempty,email"`
	PlusOneAllowed      bool    `json:"plus_one_allowed"`
	DietaryRestrictions *string `json:"dietary_restrictions"`
}

// UpdateGuestInput defines the expected JSON structure for updating a guest
type UpdateGuestInput struct {
	Name                *string `json:"name"`
	PhoneNumber         *string `json:"phone_number"`
	MessagingPreference *string `json:"messaging_preference" binding:"omitempty,oneof=sms whatsapp"`
	RSVPStatus          *string `json:"rsvp_status" binding:"omitempty,oneof=pending attending declined maybe"`
	Email               *string `json:"email" binding:"omitempty,email"`
	PlusOneAllowed      *bool   `json:"plus_one_allowed"`
	DietaryRestrictions *string `json:"dietary_restrictions"`
}

// GetGuests lists an event's guests, narrowed by ?search=&status=&channel=
func GetGuests(c *gin.Context) {
	event, ok := ownedEvent(c)
	if !ok {
		return
	}

	var filter services.GuestFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	var guests []models.Guest
	if err := config.DB.Where("event_id = ?", event.ID).Order("name").Find(&guests).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve guests")
		return
	}

	c.JSON(http.StatusOK, filter.Apply(guests))
}

func CreateGuest(c *gin.Context) {
	event, ok := ownedEvent(c)
	if !ok {
		return
	}

	var input CreateGuestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Name is required")
		return
	}
	if !utils.ValidatePhone(input.PhoneNumber) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number")
		return
	}

	guest := models.Guest{
		EventID:             event.ID,
		Name:                name,
		PhoneNumber:         utils.CleanPhone(input.PhoneNumber),
		RSVPStatus:          models.RSVPPending,
		MessagingPreference: models.ParseChannel(input.MessagingPreference),
		Email:               input.Email,
		PlusOneAllowed:      input.PlusOneAllowed,
		DietaryRestrictions: input.DietaryRestrictions,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&guest).Error; err != nil {
			return err
		}
		_, err := services.RecountEventStatus(c.Request.Context(), tx, event.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "A guest with this phone number already exists")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create guest")
		return
	}

	c.JSON(http.StatusCreated, guest)
}

func UpdateGuest(c *gin.Context) {
	event, guest, ok := ownedGuest(c)
	if !ok {
		return
	}

	var input UpdateGuestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Name is required")
			return
		}
		guest.Name = name
	}
	if input.PhoneNumber != nil {
		if !utils.ValidatePhone(*input.PhoneNumber) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number")
			return
		}
		guest.PhoneNumber = utils.CleanPhone(*input.PhoneNumber)
	}
	if input.MessagingPreference != nil {
		guest.MessagingPreference = models.ParseChannel(*input.MessagingPreference)
	}
	if input.RSVPStatus != nil {
		guest.RSVPStatus = models.RSVPStatus(*input.RSVPStatus)
	}
	if input.Email != nil {
		setOptional(&guest.Email, input.Email)
	}
	if input.PlusOneAllowed != nil {
		guest.PlusOneAllowed = *input.PlusOneAllowed
	}
	if input.DietaryRestrictions != nil {
		setOptional(&guest.DietaryRestrictions, input.DietaryRestrictions)
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(guest).Error; err != nil {
			return err
		}
		_, err := services.RecountEventStatus(c.Request.Context(), tx, event.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "A guest with this phone number already exists")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update guest")
		return
	}

	c.JSON(http.StatusOK, guest)
}

func DeleteGuest(c *gin.Context) {
	event, guest, ok := ownedGuest(c)
	if !ok {
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(guest).Error; err != nil {
			return err
		}
		_, err := services.RecountEventStatus(c.Request.Context(), tx, event.ID)
		return err
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete guest")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Guest deleted successfully"})
}

// ExportGuests downloads the filtered guest table as CSV
func ExportGuests(c *gin.Context) {
	event, ok := ownedEvent(c)
	if !ok {
		return
	}

	var filter services.GuestFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	var guests []models.Guest
	if err := config.DB.Where("event_id = ?", event.ID).Order("name").Find(&guests).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve guests")
		return
	}

	var buf bytes.Buffer
	if err := services.WriteGuestsCSV(&buf, filter.Apply(guests)); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to export guests")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+slug.Make(event.Name)+`-guests.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ownedGuest loads the :guestId guest of the :id event.
func ownedGuest(c *gin.Context) (*models.Event, *models.Guest, bool) {
	event, ok := ownedEvent(c)
	if !ok {
		return nil, nil, false
	}
	guestID, err := uuid.Parse(c.Param("guestId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid guest ID format")
		return nil, nil, false
	}

	var guest models.Guest
	if err := config.DB.Where("id = ? AND event_id = ?", guestID, event.ID).First(&guest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Guest not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, nil, false
	}
	return event, &guest, true
}
