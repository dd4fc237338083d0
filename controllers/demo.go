package controllers

import (
	"ari-backend/config"
	"ari-backend/models"
	"ari-backend/services"
	"ari-backend/utils"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// DemoController takes "book a demo" submissions from the marketing site
type DemoController struct {
	Relay *services.DemoRelay
}

// CreateDemoRequestInput defines the expected JSON structure of a submission
type CreateDemoRequestInput struct {
	Name      string  `json:"name" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Phone     *string `json:"phone"`
	EventType string  `json:"eventType" binding:"required"`
	Message   *string `json:"message"`
}

// Create stores the submission and forwards it by email when a relay is
// configured. A relay failure does not fail the request.
func (dc *DemoController) Create(c *gin.Context) {
	var input CreateDemoRequestInput
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.Name) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid request data")
		return
	}

	request := models.DemoRequest{
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		EventType: input.EventType,
	}
	setOptional(&request.Phone, input.Phone)
	setOptional(&request.Message, input.Message)

	if err := config.DB.Create(&request).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save demo request")
		return
	}

	if dc.Relay.Enabled() {
		if err := dc.Relay.Relay(c.Request.Context(), &request); err != nil {
			log.Error().Err(err).Str("demo_request", request.ID.String()).Msg("Failed to relay demo request")
		} else if err := config.DB.Model(&models.DemoRequest{}).Where("id = ?", request.ID).Update("relayed", true).Error; err != nil {
			log.Error().Err(err).Str("demo_request", request.ID.String()).Msg("Failed to mark demo request relayed")
		} else {
			request.Relayed = true
		}
	}

	c.JSON(http.StatusCreated, request)
}

// List returns every submission, newest first
func (dc *DemoController) List(c *gin.Context) {
	var requests []models.DemoRequest
	if err := config.DB.Order("created_at DESC").Find(&requests).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve demo requests")
		return
	}

	c.JSON(http.StatusOK, requests)
}
