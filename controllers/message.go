package controllers

import (
	"ari-backend/config"
	"ari-backend/models"
	"ari-backend/utils"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAttentionMessages lists the replies across all of the user's events
// that still need a human answer
func GetAttentionMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var messages []models.Message
	if err := config.DB.Where("event_id IN (?) AND needs_human_followup = ?", ownedEventIDs(userID), true).
		Order("created_at DESC").Find(&messages).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve messages")
		return
	}

	c.JSON(http.StatusOK, messages)
}

// GetEventMessages lists an event's replies, newest first
func GetEventMessages(c *gin.Context) {
	eventMessages(c, false)
}

// GetEventAttentionMessages lists the event's replies still flagged for a human
func GetEventAttentionMessages(c *gin.Context) {
	eventMessages(c, true)
}

func eventMessages(c *gin.Context, attentionOnly bool) {
	event, ok := ownedEvent(c)
	if !ok {
		return
	}

	query := config.DB.Where("event_id = ?", event.ID)
	if attentionOnly {
		query = query.Where("needs_human_followup = ?", true)
	}

	var messages []models.Message
	if err := query.Order("created_at DESC").Find(&messages).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve messages")
		return
	}

	c.JSON(http.StatusOK, messages)
}

// ResolveMessage clears the follow-up flag of a reply
func ResolveMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	messageID, err := uuid.Parse(c.Param("messageId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid message ID format")
		return
	}

	var message models.Message
	if err := config.DB.Where("id = ? AND event_id IN (?)", messageID, ownedEventIDs(userID)).
		First(&message).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Message not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if err := config.DB.Model(&message).Update("needs_human_followup", false).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to resolve message")
		return
	}

	c.JSON(http.StatusOK, message)
}

// GetMessageStats counts the user's replies and those awaiting an answer
func GetMessageStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var stats MessageStats
	if err := config.DB.Model(&models.Message{}).Where("event_id IN (?)", ownedEventIDs(userID)).
		Count(&stats.Total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if err := config.DB.Model(&models.Message{}).
		Where("event_id IN (?) AND needs_human_followup = ?", ownedEventIDs(userID), true).
		Count(&stats.NeedingAttention).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	c.JSON(http.StatusOK, stats)
}
