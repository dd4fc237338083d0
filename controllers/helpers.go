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

// currentUserID reads the user id set by AuthMiddleware and responds with
// 401 when it is missing.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(utils.ContextUserID)
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid user ID format")
		return uuid.Nil, false
	}
	return id, true
}

// ownedEvent loads the :id event of the signed-in user.
func ownedEvent(c *gin.Context) (*models.Event, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid event ID format")
		return nil, false
	}

	var event models.Event
	if err := config.DB.Where("id = ? AND user_id = ?", eventID, userID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Event not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &event, true
}

// ownedEventIDs is a subquery selecting the ids of the user's events.
func ownedEventIDs(userID uuid.UUID) *gorm.DB {
	return config.DB.Model(&models.Event{}).Select("id").Where("user_id = ?", userID)
}
