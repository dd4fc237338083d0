// controllers/reminder.go
package controllers

import (
	"errors"
	"net/http"

	"ari-backend/config"
	"ari-backend/models"
	"ari-backend/utils"
	"ari-backend/wizard"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetReminderSchedule returns the invitation date and reminder rounds of an event
func GetReminderSchedule(c *gin.Context) {
	status, ok := ownedEventStatus(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, status)
}

// UpdateReminderSchedule edits the schedule of a launched event with the
// same rules the wizard's scheduling step enforces
func UpdateReminderSchedule(c *gin.Context) {
	status, ok := ownedEventStatus(c)
	if !ok {
		return
	}

	var input wizard.SchedulingPatch
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	state := wizard.Apply(scheduleState(status), input)
	if fields := wizard.ValidateScheduling(state); !fields.Valid() {
		utils.RespondWithFields(c, http.StatusUnprocessableEntity, "Invalid reminder schedule", fields)
		return
	}
	if state.RSVPReminderCount < status.RSVPRemindersSent {
		utils.RespondWithError(c, http.StatusConflict, "Reminder count cannot be lower than the reminders already sent")
		return
	}

	if !state.SkipInvitations && !status.InvitationsSentOut {
		status.InvitationSendDate = optionalString(state.InvitationSendDate)
	}
	status.RSVPReminderCount = state.RSVPReminderCount
	status.RSVPReminderDate1 = optionalString(state.RSVPReminderDate1)
	status.RSVPReminderDate2 = optionalString(state.RSVPReminderDate2)
	status.RSVPReminderDate3 = optionalString(state.RSVPReminderDate3)
	status.RSVPSameMessageForAll = state.RSVPSameMessageForAll
	status.RSVPReminderMessageDefault = state.RSVPReminderMessageDefault
	status.RSVPReminderMessage1 = optionalString(state.RSVPReminderMessage1)
	status.RSVPReminderMessage2 = optionalString(state.RSVPReminderMessage2)
	status.RSVPReminderMessage3 = optionalString(state.RSVPReminderMessage3)
	// inactive rounds carry no date
	if status.RSVPReminderCount < 2 {
		status.RSVPReminderDate2 = nil
	}
	if status.RSVPReminderCount < 3 {
		status.RSVPReminderDate3 = nil
	}

	if err := config.DB.Save(status).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update reminder schedule")
		return
	}

	c.JSON(http.StatusOK, status)
}

// scheduleState projects a status row onto the wizard fields the
// scheduling rules read. An event launched in RSVP-only mode has its
// invitations marked sent without a send date.
func scheduleState(status *models.EventStatus) wizard.State {
	return wizard.State{
		SkipInvitations:            status.InvitationsSentOut && status.InvitationSendDate == nil,
		InvitationSendDate:         deref(status.InvitationSendDate),
		RSVPReminderCount:          status.RSVPReminderCount,
		RSVPReminderDate1:          deref(status.RSVPReminderDate1),
		RSVPReminderDate2:          deref(status.RSVPReminderDate2),
		RSVPReminderDate3:          deref(status.RSVPReminderDate3),
		RSVPSameMessageForAll:      status.RSVPSameMessageForAll,
		RSVPReminderMessageDefault: status.RSVPReminderMessageDefault,
		RSVPReminderMessage1:       deref(status.RSVPReminderMessage1),
		RSVPReminderMessage2:       deref(status.RSVPReminderMessage2),
		RSVPReminderMessage3:       deref(status.RSVPReminderMessage3),
	}
}

func ownedEventStatus(c *gin.Context) (*models.EventStatus, bool) {
	event, ok := ownedEvent(c)
	if !ok {
		return nil, false
	}

	var status models.EventStatus
	if err := config.DB.Where("event_id = ?", event.ID).First(&status).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Event status not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &status, true
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
