package controllers

import (
	"ari-backend/config"
	"ari-backend/models"
	"ari-backend/services"
	"ari-backend/utils"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type EventDashboard struct {
	Event          models.Event        `json:"event"`
	Status         *models.EventStatus `json:"status"`
	KPIs           DashboardKPIs       `json:"kpis"`
	Channels       ChannelSplit        `json:"channels"`
	Timeline       []TimelineStep      `json:"timeline"`
	Messages       MessageStats        `json:"messages"`
	RecentActivity []models.Message    `json:"recent_activity"`
}

type DashboardKPIs struct {
	TotalGuests     int    `json:"total_guests"`
	InvitationsSent int    `json:"invitations_sent"`
	Confirmed       int    `json:"confirmed"`
	Declined        int    `json:"declined"`
	Maybe           int    `json:"maybe"`
	Pending         int    `json:"pending"`
	AcceptanceRate  int    `json:"acceptance_rate"`
	SentDate        string `json:"sent_date"` // "Not sent yet" until scheduled
}

type ChannelSplit struct {
	SMS      int `json:"sms"`
	WhatsApp int `json:"whatsapp"`
}

type TimelineStep struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Date      *string `json:"date"`
	Completed bool    `json:"completed"`
}

type MessageStats struct {
	Total            int64 `json:"total"`
	NeedingAttention int64 `json:"needing_attention"`
}

const recentActivityLimit = 10

func GetEventDashboard(c *gin.Context) {
	event, ok := ownedEvent(c)
	if !ok {
		return
	}

	var status *models.EventStatus
	var st models.EventStatus
	if err := config.DB.Where("event_id = ?", event.ID).First(&st).Error; err == nil {
		status = &st
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	var guests []models.Guest
	if err := config.DB.Where("event_id = ?", event.ID).Find(&guests).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve guests")
		return
	}
	counts := services.CountGuests(guests)

	var stats MessageStats
	config.DB.Model(&models.Message{}).Where("event_id = ?", event.ID).Count(&stats.Total)
	config.DB.Model(&models.Message{}).Where("event_id = ? AND needs_human_followup = ?", event.ID, true).Count(&stats.NeedingAttention)

	var recent []models.Message
	config.DB.Where("event_id = ?", event.ID).Order("created_at DESC").Limit(recentActivityLimit).Find(&recent)

	kpis := DashboardKPIs{
		TotalGuests:     counts.Total,
		InvitationsSent: counts.InvitationsSent,
		Confirmed:       counts.Attending,
		Declined:        counts.Declined,
		Maybe:           counts.Maybe,
		Pending:         counts.Pending,
		AcceptanceRate:  counts.AcceptanceRate(),
		SentDate:        "Not sent yet",
	}
	if status != nil && status.InvitationSendDate != nil {
		kpis.SentDate = utils.FormatLongDate(*status.InvitationSendDate)
	}

	c.JSON(http.StatusOK, EventDashboard{
		Event:          *event,
		Status:         status,
		KPIs:           kpis,
		Channels:       ChannelSplit{SMS: counts.SMS, WhatsApp: counts.WhatsApp},
		Timeline:       buildTimeline(event, status, time.Now()),
		Messages:       stats,
		RecentActivity: recent,
	})
}

// buildTimeline lists the invitation, the first reminder and the event day
// with whether each has happened.
func buildTimeline(event *models.Event, status *models.EventStatus, now time.Time) []TimelineStep {
	invite := TimelineStep{ID: "invite", Label: "Invitations Sent"}
	reminder := TimelineStep{ID: "reminder", Label: "RSVP Reminder"}
	if status != nil {
		invite.Date = status.InvitationSendDate
		invite.Completed = status.InvitationsSentOut ||
			(status.InvitationSendDate != nil && utils.IsDue(*status.InvitationSendDate, now))
		reminder.Date = status.RSVPReminderDate1
		reminder.Completed = status.RSVPRemindersSent > 0
	}
	date := event.Date
	day := TimelineStep{ID: "event", Label: "Event Day", Date: &date, Completed: utils.IsDue(event.Date, now)}
	return []TimelineStep{invite, reminder, day}
}
