package controllers

import (
	"ari-backend/services"
	"ari-backend/utils"
	"encoding/xml"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go/client"
)

// WebhookController receives guest replies from Twilio
type WebhookController struct {
	Inbound       *services.InboundService
	AuthToken     string
	PublicBaseURL string
}

// twimlResponse is the TwiML document answering an inbound message.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

// TwilioInbound records a reply and answers clear RSVPs with a confirmation.
// Requests are checked against X-Twilio-Signature when an auth token is set.
func (wc *WebhookController) TwilioInbound(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid form data")
		return
	}

	if wc.AuthToken != "" {
		params := make(map[string]string, len(c.Request.PostForm))
		for key, values := range c.Request.PostForm {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}
		validator := client.NewRequestValidator(wc.AuthToken)
		if !validator.Validate(wc.PublicBaseURL+c.Request.URL.RequestURI(), params, c.GetHeader("X-Twilio-Signature")) {
			utils.RespondWithError(c, http.StatusForbidden, "Invalid Twilio signature")
			return
		}
	}

	in := services.InboundMessage{
		From: c.Request.PostForm.Get("From"),
		Body: c.Request.PostForm.Get("Body"),
	}
	if in.From == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "From is required")
		return
	}

	msg, err := wc.Inbound.HandleReply(c.Request.Context(), in)
	if err != nil {
		log.Error().Err(err).Str("from", in.From).Msg("Failed to handle inbound message")
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to handle message")
		return
	}

	var reply twimlResponse
	if msg.Response != nil {
		reply.Message = *msg.Response
	}
	c.XML(http.StatusOK, reply)
}
