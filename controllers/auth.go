package controllers

import (
	"ari-backend/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// controllers/auth.go
// Sign-in and sign-out happen against the hosted auth provider; the API
// only reports who the verified token belongs to.
func Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	email, _ := c.Get(utils.ContextEmail)

	c.JSON(http.StatusOK, gin.H{
		"id":    userID,
		"email": email,
	})
}
