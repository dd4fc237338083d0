package utils

import "github.com/gin-gonic/gin"

// RespondWithError aborts the request with a {"error": message} body.
func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// RespondWithFields aborts with a message plus per-field validation errors.
func RespondWithFields(c *gin.Context, status int, message string, fields map[string]string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message, "fields": fields})
}
