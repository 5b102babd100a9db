package handlers

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse sends a standardized error response; callers log separately
// when the failure is worth operator attention
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
