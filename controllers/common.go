package controllers

import (
	"net/http"

	"github.com/famtrack/expense_backend/services"
	"github.com/gin-gonic/gin"
)

// respondError translates a domain error into the API's error envelope.
// Anything that is not a domain error becomes an opaque 500.
func respondError(c *gin.Context, err error) {
	if domainErr, ok := services.AsError(err); ok {
		c.JSON(domainErr.Status, gin.H{
			"error":   domainErr.Reason,
			"message": domainErr.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "INTERNAL",
		"message": "Something went wrong",
	})
}
