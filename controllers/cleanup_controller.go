package controllers

import (
	"net/http"

	"github.com/famtrack/expense_backend/services"
	"github.com/gin-gonic/gin"
)

type CleanupController struct {
	service *services.CleanupService
}

func NewCleanupController(service *services.CleanupService) *CleanupController {
	return &CleanupController{service: service}
}

// RunCleanup godoc
// @Summary Trigger an orphaned-reference cleanup run
// @Description Scans all users, clears family references that no longer resolve and deletes the orphaned expenses
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Run metrics"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Scan failed"
// @Router /api/admin/cleanup [post]
func (ctrl *CleanupController) RunCleanup(c *gin.Context) {
	status, err := ctrl.service.RunManualCleanup()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cleanup run failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cleanup completed",
		"status":  status,
	})
}

// GetCleanupStatus godoc
// @Summary Get the metrics of the last manual cleanup run
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Last run metrics"
// @Failure 404 {object} map[string]string "No run recorded yet"
// @Router /api/admin/cleanup/status [get]
func (ctrl *CleanupController) GetCleanupStatus(c *gin.Context) {
	status, ok := ctrl.service.LastRunStatus()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No cleanup run recorded yet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}
