package controllers

import (
	"net/http"
	"strconv"

	"github.com/famtrack/expense_backend/models"
	"github.com/famtrack/expense_backend/repository"
	"github.com/gin-gonic/gin"
)

type RegisterDeviceInput struct {
	Token      string `json:"token" binding:"required"`
	DeviceInfo string `json:"device_info"`
}

type NotificationController struct {
	notifications *repository.NotificationRepository
	devices       *repository.DeviceTokenRepository
}

func NewNotificationController(notifications *repository.NotificationRepository, devices *repository.DeviceTokenRepository) *NotificationController {
	return &NotificationController{notifications: notifications, devices: devices}
}

// GetNotifications returns the caller's notification inbox, newest first.
func (ctrl *NotificationController) GetNotifications(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	notifications, err := ctrl.notifications.FindByReceiver(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkRead flags one of the caller's notifications as handled.
func (ctrl *NotificationController) MarkRead(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	if err := ctrl.notifications.MarkRead(uint(notificationID), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// RegisterDevice stores an FCM registration token for the caller's device.
func (ctrl *NotificationController) RegisterDevice(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input RegisterDeviceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token := models.DeviceToken{
		UserID:     userID,
		Token:      input.Token,
		DeviceInfo: input.DeviceInfo,
	}
	if err := ctrl.devices.Save(&token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register device"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Device registered"})
}
