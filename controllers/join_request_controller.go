package controllers

import (
	"net/http"
	"strconv"

	"github.com/famtrack/expense_backend/services"
	"github.com/gin-gonic/gin"
)

type JoinRequestInput struct {
	AliasName      string `json:"alias_name" binding:"required" example:"ABCDEF"`
	Message        string `json:"message" example:"It's me, grandma"`
	NotificationID uint   `json:"notification_id"`
}

type ResendJoinRequestInput struct {
	AliasName string `json:"alias_name" binding:"required" example:"ABCDEF"`
	Message   string `json:"message"`
}

type CancelJoinRequestInput struct {
	AliasName string `json:"alias_name" binding:"required" example:"ABCDEF"`
}

type ResendByIDInput struct {
	Message string `json:"message"`
}

type JoinRequestController struct {
	service *services.FamilyService
}

func NewJoinRequestController(service *services.FamilyService) *JoinRequestController {
	return &JoinRequestController{service: service}
}

// RequestToJoin godoc
// @Summary Request to join a family
// @Description Creates the first join-request attempt against a family; attempts are throttled per family
// @Tags join-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body JoinRequestInput true "Join Request"
// @Success 201 {object} map[string]interface{} "Request created"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Family not found"
// @Failure 409 {object} map[string]string "Conflict or retry limit reached"
// @Router /api/join-requests [post]
func (ctrl *JoinRequestController) RequestToJoin(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input JoinRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := ctrl.service.RequestToJoinFamily(userID, input.AliasName, input.Message, input.NotificationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Join request sent",
		"request": request,
	})
}

// Resend godoc
// @Summary Re-send a join request
// @Description Retires the previous pending attempt and creates a fresh one, subject to the throttle
// @Tags join-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ResendJoinRequestInput true "Resend"
// @Success 201 {object} map[string]interface{} "Request re-sent"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Family not found"
// @Failure 409 {object} map[string]string "Conflict or retry limit reached"
// @Router /api/join-requests/resend [post]
func (ctrl *JoinRequestController) Resend(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input ResendJoinRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := ctrl.service.ResendJoinRequest(userID, input.AliasName, input.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Join request re-sent",
		"request": request,
	})
}

// ResendByID godoc
// @Summary Re-send a join request by its id
// @Tags join-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Join Request ID"
// @Param request body ResendByIDInput false "Resend"
// @Success 201 {object} map[string]interface{} "Request re-sent"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Request belongs to another user"
// @Failure 404 {object} map[string]string "Request not found"
// @Failure 409 {object} map[string]string "Conflict or retry limit reached"
// @Router /api/join-requests/{id}/resend [post]
func (ctrl *JoinRequestController) ResendByID(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	// Body is optional; an absent message just reuses none.
	var input ResendByIDInput
	_ = c.ShouldBindJSON(&input)

	request, err := ctrl.service.ResendJoinRequestByID(userID, uint(requestID), input.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Join request re-sent",
		"request": request,
	})
}

// Cancel godoc
// @Summary Withdraw a pending join request
// @Tags join-requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CancelJoinRequestInput true "Cancellation"
// @Success 200 {object} map[string]string "Request cancelled"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No pending request"
// @Router /api/join-requests/cancel [post]
func (ctrl *JoinRequestController) Cancel(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input CancelJoinRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ctrl.service.CancelOwnJoinRequest(userID, input.AliasName); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Join request cancelled"})
}

// GetOwnPending godoc
// @Summary List the caller's pending join requests
// @Description Returns one entry per targeted family, always the most recent pending attempt
// @Tags join-requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Pending requests"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/join-requests/pending [get]
func (ctrl *JoinRequestController) GetOwnPending(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	requests, err := ctrl.service.GetOwnPendingJoinRequests(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// GetIncoming godoc
// @Summary List pending join requests against the caller's family
// @Description Head-only
// @Tags join-requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Incoming requests"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not the family head"
// @Router /api/join-requests/incoming [get]
func (ctrl *JoinRequestController) GetIncoming(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	requests, err := ctrl.service.IncomingJoinRequests(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// Accept godoc
// @Summary Accept a join request
// @Description Head-only; performs the same membership mutation as a direct join
// @Tags join-requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Join Request ID"
// @Success 200 {object} map[string]string "Request accepted"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not the family head"
// @Failure 404 {object} map[string]string "Request not found"
// @Failure 409 {object} map[string]string "Request already handled or family full"
// @Router /api/join-requests/{id}/accept [post]
func (ctrl *JoinRequestController) Accept(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	if err := ctrl.service.AcceptJoinRequest(userID, uint(requestID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Join request accepted"})
}

// Reject godoc
// @Summary Reject a join request
// @Description Head-only
// @Tags join-requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Join Request ID"
// @Success 200 {object} map[string]string "Request rejected"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not the family head"
// @Failure 404 {object} map[string]string "Request not found"
// @Failure 409 {object} map[string]string "Request already handled"
// @Router /api/join-requests/{id}/reject [post]
func (ctrl *JoinRequestController) Reject(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	if err := ctrl.service.RejectJoinRequest(userID, uint(requestID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Join request rejected"})
}
