package controllers

import (
	"net/http"

	"github.com/famtrack/expense_backend/services"
	"github.com/gin-gonic/gin"
)

type CreateFamilyInput struct {
	Name string `json:"name" binding:"required" example:"The Smiths"`
}

type JoinFamilyInput struct {
	AliasName      string `json:"alias_name" binding:"required" example:"ABCDEF"`
	NotificationID uint   `json:"notification_id" example:"1"`
}

type InviteMemberInput struct {
	Email   string `json:"email" binding:"required,email" example:"aunt@example.com"`
	Message string `json:"message" example:"Join us!"`
}

type RemoveMemberInput struct {
	Email   string `json:"email" binding:"required,email" example:"cousin@example.com"`
	Message string `json:"message"`
}

type FamilyController struct {
	service *services.FamilyService
}

func NewFamilyController(service *services.FamilyService) *FamilyController {
	return &FamilyController{service: service}
}

// CreateFamily godoc
// @Summary Create a new family
// @Description Creates a family with the authenticated user as head and sole member
// @Tags families
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param family body CreateFamilyInput true "Family Creation"
// @Success 201 {object} map[string]interface{} "Family created successfully"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Already in a family"
// @Router /api/families [post]
func (ctrl *FamilyController) CreateFamily(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input CreateFamilyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	family, err := ctrl.service.CreateFamily(userID, input.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Family created successfully",
		"family":  family,
	})
}

// GetOwnFamily godoc
// @Summary Get the authenticated user's family
// @Tags families
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Family details"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Not in a family"
// @Router /api/families/mine [get]
func (ctrl *FamilyController) GetOwnFamily(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	family, err := ctrl.service.GetOwnFamily(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"family": family})
}

// JoinFamily godoc
// @Summary Join a family by alias code
// @Description Adds the authenticated user to the family behind an alias, typically from an invitation
// @Tags families
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param join body JoinFamilyInput true "Join Request"
// @Success 200 {object} map[string]interface{} "Joined successfully"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Family not found"
// @Failure 409 {object} map[string]string "Already in a family or family full"
// @Router /api/families/join [post]
func (ctrl *FamilyController) JoinFamily(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input JoinFamilyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	family, err := ctrl.service.JoinFamily(userID, input.AliasName, input.NotificationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Joined family successfully",
		"family":  family,
	})
}

// InviteMember godoc
// @Summary Invite someone to the family by email
// @Tags families
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invite body InviteMemberInput true "Invitation"
// @Success 201 {object} map[string]string "Invitation sent"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Already a member or already invited"
// @Router /api/families/invites [post]
func (ctrl *FamilyController) InviteMember(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input InviteMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ctrl.service.InviteMember(userID, input.Email, input.Message); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Invitation sent successfully"})
}

// ResendInvitation godoc
// @Summary Re-send a pending invitation
// @Tags families
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invite body InviteMemberInput true "Invitation"
// @Success 200 {object} map[string]string "Invitation re-sent"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "No pending invitation"
// @Router /api/families/invites/resend [post]
func (ctrl *FamilyController) ResendInvitation(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input InviteMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ctrl.service.ResendInvitation(userID, input.Email, input.Message); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation re-sent successfully"})
}

// RemoveMember godoc
// @Summary Remove a member from the family
// @Description Head-only; the head cannot remove themself
// @Tags families
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param removal body RemoveMemberInput true "Removal"
// @Success 200 {object} map[string]string "Member removed"
// @Failure 400 {object} map[string]string "Head self-removal"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not the family head"
// @Failure 404 {object} map[string]string "Not a member"
// @Router /api/families/members/remove [post]
func (ctrl *FamilyController) RemoveMember(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input RemoveMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ctrl.service.RemoveMember(userID, input.Email, input.Message); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}
