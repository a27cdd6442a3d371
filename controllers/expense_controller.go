package controllers

import (
	"net/http"
	"time"

	"github.com/famtrack/expense_backend/models"
	"github.com/famtrack/expense_backend/repository"
	"github.com/gin-gonic/gin"
)

type CreateExpenseInput struct {
	Title    string    `json:"title" binding:"required" example:"Groceries"`
	Amount   float64   `json:"amount" binding:"required,gt=0" example:"42.50"`
	Category string    `json:"category" example:"food"`
	SpentAt  time.Time `json:"spent_at"`
}

type ExpenseController struct {
	expenses *repository.ExpenseRepository
	users    *repository.UserRepository
}

func NewExpenseController(expenses *repository.ExpenseRepository, users *repository.UserRepository) *ExpenseController {
	return &ExpenseController{expenses: expenses, users: users}
}

// GetExpenses returns the caller's expenses, or the whole family's when a
// family reference is set.
func (ctrl *ExpenseController) GetExpenses(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	user, err := ctrl.users.FindByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	var expenses []models.Expense
	if user.FamilyID != nil {
		expenses, err = ctrl.expenses.FindByFamilyID(*user.FamilyID)
	} else {
		expenses, err = ctrl.expenses.FindByUserID(userID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expenses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// CreateExpense records an expense against the caller and, when set, their
// family.
func (ctrl *ExpenseController) CreateExpense(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var input CreateExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ctrl.users.FindByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	spentAt := input.SpentAt
	if spentAt.IsZero() {
		spentAt = time.Now()
	}

	expense := models.Expense{
		UserID:   userID,
		FamilyID: user.FamilyID,
		Title:    input.Title,
		Amount:   input.Amount,
		Category: input.Category,
		SpentAt:  spentAt,
	}
	if err := ctrl.expenses.Create(&expense); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create expense"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Expense recorded",
		"expense": expense,
	})
}
