package repository

import (
	"github.com/famtrack/expense_backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.NewString()
	}
	return r.db.Create(expense).Error
}

func (r *ExpenseRepository) FindByUserID(userID string) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := r.db.Where("user_id = ?", userID).
		Order("spent_at DESC").
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *ExpenseRepository) FindByFamilyID(familyID string) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := r.db.Where("family_id = ?", familyID).
		Order("spent_at DESC").
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// DeleteByFamilyID removes every expense recorded against a family and
// returns how many rows were deleted.
func (r *ExpenseRepository) DeleteByFamilyID(familyID string) (int64, error) {
	result := r.db.Where("family_id = ?", familyID).Delete(&models.Expense{})
	return result.RowsAffected, result.Error
}
