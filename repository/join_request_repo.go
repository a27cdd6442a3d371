package repository

import (
	"github.com/famtrack/expense_backend/models"
	"gorm.io/gorm"
)

type JoinRequestRepository struct {
	db *gorm.DB
}

func NewJoinRequestRepository(db *gorm.DB) *JoinRequestRepository {
	return &JoinRequestRepository{db: db}
}

func (r *JoinRequestRepository) Create(request *models.JoinRequest) error {
	return r.db.Create(request).Error
}

func (r *JoinRequestRepository) Save(request *models.JoinRequest) error {
	return r.db.Save(request).Error
}

func (r *JoinRequestRepository) FindByID(id uint) (*models.JoinRequest, error) {
	var request models.JoinRequest
	if err := r.db.First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// FindByRequesterAndFamily returns all attempts for a (requester, family)
// pair, newest first.
func (r *JoinRequestRepository) FindByRequesterAndFamily(requesterID, familyID string) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest
	if err := r.db.Where("requester_id = ? AND family_id = ?", requesterID, familyID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *JoinRequestRepository) FindByRequesterAndStatus(requesterID string, status models.JoinRequestStatus) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest
	if err := r.db.Where("requester_id = ? AND status = ?", requesterID, status).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *JoinRequestRepository) FindByRequesterAndFamilyAndStatus(requesterID, familyID string, status models.JoinRequestStatus) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest
	if err := r.db.Where("requester_id = ? AND family_id = ? AND status = ?", requesterID, familyID, status).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *JoinRequestRepository) FindByRequester(requesterID string) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest
	if err := r.db.Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *JoinRequestRepository) FindByFamilyAndStatus(familyID string, status models.JoinRequestStatus) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest
	if err := r.db.Where("family_id = ? AND status = ?", familyID, status).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
