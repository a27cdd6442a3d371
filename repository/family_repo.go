package repository

import (
	"errors"

	"github.com/famtrack/expense_backend/models"
	"gorm.io/gorm"
)

type FamilyRepository struct {
	db *gorm.DB
}

func NewFamilyRepository(db *gorm.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

func (r *FamilyRepository) FindByID(id string) (*models.Family, error) {
	var family models.Family
	if err := r.db.First(&family, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &family, nil
}

func (r *FamilyRepository) FindByAlias(alias string) (*models.Family, error) {
	var family models.Family
	if err := r.db.First(&family, "alias_name = ?", alias).Error; err != nil {
		return nil, err
	}
	return &family, nil
}

func (r *FamilyRepository) FindAll() ([]models.Family, error) {
	var families []models.Family
	if err := r.db.Find(&families).Error; err != nil {
		return nil, err
	}
	return families, nil
}

func (r *FamilyRepository) ExistsByID(id string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Family{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *FamilyRepository) AliasExists(alias string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Family{}).Where("alias_name = ?", alias).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *FamilyRepository) Create(family *models.Family) error {
	return r.db.Create(family).Error
}

func (r *FamilyRepository) Save(family *models.Family) error {
	return r.db.Save(family).Error
}

// Membership

func (r *FamilyRepository) AddMember(familyID, userID string) error {
	return r.db.Create(&models.FamilyMember{FamilyID: familyID, UserID: userID}).Error
}

func (r *FamilyRepository) RemoveMember(familyID, userID string) error {
	return r.db.Where("family_id = ? AND user_id = ?", familyID, userID).
		Delete(&models.FamilyMember{}).Error
}

func (r *FamilyRepository) MemberIDs(familyID string) ([]string, error) {
	var ids []string
	if err := r.db.Model(&models.FamilyMember{}).
		Where("family_id = ?", familyID).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *FamilyRepository) CountMembers(familyID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.FamilyMember{}).
		Where("family_id = ?", familyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *FamilyRepository) IsMember(familyID, userID string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.FamilyMember{}).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Pending invites

func (r *FamilyRepository) AddInvite(invite *models.FamilyInvite) error {
	return r.db.Create(invite).Error
}

func (r *FamilyRepository) RemoveInvite(familyID, email string) error {
	return r.db.Where("family_id = ? AND email = ?", familyID, email).
		Delete(&models.FamilyInvite{}).Error
}

// FindInvite returns nil without error when no pending invite exists.
func (r *FamilyRepository) FindInvite(familyID, email string) (*models.FamilyInvite, error) {
	var invite models.FamilyInvite
	err := r.db.First(&invite, "family_id = ? AND email = ?", familyID, email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *FamilyRepository) InvitesForFamily(familyID string) ([]models.FamilyInvite, error) {
	var invites []models.FamilyInvite
	if err := r.db.Where("family_id = ?", familyID).Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}
