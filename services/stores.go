package services

import (
	"github.com/famtrack/expense_backend/models"
)

// Store contracts consumed by the services. The repository package satisfies
// all of them; tests substitute in-memory fakes.

type UserStore interface {
	FindByID(id string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindAll() ([]models.User, error)
	Save(user *models.User) error
}

type FamilyStore interface {
	FindByID(id string) (*models.Family, error)
	FindByAlias(alias string) (*models.Family, error)
	ExistsByID(id string) (bool, error)
	AliasExists(alias string) (bool, error)
	Create(family *models.Family) error
	Save(family *models.Family) error
	AddMember(familyID, userID string) error
	RemoveMember(familyID, userID string) error
	MemberIDs(familyID string) ([]string, error)
	CountMembers(familyID string) (int64, error)
	IsMember(familyID, userID string) (bool, error)
	AddInvite(invite *models.FamilyInvite) error
	RemoveInvite(familyID, email string) error
	FindInvite(familyID, email string) (*models.FamilyInvite, error)
	InvitesForFamily(familyID string) ([]models.FamilyInvite, error)
}

type JoinRequestStore interface {
	Create(request *models.JoinRequest) error
	Save(request *models.JoinRequest) error
	FindByID(id uint) (*models.JoinRequest, error)
	FindByRequesterAndFamily(requesterID, familyID string) ([]models.JoinRequest, error)
	FindByRequesterAndStatus(requesterID string, status models.JoinRequestStatus) ([]models.JoinRequest, error)
	FindByRequesterAndFamilyAndStatus(requesterID, familyID string, status models.JoinRequestStatus) ([]models.JoinRequest, error)
	FindByFamilyAndStatus(familyID string, status models.JoinRequestStatus) ([]models.JoinRequest, error)
}

type NotificationStore interface {
	Create(notification *models.Notification) error
	MarkRead(id uint, receiverID string) error
}

type ExpenseStore interface {
	DeleteByFamilyID(familyID string) (int64, error)
}

type DeviceTokenStore interface {
	FindByUserID(userID string) ([]models.DeviceToken, error)
	DeleteByTokens(tokens []string) error
}
