package models

import (
	"time"
)

// DefaultMaxFamilySize is applied when a family is created without an
// explicit size limit.
const DefaultMaxFamilySize = 10

type Family struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	AliasName string    `gorm:"size:6;not null;unique" json:"alias_name"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	HeadID    string    `gorm:"size:64;not null" json:"head_id"`
	MaxSize   int       `gorm:"not null;default:10" json:"max_size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Members   []User    `gorm:"many2many:family_members;" json:"members,omitempty"`
}

type FamilyMember struct {
	FamilyID  string    `gorm:"primaryKey;size:64" json:"family_id"`
	UserID    string    `gorm:"primaryKey;size:64" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FamilyInvite is a pending invitation keyed by email. The invited address
// is not necessarily a registered user yet.
type FamilyInvite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FamilyID  string    `gorm:"size:64;not null;index:idx_family_invite_email,unique" json:"family_id"`
	Email     string    `gorm:"size:255;not null;index:idx_family_invite_email,unique" json:"email"`
	InvitedBy string    `gorm:"size:64;not null" json:"invited_by"`
	Message   string    `gorm:"size:500" json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
