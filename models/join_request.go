package models

import (
	"time"
)

type JoinRequestStatus string

const (
	JoinRequestPending   JoinRequestStatus = "PENDING"
	JoinRequestRejected  JoinRequestStatus = "REJECTED"
	JoinRequestCancelled JoinRequestStatus = "CANCELLED"
	JoinRequestAccepted  JoinRequestStatus = "ACCEPTED"
)

// JoinRequest is a single attempt by a user to join a family. Every attempt
// gets its own row; resends retire the previous attempt instead of mutating
// it, so the history stays auditable.
type JoinRequest struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	RequesterID string            `gorm:"size:64;not null;index" json:"requester_id"`
	FamilyID    string            `gorm:"size:64;not null;index" json:"family_id"`
	Message     string            `gorm:"size:500" json:"message,omitempty"`
	Status      JoinRequestStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Terminal reports whether the request can no longer transition.
func (r *JoinRequest) Terminal() bool {
	return r.Status != JoinRequestPending
}
