package models

import (
	"time"
)

// Notification type tags, also carried in the push payload so clients can
// route taps to the right screen.
const (
	NotificationInvite        = "family_invite"
	NotificationJoinRequest   = "join_request"
	NotificationJoinAccepted  = "join_accepted"
	NotificationJoinRejected  = "join_rejected"
	NotificationJoinCancelled = "join_cancelled"
	NotificationMemberJoined  = "member_joined"
	NotificationMemberRemoved = "member_removed"
)

type Notification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SenderID      string    `gorm:"size:64" json:"sender_id"`
	ReceiverID    string    `gorm:"size:64;not null;index" json:"receiver_id"`
	FamilyID      string    `gorm:"size:64;index" json:"family_id"`
	JoinRequestID uint      `json:"join_request_id,omitempty"`
	Type          string    `gorm:"size:32;not null" json:"type"`
	Title         string    `gorm:"size:255" json:"title"`
	Body          string    `gorm:"size:500" json:"body"`
	IsRead        bool      `gorm:"default:false" json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}
