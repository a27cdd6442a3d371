package models

import (
	"time"
)

// DeviceToken is an FCM registration token for one of a user's devices.
// Tokens reported as unregistered by the push gateway are pruned.
type DeviceToken struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"size:64;not null;index" json:"user_id"`
	Token      string    `gorm:"size:512;not null;unique" json:"-"`
	DeviceInfo string    `gorm:"size:255" json:"device_info,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
