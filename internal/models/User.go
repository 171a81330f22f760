package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"unique"`
	Password string `json:"-"` // bcrypt hash, never serialized
	Phone    string `json:"phone"`
	Role     string `json:"role"`   // "rider", "admin"
	Status   string `json:"status"` // "active", "inactive"

	// Notification channel preferences. Channels a user disables are
	// excluded when counting broadcast recipients.
	EmailEnabled          bool `json:"email_enabled"`
	SMSEnabled            bool `json:"sms_enabled"`
	PushEnabled           bool `json:"push_enabled"`
	DelayThresholdMinutes int  `json:"delay_threshold_minutes"`

	Subscriptions []Subscription `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"subscriptions,omitempty"`
}

// User status values.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// KnownUserStatus reports whether s is a valid user status.
func KnownUserStatus(s string) bool {
	return s == UserStatusActive || s == UserStatusInactive
}
