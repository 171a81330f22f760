package models

import "gorm.io/gorm"

// Notification types.
const (
	NotificationDelay        = "delay"
	NotificationApproaching  = "approaching"
	NotificationDeviation    = "deviation"
	NotificationEmergency    = "emergency"
	NotificationCancellation = "cancellation"
)

// KnownNotificationType reports whether t is one of the supported
// notification types.
func KnownNotificationType(t string) bool {
	switch t {
	case NotificationDelay, NotificationApproaching, NotificationDeviation,
		NotificationEmergency, NotificationCancellation:
		return true
	}
	return false
}

// Notification is a single alert delivered to a rider's feed.
type Notification struct {
	gorm.Model
	UserID  uint   `json:"user_id" gorm:"index"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`

	// Optional context for the alert.
	RouteID     uint `json:"route_id,omitempty"`
	StopID      uint `json:"stop_id,omitempty"`
	BroadcastID uint `json:"broadcast_id,omitempty" gorm:"index"`

	Read bool `json:"read"`
}
