package models

import "gorm.io/gorm"

// Broadcast types and urgency levels.
const (
	BroadcastEmergency   = "emergency"
	BroadcastDelay       = "delay"
	BroadcastService     = "service"
	BroadcastMaintenance = "maintenance"

	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// KnownBroadcastType reports whether t is a supported broadcast type.
func KnownBroadcastType(t string) bool {
	switch t {
	case BroadcastEmergency, BroadcastDelay, BroadcastService, BroadcastMaintenance:
		return true
	}
	return false
}

// KnownUrgency reports whether u is a supported urgency level.
func KnownUrgency(u string) bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// Broadcast records an operator announcement sent out to riders.
// Each send fans out into per-user Notification rows in the same
// transaction; RecipientCount keeps the audited audience size.
type Broadcast struct {
	gorm.Model
	Reference string `json:"reference" gorm:"uniqueIndex"`
	Type      string `json:"type" binding:"required"`
	Title     string `json:"title"`
	Message   string `json:"message" binding:"required"`
	Urgency   string `json:"urgency"`

	// Delivery channels requested by the operator.
	SendPush  bool `json:"send_push"`
	SendEmail bool `json:"send_email"`
	SendSMS   bool `json:"send_sms"`

	// Targeting. AllRoutes true ignores RouteIDs.
	AllRoutes bool   `json:"all_routes"`
	RouteIDs  []uint `json:"route_ids" gorm:"serializer:json"`

	RecipientCount int `json:"recipient_count"`
}

// NotificationType maps a broadcast type onto the rider-facing
// notification type written into each recipient's feed.
func (b *Broadcast) NotificationType() string {
	switch b.Type {
	case BroadcastEmergency:
		return NotificationEmergency
	case BroadcastDelay:
		return NotificationDelay
	case BroadcastMaintenance:
		return NotificationCancellation
	default:
		return NotificationDeviation
	}
}

// DefaultTitle is the rider-facing headline used when the operator
// does not supply one, keyed off the broadcast type.
func (b *Broadcast) DefaultTitle() string {
	switch b.Type {
	case BroadcastEmergency:
		return "Emergency Alert"
	case BroadcastDelay:
		return "Bus Delay Alert"
	case BroadcastMaintenance:
		return "Maintenance Notice"
	default:
		return "Service Update"
	}
}
