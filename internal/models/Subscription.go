package models

import "gorm.io/gorm"

// Subscription links a rider to a route they want alerts for.
// StopIDs narrows alerts to specific stops; an empty slice means every
// stop on the route. AlertTypes works the same way for alert kinds.
type Subscription struct {
	gorm.Model
	UserID  uint `json:"user_id" gorm:"index"`
	RouteID uint `json:"route_id" binding:"required" gorm:"index"`

	StopIDs    []uint   `json:"stop_ids" gorm:"serializer:json"`
	AlertTypes []string `json:"alert_types" gorm:"serializer:json"`

	// Unsubscribing flips Active to false rather than deleting the row,
	// so a rider's history survives a re-subscribe.
	Active bool `json:"active"`
}
