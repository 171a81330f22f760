package models

import (
	"gorm.io/gorm"
)

// Route represents a campus bus line managed from the admin console
// A route owns an ordered list of stops and the buses assigned to it
type Route struct {
	gorm.Model

	// Code is the public identifier ("route-42"). Generated from the
	// submission time when the console does not supply one.
	Code        string `json:"code" gorm:"uniqueIndex"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`     // hex tag shown on the map ("#3B82F6")
	Direction   string `json:"direction"` // "inbound", "outbound"
	Status      string `json:"status"`    // "active", "inactive", "maintenance"

	FrequencyMinutes int    `json:"frequency_minutes"`
	ServiceStart     string `json:"service_start"` // "07:00"
	ServiceEnd       string `json:"service_end"`   // "22:00"

	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes int     `json:"duration_minutes"`

	// Path geometry stored as a WKB LINESTRING derived from the ordered stops.
	// API responses carry it as GeoJSON.
	Geometry []byte `json:"-"`

	// Ridership figures surfaced on the analytics table.
	DailyRiders int     `json:"daily_riders"`
	OnTimeRate  float64 `json:"on_time_rate"`

	// Associations
	Stops []Stop `gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"stops,omitempty"`
	Buses []Bus  `gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"buses,omitempty"`
}

// Route status values accepted by the console.
const (
	RouteStatusActive      = "active"
	RouteStatusInactive    = "inactive"
	RouteStatusMaintenance = "maintenance"
)

// KnownRouteStatus reports whether s is a valid route status.
func KnownRouteStatus(s string) bool {
	switch s {
	case RouteStatusActive, RouteStatusInactive, RouteStatusMaintenance:
		return true
	}
	return false
}

// KnownDirection reports whether d is a valid route direction.
func KnownDirection(d string) bool {
	return d == "inbound" || d == "outbound"
}
