// internal/models/bus.go
package models

import (
	"gorm.io/gorm"
)

type Bus struct {
	gorm.Model
	Code         string `json:"code" gorm:"uniqueIndex"` // fleet identifier ("bus-001")
	LicensePlate string `json:"license_plate"`
	Capacity     int    `json:"capacity"`
	InService    bool   `json:"in_service"`
	RouteID      uint   `json:"route_id"` // assigned route, 0 when unassigned
}
