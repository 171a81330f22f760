package models

import (
	"gorm.io/gorm"
)

// Stop represents a boarding point along a route
// Seq indicates order along the route, starting at 1
type Stop struct {
	gorm.Model

	Name        string  `json:"name" binding:"required"`
	Seq         int     `json:"seq" binding:"required"`
	Lat         float64 `json:"lat" binding:"required"`
	Lng         float64 `json:"lng" binding:"required"`
	Description string  `json:"description"`

	// Foreign key to route
	RouteID uint `json:"route_id"`
}
