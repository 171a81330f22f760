package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bus_notify/internal/config"
	"bus_notify/internal/models"
)

// CreateBus registers a new bus in the fleet; defaults InService to true
func CreateBus(c *gin.Context) {
	var input struct {
		Code         string `json:"code" binding:"required"`
		LicensePlate string `json:"license_plate"`
		Capacity     int    `json:"capacity" binding:"required"`
		RouteID      uint   `json:"route_id"`
		// InService omitted: always default true on creation
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bus input: " + err.Error()})
		return
	}
	if input.Capacity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Capacity must be positive"})
		return
	}

	if input.RouteID != 0 {
		var route models.Route
		if err := config.DB.First(&route, input.RouteID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Route not found"})
			return
		}
	}

	bus := models.Bus{
		Code:         input.Code,
		LicensePlate: input.LicensePlate,
		Capacity:     input.Capacity,
		RouteID:      input.RouteID,
		InService:    true,
	}

	if err := config.DB.Create(&bus).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "A bus with that code already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bus: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bus": bus})
}

// ListBuses returns the fleet, filterable by route and service state.
func ListBuses(c *gin.Context) {
	q := config.DB.Order("code ASC")
	if routeID := c.Query("route_id"); routeID != "" {
		q = q.Where("route_id = ?", routeID)
	}
	if raw := c.Query("in_service"); raw != "" {
		inService, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "in_service must be true or false"})
			return
		}
		q = q.Where("in_service = ?", inService)
	}

	var buses []models.Bus
	if err := q.Find(&buses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing buses: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"buses": buses})
}

// UpdateBus applies a partial update to a bus.
func UpdateBus(c *gin.Context) {
	bID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bus ID"})
		return
	}

	var bus models.Bus
	if err := config.DB.First(&bus, bID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
		return
	}

	var input struct {
		LicensePlate *string `json:"license_plate"`
		Capacity     *int    `json:"capacity"`
		InService    *bool   `json:"in_service"`
		RouteID      *uint   `json:"route_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update"})
		return
	}

	if input.LicensePlate != nil {
		bus.LicensePlate = *input.LicensePlate
	}
	if input.Capacity != nil {
		if *input.Capacity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Capacity must be positive"})
			return
		}
		bus.Capacity = *input.Capacity
	}
	if input.InService != nil {
		bus.InService = *input.InService
	}
	if input.RouteID != nil {
		// Zero unassigns the bus from its route.
		if *input.RouteID != 0 {
			var route models.Route
			if err := config.DB.First(&route, *input.RouteID).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Route not found"})
				return
			}
		}
		bus.RouteID = *input.RouteID
	}

	config.DB.Save(&bus)
	c.JSON(http.StatusOK, gin.H{"bus": bus})
}

// DeleteBus removes a bus from the fleet.
func DeleteBus(c *gin.Context) {
	bID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bus ID"})
		return
	}

	var bus models.Bus
	if err := config.DB.First(&bus, bID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
		return
	}

	config.DB.Delete(&bus)
	c.JSON(http.StatusOK, gin.H{"message": "Bus deleted"})
}
