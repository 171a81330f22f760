package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bus_notify/internal/config"
	"bus_notify/internal/models"
)

// userFromPath resolves the :id path segment to a user, answering 404
// itself when there is none.
func userFromPath(c *gin.Context) (models.User, bool) {
	uID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return models.User{}, false
	}

	var user models.User
	if err := config.DB.First(&user, uID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return models.User{}, false
	}
	return user, true
}

// validateStopIDs checks that every referenced stop belongs to the
// route. An empty list is valid and means every stop.
func validateStopIDs(routeID uint, stopIDs []uint) error {
	if len(stopIDs) == 0 {
		return nil
	}

	var stops []models.Stop
	if err := config.DB.Where("route_id = ?", routeID).Find(&stops).Error; err != nil {
		return err
	}
	onRoute := map[uint]bool{}
	for _, s := range stops {
		onRoute[s.ID] = true
	}
	for _, id := range stopIDs {
		if !onRoute[id] {
			return fmt.Errorf("stop %d is not on that route", id)
		}
	}
	return nil
}

// validateAlertTypes checks the subscription's alert-type set. An empty
// list is valid and means every type.
func validateAlertTypes(alertTypes []string) error {
	for _, t := range alertTypes {
		if !models.KnownNotificationType(t) {
			return fmt.Errorf("unknown alert type %q", t)
		}
	}
	return nil
}

// ListSubscriptions returns a rider's active subscriptions.
func ListSubscriptions(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}

	var subs []models.Subscription
	if err := config.DB.Where("user_id = ? AND active = ?", user.ID, true).Find(&subs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing subscriptions: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": subs})
}

// CreateSubscription subscribes a rider to a route. Empty stop_ids or
// alert_types widen the subscription to the whole route / every type.
func CreateSubscription(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}

	var input struct {
		RouteID    uint     `json:"route_id" binding:"required"`
		StopIDs    []uint   `json:"stop_ids"`
		AlertTypes []string `json:"alert_types"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var route models.Route
	if err := config.DB.First(&route, input.RouteID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}

	var existing models.Subscription
	err := config.DB.Where("user_id = ? AND route_id = ? AND active = ?", user.ID, route.ID, true).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Already subscribed to this route"})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := validateStopIDs(route.ID, input.StopIDs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateAlertTypes(input.AlertTypes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub := models.Subscription{
		UserID:     user.ID,
		RouteID:    route.ID,
		StopIDs:    input.StopIDs,
		AlertTypes: input.AlertTypes,
		Active:     true,
	}
	if err := config.DB.Create(&sub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"subscription": sub})
}

// UpdateSubscription replaces a subscription's stop and alert-type
// selection.
func UpdateSubscription(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}

	sID, err := strconv.ParseUint(c.Param("sid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription ID"})
		return
	}

	var sub models.Subscription
	if err := config.DB.Where("id = ? AND user_id = ?", sID, user.ID).First(&sub).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
		return
	}

	var input struct {
		StopIDs    *[]uint   `json:"stop_ids"`
		AlertTypes *[]string `json:"alert_types"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.StopIDs != nil {
		if err := validateStopIDs(sub.RouteID, *input.StopIDs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sub.StopIDs = *input.StopIDs
	}
	if input.AlertTypes != nil {
		if err := validateAlertTypes(*input.AlertTypes); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sub.AlertTypes = *input.AlertTypes
	}

	if err := config.DB.Save(&sub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}

// DeleteSubscription deactivates a subscription rather than deleting
// it; the rider can subscribe to the route again later.
func DeleteSubscription(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}

	sID, err := strconv.ParseUint(c.Param("sid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription ID"})
		return
	}

	result := config.DB.Model(&models.Subscription{}).
		Where("id = ? AND user_id = ? AND active = ?", sID, user.ID, true).
		Update("active", false)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed from route"})
}
