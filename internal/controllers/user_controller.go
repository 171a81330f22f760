package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bus_notify/internal/config"
	"bus_notify/internal/models"
)

// ListUsers returns users for the admin console table. Supports
// ?status=, ?role=, ?route_id= (active subscribers of that route) and
// ?q= (name/email substring).
func ListUsers(c *gin.Context) {
	q := config.DB.Preload("Subscriptions", "active = ?", true).Order("id ASC")

	if status := c.Query("status"); status != "" {
		if !models.KnownUserStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + status})
			return
		}
		q = q.Where("status = ?", status)
	}
	if role := c.Query("role"); role != "" {
		if role != "rider" && role != "admin" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role: " + role})
			return
		}
		q = q.Where("role = ?", role)
	}
	if routeID := c.Query("route_id"); routeID != "" {
		subscribers := config.DB.Model(&models.Subscription{}).
			Select("user_id").
			Where("route_id = ? AND active = ?", routeID, true)
		q = q.Where("id IN (?)", subscribers)
	}
	if search := c.Query("q"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		logrus.WithError(err).Error("ListUsers: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing users: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetUser returns one user with their active subscriptions.
func GetUser(c *gin.Context) {
	uID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := config.DB.Preload("Subscriptions", "active = ?", true).First(&user, uID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateUser applies a partial update to a user's profile and
// notification preferences.
func UpdateUser(c *gin.Context) {
	uID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, uID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var input struct {
		Name                  *string `json:"name"`
		Phone                 *string `json:"phone"`
		Status                *string `json:"status"`
		EmailEnabled          *bool   `json:"email_enabled"`
		SMSEnabled            *bool   `json:"sms_enabled"`
		PushEnabled           *bool   `json:"push_enabled"`
		DelayThresholdMinutes *int    `json:"delay_threshold_minutes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Status != nil {
		if !models.KnownUserStatus(*input.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + *input.Status})
			return
		}
		user.Status = *input.Status
	}
	if input.EmailEnabled != nil {
		user.EmailEnabled = *input.EmailEnabled
	}
	if input.SMSEnabled != nil {
		user.SMSEnabled = *input.SMSEnabled
	}
	if input.PushEnabled != nil {
		user.PushEnabled = *input.PushEnabled
	}
	if input.DelayThresholdMinutes != nil {
		user.DelayThresholdMinutes = *input.DelayThresholdMinutes
	}

	if err := config.DB.Save(&user).Error; err != nil {
		logrus.WithError(err).Error("UpdateUser: failed to save user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// BulkUserStatus is the console's select-then-apply action: set the
// same status on every selected user.
func BulkUserStatus(c *gin.Context) {
	var input struct {
		UserIDs []uint `json:"user_ids" binding:"required"`
		Status  string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(input.UserIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_ids must not be empty"})
		return
	}
	if !models.KnownUserStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + input.Status})
		return
	}

	result := config.DB.Model(&models.User{}).
		Where("id IN ?", input.UserIDs).
		Update("status", input.Status)
	if result.Error != nil {
		logrus.WithError(result.Error).Error("BulkUserStatus: update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Bulk update failed: " + result.Error.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated_count": result.RowsAffected})
}
