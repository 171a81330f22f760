package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bus_notify/internal/config"
	"bus_notify/internal/models"
)

// ListNotifications returns a rider's notification feed, newest first.
// Filters: ?read=, ?type=, ?limit= (default 50, max 100).
func ListNotifications(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	q := config.DB.Where("user_id = ?", user.ID)
	if raw := c.Query("read"); raw != "" {
		read, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "read must be true or false"})
			return
		}
		q = q.Where("read = ?", read)
	}
	if t := c.Query("type"); t != "" {
		if !models.KnownNotificationType(t) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown notification type: " + t})
			return
		}
		q = q.Where("type = ?", t)
	}

	var notifications []models.Notification
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing notifications: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// UnreadNotificationCount returns how many notifications the rider has
// not read yet; the rider UI badge polls this.
func UnreadNotificationCount(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}

	var count int64
	if err := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", user.ID, false).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// GetNotification returns one notification if the rider owns it.
func GetNotification(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}

	nID, err := strconv.ParseUint(c.Param("nid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	var notification models.Notification
	if err := config.DB.Where("id = ? AND user_id = ?", nID, user.ID).First(&notification).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notification": notification})
}

// MarkNotificationRead flips a notification to read. Answers 404 when
// nothing changed, including notifications that were already read.
func MarkNotificationRead(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}

	nID, err := strconv.ParseUint(c.Param("nid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	result := config.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read = ?", nID, user.ID, false).
		Update("read", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkAllNotificationsRead zeroes the rider's unread counter.
func MarkAllNotificationsRead(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}

	if err := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", user.ID, false).
		Update("read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteNotification removes one notification from the rider's feed.
func DeleteNotification(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}

	nID, err := strconv.ParseUint(c.Param("nid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	result := config.DB.Where("user_id = ?", user.ID).Delete(&models.Notification{}, nID)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

// PurgeNotifications deletes the rider's notifications older than
// ?days_old= (default 30, between 1 and 365).
func PurgeNotifications(c *gin.Context) {
	user, ok := userFromPath(c)
	if !ok {
		return
	}

	days := 30
	if raw := c.Query("days_old"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 365 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days_old must be between 1 and 365"})
			return
		}
		days = n
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	result := config.DB.Where("user_id = ? AND created_at < ?", user.ID, cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted_count": result.RowsAffected})
}

// notificationsFor builds the per-recipient rows a broadcast fans out
// into. Shared with the broadcast controller's transaction.
func notificationsFor(b models.Broadcast, userIDs []uint) []models.Notification {
	rows := make([]models.Notification, 0, len(userIDs))
	for _, uid := range userIDs {
		rows = append(rows, models.Notification{
			UserID:      uid,
			Type:        b.NotificationType(),
			Title:       b.Title,
			Message:     b.Message,
			BroadcastID: b.ID,
		})
	}
	return rows
}
