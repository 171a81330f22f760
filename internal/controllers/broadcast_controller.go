package controllers

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bus_notify/internal/config"
	"bus_notify/internal/models"
)

// broadcastChannels are the delivery channels an operator can request.
type broadcastChannels struct {
	Push  bool `json:"push"`
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
}

// alertTypesCover reports whether a subscription's alert-type set
// includes t. An empty set covers every type.
func alertTypesCover(types []string, t string) bool {
	if len(types) == 0 {
		return true
	}
	for _, at := range types {
		if at == t {
			return true
		}
	}
	return false
}

// reachable reports whether at least one requested channel is enabled
// in the user's preferences.
func reachable(u models.User, ch broadcastChannels) bool {
	return (ch.Push && u.PushEnabled) ||
		(ch.Email && u.EmailEnabled) ||
		(ch.SMS && u.SMSEnabled)
}

// broadcastRecipients computes the distinct active users a broadcast
// reaches: active subscribers of a targeted route whose alert types
// cover the mapped notification type and who are reachable on at least
// one requested channel.
func broadcastRecipients(notifType string, routeIDs []uint, ch broadcastChannels) ([]uint, error) {
	var subs []models.Subscription
	if err := config.DB.Where("route_id IN ? AND active = ?", routeIDs, true).Find(&subs).Error; err != nil {
		return nil, err
	}

	candidates := map[uint]bool{}
	for _, s := range subs {
		if alertTypesCover(s.AlertTypes, notifType) {
			candidates[s.UserID] = true
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}

	var users []models.User
	if err := config.DB.Where("id IN ? AND status = ?", ids, models.UserStatusActive).Find(&users).Error; err != nil {
		return nil, err
	}

	recipients := make([]uint, 0, len(users))
	for _, u := range users {
		if reachable(u, ch) {
			recipients = append(recipients, u.ID)
		}
	}
	sort.Slice(recipients, func(i, j int) bool { return recipients[i] < recipients[j] })
	return recipients, nil
}

// CreateBroadcast sends an operator announcement: it records the
// broadcast and fans out one notification per recipient in a single
// transaction.
func CreateBroadcast(c *gin.Context) {
	var input struct {
		Type      string            `json:"type" binding:"required"`
		Title     string            `json:"title"`
		Message   string            `json:"message" binding:"required"`
		Urgency   string            `json:"urgency" binding:"required"`
		Channels  broadcastChannels `json:"channels"`
		AllRoutes bool              `json:"all_routes"`
		RouteIDs  []uint            `json:"route_ids"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateBroadcast: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if !models.KnownBroadcastType(input.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown broadcast type: " + input.Type})
		return
	}
	if !models.KnownUrgency(input.Urgency) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown urgency: " + input.Urgency})
		return
	}
	if !input.Channels.Push && !input.Channels.Email && !input.Channels.SMS {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one delivery channel is required"})
		return
	}
	if !input.AllRoutes && len(input.RouteIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target at least one route or all routes"})
		return
	}

	var targetIDs []uint
	if input.AllRoutes {
		var routes []models.Route
		if err := config.DB.Find(&routes).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		for _, r := range routes {
			targetIDs = append(targetIDs, r.ID)
		}
	} else {
		for _, rid := range input.RouteIDs {
			var route models.Route
			if err := config.DB.First(&route, rid).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Route %d does not exist", rid)})
				return
			}
			targetIDs = append(targetIDs, rid)
		}
	}

	broadcast := models.Broadcast{
		Reference: fmt.Sprintf("EB-%d", time.Now().UnixMilli()),
		Type:      input.Type,
		Title:     input.Title,
		Message:   input.Message,
		Urgency:   input.Urgency,
		SendPush:  input.Channels.Push,
		SendEmail: input.Channels.Email,
		SendSMS:   input.Channels.SMS,
		AllRoutes: input.AllRoutes,
		RouteIDs:  input.RouteIDs,
	}
	if broadcast.Title == "" {
		broadcast.Title = broadcast.DefaultTitle()
	}

	recipients, err := broadcastRecipients(broadcast.NotificationType(), targetIDs, input.Channels)
	if err != nil {
		logrus.WithError(err).Error("CreateBroadcast: recipient computation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	broadcast.RecipientCount = len(recipients)

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}

	if err := tx.Create(&broadcast).Error; err != nil {
		tx.Rollback()
		logrus.WithError(err).Error("CreateBroadcast: create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create broadcast failed: " + err.Error()})
		return
	}

	if rows := notificationsFor(broadcast, recipients); len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Create notifications failed: " + err.Error()})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed: " + err.Error()})
		return
	}

	logrus.WithFields(logrus.Fields{
		"reference":  broadcast.Reference,
		"type":       broadcast.Type,
		"recipients": broadcast.RecipientCount,
	}).Info("broadcast sent")

	c.JSON(http.StatusCreated, gin.H{
		"broadcast":       broadcast,
		"recipient_count": broadcast.RecipientCount,
	})
}

// ListBroadcasts returns recent broadcasts, newest first.
func ListBroadcasts(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}

	var broadcasts []models.Broadcast
	if err := config.DB.Order("created_at DESC, id DESC").Limit(limit).Find(&broadcasts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing broadcasts: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"broadcasts": broadcasts})
}

// GetBroadcast returns one broadcast.
func GetBroadcast(c *gin.Context) {
	bID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid broadcast ID"})
		return
	}

	var broadcast models.Broadcast
	if err := config.DB.First(&broadcast, bID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Broadcast not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"broadcast": broadcast})
}
