package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bus_notify/internal/config"
	"bus_notify/internal/geo"
	"bus_notify/internal/models"
)

// HealthCheck reports service liveness for the dashboards.
func HealthCheck(c *gin.Context) {
	status := "healthy"
	database := "connected"

	sqlDB, err := config.DB.DB()
	if err != nil || sqlDB.Ping() != nil {
		status = "degraded"
		database = "down"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": gin.H{
			"database": database,
			"api":      "running",
		},
	})
}

// SystemMetrics aggregates the counters the admin dashboard's overview
// cards display.
func SystemMetrics(c *gin.Context) {
	var (
		totalRoutes    int64
		activeRoutes   int64
		stops          int64
		busesInService int64
		totalUsers     int64
		activeUsers    int64
		activeSubs     int64
		totalNotifs    int64
		unreadNotifs   int64
		broadcastsSent int64
		dailyRiders    int64
	)

	db := config.DB
	counts := []error{
		db.Model(&models.Route{}).Count(&totalRoutes).Error,
		db.Model(&models.Route{}).Where("status = ?", models.RouteStatusActive).Count(&activeRoutes).Error,
		db.Model(&models.Stop{}).Count(&stops).Error,
		db.Model(&models.Bus{}).Where("in_service = ?", true).Count(&busesInService).Error,
		db.Model(&models.User{}).Count(&totalUsers).Error,
		db.Model(&models.User{}).Where("status = ?", models.UserStatusActive).Count(&activeUsers).Error,
		db.Model(&models.Subscription{}).Where("active = ?", true).Count(&activeSubs).Error,
		db.Model(&models.Notification{}).Count(&totalNotifs).Error,
		db.Model(&models.Notification{}).Where("read = ?", false).Count(&unreadNotifs).Error,
		db.Model(&models.Broadcast{}).Count(&broadcastsSent).Error,
		db.Model(&models.Route{}).Select("COALESCE(SUM(daily_riders), 0)").Scan(&dailyRiders).Error,
	}
	for _, err := range counts {
		if err != nil {
			logrus.WithError(err).Error("SystemMetrics: aggregate query failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"routes":               gin.H{"total": totalRoutes, "active": activeRoutes},
		"stops":                stops,
		"buses_in_service":     busesInService,
		"users":                gin.H{"total": totalUsers, "active": activeUsers},
		"active_subscriptions": activeSubs,
		"notifications":        gin.H{"total": totalNotifs, "unread": unreadNotifs},
		"broadcasts_sent":      broadcastsSent,
		"daily_riders":         dailyRiders,
	})
}

// RouteAnalytics is one row of the dashboard's per-route table.
type RouteAnalytics struct {
	RouteID          uint    `json:"route_id"`
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	Color            string  `json:"color"`
	Status           string  `json:"status"`
	StopCount        int     `json:"stop_count"`
	SubscriberCount  int64   `json:"subscriber_count"`
	BusCount         int64   `json:"bus_count"`
	FrequencyMinutes int     `json:"frequency_minutes"`
	LengthKm         float64 `json:"length_km"`
	DailyRiders      int     `json:"daily_riders"`
	OnTimeRate       float64 `json:"on_time_rate"`
}

// RouteMetrics returns the per-route analytics rows. Length is measured
// over the ordered stops rather than read from the route record, so a
// stale stored distance never reaches the dashboard.
func RouteMetrics(c *gin.Context) {
	var routes []models.Route
	if err := config.DB.Preload("Stops", stopOrder).Find(&routes).Error; err != nil {
		logrus.WithError(err).Error("RouteMetrics: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rows := make([]RouteAnalytics, 0, len(routes))
	for _, r := range routes {
		var subscribers int64
		if err := config.DB.Model(&models.Subscription{}).
			Where("route_id = ? AND active = ?", r.ID, true).
			Count(&subscribers).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var buses int64
		if err := config.DB.Model(&models.Bus{}).
			Where("route_id = ? AND in_service = ?", r.ID, true).
			Count(&buses).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		pts := make([]geo.Point, len(r.Stops))
		for i, s := range r.Stops {
			pts[i] = geo.Point{Lat: s.Lat, Lng: s.Lng}
		}

		rows = append(rows, RouteAnalytics{
			RouteID:          r.ID,
			Code:             r.Code,
			Name:             r.Name,
			Color:            r.Color,
			Status:           r.Status,
			StopCount:        len(r.Stops),
			SubscriberCount:  subscribers,
			BusCount:         buses,
			FrequencyMinutes: r.FrequencyMinutes,
			LengthKm:         geo.RoundKm(geo.PathLengthKm(pts)),
			DailyRiders:      r.DailyRiders,
			OnTimeRate:       r.OnTimeRate,
		})
	}

	c.JSON(http.StatusOK, gin.H{"routes": rows})
}
