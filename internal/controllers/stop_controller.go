package controllers

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"bus_notify/internal/config"
	"bus_notify/internal/geo"
	"bus_notify/internal/models"
)

// ListStops returns all stops, optionally narrowed to one route.
func ListStops(c *gin.Context) {
	q := config.DB.Order("route_id ASC, seq ASC")
	if routeID := c.Query("route_id"); routeID != "" {
		q = q.Where("route_id = ?", routeID)
	}

	var stops []models.Stop
	if err := q.Find(&stops).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing stops: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stops": stops})
}

// nearbyStop is a stop annotated with its distance from the query point.
type nearbyStop struct {
	models.Stop
	DistanceKm float64 `json:"distance_km"`
}

// NearbyStops scans all stops for those within radius_km of the given
// point, nearest first. The radius defaults to 1 km and is clamped to
// a sane range for a campus.
func NearbyStops(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required coordinates"})
		return
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat must be between -90 and 90 and lng between -180 and 180"})
		return
	}

	radius := 1.0
	if raw := c.Query("radius_km"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid radius_km"})
			return
		}
		radius = r
	}
	if radius < 0.1 || radius > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "radius_km must be between 0.1 and 50"})
		return
	}

	var stops []models.Stop
	if err := config.DB.Find(&stops).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing stops: " + err.Error()})
		return
	}

	origin := geo.Point{Lat: lat, Lng: lng}
	nearby := make([]nearbyStop, 0)
	for _, s := range stops {
		d := geo.DistanceKm(origin, geo.Point{Lat: s.Lat, Lng: s.Lng})
		if d <= radius {
			nearby = append(nearby, nearbyStop{Stop: s, DistanceKm: d})
		}
	}
	sort.Slice(nearby, func(i, j int) bool { return nearby[i].DistanceKm < nearby[j].DistanceKm })
	for i := range nearby {
		nearby[i].DistanceKm = geo.RoundKm(nearby[i].DistanceKm)
	}

	c.JSON(http.StatusOK, gin.H{"stops": nearby, "radius_km": radius})
}
