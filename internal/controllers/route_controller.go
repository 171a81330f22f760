package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bus_notify/internal/config"
	"bus_notify/internal/geo"
	"bus_notify/internal/models"
	"bus_notify/internal/templates"
)

// RouteResponse mirrors models.Route but carries Geometry as a GeoJSON
// string for JSON output
type RouteResponse struct {
	ID               uint           `json:"ID"`
	CreatedAt        time.Time      `json:"CreatedAt"`
	UpdatedAt        time.Time      `json:"UpdatedAt"`
	DeletedAt        gorm.DeletedAt `json:"DeletedAt,omitempty"`
	Code             string         `json:"code"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	Color            string         `json:"color"`
	Direction        string         `json:"direction"`
	Status           string         `json:"status"`
	FrequencyMinutes int            `json:"frequency_minutes"`
	ServiceStart     string         `json:"service_start"`
	ServiceEnd       string         `json:"service_end"`
	DistanceKm       float64        `json:"distance_km"`
	DurationMinutes  int            `json:"duration_minutes"`
	Geometry         string         `json:"geometry"`
	DailyRiders      int            `json:"daily_riders"`
	OnTimeRate       float64        `json:"on_time_rate"`
	Stops            []models.Stop  `json:"stops"`
	Buses            []models.Bus   `json:"buses"`
}

// toRouteResponse converts a models.Route to a RouteResponse
func toRouteResponse(route models.Route) RouteResponse {
	return RouteResponse{
		ID:               route.ID,
		CreatedAt:        route.CreatedAt,
		UpdatedAt:        route.UpdatedAt,
		DeletedAt:        route.DeletedAt,
		Code:             route.Code,
		Name:             route.Name,
		Description:      route.Description,
		Color:            route.Color,
		Direction:        route.Direction,
		Status:           route.Status,
		FrequencyMinutes: route.FrequencyMinutes,
		ServiceStart:     route.ServiceStart,
		ServiceEnd:       route.ServiceEnd,
		DistanceKm:       route.DistanceKm,
		DurationMinutes:  route.DurationMinutes,
		Geometry:         geometryJSON(route.Geometry),
		DailyRiders:      route.DailyRiders,
		OnTimeRate:       route.OnTimeRate,
		Stops:            route.Stops,
		Buses:            route.Buses,
	}
}

// geometryJSON converts stored WKB bytes into a GeoJSON string
func geometryJSON(wkbBytes []byte) string {
	if len(wkbBytes) == 0 {
		return ""
	}
	raw, err := geo.WKBToGeoJSON(wkbBytes)
	if err != nil {
		logrus.WithError(err).Warn("geometryJSON: stored geometry could not be converted")
		return ""
	}
	return string(raw)
}

// stopOrder keeps preloaded stops in path order.
func stopOrder(db *gorm.DB) *gorm.DB {
	return db.Order("seq ASC")
}

// stopInput is the stop shape accepted by the admin route forms.
type stopInput struct {
	Name string  `json:"name"`
	Seq  int     `json:"seq"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// draftStops orders form stops by their seq field and converts them to
// draft entries; slice order is path order from here on.
func draftStops(in []stopInput) []templates.TemplateStop {
	sorted := append([]stopInput(nil), in...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })
	out := make([]templates.TemplateStop, len(sorted))
	for i, s := range sorted {
		out[i] = templates.TemplateStop{Name: s.Name, Lat: s.Lat, Lng: s.Lng}
	}
	return out
}

// CreateRoute submits an assembled route draft from the admin console.
// The draft comes either from a template (template_id) or from a raw
// stop list; a template replaces any stops in the body.
func CreateRoute(c *gin.Context) {
	var input struct {
		Code             string      `json:"code"`
		Name             string      `json:"name" binding:"required"`
		Description      string      `json:"description"`
		Color            string      `json:"color"`
		Direction        string      `json:"direction"`
		FrequencyMinutes int         `json:"frequency_minutes"`
		ServiceStart     string      `json:"service_start"`
		ServiceEnd       string      `json:"service_end"`
		TemplateID       string      `json:"template_id"`
		Stops            []stopInput `json:"stops"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateRoute: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	// The admin form's initial values.
	if input.Direction == "" {
		input.Direction = "outbound"
	}
	if input.FrequencyMinutes == 0 {
		input.FrequencyMinutes = 15
	}

	draft := templates.RouteDraft{
		Name:             input.Name,
		Description:      input.Description,
		Color:            input.Color,
		Direction:        input.Direction,
		FrequencyMinutes: input.FrequencyMinutes,
		ServiceStart:     input.ServiceStart,
		ServiceEnd:       input.ServiceEnd,
		Stops:            draftStops(input.Stops),
	}

	if input.TemplateID != "" {
		tpl, ok := templates.Lookup(input.TemplateID)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown template: " + input.TemplateID})
			return
		}
		templates.Apply(&draft, tpl)
	} else {
		draft.DistanceKm = geo.RoundKm(geo.PathLengthKm(draft.Points()))
		draft.DurationMinutes = templates.EstimateDurationMinutes(draft.DistanceKm, len(draft.Stops))
	}

	if err := templates.Validate(draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code := input.Code
	if code == "" {
		code = fmt.Sprintf("route-%d", time.Now().UnixMilli())
	}

	geometry, err := geo.LineStringWKB(draft.Points())
	if err != nil {
		logrus.WithError(err).Error("CreateRoute: failed to encode geometry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode geometry"})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}

	route := models.Route{
		Code:             code,
		Name:             draft.Name,
		Description:      draft.Description,
		Color:            draft.Color,
		Direction:        draft.Direction,
		Status:           models.RouteStatusActive, // new routes always start active
		FrequencyMinutes: draft.FrequencyMinutes,
		ServiceStart:     draft.ServiceStart,
		ServiceEnd:       draft.ServiceEnd,
		DistanceKm:       draft.DistanceKm,
		DurationMinutes:  draft.DurationMinutes,
		Geometry:         geometry,
	}
	if err := tx.Create(&route).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "A route with that code already exists"})
			return
		}
		logrus.WithError(err).Error("CreateRoute: create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create route failed: " + err.Error()})
		return
	}

	for i, s := range draft.Stops {
		stop := models.Stop{Name: s.Name, Seq: i + 1, Lat: s.Lat, Lng: s.Lng, RouteID: route.ID}
		if err := tx.Create(&stop).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Create stop failed: " + err.Error()})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed: " + err.Error()})
		return
	}

	config.DB.Preload("Stops", stopOrder).Preload("Buses").First(&route, route.ID)
	c.JSON(http.StatusCreated, gin.H{"route": toRouteResponse(route)})
}

// ListRoutes returns the routes riders see. Defaults to active routes;
// ?status= selects another status explicitly.
func ListRoutes(c *gin.Context) {
	listRoutesFiltered(c, models.RouteStatusActive)
}

// ListAllRoutes returns every route for the admin console regardless of
// status, unless ?status= narrows it.
func ListAllRoutes(c *gin.Context) {
	listRoutesFiltered(c, "")
}

func listRoutesFiltered(c *gin.Context, defaultStatus string) {
	status := c.DefaultQuery("status", defaultStatus)
	if status != "" && !models.KnownRouteStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + status})
		return
	}

	q := config.DB.Preload("Stops", stopOrder).Preload("Buses")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var routes []models.Route
	if err := q.Find(&routes).Error; err != nil {
		logrus.WithError(err).Error("ListRoutes: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	routeResponses := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		routeResponses = append(routeResponses, toRouteResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"routes": routeResponses})
}

// GetRoute returns a single route with its stops and buses.
func GetRoute(c *gin.Context) {
	rID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	var route models.Route
	if err := config.DB.Preload("Stops", stopOrder).Preload("Buses").First(&route, rID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(route)})
}

// ListRouteStops returns a route's stops in path order.
func ListRouteStops(c *gin.Context) {
	rID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	var route models.Route
	if err := config.DB.First(&route, rID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}

	var stops []models.Stop
	config.DB.Where("route_id = ?", route.ID).Order("seq ASC").Find(&stops)
	c.JSON(http.StatusOK, gin.H{"stops": stops})
}

// UpdateRoute handles partial updates to an existing route.
func UpdateRoute(c *gin.Context) {
	rID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		logrus.WithError(err).Warn("UpdateRoute: invalid route ID in parameter")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	var existingRoute models.Route
	if err := config.DB.First(&existingRoute, rID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		} else {
			logrus.WithError(err).Error("UpdateRoute: database error fetching route")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var input routeUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("UpdateRoute: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := applyRouteUpdates(&existingRoute, &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := config.DB.Save(&existingRoute).Error; err != nil {
		logrus.WithError(err).Error("UpdateRoute: failed to save updated route")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed: " + err.Error()})
		return
	}

	config.DB.Preload("Stops", stopOrder).Preload("Buses").First(&existingRoute, existingRoute.ID)
	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(existingRoute)})
}

type routeUpdateInput struct {
	Name             *string  `json:"name"`
	Description      *string  `json:"description"`
	Color            *string  `json:"color"`
	Direction        *string  `json:"direction"`
	Status           *string  `json:"status"`
	FrequencyMinutes *int     `json:"frequency_minutes"`
	ServiceStart     *string  `json:"service_start"`
	ServiceEnd       *string  `json:"service_end"`
	DailyRiders      *int     `json:"daily_riders"`
	OnTimeRate       *float64 `json:"on_time_rate"`
}

// applyRouteUpdates copies the set fields of the input onto the route.
func applyRouteUpdates(route *models.Route, input *routeUpdateInput) error {
	if input.Name != nil {
		route.Name = *input.Name
	}
	if input.Description != nil {
		route.Description = *input.Description
	}
	if input.Color != nil {
		route.Color = *input.Color
	}
	if input.Direction != nil {
		if !models.KnownDirection(*input.Direction) {
			return errors.New("Direction must be inbound or outbound")
		}
		route.Direction = *input.Direction
	}
	if input.Status != nil {
		if !models.KnownRouteStatus(*input.Status) {
			return errors.New("Unknown status: " + *input.Status)
		}
		route.Status = *input.Status
	}
	if input.FrequencyMinutes != nil {
		if *input.FrequencyMinutes <= 0 {
			return errors.New("Frequency must be a positive number of minutes")
		}
		route.FrequencyMinutes = *input.FrequencyMinutes
	}
	if input.ServiceStart != nil {
		route.ServiceStart = *input.ServiceStart
	}
	if input.ServiceEnd != nil {
		route.ServiceEnd = *input.ServiceEnd
	}
	if input.DailyRiders != nil {
		route.DailyRiders = *input.DailyRiders
	}
	if input.OnTimeRate != nil {
		route.OnTimeRate = *input.OnTimeRate
	}
	return nil
}

// ReplaceRouteStops swaps a route's stop list for the submitted one in
// a single transaction and refreshes the derived geometry and distance.
func ReplaceRouteStops(c *gin.Context) {
	rID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	var route models.Route
	if err := config.DB.First(&route, rID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}

	var input struct {
		Stops []stopInput `json:"stops" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft := templates.RouteDraft{
		Name:             route.Name,
		Direction:        route.Direction,
		FrequencyMinutes: route.FrequencyMinutes,
		Stops:            draftStops(input.Stops),
	}
	if err := templates.Validate(draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	geometry, err := geo.LineStringWKB(draft.Points())
	if err != nil {
		logrus.WithError(err).Error("ReplaceRouteStops: failed to encode geometry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode geometry"})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}

	if err := tx.Where("route_id = ?", route.ID).Delete(&models.Stop{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace stops: " + err.Error()})
		return
	}
	for i, s := range draft.Stops {
		stop := models.Stop{Name: s.Name, Seq: i + 1, Lat: s.Lat, Lng: s.Lng, RouteID: route.ID}
		if err := tx.Create(&stop).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Create stop failed: " + err.Error()})
			return
		}
	}

	route.Geometry = geometry
	route.DistanceKm = geo.RoundKm(geo.PathLengthKm(draft.Points()))
	if err := tx.Save(&route).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update route failed: " + err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed: " + err.Error()})
		return
	}

	config.DB.Preload("Stops", stopOrder).Preload("Buses").First(&route, route.ID)
	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(route)})
}

// DeleteRoute removes a route with its stops, releases its buses and
// deactivates subscriptions pointing at it.
func DeleteRoute(c *gin.Context) {
	rID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	var route models.Route
	if err := config.DB.First(&route, rID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}

	if err := tx.Where("route_id = ?", route.ID).Delete(&models.Stop{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete stops: " + err.Error()})
		return
	}

	if err := tx.Model(&models.Bus{}).Where("route_id = ?", route.ID).Update("route_id", 0).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release buses: " + err.Error()})
		return
	}

	if err := tx.Model(&models.Subscription{}).Where("route_id = ?", route.ID).Update("active", false).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate subscriptions: " + err.Error()})
		return
	}

	if err := tx.Delete(&models.Route{}, route.ID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete route: " + err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Route deleted successfully"})
}
