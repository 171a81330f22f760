package controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus_notify/internal/config"
	"bus_notify/internal/controllers"
	"bus_notify/internal/models"
	"bus_notify/internal/seed"
)

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	services, ok := body["services"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "connected", services["database"])
	assert.Equal(t, "running", services["api"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestSystemMetrics(t *testing.T) {
	r := newTestRouter(t)
	require.NoError(t, seed.Run(config.DB))

	w := do(t, r, http.MethodGet, "/admin/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	type counts struct {
		Total  int64 `json:"total"`
		Active int64 `json:"active"`
	}
	type feedCounts struct {
		Total  int64 `json:"total"`
		Unread int64 `json:"unread"`
	}
	var m struct {
		Routes              counts     `json:"routes"`
		Stops               int64      `json:"stops"`
		BusesInService      int64      `json:"buses_in_service"`
		Users               counts     `json:"users"`
		ActiveSubscriptions int64      `json:"active_subscriptions"`
		Notifications       feedCounts `json:"notifications"`
		BroadcastsSent      int64      `json:"broadcasts_sent"`
		DailyRiders         int64      `json:"daily_riders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))

	assert.EqualValues(t, 4, m.Routes.Total)
	assert.EqualValues(t, 4, m.Routes.Active)
	assert.EqualValues(t, 12, m.Stops)
	assert.EqualValues(t, 5, m.BusesInService)
	assert.EqualValues(t, 3, m.Users.Total)
	assert.EqualValues(t, 3, m.Users.Active)
	assert.EqualValues(t, 3, m.ActiveSubscriptions)
	assert.EqualValues(t, 4, m.Notifications.Total)
	assert.EqualValues(t, 3, m.Notifications.Unread)
	assert.EqualValues(t, 0, m.BroadcastsSent)
	assert.EqualValues(t, 3880, m.DailyRiders)
}

func TestRouteMetrics(t *testing.T) {
	r := newTestRouter(t)
	require.NoError(t, seed.Run(config.DB))

	w := do(t, r, http.MethodGet, "/admin/metrics/routes", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Routes []controllers.RouteAnalytics `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Routes, 4)

	byCode := map[string]controllers.RouteAnalytics{}
	for _, row := range resp.Routes {
		byCode[row.Code] = row
	}

	r42, ok := byCode["route-42"]
	require.True(t, ok)
	assert.Equal(t, 3, r42.StopCount)
	assert.EqualValues(t, 1, r42.SubscriberCount)
	assert.EqualValues(t, 2, r42.BusCount, "route 42 runs two buses")
	assert.Equal(t, 1250, r42.DailyRiders)
	assert.Equal(t, 94.2, r42.OnTimeRate)

	var stored models.Route
	require.NoError(t, config.DB.Where("code = ?", "route-42").First(&stored).Error)
	assert.Equal(t, stored.DistanceKm, r42.LengthKm)

	// Length is measured over the stops at request time, so corrupting
	// the stored figure does not leak into the dashboard.
	require.NoError(t, config.DB.Model(&stored).UpdateColumn("distance_km", 99.9).Error)
	w = do(t, r, http.MethodGet, "/admin/metrics/routes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp.Routes = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	for _, row := range resp.Routes {
		if row.Code == "route-42" {
			assert.Equal(t, r42.LengthKm, row.LengthKm)
		}
	}
}
