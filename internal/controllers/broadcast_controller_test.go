package controllers_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus_notify/internal/config"
	"bus_notify/internal/models"
)

type broadcastEnvelope struct {
	Broadcast      models.Broadcast `json:"broadcast"`
	RecipientCount int              `json:"recipient_count"`
}

// broadcastCast seeds two routes and riders whose subscriptions and
// channel preferences cover every recipient rule.
type broadcastCast struct {
	lineOne models.Route
	lineTwo models.Route

	pushOnly       models.User // line one, every alert type, push channel
	emailDelayOnly models.User // line one, delay alerts only, email channel
	inactive       models.User // line one, but the account is inactive
	unsubscribed   models.User // line one, subscription switched off
	lineTwoRider   models.User // line two, every alert type
	bothLines      models.User // subscribed to both lines
}

func seedBroadcastCast(t *testing.T) broadcastCast {
	t.Helper()

	cast := broadcastCast{
		lineOne: seedTestRoute(t, "route-1", "Line One"),
		lineTwo: seedTestRoute(t, "route-2", "Line Two"),
	}

	cast.pushOnly = seedTestUser(t, models.User{
		Name: "Push Only", Email: "push@university.edu", PushEnabled: true,
	})
	cast.emailDelayOnly = seedTestUser(t, models.User{
		Name: "Email Delay", Email: "email@university.edu", EmailEnabled: true,
	})
	cast.inactive = seedTestUser(t, models.User{
		Name: "Inactive", Email: "inactive@university.edu", PushEnabled: true,
		Status: models.UserStatusInactive,
	})
	cast.unsubscribed = seedTestUser(t, models.User{
		Name: "Unsubscribed", Email: "gone@university.edu", PushEnabled: true,
	})
	cast.lineTwoRider = seedTestUser(t, models.User{
		Name: "Line Two", Email: "two@university.edu", PushEnabled: true, EmailEnabled: true,
	})
	cast.bothLines = seedTestUser(t, models.User{
		Name: "Both Lines", Email: "both@university.edu", PushEnabled: true,
	})

	seedTestSubscription(t, models.Subscription{UserID: cast.pushOnly.ID, RouteID: cast.lineOne.ID, Active: true})
	seedTestSubscription(t, models.Subscription{
		UserID: cast.emailDelayOnly.ID, RouteID: cast.lineOne.ID, Active: true,
		AlertTypes: []string{models.NotificationDelay},
	})
	seedTestSubscription(t, models.Subscription{UserID: cast.inactive.ID, RouteID: cast.lineOne.ID, Active: true})
	seedTestSubscription(t, models.Subscription{UserID: cast.unsubscribed.ID, RouteID: cast.lineOne.ID, Active: false})
	seedTestSubscription(t, models.Subscription{UserID: cast.lineTwoRider.ID, RouteID: cast.lineTwo.ID, Active: true})
	seedTestSubscription(t, models.Subscription{UserID: cast.bothLines.ID, RouteID: cast.lineOne.ID, Active: true})
	seedTestSubscription(t, models.Subscription{UserID: cast.bothLines.ID, RouteID: cast.lineTwo.ID, Active: true})

	return cast
}

func notificationUserIDs(t *testing.T, broadcastID uint) []uint {
	t.Helper()

	var rows []models.Notification
	require.NoError(t, config.DB.Where("broadcast_id = ?", broadcastID).Order("user_id ASC").Find(&rows).Error)
	ids := make([]uint, len(rows))
	for i, n := range rows {
		ids[i] = n.UserID
	}
	return ids
}

func TestCreateBroadcastTargetsOneRoute(t *testing.T) {
	r := newTestRouter(t)
	cast := seedBroadcastCast(t)

	w := do(t, r, http.MethodPost, "/admin/broadcasts", gin.H{
		"type":      models.BroadcastDelay,
		"title":     "Line One Delayed",
		"message":   "Expect 10 extra minutes on Line One.",
		"urgency":   models.UrgencyHigh,
		"channels":  gin.H{"push": true, "email": true},
		"route_ids": []uint{cast.lineOne.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp broadcastEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// Reached: pushOnly, emailDelayOnly, bothLines. Excluded: the
	// inactive account, the switched-off subscription and line two.
	assert.Equal(t, 3, resp.RecipientCount)
	assert.Equal(t, 3, resp.Broadcast.RecipientCount)
	assert.True(t, strings.HasPrefix(resp.Broadcast.Reference, "EB-"), "reference %q", resp.Broadcast.Reference)

	want := []uint{cast.pushOnly.ID, cast.emailDelayOnly.ID, cast.bothLines.ID}
	assert.Equal(t, want, notificationUserIDs(t, resp.Broadcast.ID))

	var rows []models.Notification
	require.NoError(t, config.DB.Where("broadcast_id = ?", resp.Broadcast.ID).Find(&rows).Error)
	for _, n := range rows {
		assert.Equal(t, models.NotificationDelay, n.Type)
		assert.Equal(t, "Line One Delayed", n.Title)
		assert.Equal(t, "Expect 10 extra minutes on Line One.", n.Message)
		assert.False(t, n.Read)
	}
}

func TestCreateBroadcastDefaultTitle(t *testing.T) {
	r := newTestRouter(t)
	cast := seedBroadcastCast(t)

	// The title is optional; an untitled send gets a headline derived
	// from its type.
	w := do(t, r, http.MethodPost, "/admin/broadcasts", gin.H{
		"type":      models.BroadcastEmergency,
		"message":   "All shuttles hold position.",
		"urgency":   models.UrgencyCritical,
		"channels":  gin.H{"push": true},
		"route_ids": []uint{cast.lineOne.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp broadcastEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Emergency Alert", resp.Broadcast.Title)

	var n models.Notification
	require.NoError(t, config.DB.Where("broadcast_id = ?", resp.Broadcast.ID).First(&n).Error)
	assert.Equal(t, "Emergency Alert", n.Title, "recipients see the derived headline")
}

func TestBroadcastAlertTypeCoverage(t *testing.T) {
	r := newTestRouter(t)
	cast := seedBroadcastCast(t)

	// A service broadcast lands as a deviation alert, which the
	// delay-only subscription does not cover.
	w := do(t, r, http.MethodPost, "/admin/broadcasts", gin.H{
		"type":      models.BroadcastService,
		"title":     "Line One Detour",
		"message":   "Line One skips the Student Center today.",
		"urgency":   models.UrgencyMedium,
		"channels":  gin.H{"push": true, "email": true},
		"route_ids": []uint{cast.lineOne.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp broadcastEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.RecipientCount)
	assert.Equal(t, []uint{cast.pushOnly.ID, cast.bothLines.ID}, notificationUserIDs(t, resp.Broadcast.ID))

	var n models.Notification
	require.NoError(t, config.DB.Where("broadcast_id = ?", resp.Broadcast.ID).First(&n).Error)
	assert.Equal(t, models.NotificationDeviation, n.Type)
}

func TestBroadcastMaintenanceMapsToCancellation(t *testing.T) {
	r := newTestRouter(t)
	cast := seedBroadcastCast(t)

	w := do(t, r, http.MethodPost, "/admin/broadcasts", gin.H{
		"type":      models.BroadcastMaintenance,
		"title":     "Line One Suspended",
		"message":   "Line One pauses for roadworks this weekend.",
		"urgency":   models.UrgencyHigh,
		"channels":  gin.H{"push": true},
		"route_ids": []uint{cast.lineOne.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp broadcastEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	var n models.Notification
	require.NoError(t, config.DB.Where("broadcast_id = ?", resp.Broadcast.ID).First(&n).Error)
	assert.Equal(t, models.NotificationCancellation, n.Type)
}

func TestBroadcastChannelPreferences(t *testing.T) {
	r := newTestRouter(t)
	cast := seedBroadcastCast(t)

	// Push-only send: the email-only rider is unreachable.
	w := do(t, r, http.MethodPost, "/admin/broadcasts", gin.H{
		"type":      models.BroadcastDelay,
		"title":     "Line One Delayed",
		"message":   "Push alert only.",
		"urgency":   models.UrgencyLow,
		"channels":  gin.H{"push": true},
		"route_ids": []uint{cast.lineOne.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp broadcastEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.RecipientCount)
	assert.Equal(t, []uint{cast.pushOnly.ID, cast.bothLines.ID}, notificationUserIDs(t, resp.Broadcast.ID))
}

func TestBroadcastAllRoutes(t *testing.T) {
	r := newTestRouter(t)
	cast := seedBroadcastCast(t)

	w := do(t, r, http.MethodPost, "/admin/broadcasts", gin.H{
		"type":       models.BroadcastEmergency,
		"title":      "Campus Alert",
		"message":    "All shuttle lines halted until further notice.",
		"urgency":    models.UrgencyCritical,
		"channels":   gin.H{"push": true, "email": true},
		"all_routes": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp broadcastEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// bothLines holds two targeted subscriptions but is counted once. The
	// delay-only subscription does not cover emergency alerts.
	assert.Equal(t, 3, resp.RecipientCount)
	want := []uint{cast.pushOnly.ID, cast.lineTwoRider.ID, cast.bothLines.ID}
	assert.Equal(t, want, notificationUserIDs(t, resp.Broadcast.ID))
}

func TestBroadcastWithoutRecipients(t *testing.T) {
	r := newTestRouter(t)
	cast := seedBroadcastCast(t)

	// Nobody on line two accepts SMS.
	w := do(t, r, http.MethodPost, "/admin/broadcasts", gin.H{
		"type":      models.BroadcastDelay,
		"title":     "Line Two Delayed",
		"message":   "Minor delay on Line Two.",
		"urgency":   models.UrgencyLow,
		"channels":  gin.H{"sms": true},
		"route_ids": []uint{cast.lineTwo.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp broadcastEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.RecipientCount)
	assert.Empty(t, notificationUserIDs(t, resp.Broadcast.ID))

	// The broadcast itself is still recorded.
	var stored models.Broadcast
	assert.NoError(t, config.DB.First(&stored, resp.Broadcast.ID).Error)
}

func TestCreateBroadcastValidation(t *testing.T) {
	valid := gin.H{
		"type":      models.BroadcastDelay,
		"title":     "T",
		"message":   "M",
		"urgency":   models.UrgencyLow,
		"channels":  gin.H{"push": true},
		"route_ids": []uint{1},
	}

	override := func(k string, v any) gin.H {
		out := gin.H{}
		for key, val := range valid {
			out[key] = val
		}
		if v == nil {
			delete(out, k)
		} else {
			out[k] = v
		}
		return out
	}

	tests := []struct {
		name    string
		body    gin.H
		wantErr string
	}{
		{"missing message", override("message", nil), "Message"},
		{"unknown type", override("type", "storm"), "Unknown broadcast type"},
		{"unknown urgency", override("urgency", "panic"), "Unknown urgency"},
		{"no channels", override("channels", gin.H{}), "delivery channel"},
		{"no targets", override("route_ids", []uint{}), "Target at least one route"},
		{"unknown route", override("route_ids", []uint{999}), "does not exist"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(t)
			seedTestRoute(t, "route-1", "Line One")

			w := do(t, r, http.MethodPost, "/admin/broadcasts", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, decode(t, w)["error"], tc.wantErr)

			var n int64
			require.NoError(t, config.DB.Model(&models.Broadcast{}).Count(&n).Error)
			assert.EqualValues(t, 0, n, "rejected broadcasts must not be stored")
		})
	}
}

func TestListAndGetBroadcasts(t *testing.T) {
	r := newTestRouter(t)

	for _, ref := range []string{"EB-1", "EB-2", "EB-3"} {
		b := models.Broadcast{
			Reference: ref, Type: models.BroadcastDelay,
			Title: ref, Message: "m", Urgency: models.UrgencyLow,
		}
		require.NoError(t, config.DB.Create(&b).Error)
	}

	w := do(t, r, http.MethodGet, "/admin/broadcasts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Broadcasts []models.Broadcast `json:"broadcasts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Broadcasts, 3)
	assert.Equal(t, "EB-3", resp.Broadcasts[0].Reference, "newest first")

	w = do(t, r, http.MethodGet, "/admin/broadcasts?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp.Broadcasts = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Broadcasts, 1)

	w = do(t, r, http.MethodGet, "/admin/broadcasts?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/admin/broadcasts/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	b, ok := decode(t, w)["broadcast"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "EB-1", b["reference"])

	w = do(t, r, http.MethodGet, "/admin/broadcasts/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A crafted id fails the numeric parse instead of reaching the store.
	w = do(t, r, http.MethodGet, "/admin/broadcasts/0%20OR%201=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
