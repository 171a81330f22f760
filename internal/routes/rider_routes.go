package routes

import (
	"bus_notify/internal/controllers"

	"github.com/gin-gonic/gin"
)

// RiderRoutes exposes the read side of the network plus the per-user
// subscription and notification surface. User-scoped paths hang off a
// single /users/:id group so the id is bound once.
func RiderRoutes(r *gin.Engine) {
	r.GET("/routes", controllers.ListRoutes)
	r.GET("/routes/:id", controllers.GetRoute)
	r.GET("/routes/:id/stops", controllers.ListRouteStops)
	r.GET("/stops", controllers.ListStops)
	r.GET("/stops/nearby", controllers.NearbyStops)

	users := r.Group("/users/:id")
	{
		users.GET("/subscriptions", controllers.ListSubscriptions)
		users.POST("/subscriptions", controllers.CreateSubscription)
		users.PUT("/subscriptions/:sid", controllers.UpdateSubscription)
		users.DELETE("/subscriptions/:sid", controllers.DeleteSubscription)

		users.GET("/unread-count", controllers.UnreadNotificationCount)
		users.GET("/notifications", controllers.ListNotifications)
		users.GET("/notifications/:nid", controllers.GetNotification)
		users.PATCH("/notifications/:nid/read", controllers.MarkNotificationRead)
		users.POST("/notifications/read-all", controllers.MarkAllNotificationsRead)
		users.DELETE("/notifications/:nid", controllers.DeleteNotification)
		users.DELETE("/notifications", controllers.PurgeNotifications)
	}
}
