package routes

import (
	"bus_notify/internal/controllers"

	"github.com/gin-gonic/gin"
)

func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/admin")
	{
		// Route designer
		admin.GET("/templates", controllers.ListTemplates)
		admin.GET("/routes", controllers.ListAllRoutes)
		admin.POST("/routes", controllers.CreateRoute)
		admin.GET("/routes/:id", controllers.GetRoute)
		admin.PUT("/routes/:id", controllers.UpdateRoute)
		admin.PUT("/routes/:id/stops", controllers.ReplaceRouteStops)
		admin.DELETE("/routes/:id", controllers.DeleteRoute)

		// Fleet
		admin.GET("/buses", controllers.ListBuses)
		admin.POST("/buses", controllers.CreateBus)
		admin.PUT("/buses/:id", controllers.UpdateBus)
		admin.DELETE("/buses/:id", controllers.DeleteBus)

		// Rider accounts
		admin.GET("/users", controllers.ListUsers)
		admin.POST("/users/bulk-status", controllers.BulkUserStatus)
		admin.GET("/users/:id", controllers.GetUser)
		admin.PUT("/users/:id", controllers.UpdateUser)

		// Emergency broadcasts
		admin.GET("/broadcasts", controllers.ListBroadcasts)
		admin.POST("/broadcasts", controllers.CreateBroadcast)
		admin.GET("/broadcasts/:id", controllers.GetBroadcast)

		// Dashboard
		admin.GET("/metrics", controllers.SystemMetrics)
		admin.GET("/metrics/routes", controllers.RouteMetrics)
	}
}
