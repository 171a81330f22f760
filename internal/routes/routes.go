package routes

import (
	"bus_notify/internal/controllers"

	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
)

// SetupRouter wires every endpoint group onto a single engine. The caller
// owns the listener so tests can drive the returned engine directly.
func SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(ginlogger.SetLogger())
	r.Use(gin.Recovery())

	r.GET("/health", controllers.HealthCheck)

	AuthRoutes(r)
	RiderRoutes(r)
	AdminRoutes(r)

	return r
}
