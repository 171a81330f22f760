package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bus_notify/internal/templates"
)

// ListTemplates returns the route preset catalog the admin console
// offers when assembling a new route.
func ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": templates.All()})
}
