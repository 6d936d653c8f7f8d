package routes

import (
	"github.com/gin-gonic/gin"

	"swachh_netra/internal/controllers"
	"swachh_netra/internal/middleware"
	"swachh_netra/internal/models"
	"swachh_netra/internal/services"
)

func DriverRoutes(r *gin.Engine, svc *services.Services, requireAuth gin.HandlerFunc) {
	dc := controllers.NewDriverController(svc)

	driver := r.Group("/driver")
	driver.Use(requireAuth, middleware.RequireRole(models.RoleDriver))
	{
		driver.GET("/assignment/today", dc.TodayAssignment)

		driver.GET("/trips", dc.ListTrips)
		driver.POST("/trips", dc.StartTrip)
		driver.POST("/trips/:id/complete", dc.CompleteTrip)
		driver.POST("/trips/:id/cancel", dc.CancelTrip)

		driver.GET("/attendance", dc.ListAttendance)
		driver.POST("/attendance", dc.MarkAttendance)
	}
}
