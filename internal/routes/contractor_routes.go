package routes

import (
	"github.com/gin-gonic/gin"

	"swachh_netra/internal/controllers"
	"swachh_netra/internal/middleware"
	"swachh_netra/internal/models"
	"swachh_netra/internal/services"
)

func ContractorRoutes(r *gin.Engine, svc *services.Services, requireAuth gin.HandlerFunc) {
	cc := controllers.NewContractorController(svc)

	contractor := r.Group("/contractor")
	contractor.Use(requireAuth, middleware.RequireRole(models.RoleContractor, models.RoleVehicleOwner))
	{
		contractor.GET("/vehicles", cc.ListVehicles)
		contractor.POST("/vehicles", cc.CreateVehicle)
		contractor.PUT("/vehicles/:id/status", cc.UpdateVehicleStatus)

		contractor.GET("/drivers", cc.ListDrivers)
		contractor.POST("/drivers/:id", cc.AttachDriver)
		contractor.GET("/drivers/:id/assignment", cc.DriverAssignment)

		contractor.GET("/feeder-points", cc.ListFeederPoints)
		contractor.POST("/assign-vehicle", cc.AssignVehicle)

		contractor.GET("/daily-assignments", cc.ListDailyAssignments)
		contractor.POST("/daily-assignments", cc.UpsertDailyAssignment)
		contractor.POST("/daily-assignments/:id/complete", cc.CompleteDailyAssignment)
		contractor.POST("/daily-assignments/:id/cancel", cc.CancelDailyAssignment)
	}
}
