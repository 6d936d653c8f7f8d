package routes

import (
	"github.com/gin-gonic/gin"

	"swachh_netra/internal/controllers"
	"swachh_netra/internal/middleware"
	"swachh_netra/internal/services"
)

func AdminRoutes(r *gin.Engine, svc *services.Services, requireAuth gin.HandlerFunc) {
	ac := controllers.NewAdminController(svc)
	wc := controllers.NewWorkerController(svc)
	fc := controllers.NewFeederPointController(svc)

	admin := r.Group("/admin")
	admin.Use(requireAuth, middleware.RequireRole(adminRoles...))
	{
		admin.GET("/signup-requests", ac.ListSignupRequests)
		admin.GET("/signup-requests/:id", ac.GetSignupRequest)
		admin.POST("/signup-requests/:id/approve", ac.ApproveSignupRequest)
		admin.POST("/signup-requests/:id/reject", ac.RejectSignupRequest)

		admin.GET("/worker-requests", wc.PendingWorkerRequests)
		admin.POST("/worker-requests/approve-all", wc.ApproveAllWorkerRequests)
		admin.POST("/worker-requests/:id/approve", wc.ApproveWorkerRequest)
		admin.POST("/worker-requests/:id/reject", wc.RejectWorkerRequest)

		admin.GET("/workers", wc.ListWorkers)
		admin.POST("/workers", wc.CreateWorker)
		admin.GET("/workers/:id", wc.GetWorker)
		admin.PUT("/workers/:id", wc.UpdateWorker)
		admin.DELETE("/workers/:id", wc.DeactivateWorker)

		admin.POST("/feeder-points", fc.CreateFeederPoint)
		admin.PUT("/feeder-points/:id", fc.UpdateFeederPoint)
		admin.DELETE("/feeder-points/:id", fc.DeleteFeederPoint)
		admin.POST("/feeder-points/:id/assign", fc.AssignToContractor)
		admin.GET("/feeder-points/:id/drivers", fc.ListDrivers)
		admin.GET("/feeder-point-assignments", fc.ListAssignments)
		admin.DELETE("/feeder-point-assignments/:id", fc.Unassign)

		admin.GET("/users", ac.ListUsers)
		admin.PUT("/users/:id/role", ac.UpdateUserRole)
		admin.DELETE("/users/:id", ac.DeactivateUser)
	}
}
