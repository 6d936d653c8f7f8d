package routes

import (
	"github.com/gin-gonic/gin"

	"swachh_netra/internal/controllers"
	"swachh_netra/internal/middleware"
	"swachh_netra/internal/models"
	"swachh_netra/internal/services"
)

func HRRoutes(r *gin.Engine, svc *services.Services, requireAuth gin.HandlerFunc) {
	wc := controllers.NewWorkerController(svc)

	hr := r.Group("/hr")
	hr.Use(requireAuth, middleware.RequireRole(append([]models.Role{models.RoleSwachhHR}, adminRoles...)...))
	{
		hr.POST("/worker-requests", wc.SubmitWorkerRequest)
		hr.GET("/worker-requests", wc.MyWorkerRequests)
		hr.GET("/workers", wc.ListWorkers)
		hr.GET("/workers/:id", wc.GetWorker)
	}
}
