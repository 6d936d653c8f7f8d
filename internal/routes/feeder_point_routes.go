package routes

import (
	"github.com/gin-gonic/gin"

	"swachh_netra/internal/controllers"
	"swachh_netra/internal/services"
)

func FeederPointRoutes(r *gin.Engine, svc *services.Services, requireAuth gin.HandlerFunc) {
	fc := controllers.NewFeederPointController(svc)

	fp := r.Group("/feeder-points")
	fp.Use(requireAuth)
	{
		fp.GET("", fc.ListFeederPoints)
		fp.GET("/nearby", fc.Nearby)
		fp.GET("/:id", fc.GetFeederPoint)
	}
}
