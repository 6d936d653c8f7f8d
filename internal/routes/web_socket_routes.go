package routes

import (
	"github.com/gin-gonic/gin"

	"swachh_netra/internal/controllers"
	"swachh_netra/internal/services"
)

func WebSocketRoutes(r *gin.Engine, svc *services.Services) {
	dc := controllers.NewDashboardController(svc)

	r.GET(dashboardPath, dc.Dashboard)
}
