package routes

import (
	"net/http"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"swachh_netra/internal/middleware"
	"swachh_netra/internal/models"
	"swachh_netra/internal/services"
)

// dashboardPath carries the bearer token in its query string and is never
// request-logged.
const dashboardPath = "/ws/dashboard"

var adminRoles = []models.Role{models.RoleAdmin, models.RoleAllAdmin, models.RoleSwachhAdmin}

func SetupRouter(svc *services.Services) *gin.Engine {
	r := gin.New()
	r.Use(
		ginlog.SetLogger(
			ginlog.WithUTC(true),
			ginlog.WithSkipPath([]string{"/healthz", dashboardPath}),
			ginlog.WithWriter(logrus.StandardLogger().Out),
		),
		gin.Recovery(),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := middleware.RequireAuth(svc.Users)

	AuthRoutes(r, svc, requireAuth)
	AdminRoutes(r, svc, requireAuth)
	HRRoutes(r, svc, requireAuth)
	FeederPointRoutes(r, svc, requireAuth)
	ContractorRoutes(r, svc, requireAuth)
	DriverRoutes(r, svc, requireAuth)
	WebSocketRoutes(r, svc)

	return r
}
