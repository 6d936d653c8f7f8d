package routes

import (
	"github.com/gin-gonic/gin"

	"swachh_netra/internal/controllers"
	"swachh_netra/internal/services"
)

func AuthRoutes(r *gin.Engine, svc *services.Services, requireAuth gin.HandlerFunc) {
	ac := controllers.NewAuthController(svc)

	auth := r.Group("/auth")
	{
		auth.POST("/signup-requests", ac.SubmitSignupRequest)
		auth.POST("/login", ac.Login)
	}

	me := r.Group("/me")
	me.Use(requireAuth)
	{
		me.GET("", ac.Me)
		me.PUT("/push-token", ac.RegisterPushToken)
	}
}
