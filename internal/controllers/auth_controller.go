package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swachh_netra/internal/services"
	"swachh_netra/internal/validation"
)

type AuthController struct {
	users   *services.UserService
	signups *services.SignupService
}

func NewAuthController(svc *services.Services) *AuthController {
	return &AuthController{users: svc.Users, signups: svc.Signups}
}

type loginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type pushTokenInput struct {
	Token string `json:"expoPushToken" binding:"required"`
}

// SubmitSignupRequest queues a new account for admin review.
func (ac *AuthController) SubmitSignupRequest(c *gin.Context) {
	var form validation.SignupForm
	if !bindJSON(c, &form) {
		return
	}

	req, err := ac.signups.SubmitSignupRequest(c.Request.Context(), form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Signup request submitted. An administrator will review it.",
		"request": req,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input loginInput
	if !bindJSON(c, &input) {
		return
	}

	token, user, err := ac.users.SignIn(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (ac *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": session(c).User})
}

func (ac *AuthController) RegisterPushToken(c *gin.Context) {
	var input pushTokenInput
	if !bindJSON(c, &input) {
		return
	}

	if err := ac.users.RegisterPushToken(c.Request.Context(), session(c).UID(), input.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Push token registered"})
}
