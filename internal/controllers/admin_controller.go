package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swachh_netra/internal/models"
	"swachh_netra/internal/services"
)

// AdminController covers signup review and user management.
type AdminController struct {
	users   *services.UserService
	signups *services.SignupService
}

func NewAdminController(svc *services.Services) *AdminController {
	return &AdminController{users: svc.Users, signups: svc.Signups}
}

type reviewInput struct {
	Comments string `json:"comments"`
}

type roleInput struct {
	Role string `json:"role" binding:"required"`
}

// ListSignupRequests returns pending requests, or all of them with ?status=all.
func (ac *AdminController) ListSignupRequests(c *gin.Context) {
	var (
		reqs []models.SignupRequest
		err  error
	)
	if c.Query("status") == "all" {
		reqs, err = ac.signups.GetAllSignupRequests(c.Request.Context())
	} else {
		reqs, err = ac.signups.GetPendingSignupRequests(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reqs})
}

func (ac *AdminController) GetSignupRequest(c *gin.Context) {
	req, err := ac.signups.GetSignupRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

func (ac *AdminController) ApproveSignupRequest(c *gin.Context) {
	var input reviewInput
	_ = c.ShouldBindJSON(&input)

	user, err := ac.signups.ApproveSignupRequest(c.Request.Context(), c.Param("id"), session(c).UID(), input.Comments)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signup request approved", "user": user})
}

func (ac *AdminController) RejectSignupRequest(c *gin.Context) {
	var input reviewInput
	if !bindJSON(c, &input) {
		return
	}

	if err := ac.signups.RejectSignupRequest(c.Request.Context(), c.Param("id"), session(c).UID(), input.Comments); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signup request rejected"})
}

func (ac *AdminController) ListUsers(c *gin.Context) {
	role, ok := models.ParseRole(c.Query("role"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid role query parameter is required"})
		return
	}

	users, err := ac.users.GetUsersByRole(c.Request.Context(), role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

func (ac *AdminController) UpdateUserRole(c *gin.Context) {
	var input roleInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := ac.users.UpdateUserRole(c.Request.Context(), c.Param("id"), input.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ac *AdminController) DeactivateUser(c *gin.Context) {
	if c.Param("id") == session(c).UID() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot deactivate your own account"})
		return
	}
	if err := ac.users.DeactivateUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deactivated"})
}
