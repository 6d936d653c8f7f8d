package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"swachh_netra/internal/auth"
	"swachh_netra/internal/middleware"
	"swachh_netra/internal/services"
)

var statusByError = []struct {
	err    error
	status int
}{
	{services.ErrNotFound, http.StatusNotFound},
	{services.ErrAlreadyProcessed, http.StatusConflict},
	{services.ErrDuplicatePendingRequest, http.StatusConflict},
	{auth.ErrAccountExists, http.StatusConflict},
	{services.ErrTripInProgress, http.StatusConflict},
	{services.ErrTripNumberUsed, http.StatusConflict},
	{services.ErrInvalidTransition, http.StatusConflict},
	{services.ErrReviewCommentRequired, http.StatusBadRequest},
	{services.ErrInvalidRequest, http.StatusBadRequest},
	{services.ErrInvalidTripNumber, http.StatusBadRequest},
	{services.ErrNotAssigned, http.StatusUnprocessableEntity},
	{services.ErrForbidden, http.StatusForbidden},
	{services.ErrWrongRole, http.StatusForbidden},
	{services.ErrInactiveAccount, http.StatusForbidden},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
	{auth.ErrInvalidToken, http.StatusUnauthorized},
	{services.ErrUnsupported, http.StatusNotImplemented},
}

// respondError writes the JSON error body for a service error.
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": validationErr.Fields})
		return
	}
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"error": err.Error()})
			return
		}
	}

	var backendErr *services.BackendError
	if errors.As(err, &backendErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": backendErr.Message})
		return
	}
	logrus.WithError(err).WithField("path", c.FullPath()).Error("Unhandled service error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}

// session is only called behind RequireAuth.
func session(c *gin.Context) services.Session {
	s, _ := middleware.SessionFrom(c)
	return s
}
