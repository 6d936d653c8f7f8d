package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"swachh_netra/internal/services"
)

// DriverController serves the driver app. The caller is always the driver.
type DriverController struct {
	daily *services.DailyAssignmentService
	trips *services.TripService
	today func() string
}

func NewDriverController(svc *services.Services) *DriverController {
	return &DriverController{daily: svc.DailyAssignments, trips: svc.Trips, today: svc.Today}
}

type startTripInput struct {
	FeederPointID string `json:"feederPointId" binding:"required"`
	TripNumber    int    `json:"tripNumber" binding:"required"`
}

// TodayAssignment returns today's plan with its resolved feeder points. A
// driver without a plan gets a null assignment and an empty list.
func (dc *DriverController) TodayAssignment(c *gin.Context) {
	ctx := c.Request.Context()
	uid := session(c).UID()
	date := dc.today()

	points, err := dc.daily.GetDriverFeederPointsForDate(ctx, uid, date)
	if err != nil {
		respondError(c, err)
		return
	}
	plan, err := dc.daily.GetDriverAssignmentForDate(ctx, uid, date)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"assignment": nil, "feederPoints": points, "date": date})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": plan, "feederPoints": points, "date": date})
}

func (dc *DriverController) ListTrips(c *gin.Context) {
	date := c.DefaultQuery("date", dc.today())
	trips, err := dc.trips.GetDriverTrips(c.Request.Context(), session(c).UID(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": trips, "date": date})
}

func (dc *DriverController) StartTrip(c *gin.Context) {
	var input startTripInput
	if !bindJSON(c, &input) {
		return
	}

	trip, err := dc.trips.StartTrip(c.Request.Context(), services.StartTripParams{
		DriverID:      session(c).UID(),
		FeederPointID: input.FeederPointID,
		TripNumber:    input.TripNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"trip": trip})
}

func (dc *DriverController) CompleteTrip(c *gin.Context) {
	var p services.CompleteTripParams
	if !bindJSON(c, &p) {
		return
	}

	trip, err := dc.trips.CompleteTrip(c.Request.Context(), session(c).UID(), c.Param("id"), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

func (dc *DriverController) CancelTrip(c *gin.Context) {
	if err := dc.trips.CancelTrip(c.Request.Context(), session(c).UID(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trip cancelled"})
}

func (dc *DriverController) MarkAttendance(c *gin.Context) {
	var p services.AttendanceParams
	if !bindJSON(c, &p) {
		return
	}
	record, err := dc.trips.MarkWorkerAttendance(c.Request.Context(), p, session(c).UID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": record})
}

// ListAttendance expects ?feederPointId= and an optional ?date=.
func (dc *DriverController) ListAttendance(c *gin.Context) {
	fpID := c.Query("feederPointId")
	if fpID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "feederPointId query parameter is required"})
		return
	}
	records, err := dc.trips.GetAttendanceForDate(c.Request.Context(), fpID, c.DefaultQuery("date", dc.today()))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}
