package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swachh_netra/internal/models"
	"swachh_netra/internal/services"
)

// ContractorController serves the contractor's fleet and planning screens.
// The caller is always the contractor.
type ContractorController struct {
	contractors *services.ContractorService
	daily       *services.DailyAssignmentService
	today       func() string
}

func NewContractorController(svc *services.Services) *ContractorController {
	return &ContractorController{contractors: svc.Contractors, daily: svc.DailyAssignments, today: svc.Today}
}

type vehicleStatusInput struct {
	Status models.VehicleStatus `json:"status" binding:"required"`
}

type assignVehicleInput struct {
	VehicleID      string   `json:"vehicleId" binding:"required"`
	DriverID       string   `json:"driverId" binding:"required"`
	FeederPointIDs []string `json:"feederPointIds"`
}

func (cc *ContractorController) ListVehicles(c *gin.Context) {
	vehicles, err := cc.contractors.GetContractorVehicles(c.Request.Context(), session(c).UID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles})
}

func (cc *ContractorController) CreateVehicle(c *gin.Context) {
	var v models.Vehicle
	if !bindJSON(c, &v) {
		return
	}

	vehicle, err := cc.contractors.CreateVehicle(c.Request.Context(), session(c).UID(), v)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle})
}

func (cc *ContractorController) UpdateVehicleStatus(c *gin.Context) {
	var input vehicleStatusInput
	if !bindJSON(c, &input) {
		return
	}

	if err := cc.contractors.UpdateVehicleStatus(c.Request.Context(), session(c).UID(), c.Param("id"), input.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle status updated"})
}

func (cc *ContractorController) ListDrivers(c *gin.Context) {
	drivers, err := cc.contractors.GetContractorDrivers(c.Request.Context(), session(c).UID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": drivers})
}

func (cc *ContractorController) AttachDriver(c *gin.Context) {
	driver, err := cc.contractors.AttachDriver(c.Request.Context(), session(c).UID(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": driver})
}

func (cc *ContractorController) DriverAssignment(c *gin.Context) {
	assignment, err := cc.contractors.GetDriverAssignment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if assignment.ContractorID != session(c).UID() {
		respondError(c, services.ErrForbidden)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

func (cc *ContractorController) ListFeederPoints(c *gin.Context) {
	points, err := cc.contractors.GetContractorFeederPoints(c.Request.Context(), session(c).UID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": points})
}

func (cc *ContractorController) AssignVehicle(c *gin.Context) {
	var input assignVehicleInput
	if !bindJSON(c, &input) {
		return
	}

	assignment, err := cc.contractors.AssignVehicleToDriver(c.Request.Context(), session(c).UID(), input.VehicleID, input.DriverID, input.FeederPointIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

// ListDailyAssignments defaults ?date= to today.
func (cc *ContractorController) ListDailyAssignments(c *gin.Context) {
	date := c.DefaultQuery("date", cc.today())
	plans, err := cc.daily.GetContractorAssignmentsForDate(c.Request.Context(), session(c).UID(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plans, "date": date})
}

func (cc *ContractorController) UpsertDailyAssignment(c *gin.Context) {
	var p services.AssignmentParams
	if !bindJSON(c, &p) {
		return
	}
	p.ContractorID = session(c).UID()
	if p.Date == "" {
		p.Date = cc.today()
	}

	plan, err := cc.daily.CreateOrUpdateAssignment(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": plan})
}

func (cc *ContractorController) CompleteDailyAssignment(c *gin.Context) {
	if err := cc.daily.CompleteAssignment(c.Request.Context(), session(c).UID(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Assignment completed"})
}

func (cc *ContractorController) CancelDailyAssignment(c *gin.Context) {
	if err := cc.daily.CancelAssignment(c.Request.Context(), session(c).UID(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Assignment cancelled"})
}
