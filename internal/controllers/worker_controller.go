package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"swachh_netra/internal/models"
	"swachh_netra/internal/services"
)

type WorkerController struct {
	workers  *services.WorkerService
	requests *services.WorkerApprovalService
}

func NewWorkerController(svc *services.Services) *WorkerController {
	return &WorkerController{workers: svc.Workers, requests: svc.WorkerRequests}
}

type workerRequestInput struct {
	Type       models.WorkerRequestType `json:"type" binding:"required"`
	WorkerID   string                   `json:"workerId"`
	WorkerData models.WorkerData        `json:"workerData"`
	Reason     string                   `json:"reason"`
}

type rejectInput struct {
	Reason string `json:"reason"`
}

// ListWorkers returns active workers, optionally filtered by ?feederPoint=.
func (wc *WorkerController) ListWorkers(c *gin.Context) {
	var (
		workers []models.Worker
		err     error
	)
	if fp := c.Query("feederPoint"); fp != "" {
		workers, err = wc.workers.GetWorkersByFeederPoint(c.Request.Context(), fp)
	} else {
		workers, err = wc.workers.GetAllWorkers(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": workers})
}

func (wc *WorkerController) GetWorker(c *gin.Context) {
	worker, err := wc.workers.GetWorkerByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"worker": worker})
}

func (wc *WorkerController) CreateWorker(c *gin.Context) {
	var data models.WorkerData
	if !bindJSON(c, &data) {
		return
	}

	worker, err := wc.workers.CreateWorker(c.Request.Context(), data, session(c).UID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"worker": worker})
}

func (wc *WorkerController) UpdateWorker(c *gin.Context) {
	var data models.WorkerData
	if !bindJSON(c, &data) {
		return
	}

	worker, err := wc.workers.UpdateWorker(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"worker": worker})
}

func (wc *WorkerController) DeactivateWorker(c *gin.Context) {
	if err := wc.workers.DeactivateWorker(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Worker deactivated"})
}

// SubmitWorkerRequest files an add, edit or delete request for admin approval.
func (wc *WorkerController) SubmitWorkerRequest(c *gin.Context) {
	var input workerRequestInput
	if !bindJSON(c, &input) {
		return
	}

	ctx := c.Request.Context()
	by := session(c).UID()
	var (
		req models.WorkerApprovalRequest
		err error
	)
	switch input.Type {
	case models.WorkerAdd:
		req, err = wc.requests.RequestAddWorker(ctx, input.WorkerData, by)
	case models.WorkerEdit:
		req, err = wc.requests.RequestEditWorker(ctx, input.WorkerID, input.WorkerData, by)
	case models.WorkerDelete:
		req, err = wc.requests.RequestDeleteWorker(ctx, input.WorkerID, by, input.Reason)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be worker_add, worker_edit or worker_delete"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": req})
}

// MyWorkerRequests lists the caller's own requests.
func (wc *WorkerController) MyWorkerRequests(c *gin.Context) {
	reqs, err := wc.requests.GetWorkerRequestsBy(c.Request.Context(), session(c).UID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reqs})
}

func (wc *WorkerController) PendingWorkerRequests(c *gin.Context) {
	reqs, err := wc.requests.GetPendingWorkerRequests(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reqs})
}

func (wc *WorkerController) ApproveWorkerRequest(c *gin.Context) {
	req, err := wc.requests.ApproveWorkerRequest(c.Request.Context(), c.Param("id"), session(c).UID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Worker request approved", "request": req})
}

func (wc *WorkerController) RejectWorkerRequest(c *gin.Context) {
	var input rejectInput
	_ = c.ShouldBindJSON(&input)

	req, err := wc.requests.RejectWorkerRequest(c.Request.Context(), c.Param("id"), session(c).UID(), input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Worker request rejected", "request": req})
}

func (wc *WorkerController) ApproveAllWorkerRequests(c *gin.Context) {
	n, err := wc.requests.BulkApproveAllRequests(c.Request.Context(), session(c).UID())
	if err != nil {
		logrus.WithField("approved", n).WithError(err).Warn("Bulk approval stopped early")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approved": n})
}
