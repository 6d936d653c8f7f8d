package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"swachh_netra/internal/events"
	"swachh_netra/internal/models"
	"swachh_netra/internal/store"
	"swachh_netra/internal/validation"
)

// WorkerApprovalService records worker changes as requests and applies them
// once an admin approves.
type WorkerApprovalService struct {
	deps Deps
}

func (s *WorkerApprovalService) RequestAddWorker(ctx context.Context, data models.WorkerData, requestedBy string) (models.WorkerApprovalRequest, error) {
	data.Normalize()
	if err := invalid(validation.ValidateWorkerData(data)); err != nil {
		return models.WorkerApprovalRequest{}, err
	}
	return s.create(ctx, models.WorkerApprovalRequest{
		Type:        models.WorkerAdd,
		WorkerData:  &data,
		RequestedBy: requestedBy,
	})
}

// RequestEditWorker snapshots the current worker as originalData.
func (s *WorkerApprovalService) RequestEditWorker(ctx context.Context, workerID string, data models.WorkerData, requestedBy string) (models.WorkerApprovalRequest, error) {
	data.Normalize()
	if err := invalid(validation.ValidateWorkerData(data)); err != nil {
		return models.WorkerApprovalRequest{}, err
	}
	original, err := s.snapshot(ctx, workerID)
	if err != nil {
		return models.WorkerApprovalRequest{}, err
	}
	return s.create(ctx, models.WorkerApprovalRequest{
		Type:         models.WorkerEdit,
		WorkerID:     workerID,
		WorkerData:   &data,
		OriginalData: &original,
		RequestedBy:  requestedBy,
	})
}

func (s *WorkerApprovalService) RequestDeleteWorker(ctx context.Context, workerID, requestedBy, reason string) (models.WorkerApprovalRequest, error) {
	original, err := s.snapshot(ctx, workerID)
	if err != nil {
		return models.WorkerApprovalRequest{}, err
	}
	return s.create(ctx, models.WorkerApprovalRequest{
		Type:         models.WorkerDelete,
		WorkerID:     workerID,
		OriginalData: &original,
		RequestedBy:  requestedBy,
		Reason:       strings.TrimSpace(reason),
	})
}

func (s *WorkerApprovalService) snapshot(ctx context.Context, workerID string) (models.WorkerData, error) {
	var worker models.Worker
	if err := s.deps.Store.Get(ctx, models.CollectionWorkers, workerID, &worker); err != nil {
		return models.WorkerData{}, fail("requestWorkerChange", "Failed to load worker", err)
	}
	worker.Normalize()
	return worker.WorkerData, nil
}

func (s *WorkerApprovalService) create(ctx context.Context, req models.WorkerApprovalRequest) (models.WorkerApprovalRequest, error) {
	req.Status = models.StatusPending
	req.RequestedAt = s.deps.now()
	if _, err := s.deps.Store.Create(ctx, models.CollectionWorkerApprovalRequests, &req); err != nil {
		return models.WorkerApprovalRequest{}, fail("requestWorkerChange", "Failed to submit worker request", err)
	}

	log.WithFields(log.Fields{"request": req.ID, "type": req.Type, "by": req.RequestedBy}).Info("worker request submitted")
	s.deps.publish(events.Change{Collection: models.CollectionWorkerApprovalRequests, DocumentID: req.ID, Type: events.Created})
	return req, nil
}

func (s *WorkerApprovalService) GetPendingWorkerRequests(ctx context.Context) ([]models.WorkerApprovalRequest, error) {
	return s.find(ctx, store.Where(store.Eq("status", models.StatusPending)), true)
}

func (s *WorkerApprovalService) GetWorkerRequestsBy(ctx context.Context, requestedBy string) ([]models.WorkerApprovalRequest, error) {
	return s.find(ctx, store.Where(store.Eq("requestedBy", requestedBy)), true)
}

func (s *WorkerApprovalService) GetWorkerRequest(ctx context.Context, requestID string) (models.WorkerApprovalRequest, error) {
	var req models.WorkerApprovalRequest
	if err := s.deps.Store.Get(ctx, models.CollectionWorkerApprovalRequests, requestID, &req); err != nil {
		return models.WorkerApprovalRequest{}, fail("getWorkerRequest", "Failed to load worker request", err)
	}
	return req, nil
}

func (s *WorkerApprovalService) find(ctx context.Context, q store.Query, newestFirst bool) ([]models.WorkerApprovalRequest, error) {
	var requests []models.WorkerApprovalRequest
	if err := s.deps.Store.Find(ctx, models.CollectionWorkerApprovalRequests, q, &requests); err != nil {
		return nil, fail("getWorkerRequests", "Failed to load worker requests", err)
	}
	sortByTime(requests, func(r models.WorkerApprovalRequest) time.Time { return r.RequestedAt }, newestFirst)
	return requests, nil
}

// ApproveWorkerRequest applies the requested change and marks the request
// approved in one transaction.
func (s *WorkerApprovalService) ApproveWorkerRequest(ctx context.Context, requestID, approverID string) (models.WorkerApprovalRequest, error) {
	var (
		req    models.WorkerApprovalRequest
		change events.Change
	)
	err := s.deps.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.Get(ctx, models.CollectionWorkerApprovalRequests, requestID, &req); err != nil {
			return err
		}
		if req.Status != models.StatusPending {
			return ErrAlreadyProcessed
		}

		now := s.deps.now()
		change = events.Change{Collection: models.CollectionWorkers, DocumentID: req.WorkerID, At: now}

		switch req.Type {
		case models.WorkerAdd:
			if req.WorkerData == nil {
				return fmt.Errorf("%w: add request without worker data", ErrInvalidRequest)
			}
			data := *req.WorkerData
			data.Normalize()
			worker := &models.Worker{
				WorkerData: data,
				IsActive:   true,
				CreatedBy:  req.RequestedBy,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if _, err := tx.Create(ctx, models.CollectionWorkers, worker); err != nil {
				return err
			}
			req.WorkerID = worker.ID
			change.DocumentID = worker.ID
			change.Type = events.Created

		case models.WorkerEdit:
			if req.WorkerData == nil {
				return fmt.Errorf("%w: edit request without worker data", ErrInvalidRequest)
			}
			var current models.Worker
			if err := tx.Get(ctx, models.CollectionWorkers, req.WorkerID, &current); err != nil {
				return err
			}
			data := *req.WorkerData
			data.Normalize()
			fields := data.Fields()
			fields["updatedAt"] = now
			if err := tx.Update(ctx, models.CollectionWorkers, req.WorkerID, fields); err != nil {
				return err
			}
			change.Type = events.Updated

		case models.WorkerDelete:
			if err := tx.Delete(ctx, models.CollectionWorkers, req.WorkerID); err != nil {
				return err
			}
			change.Type = events.Deleted

		default:
			return fmt.Errorf("%w: unknown request type %q", ErrInvalidRequest, req.Type)
		}

		req.Status = models.StatusApproved
		req.ApprovedBy = approverID
		req.ApprovedAt = &now
		return tx.Update(ctx, models.CollectionWorkerApprovalRequests, requestID, map[string]interface{}{
			"status":     req.Status,
			"approvedBy": approverID,
			"approvedAt": now,
			"workerId":   req.WorkerID,
		})
	})
	if err != nil {
		return models.WorkerApprovalRequest{}, fail("approveWorkerRequest", "Failed to approve worker request", err)
	}

	log.WithFields(log.Fields{"request": requestID, "type": req.Type, "worker": req.WorkerID, "approver": approverID}).Info("worker request approved")
	s.deps.publish(change, events.Change{Collection: models.CollectionWorkerApprovalRequests, DocumentID: requestID, Type: events.Updated})
	s.deps.notifyUsers(ctx, "Worker request approved", describeRequest(req)+" was approved",
		map[string]string{"category": "worker_request", "requestId": requestID}, req.RequestedBy)
	return req, nil
}

func (s *WorkerApprovalService) RejectWorkerRequest(ctx context.Context, requestID, rejectorID, reason string) (models.WorkerApprovalRequest, error) {
	var req models.WorkerApprovalRequest
	err := s.deps.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.Get(ctx, models.CollectionWorkerApprovalRequests, requestID, &req); err != nil {
			return err
		}
		if req.Status != models.StatusPending {
			return ErrAlreadyProcessed
		}

		now := s.deps.now()
		req.Status = models.StatusRejected
		req.RejectedBy = rejectorID
		req.RejectedAt = &now
		req.Reason = strings.TrimSpace(reason)
		return tx.Update(ctx, models.CollectionWorkerApprovalRequests, requestID, map[string]interface{}{
			"status":     req.Status,
			"rejectedBy": rejectorID,
			"rejectedAt": now,
			"reason":     req.Reason,
		})
	})
	if err != nil {
		return models.WorkerApprovalRequest{}, fail("rejectWorkerRequest", "Failed to reject worker request", err)
	}

	log.WithFields(log.Fields{"request": requestID, "rejector": rejectorID}).Info("worker request rejected")
	s.deps.publish(events.Change{Collection: models.CollectionWorkerApprovalRequests, DocumentID: requestID, Type: events.Updated})
	s.deps.notifyUsers(ctx, "Worker request rejected", describeRequest(req)+" was rejected",
		map[string]string{"category": "worker_request", "requestId": requestID}, req.RequestedBy)
	return req, nil
}

// BulkApproveAllRequests approves every pending request oldest first. It
// stops at the first failure; requests approved before it stay approved.
func (s *WorkerApprovalService) BulkApproveAllRequests(ctx context.Context, approverID string) (int, error) {
	pending, err := s.find(ctx, store.Where(store.Eq("status", models.StatusPending)), false)
	if err != nil {
		return 0, err
	}

	approved := 0
	for _, req := range pending {
		if _, err := s.ApproveWorkerRequest(ctx, req.ID, approverID); err != nil {
			log.WithFields(log.Fields{"request": req.ID, "approved": approved, "pending": len(pending)}).WithError(err).Error("bulk approval stopped")
			return approved, err
		}
		approved++
	}

	log.WithFields(log.Fields{"approved": approved, "approver": approverID}).Info("bulk approval finished")
	return approved, nil
}

func describeRequest(req models.WorkerApprovalRequest) string {
	name := ""
	switch {
	case req.WorkerData != nil:
		name = req.WorkerData.Name
	case req.OriginalData != nil:
		name = req.OriginalData.Name
	}
	action := map[models.WorkerRequestType]string{
		models.WorkerAdd:    "Adding",
		models.WorkerEdit:   "Editing",
		models.WorkerDelete: "Removing",
	}[req.Type]
	if name == "" {
		return action + " a worker"
	}
	return action + " " + name
}
