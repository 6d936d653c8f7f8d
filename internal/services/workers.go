package services

import (
	"context"
	"sort"

	log "github.com/sirupsen/logrus"

	"swachh_netra/internal/events"
	"swachh_netra/internal/models"
	"swachh_netra/internal/store"
	"swachh_netra/internal/validation"
)

// WorkerService mutates workers directly. HR staff go through
// WorkerApprovalService instead.
type WorkerService struct {
	deps Deps
}

func workerForm(d models.WorkerData) validation.WorkerForm {
	return validation.WorkerForm{
		Name:        d.Name,
		EmployeeID:  d.EmployeeID,
		Phone:       d.Phone,
		Address:     d.Address,
		Designation: d.Designation,
		Department:  d.Department,
	}
}

func (s *WorkerService) CreateWorker(ctx context.Context, data models.WorkerData, createdBy string) (models.Worker, error) {
	data.Normalize()
	if err := invalid(validation.ValidateWorkerForm(workerForm(data))); err != nil {
		return models.Worker{}, err
	}

	now := s.deps.now()
	worker := &models.Worker{
		WorkerData: data,
		IsActive:   true,
		CreatedBy:  createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.deps.Store.Create(ctx, models.CollectionWorkers, worker); err != nil {
		return models.Worker{}, fail("createWorker", "Failed to add worker", err)
	}

	log.WithFields(log.Fields{"worker": worker.ID, "by": createdBy}).Info("worker created")
	s.deps.publish(events.Change{Collection: models.CollectionWorkers, DocumentID: worker.ID, Type: events.Created})
	return *worker, nil
}

// GetWorkerByID returns the worker regardless of isActive.
func (s *WorkerService) GetWorkerByID(ctx context.Context, id string) (models.Worker, error) {
	var worker models.Worker
	if err := s.deps.Store.Get(ctx, models.CollectionWorkers, id, &worker); err != nil {
		return models.Worker{}, fail("getWorkerById", "Failed to load worker", err)
	}
	worker.Normalize()
	return worker, nil
}

func (s *WorkerService) GetAllWorkers(ctx context.Context) ([]models.Worker, error) {
	return s.find(ctx, store.Where(store.Eq("isActive", true)))
}

func (s *WorkerService) GetWorkersByFeederPoint(ctx context.Context, feederPoint string) ([]models.Worker, error) {
	return s.find(ctx, store.Where(store.Eq("feederPoint", feederPoint), store.Eq("isActive", true)))
}

func (s *WorkerService) UpdateWorker(ctx context.Context, id string, data models.WorkerData) (models.Worker, error) {
	data.Normalize()
	if err := invalid(validation.ValidateWorkerForm(workerForm(data))); err != nil {
		return models.Worker{}, err
	}

	fields := data.Fields()
	fields["updatedAt"] = s.deps.now()
	if err := s.deps.Store.Update(ctx, models.CollectionWorkers, id, fields); err != nil {
		return models.Worker{}, fail("updateWorker", "Failed to update worker", err)
	}

	s.deps.publish(events.Change{Collection: models.CollectionWorkers, DocumentID: id, Type: events.Updated})
	return s.GetWorkerByID(ctx, id)
}

func (s *WorkerService) DeactivateWorker(ctx context.Context, id string) error {
	err := s.deps.Store.Update(ctx, models.CollectionWorkers, id, map[string]interface{}{
		"isActive":  false,
		"updatedAt": s.deps.now(),
	})
	if err != nil {
		return fail("deactivateWorker", "Failed to deactivate worker", err)
	}

	log.WithFields(log.Fields{"worker": id}).Info("worker deactivated")
	s.deps.publish(events.Change{Collection: models.CollectionWorkers, DocumentID: id, Type: events.Updated})
	return nil
}

func (s *WorkerService) find(ctx context.Context, q store.Query) ([]models.Worker, error) {
	var workers []models.Worker
	if err := s.deps.Store.Find(ctx, models.CollectionWorkers, q, &workers); err != nil {
		return nil, fail("getWorkers", "Failed to load workers", err)
	}
	for i := range workers {
		workers[i].Normalize()
	}
	sort.SliceStable(workers, func(i, j int) bool { return workers[i].Name < workers[j].Name })
	return workers, nil
}
