package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"swachh_netra/internal/events"
	"swachh_netra/internal/models"
	"swachh_netra/internal/store"
)

type DailyAssignmentService struct {
	deps Deps
}

type AssignmentParams struct {
	DriverID       string   `json:"driverId"`
	ContractorID   string   `json:"contractorId"`
	Date           string   `json:"assignmentDate"`
	FeederPointIDs []string `json:"feederPointIds"`
	VehicleID      string   `json:"vehicleId"`
}

func (p AssignmentParams) validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(p.DriverID) == "" {
		fields["driverId"] = "Please select a driver"
	}
	if strings.TrimSpace(p.ContractorID) == "" {
		fields["contractorId"] = "Contractor is required"
	}
	if _, err := models.ParseDate(p.Date); err != nil {
		fields["assignmentDate"] = "Date must be in YYYY-MM-DD format"
	}
	if len(p.FeederPointIDs) == 0 {
		fields["feederPointIds"] = "Select at least one feeder point"
	}
	return invalid(fields)
}

// CreateOrUpdateAssignment upserts the driver's plan for the day. The plan
// lives under DailyAssignmentID(driver, date); a plan stored under an older
// random id is updated in place instead of being duplicated.
func (s *DailyAssignmentService) CreateOrUpdateAssignment(ctx context.Context, p AssignmentParams) (models.DailyAssignment, error) {
	if err := p.validate(); err != nil {
		return models.DailyAssignment{}, err
	}

	var driver models.User
	if err := s.deps.Store.Get(ctx, models.CollectionUsers, p.DriverID, &driver); err != nil {
		return models.DailyAssignment{}, fail("createOrUpdateAssignment", "Failed to save daily assignment", err)
	}
	if driver.Role != models.RoleDriver {
		return models.DailyAssignment{}, ErrWrongRole
	}
	if driver.ContractorID != "" && driver.ContractorID != p.ContractorID {
		return models.DailyAssignment{}, ErrForbidden
	}

	var (
		assignment models.DailyAssignment
		created    bool
		err        error
	)
	// A concurrent writer may create the deterministic document between our
	// read and insert; the second attempt then sees it and updates.
	for attempt := 0; attempt < 2; attempt++ {
		assignment, created, err = s.upsert(ctx, p)
		if !errors.Is(err, store.ErrAlreadyExists) {
			break
		}
	}
	if err != nil {
		return models.DailyAssignment{}, fail("createOrUpdateAssignment", "Failed to save daily assignment", err)
	}

	changeType := events.Updated
	if created {
		changeType = events.Created
	}
	log.WithFields(log.Fields{"assignment": assignment.ID, "driver": p.DriverID, "date": p.Date, "created": created}).Info("daily assignment saved")
	s.deps.publish(events.Change{
		Collection:   models.CollectionDailyAssignments,
		DocumentID:   assignment.ID,
		Type:         changeType,
		ContractorID: assignment.ContractorID,
		DriverID:     assignment.DriverID,
	})
	s.deps.notifyUsers(ctx, "Route for "+p.Date, "Your feeder point route has been updated",
		map[string]string{"category": "daily_assignment", "date": p.Date}, p.DriverID)
	return assignment, nil
}

func (s *DailyAssignmentService) upsert(ctx context.Context, p AssignmentParams) (models.DailyAssignment, bool, error) {
	var (
		assignment models.DailyAssignment
		created    bool
	)
	err := s.deps.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		created = false
		existing, err := findDailyAssignment(ctx, tx, p.DriverID, p.Date)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}

		now := s.deps.now()
		if err == nil {
			assignment = existing
			assignment.ContractorID = p.ContractorID
			assignment.FeederPointIDs = p.FeederPointIDs
			assignment.VehicleID = p.VehicleID
			assignment.Status = models.DailyActive
			assignment.UpdatedAt = now
			return tx.Update(ctx, models.CollectionDailyAssignments, existing.ID, map[string]interface{}{
				"contractorId":   p.ContractorID,
				"feederPointIds": p.FeederPointIDs,
				"vehicleId":      p.VehicleID,
				"status":         models.DailyActive,
				"updatedAt":      now,
			})
		}

		assignment = models.DailyAssignment{
			DriverID:       p.DriverID,
			ContractorID:   p.ContractorID,
			AssignmentDate: p.Date,
			FeederPointIDs: p.FeederPointIDs,
			VehicleID:      p.VehicleID,
			Status:         models.DailyActive,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		assignment.ID = models.DailyAssignmentID(p.DriverID, p.Date)
		created = true
		_, err = tx.Create(ctx, models.CollectionDailyAssignments, &assignment)
		return err
	})
	return assignment, created, err
}

// findDailyAssignment looks up the plan by its deterministic id. When that
// document is missing or no longer active, plans stored under legacy ids are
// queried too and an active one wins.
func findDailyAssignment(ctx context.Context, st store.Store, driverID, date string) (models.DailyAssignment, error) {
	var current models.DailyAssignment
	err := st.Get(ctx, models.CollectionDailyAssignments, models.DailyAssignmentID(driverID, date), &current)
	switch {
	case err == nil && current.Status == models.DailyActive:
		return current, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return models.DailyAssignment{}, err
	}
	found := err == nil

	var plans []models.DailyAssignment
	q := store.Where(store.Eq("driverId", driverID), store.Eq("assignmentDate", date))
	if err := st.Find(ctx, models.CollectionDailyAssignments, q, &plans); err != nil {
		return models.DailyAssignment{}, err
	}
	if len(plans) == 0 {
		if found {
			return current, nil
		}
		return models.DailyAssignment{}, store.ErrNotFound
	}
	// Prefer an active plan, then the most recently touched one.
	sort.SliceStable(plans, func(i, j int) bool {
		ai, aj := plans[i].Status == models.DailyActive, plans[j].Status == models.DailyActive
		if ai != aj {
			return ai
		}
		return lastTouched(plans[i]).After(lastTouched(plans[j]))
	})
	return plans[0], nil
}

// lastTouched falls back to the timestamp embedded in a legacy id for plans
// written before updatedAt was recorded.
func lastTouched(a models.DailyAssignment) time.Time {
	if !a.UpdatedAt.IsZero() {
		return a.UpdatedAt
	}
	if _, createdAt, ok := models.ParseLegacyID(a.ID); ok {
		return createdAt
	}
	return a.CreatedAt
}

func (s *DailyAssignmentService) GetDriverAssignmentForDate(ctx context.Context, driverID, date string) (models.DailyAssignment, error) {
	assignment, err := findDailyAssignment(ctx, s.deps.Store, driverID, date)
	if err != nil {
		return models.DailyAssignment{}, fail("getDriverAssignmentForDate", "Failed to load daily assignment", err)
	}
	return assignment, nil
}

func (s *DailyAssignmentService) GetContractorAssignmentsForDate(ctx context.Context, contractorID, date string) ([]models.DailyAssignment, error) {
	var assignments []models.DailyAssignment
	q := store.Where(store.Eq("contractorId", contractorID), store.Eq("assignmentDate", date))
	if err := s.deps.Store.Find(ctx, models.CollectionDailyAssignments, q, &assignments); err != nil {
		return nil, fail("getContractorAssignmentsForDate", "Failed to load daily assignments", err)
	}
	sort.SliceStable(assignments, func(i, j int) bool { return assignments[i].DriverID < assignments[j].DriverID })
	return assignments, nil
}

func (s *DailyAssignmentService) CompleteAssignment(ctx context.Context, contractorID, assignmentID string) error {
	return s.transition(ctx, contractorID, assignmentID, models.DailyCompleted)
}

func (s *DailyAssignmentService) CancelAssignment(ctx context.Context, contractorID, assignmentID string) error {
	return s.transition(ctx, contractorID, assignmentID, models.DailyCancelled)
}

// transition moves an active plan to a terminal status. An empty
// contractorID skips the ownership check.
func (s *DailyAssignmentService) transition(ctx context.Context, contractorID, assignmentID string, to models.DailyStatus) error {
	var assignment models.DailyAssignment
	err := s.deps.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.Get(ctx, models.CollectionDailyAssignments, assignmentID, &assignment); err != nil {
			return err
		}
		if contractorID != "" && assignment.ContractorID != contractorID {
			return ErrForbidden
		}
		if assignment.Status != models.DailyActive {
			return ErrInvalidTransition
		}
		return tx.Update(ctx, models.CollectionDailyAssignments, assignmentID, map[string]interface{}{
			"status":    to,
			"updatedAt": s.deps.now(),
		})
	})
	if err != nil {
		return fail("updateDailyAssignment", "Failed to update daily assignment", err)
	}

	log.WithFields(log.Fields{"assignment": assignmentID, "status": to}).Info("daily assignment closed")
	s.deps.publish(events.Change{
		Collection:   models.CollectionDailyAssignments,
		DocumentID:   assignmentID,
		Type:         events.Updated,
		ContractorID: assignment.ContractorID,
		DriverID:     assignment.DriverID,
	})
	return nil
}

// GetDriverFeederPointsForDate returns the feeder points on the driver's
// active plan for the date, or an empty list when there is none.
func (s *DailyAssignmentService) GetDriverFeederPointsForDate(ctx context.Context, driverID, date string) ([]models.FeederPoint, error) {
	assignment, err := findDailyAssignment(ctx, s.deps.Store, driverID, date)
	if errors.Is(err, store.ErrNotFound) {
		return []models.FeederPoint{}, nil
	}
	if err != nil {
		return nil, fail("getDriverFeederPointsForDate", "Failed to load daily assignment", err)
	}
	if assignment.Status != models.DailyActive {
		return []models.FeederPoint{}, nil
	}

	points, err := feederPointsByIDs(ctx, s.deps.Store, assignment.FeederPointIDs, true)
	if err != nil {
		return nil, fail("getDriverFeederPointsForDate", "Failed to load feeder points", err)
	}
	return points, nil
}
