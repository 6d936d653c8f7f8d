package services

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"swachh_netra/internal/events"
	"swachh_netra/internal/models"
	"swachh_netra/internal/store"
	"swachh_netra/internal/validation"
)

// ContractorService covers the vehicle owner's fleet: vehicles, drivers and
// the feeder points they serve.
type ContractorService struct {
	deps         Deps
	feederPoints *FeederPointService
}

func (s *ContractorService) contractor(ctx context.Context, st store.Store, contractorID string) (models.User, error) {
	var user models.User
	if err := st.Get(ctx, models.CollectionUsers, contractorID, &user); err != nil {
		return models.User{}, err
	}
	if !user.Role.IsContractor() {
		return models.User{}, ErrWrongRole
	}
	return user, nil
}

func (s *ContractorService) CreateVehicle(ctx context.Context, contractorID string, v models.Vehicle) (models.Vehicle, error) {
	v.VehicleNumber = strings.ToUpper(strings.TrimSpace(v.VehicleNumber))
	v.Type = strings.TrimSpace(v.Type)
	if v.Status == "" {
		v.Status = models.VehicleActive
	}
	if err := invalid(validation.ValidateVehicle(v)); err != nil {
		return models.Vehicle{}, err
	}
	if _, err := s.contractor(ctx, s.deps.Store, contractorID); err != nil {
		return models.Vehicle{}, fail("createVehicle", "Failed to add vehicle", err)
	}

	now := s.deps.now()
	v.ID = ""
	v.ContractorID = contractorID
	v.DriverID = ""
	v.CreatedAt = now
	v.UpdatedAt = now
	if _, err := s.deps.Store.Create(ctx, models.CollectionVehicles, &v); err != nil {
		return models.Vehicle{}, fail("createVehicle", "Failed to add vehicle", err)
	}

	log.WithFields(log.Fields{"vehicle": v.ID, "number": v.VehicleNumber, "contractor": contractorID}).Info("vehicle created")
	s.deps.publish(events.Change{Collection: models.CollectionVehicles, DocumentID: v.ID, Type: events.Created, ContractorID: contractorID})
	return v, nil
}

func (s *ContractorService) GetContractorVehicles(ctx context.Context, contractorID string) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := s.deps.Store.Find(ctx, models.CollectionVehicles, store.Where(store.Eq("contractorId", contractorID)), &vehicles); err != nil {
		return nil, fail("getContractorVehicles", "Failed to load vehicles", err)
	}
	sortByTime(vehicles, func(v models.Vehicle) time.Time { return v.CreatedAt }, true)
	return vehicles, nil
}

func (s *ContractorService) UpdateVehicleStatus(ctx context.Context, contractorID, vehicleID string, status models.VehicleStatus) error {
	if !status.Valid() {
		return invalid(map[string]string{"status": "Unknown vehicle status"})
	}

	err := s.deps.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		var vehicle models.Vehicle
		if err := tx.Get(ctx, models.CollectionVehicles, vehicleID, &vehicle); err != nil {
			return err
		}
		if vehicle.ContractorID != contractorID {
			return ErrForbidden
		}
		return tx.Update(ctx, models.CollectionVehicles, vehicleID, map[string]interface{}{
			"status":    status,
			"updatedAt": s.deps.now(),
		})
	})
	if err != nil {
		return fail("updateVehicleStatus", "Failed to update vehicle status", err)
	}

	s.deps.publish(events.Change{Collection: models.CollectionVehicles, DocumentID: vehicleID, Type: events.Updated, ContractorID: contractorID})
	return nil
}

// AttachDriver puts a driver account on the contractor's roster.
func (s *ContractorService) AttachDriver(ctx context.Context, contractorID, driverID string) (models.User, error) {
	var driver models.User
	err := s.deps.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := s.contractor(ctx, tx, contractorID); err != nil {
			return err
		}
		if err := tx.Get(ctx, models.CollectionUsers, driverID, &driver); err != nil {
			return err
		}
		if driver.Role != models.RoleDriver {
			return ErrWrongRole
		}
		if driver.ContractorID != "" && driver.ContractorID != contractorID {
			return ErrForbidden
		}
		driver.ContractorID = contractorID
		driver.UpdatedAt = s.deps.now()
		return tx.Update(ctx, models.CollectionUsers, driverID, map[string]interface{}{
			"contractorId": contractorID,
			"updatedAt":    driver.UpdatedAt,
		})
	})
	if err != nil {
		return models.User{}, fail("attachDriver", "Failed to add driver", err)
	}

	log.WithFields(log.Fields{"driver": driverID, "contractor": contractorID}).Info("driver attached")
	s.deps.publish(events.Change{Collection: models.CollectionUsers, DocumentID: driverID, Type: events.Updated, ContractorID: contractorID, DriverID: driverID})
	return driver, nil
}

func (s *ContractorService) GetContractorDrivers(ctx context.Context, contractorID string) ([]models.User, error) {
	var drivers []models.User
	q := store.Where(store.Eq("role", models.RoleDriver), store.Eq("contractorId", contractorID))
	if err := s.deps.Store.Find(ctx, models.CollectionUsers, q, &drivers); err != nil {
		return nil, fail("getContractorDrivers", "Failed to load drivers", err)
	}
	return drivers, nil
}

// GetContractorFeederPoints returns the active feeder points the contractor
// holds an active assignment for.
func (s *ContractorService) GetContractorFeederPoints(ctx context.Context, contractorID string) ([]models.FeederPoint, error) {
	assignments, err := s.feederPoints.GetFeederPointAssignments(ctx, contractorID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.FeederPointID)
	}
	points, err := feederPointsByIDs(ctx, s.deps.Store, ids, true)
	if err != nil {
		return nil, fail("getContractorFeederPoints", "Failed to load feeder points", err)
	}
	return points, nil
}

// AssignVehicleToDriver records a new driver assignment and denormalizes it
// onto the vehicle and the driver. The driver's previous active assignment is
// retired in the same transaction.
func (s *ContractorService) AssignVehicleToDriver(ctx context.Context, contractorID, vehicleID, driverID string, feederPointIDs []string) (models.DriverAssignment, error) {
	fields := map[string]string{}
	if strings.TrimSpace(vehicleID) == "" {
		fields["vehicleId"] = "Please select a vehicle"
	}
	if strings.TrimSpace(driverID) == "" {
		fields["driverId"] = "Please select a driver"
	}
	if err := invalid(fields); err != nil {
		return models.DriverAssignment{}, err
	}
	if feederPointIDs == nil {
		feederPointIDs = []string{}
	}

	var (
		assignment models.DriverAssignment
		retired    []string
	)
	err := s.deps.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		retired = nil

		var vehicle models.Vehicle
		if err := tx.Get(ctx, models.CollectionVehicles, vehicleID, &vehicle); err != nil {
			return err
		}
		if vehicle.ContractorID != contractorID {
			return ErrForbidden
		}
		var driver models.User
		if err := tx.Get(ctx, models.CollectionUsers, driverID, &driver); err != nil {
			return err
		}
		if driver.Role != models.RoleDriver {
			return ErrWrongRole
		}
		if driver.ContractorID != "" && driver.ContractorID != contractorID {
			return ErrForbidden
		}
		var previous []models.DriverAssignment
		q := store.Where(store.Eq("driverId", driverID), store.Eq("status", models.AssignmentActive))
		if err := tx.Find(ctx, models.CollectionDriverAssignments, q, &previous); err != nil {
			return err
		}

		now := s.deps.now()
		for _, p := range previous {
			if err := tx.Update(ctx, models.CollectionDriverAssignments, p.ID, map[string]interface{}{
				"status": models.AssignmentInactive,
			}); err != nil {
				return err
			}
			retired = append(retired, p.ID)
		}

		assignment = models.DriverAssignment{
			ContractorID:   contractorID,
			DriverID:       driverID,
			VehicleID:      vehicleID,
			FeederPointIDs: feederPointIDs,
			AssignedAt:     now,
			Status:         models.AssignmentActive,
		}
		if _, err := tx.Create(ctx, models.CollectionDriverAssignments, &assignment); err != nil {
			return err
		}
		if err := tx.Update(ctx, models.CollectionVehicles, vehicleID, map[string]interface{}{
			"driverId":  driverID,
			"status":    models.VehicleAssigned,
			"updatedAt": now,
		}); err != nil {
			return err
		}
		return tx.Update(ctx, models.CollectionUsers, driverID, map[string]interface{}{
			"assignedVehicleId":      vehicleID,
			"assignedFeederPointIds": feederPointIDs,
			"contractorId":           contractorID,
			"updatedAt":              now,
		})
	})
	if err != nil {
		return models.DriverAssignment{}, fail("assignVehicleToDriver", "Failed to assign vehicle to driver", err)
	}

	log.WithFields(log.Fields{
		"assignment": assignment.ID,
		"vehicle":    vehicleID,
		"driver":     driverID,
		"retired":    len(retired),
	}).Info("vehicle assigned to driver")

	changes := []events.Change{
		{Collection: models.CollectionDriverAssignments, DocumentID: assignment.ID, Type: events.Created, ContractorID: contractorID, DriverID: driverID},
		{Collection: models.CollectionVehicles, DocumentID: vehicleID, Type: events.Updated, ContractorID: contractorID, DriverID: driverID},
		{Collection: models.CollectionUsers, DocumentID: driverID, Type: events.Updated, ContractorID: contractorID, DriverID: driverID},
	}
	for _, id := range retired {
		changes = append(changes, events.Change{Collection: models.CollectionDriverAssignments, DocumentID: id, Type: events.Updated, ContractorID: contractorID, DriverID: driverID})
	}
	s.deps.publish(changes...)
	s.deps.notifyUsers(ctx, "New vehicle assignment", "You have been assigned a vehicle and feeder points",
		map[string]string{"category": "vehicle_assignment", "vehicleId": vehicleID}, driverID)
	return assignment, nil
}

// GetDriverAssignment returns the driver's current active assignment.
func (s *ContractorService) GetDriverAssignment(ctx context.Context, driverID string) (models.DriverAssignment, error) {
	var assignments []models.DriverAssignment
	q := store.Where(store.Eq("driverId", driverID), store.Eq("status", models.AssignmentActive))
	if err := s.deps.Store.Find(ctx, models.CollectionDriverAssignments, q, &assignments); err != nil {
		return models.DriverAssignment{}, fail("getDriverAssignment", "Failed to load driver assignment", err)
	}
	if len(assignments) == 0 {
		return models.DriverAssignment{}, ErrNotFound
	}
	sortByTime(assignments, func(a models.DriverAssignment) time.Time { return a.AssignedAt }, true)
	return assignments[0], nil
}
