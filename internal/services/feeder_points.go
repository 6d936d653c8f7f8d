package services

import (
	"context"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"swachh_netra/internal/events"
	"swachh_netra/internal/models"
	"swachh_netra/internal/store"
	"swachh_netra/internal/validation"
)

type FeederPointService struct {
	deps Deps
}

// NearbyFeederPoint is a feeder point with its distance from a query point.
type NearbyFeederPoint struct {
	models.FeederPoint
	DistanceKm float64 `json:"distanceKm"`
}

func (s *FeederPointService) CreateFeederPoint(ctx context.Context, fp models.FeederPoint, createdBy string) (models.FeederPoint, error) {
	trimFeederPoint(&fp)
	if err := invalid(validation.ValidateFeederPoint(fp)); err != nil {
		return models.FeederPoint{}, err
	}

	fp.ID = ""
	fp.CreatedBy = createdBy
	fp.CreatedAt = s.deps.now()
	fp.IsActive = true
	if _, err := s.deps.Store.Create(ctx, models.CollectionFeederPoints, &fp); err != nil {
		return models.FeederPoint{}, fail("createFeederPoint", "Failed to create feeder point", err)
	}

	log.WithFields(log.Fields{"feederPoint": fp.ID, "ward": fp.WardNumber}).Info("feeder point created")
	s.deps.publish(events.Change{Collection: models.CollectionFeederPoints, DocumentID: fp.ID, Type: events.Created})
	return fp, nil
}

// GetAllFeederPoints returns active feeder points, newest first.
func (s *FeederPointService) GetAllFeederPoints(ctx context.Context) ([]models.FeederPoint, error) {
	return s.find(ctx, store.Where(store.Eq("isActive", true)))
}

// GetFeederPointByID ignores isActive so soft-deleted points stay reachable.
func (s *FeederPointService) GetFeederPointByID(ctx context.Context, id string) (models.FeederPoint, error) {
	var fp models.FeederPoint
	if err := s.deps.Store.Get(ctx, models.CollectionFeederPoints, id, &fp); err != nil {
		return models.FeederPoint{}, fail("getFeederPointById", "Failed to load feeder point", err)
	}
	return fp, nil
}

func (s *FeederPointService) GetFeederPointsByWard(ctx context.Context, ward string) ([]models.FeederPoint, error) {
	return s.find(ctx, store.Where(store.Eq("wardNumber", strings.TrimSpace(ward)), store.Eq("isActive", true)))
}

func (s *FeederPointService) UpdateFeederPoint(ctx context.Context, id string, fp models.FeederPoint) (models.FeederPoint, error) {
	trimFeederPoint(&fp)
	if err := invalid(validation.ValidateFeederPoint(fp)); err != nil {
		return models.FeederPoint{}, err
	}

	err := s.deps.Store.Update(ctx, models.CollectionFeederPoints, id, map[string]interface{}{
		"areaName":              fp.AreaName,
		"wardNumber":            fp.WardNumber,
		"kothiName":             fp.KothiName,
		"feederPointName":       fp.FeederPointName,
		"nearestLandmark":       fp.NearestLandmark,
		"approximateHouseholds": fp.ApproximateHouseholds,
		"vehicleTypes":          fp.VehicleTypes,
		"coordinates":           fp.Coordinates,
		"locationPhoto":         fp.LocationPhoto,
	})
	if err != nil {
		return models.FeederPoint{}, fail("updateFeederPoint", "Failed to update feeder point", err)
	}

	s.deps.publish(events.Change{Collection: models.CollectionFeederPoints, DocumentID: id, Type: events.Updated})
	return s.GetFeederPointByID(ctx, id)
}

// DeleteFeederPoint is a soft delete.
func (s *FeederPointService) DeleteFeederPoint(ctx context.Context, id string) error {
	if err := s.deps.Store.Update(ctx, models.CollectionFeederPoints, id, map[string]interface{}{"isActive": false}); err != nil {
		return fail("deleteFeederPoint", "Failed to delete feeder point", err)
	}

	log.WithFields(log.Fields{"feederPoint": id}).Info("feeder point deactivated")
	s.deps.publish(events.Change{Collection: models.CollectionFeederPoints, DocumentID: id, Type: events.Updated})
	return nil
}

// AssignFeederPointToContractor links a feeder point to a contractor. An
// existing active link for the same pair is returned unchanged.
func (s *FeederPointService) AssignFeederPointToContractor(ctx context.Context, feederPointID, contractorID, assignedBy string) (models.FeederPointAssignment, error) {
	var assignment models.FeederPointAssignment
	created := false
	err := s.deps.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		var fp models.FeederPoint
		if err := tx.Get(ctx, models.CollectionFeederPoints, feederPointID, &fp); err != nil {
			return err
		}
		if !fp.IsActive {
			return ErrInvalidRequest
		}
		var contractor models.User
		if err := tx.Get(ctx, models.CollectionUsers, contractorID, &contractor); err != nil {
			return err
		}
		if !contractor.Role.IsContractor() {
			return ErrWrongRole
		}

		var existing []models.FeederPointAssignment
		q := store.Where(
			store.Eq("feederPointId", feederPointID),
			store.Eq("contractorId", contractorID),
			store.Eq("status", models.AssignmentActive),
		)
		if err := tx.Find(ctx, models.CollectionFeederPointAssignments, q, &existing); err != nil {
			return err
		}
		if len(existing) > 0 {
			assignment = existing[0]
			return nil
		}

		assignment = models.FeederPointAssignment{
			FeederPointID: feederPointID,
			ContractorID:  contractorID,
			AssignedAt:    s.deps.now(),
			AssignedBy:    assignedBy,
			Status:        models.AssignmentActive,
		}
		created = true
		_, err := tx.Create(ctx, models.CollectionFeederPointAssignments, &assignment)
		return err
	})
	if err != nil {
		return models.FeederPointAssignment{}, fail("assignFeederPoint", "Failed to assign feeder point", err)
	}

	if created {
		log.WithFields(log.Fields{"feederPoint": feederPointID, "contractor": contractorID}).Info("feeder point assigned")
		s.deps.publish(events.Change{
			Collection:   models.CollectionFeederPointAssignments,
			DocumentID:   assignment.ID,
			Type:         events.Created,
			ContractorID: contractorID,
		})
	}
	return assignment, nil
}

func (s *FeederPointService) UnassignFeederPoint(ctx context.Context, assignmentID string) error {
	var assignment models.FeederPointAssignment
	if err := s.deps.Store.Get(ctx, models.CollectionFeederPointAssignments, assignmentID, &assignment); err != nil {
		return fail("unassignFeederPoint", "Failed to unassign feeder point", err)
	}
	if assignment.Status != models.AssignmentActive {
		return nil
	}
	err := s.deps.Store.Update(ctx, models.CollectionFeederPointAssignments, assignmentID, map[string]interface{}{
		"status": models.AssignmentInactive,
	})
	if err != nil {
		return fail("unassignFeederPoint", "Failed to unassign feeder point", err)
	}

	s.deps.publish(events.Change{
		Collection:   models.CollectionFeederPointAssignments,
		DocumentID:   assignmentID,
		Type:         events.Updated,
		ContractorID: assignment.ContractorID,
	})
	return nil
}

// GetFeederPointDrivers returns the drivers whose current route includes
// the feeder point.
func (s *FeederPointService) GetFeederPointDrivers(ctx context.Context, feederPointID string) ([]models.User, error) {
	if _, err := s.GetFeederPointByID(ctx, feederPointID); err != nil {
		return nil, err
	}
	var drivers []models.User
	q := store.Where(store.Eq("role", models.RoleDriver), store.Contains("assignedFeederPointIds", feederPointID))
	if err := s.deps.Store.Find(ctx, models.CollectionUsers, q, &drivers); err != nil {
		return nil, fail("getFeederPointDrivers", "Failed to load drivers", err)
	}
	return drivers, nil
}

// GetFeederPointAssignments lists active assignments, optionally for one
// contractor.
func (s *FeederPointService) GetFeederPointAssignments(ctx context.Context, contractorID string) ([]models.FeederPointAssignment, error) {
	filters := []store.Filter{store.Eq("status", models.AssignmentActive)}
	if contractorID != "" {
		filters = append(filters, store.Eq("contractorId", contractorID))
	}
	var assignments []models.FeederPointAssignment
	if err := s.deps.Store.Find(ctx, models.CollectionFeederPointAssignments, store.Where(filters...), &assignments); err != nil {
		return nil, fail("getFeederPointAssignments", "Failed to load assignments", err)
	}
	sortByTime(assignments, func(a models.FeederPointAssignment) time.Time { return a.AssignedAt }, true)
	return assignments, nil
}

// NearbyFeederPoints returns active feeder points within radiusKm of the
// given location, closest first.
func (s *FeederPointService) NearbyFeederPoints(ctx context.Context, lat, lng, radiusKm float64) ([]NearbyFeederPoint, error) {
	if radiusKm <= 0 || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, invalid(map[string]string{"location": "A valid location and positive radius are required"})
	}
	all, err := s.GetAllFeederPoints(ctx)
	if err != nil {
		return nil, err
	}

	origin := models.Coordinates{Lat: lat, Lng: lng}
	var nearby []NearbyFeederPoint
	for _, fp := range all {
		if d := origin.DistanceKm(fp.Coordinates); d <= radiusKm {
			nearby = append(nearby, NearbyFeederPoint{FeederPoint: fp, DistanceKm: d})
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool { return nearby[i].DistanceKm < nearby[j].DistanceKm })
	return nearby, nil
}

func (s *FeederPointService) find(ctx context.Context, q store.Query) ([]models.FeederPoint, error) {
	var points []models.FeederPoint
	if err := s.deps.Store.Find(ctx, models.CollectionFeederPoints, q, &points); err != nil {
		return nil, fail("getFeederPoints", "Failed to load feeder points", err)
	}
	sortByTime(points, func(fp models.FeederPoint) time.Time { return fp.CreatedAt }, true)
	return points, nil
}

func trimFeederPoint(fp *models.FeederPoint) {
	fp.AreaName = strings.TrimSpace(fp.AreaName)
	fp.WardNumber = strings.TrimSpace(fp.WardNumber)
	fp.KothiName = strings.TrimSpace(fp.KothiName)
	fp.FeederPointName = strings.TrimSpace(fp.FeederPointName)
	fp.NearestLandmark = strings.TrimSpace(fp.NearestLandmark)
}
