package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swachh_netra/internal/events"
	"swachh_netra/internal/models"
)

func TestSoftDeletedFeederPointStaysReachableByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contractor := f.seedUser(t, "contractor-1", models.RoleContractor, "")

	fp := f.seedFeederPoint(t, "Gandhi Chowk", "12", 26.85, 80.95)
	_, err := f.svc.FeederPoints.AssignFeederPointToContractor(ctx, fp.ID, contractor.ID, "admin-1")
	require.NoError(t, err)

	points, err := f.svc.Contractors.GetContractorFeederPoints(ctx, contractor.ID)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, fp.ID, points[0].ID)

	require.NoError(t, f.svc.FeederPoints.DeleteFeederPoint(ctx, fp.ID))

	all, err := f.svc.FeederPoints.GetAllFeederPoints(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	byID, err := f.svc.FeederPoints.GetFeederPointByID(ctx, fp.ID)
	require.NoError(t, err)
	assert.Equal(t, fp.ID, byID.ID)
	assert.False(t, byID.IsActive)
	assert.Equal(t, "12", byID.WardNumber)
}

func TestAssignFeederPointIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contractor := f.seedUser(t, "contractor-1", models.RoleVehicleOwner, "")
	fp := f.seedFeederPoint(t, "Gandhi Chowk", "12", 26.85, 80.95)

	var seen []events.Change
	defer f.hub.Subscribe(events.ContractorTopic(contractor.ID), func(c events.Change) { seen = append(seen, c) })()

	first, err := f.svc.FeederPoints.AssignFeederPointToContractor(ctx, fp.ID, contractor.ID, "admin-1")
	require.NoError(t, err)
	second, err := f.svc.FeederPoints.AssignFeederPointToContractor(ctx, fp.ID, contractor.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, seen, 1)

	assignments, err := f.svc.FeederPoints.GetFeederPointAssignments(ctx, contractor.ID)
	require.NoError(t, err)
	assert.Len(t, assignments, 1)

	require.NoError(t, f.svc.FeederPoints.UnassignFeederPoint(ctx, first.ID))
	assignments, err = f.svc.FeederPoints.GetFeederPointAssignments(ctx, contractor.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestAssignFeederPointRequiresContractor(t *testing.T) {
	f := newFixture(t)
	driver := f.seedUser(t, "driver-1", models.RoleDriver, "")
	fp := f.seedFeederPoint(t, "Gandhi Chowk", "12", 26.85, 80.95)

	_, err := f.svc.FeederPoints.AssignFeederPointToContractor(context.Background(), fp.ID, driver.ID, "admin-1")
	assert.ErrorIs(t, err, ErrWrongRole)
}

func TestGetFeederPointDrivers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contractor := f.seedUser(t, "contractor-1", models.RoleContractor, "")
	first := f.seedUser(t, "driver-1", models.RoleDriver, contractor.ID)
	second := f.seedUser(t, "driver-2", models.RoleDriver, contractor.ID)
	fp := f.seedFeederPoint(t, "Gandhi Chowk", "12", 26.85, 80.95)
	other := f.seedFeederPoint(t, "Ram Bagh", "14", 26.86, 80.96)

	_, err := f.svc.Contractors.AssignVehicleToDriver(ctx, contractor.ID, f.seedVehicle(t, contractor.ID, "UP32AB1234").ID, first.ID, []string{fp.ID, other.ID})
	require.NoError(t, err)
	_, err = f.svc.Contractors.AssignVehicleToDriver(ctx, contractor.ID, f.seedVehicle(t, contractor.ID, "UP32AB5678").ID, second.ID, []string{other.ID})
	require.NoError(t, err)

	drivers, err := f.svc.FeederPoints.GetFeederPointDrivers(ctx, fp.ID)
	require.NoError(t, err)
	require.Len(t, drivers, 1)
	assert.Equal(t, first.ID, drivers[0].ID)

	drivers, err = f.svc.FeederPoints.GetFeederPointDrivers(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, drivers, 2)

	_, err = f.svc.FeederPoints.GetFeederPointDrivers(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetFeederPointsByWardAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedFeederPoint(t, "Gandhi Chowk", "12", 26.85, 80.95)
	f.seedFeederPoint(t, "Ram Bagh", "14", 26.86, 80.96)

	inWard, err := f.svc.FeederPoints.GetFeederPointsByWard(ctx, "12")
	require.NoError(t, err)
	require.Len(t, inWard, 1)
	assert.Equal(t, a.ID, inWard[0].ID)

	a.FeederPointName = "Gandhi Chowk East"
	a.Coordinates = models.Coordinates{Lat: 26.851, Lng: 80.951}
	updated, err := f.svc.FeederPoints.UpdateFeederPoint(ctx, a.ID, a)
	require.NoError(t, err)
	assert.Equal(t, "Gandhi Chowk East", updated.FeederPointName)
	assert.InDelta(t, 26.851, updated.Coordinates.Lat, 1e-9)
	assert.True(t, updated.IsActive)

	bad := a
	bad.WardNumber = ""
	_, err = f.svc.FeederPoints.UpdateFeederPoint(ctx, a.ID, bad)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "wardNumber")
}

func TestNearbyFeederPointsSortedByDistance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	near := f.seedFeederPoint(t, "Near", "12", 26.8500, 80.9500)
	nearer := f.seedFeederPoint(t, "Nearer", "12", 26.8460, 80.9460)
	f.seedFeederPoint(t, "Far", "40", 27.5000, 81.5000)

	nearby, err := f.svc.FeederPoints.NearbyFeederPoints(ctx, 26.8450, 80.9450, 2)
	require.NoError(t, err)
	require.Len(t, nearby, 2)
	assert.Equal(t, nearer.ID, nearby[0].ID)
	assert.Equal(t, near.ID, nearby[1].ID)
	assert.Less(t, nearby[0].DistanceKm, nearby[1].DistanceKm)

	_, err = f.svc.FeederPoints.NearbyFeederPoints(ctx, 26.8, 80.9, 0)
	assert.Error(t, err)
}
