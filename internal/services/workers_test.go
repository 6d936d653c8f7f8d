package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swachh_netra/internal/models"
)

func TestCreateWorkerValidatesForm(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Workers.CreateWorker(context.Background(), models.WorkerData{EmployeeID: "AB", Phone: "123"}, "admin-1")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	for _, field := range []string{"name", "employeeId", "phone", "address", "designation", "department"} {
		assert.Contains(t, validationErr.Fields, field)
	}
}

func TestCreateWorkerMigratesLegacyName(t *testing.T) {
	f := newFixture(t)
	data := validWorker("")
	data.LegacyFullName = "Kamla Devi"

	worker, err := f.svc.Workers.CreateWorker(context.Background(), data, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "Kamla Devi", worker.Name)
	assert.Empty(t, worker.LegacyFullName)
}

func TestDeactivatedWorkersAreHiddenFromLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kept, err := f.svc.Workers.CreateWorker(ctx, validWorker("Anita"), "admin-1")
	require.NoError(t, err)
	gone, err := f.svc.Workers.CreateWorker(ctx, validWorker("Bharat"), "admin-1")
	require.NoError(t, err)
	other := validWorker("Chetan")
	other.FeederPoint = "fp-2"
	_, err = f.svc.Workers.CreateWorker(ctx, other, "admin-1")
	require.NoError(t, err)

	require.NoError(t, f.svc.Workers.DeactivateWorker(ctx, gone.ID))

	all, err := f.svc.Workers.GetAllWorkers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	atPoint, err := f.svc.Workers.GetWorkersByFeederPoint(ctx, "fp-1")
	require.NoError(t, err)
	require.Len(t, atPoint, 1)
	assert.Equal(t, kept.ID, atPoint[0].ID)

	byID, err := f.svc.Workers.GetWorkerByID(ctx, gone.ID)
	require.NoError(t, err)
	assert.False(t, byID.IsActive)
}

func TestUpdateWorker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	worker, err := f.svc.Workers.CreateWorker(ctx, validWorker("Anita"), "admin-1")
	require.NoError(t, err)

	data := validWorker("Anita Sharma")
	data.Zone = "North"
	updated, err := f.svc.Workers.UpdateWorker(ctx, worker.ID, data)
	require.NoError(t, err)
	assert.Equal(t, "Anita Sharma", updated.Name)
	assert.Equal(t, "North", updated.Zone)
	assert.True(t, updated.IsActive)

	_, err = f.svc.Workers.UpdateWorker(ctx, "missing", data)
	assert.ErrorIs(t, err, ErrNotFound)
}
