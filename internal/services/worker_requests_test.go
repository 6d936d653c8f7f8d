package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swachh_netra/internal/models"
)

func TestApproveAddRequestCreatesWorker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hr := f.seedUser(t, "hr-1", models.RoleSwachhHR, "")
	require.NoError(t, f.svc.Users.RegisterPushToken(ctx, hr.ID, "ExponentPushToken[hr-token]"))

	req, err := f.svc.WorkerRequests.RequestAddWorker(ctx, validWorker("Ramesh"), hr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, req.Status)

	approved, err := f.svc.WorkerRequests.ApproveWorkerRequest(ctx, req.ID, "admin-1")
	require.NoError(t, err)
	require.NotEmpty(t, approved.WorkerID)

	worker, err := f.svc.Workers.GetWorkerByID(ctx, approved.WorkerID)
	require.NoError(t, err)
	assert.Equal(t, "Ramesh", worker.Name)
	assert.True(t, worker.IsActive)
	assert.Equal(t, hr.ID, worker.CreatedBy)

	stored, err := f.svc.WorkerRequests.GetWorkerRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)
	assert.Equal(t, "admin-1", stored.ApprovedBy)
	assert.NotNil(t, stored.ApprovedAt)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ExponentPushToken[hr-token]", sent[0].Token)
}

func TestApproveEditRequestKeepsIDAndAppliesData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	worker, err := f.svc.Workers.CreateWorker(ctx, validWorker("Ramesh"), "admin-1")
	require.NoError(t, err)

	edited := validWorker("Ramesh Kumar")
	edited.Phone = "9123456789"
	edited.ShiftTiming = "06:00-14:00"
	req, err := f.svc.WorkerRequests.RequestEditWorker(ctx, worker.ID, edited, "hr-1")
	require.NoError(t, err)
	require.NotNil(t, req.OriginalData)
	assert.Equal(t, "Ramesh", req.OriginalData.Name)

	_, err = f.svc.WorkerRequests.ApproveWorkerRequest(ctx, req.ID, "admin-1")
	require.NoError(t, err)

	got, err := f.svc.Workers.GetWorkerByID(ctx, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, worker.ID, got.ID)
	assert.Equal(t, edited, got.WorkerData)
}

func TestApproveDeleteRequestRemovesWorker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	worker, err := f.svc.Workers.CreateWorker(ctx, validWorker("Ramesh"), "admin-1")
	require.NoError(t, err)
	req, err := f.svc.WorkerRequests.RequestDeleteWorker(ctx, worker.ID, "hr-1", "left the job")
	require.NoError(t, err)
	assert.Nil(t, req.WorkerData)
	require.NotNil(t, req.OriginalData)

	_, err = f.svc.WorkerRequests.ApproveWorkerRequest(ctx, req.ID, "admin-1")
	require.NoError(t, err)

	_, err = f.svc.Workers.GetWorkerByID(ctx, worker.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveProcessedRequestFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	worker, err := f.svc.Workers.CreateWorker(ctx, validWorker("Ramesh"), "admin-1")
	require.NoError(t, err)
	req, err := f.svc.WorkerRequests.RequestEditWorker(ctx, worker.ID, validWorker("Suresh"), "hr-1")
	require.NoError(t, err)

	_, err = f.svc.WorkerRequests.RejectWorkerRequest(ctx, req.ID, "admin-1", "wrong person")
	require.NoError(t, err)

	_, err = f.svc.WorkerRequests.ApproveWorkerRequest(ctx, req.ID, "admin-2")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	_, err = f.svc.WorkerRequests.RejectWorkerRequest(ctx, req.ID, "admin-2", "again")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	got, err := f.svc.Workers.GetWorkerByID(ctx, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ramesh", got.Name)

	stored, err := f.svc.WorkerRequests.GetWorkerRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, stored.Status)
	assert.Equal(t, "admin-1", stored.RejectedBy)
	assert.Equal(t, "wrong person", stored.Reason)
}

func TestBulkApproveStopsAtFirstFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.WorkerRequests.RequestAddWorker(ctx, validWorker("Anita"), "hr-1")
	require.NoError(t, err)

	doomed, err := f.svc.Workers.CreateWorker(ctx, validWorker("Ramesh"), "admin-1")
	require.NoError(t, err)
	edit, err := f.svc.WorkerRequests.RequestEditWorker(ctx, doomed.ID, validWorker("Ramesh K"), "hr-1")
	require.NoError(t, err)
	require.NoError(t, f.store.Delete(ctx, models.CollectionWorkers, doomed.ID))

	last, err := f.svc.WorkerRequests.RequestAddWorker(ctx, validWorker("Sunita"), "hr-1")
	require.NoError(t, err)

	approved, err := f.svc.WorkerRequests.BulkApproveAllRequests(ctx, "admin-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, approved)

	statuses := map[string]models.RequestStatus{}
	for _, id := range []string{first.ID, edit.ID, last.ID} {
		req, err := f.svc.WorkerRequests.GetWorkerRequest(ctx, id)
		require.NoError(t, err)
		statuses[id] = req.Status
	}
	assert.Equal(t, models.StatusApproved, statuses[first.ID])
	assert.Equal(t, models.StatusPending, statuses[edit.ID])
	assert.Equal(t, models.StatusPending, statuses[last.ID])
}

func TestGetWorkerRequestsByRequester(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.WorkerRequests.RequestAddWorker(ctx, validWorker("Anita"), "hr-1")
	require.NoError(t, err)
	_, err = f.svc.WorkerRequests.RequestAddWorker(ctx, validWorker("Sunita"), "hr-2")
	require.NoError(t, err)

	mine, err := f.svc.WorkerRequests.GetWorkerRequestsBy(ctx, "hr-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Anita", mine[0].WorkerData.Name)

	pending, err := f.svc.WorkerRequests.GetPendingWorkerRequests(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestRequestAddWorkerValidatesHRForm(t *testing.T) {
	f := newFixture(t)
	data := validWorker("Anita")
	data.Phone = "12345"
	data.AadhaarNumber = "1234"

	_, err := f.svc.WorkerRequests.RequestAddWorker(context.Background(), data, "hr-1")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "phone")
	assert.Contains(t, validationErr.Fields, "aadhaarNumber")
}
