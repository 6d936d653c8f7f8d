package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"swachh_netra/internal/auth"
	"swachh_netra/internal/events"
	"swachh_netra/internal/models"
	"swachh_netra/internal/notify"
	"swachh_netra/internal/store"
	"swachh_netra/internal/store/storetest"
)

var errBoom = errors.New("boom")

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

// Now advances one second per call so ordering by timestamp is stable.
func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (n *recordingNotifier) Send(ctx context.Context, batch []notify.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, batch...)
}

func (n *recordingNotifier) Sent() []notify.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Notification(nil), n.sent...)
}

type fixture struct {
	svc      *Services
	store    store.Store
	auth     *auth.LocalProvider
	hub      *events.Hub
	notifier *recordingNotifier
	clock    *testClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, _ := storetest.New(t)
	return newFixtureWithStore(t, st, st)
}

// newFixtureWithStore builds services on svcStore while seeding helpers keep
// writing to base.
func newFixtureWithStore(t *testing.T, base, svcStore store.Store) *fixture {
	t.Helper()
	f := &fixture{
		store:    base,
		auth:     auth.NewLocalProvider(base, "test-secret", time.Hour),
		hub:      events.NewHub(),
		notifier: &recordingNotifier{},
		clock:    &testClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
	}
	f.svc = New(Deps{
		Store:    svcStore,
		Auth:     f.auth,
		Hub:      f.hub,
		Notifier: f.notifier,
		Now:      f.clock.Now,
	})
	return f
}

func (f *fixture) today() string {
	f.clock.mu.Lock()
	defer f.clock.mu.Unlock()
	return models.FormatDate(f.clock.t)
}

func (f *fixture) seedUser(t *testing.T, id string, role models.Role, contractorID string) models.User {
	t.Helper()
	user := models.User{
		Email:        id + "@example.com",
		Role:         role,
		DisplayName:  id,
		IsActive:     true,
		ContractorID: contractorID,
		Description:  role.Description(),
		Color:        role.Color(),
	}
	user.ID = id
	require.NoError(t, f.store.Set(context.Background(), models.CollectionUsers, &user))
	return user
}

func (f *fixture) seedFeederPoint(t *testing.T, name, ward string, lat, lng float64) models.FeederPoint {
	t.Helper()
	fp, err := f.svc.FeederPoints.CreateFeederPoint(context.Background(), models.FeederPoint{
		AreaName:              "Civil Lines",
		WardNumber:            ward,
		KothiName:             "Kothi 4",
		FeederPointName:       name,
		NearestLandmark:       "Water tank",
		ApproximateHouseholds: 120,
		VehicleTypes:          []string{"tipper"},
		Coordinates:           models.Coordinates{Lat: lat, Lng: lng},
	}, "admin-1")
	require.NoError(t, err)
	return fp
}

func (f *fixture) seedVehicle(t *testing.T, contractorID, number string) models.Vehicle {
	t.Helper()
	v, err := f.svc.Contractors.CreateVehicle(context.Background(), contractorID, models.Vehicle{
		VehicleNumber: number,
		Type:          "tipper",
		Capacity:      2.5,
	})
	require.NoError(t, err)
	return v
}

func validWorker(name string) models.WorkerData {
	return models.WorkerData{
		Name:        name,
		EmployeeID:  "EMP-001",
		Designation: "Sweeper",
		Department:  "Sanitation",
		Phone:       "9876543210",
		Address:     "12 Station Road",
		Ward:        "12",
		FeederPoint: "fp-1",
	}
}

// failingStore fails every Update on one collection, inside and outside
// transactions.
type failingStore struct {
	store.Store
	collection string
}

func (s *failingStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if collection == s.collection {
		return errBoom
	}
	return s.Store.Update(ctx, collection, id, fields)
}

func (s *failingStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return s.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		return fn(ctx, &failingStore{Store: tx, collection: s.collection})
	})
}

func count(t *testing.T, st store.Store, collection string, dst interface{}, filters ...store.Filter) {
	t.Helper()
	require.NoError(t, st.Find(context.Background(), collection, store.Where(filters...), dst))
}

func accountFor(email string) auth.NewAccount {
	hash, err := auth.HashPassword("Abcdef1!")
	if err != nil {
		panic(err)
	}
	return auth.NewAccount{Email: email, DisplayName: email, PasswordHash: hash}
}

var errRetry = errors.New("retry")

// retryingStore runs every transaction body twice, rolling back the first
// attempt, the way Firestore retries after contention.
type retryingStore struct {
	store.Store
}

func (s *retryingStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	err := s.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return errRetry
	})
	if !errors.Is(err, errRetry) {
		return err
	}
	return s.Store.RunInTx(ctx, fn)
}
