// Package services implements the sanitation workforce operations on top of
// a store.Store. Every dependency arrives through Deps.
package services

import (
	"context"
	"errors"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"swachh_netra/internal/auth"
	"swachh_netra/internal/events"
	"swachh_netra/internal/models"
	"swachh_netra/internal/notify"
	"swachh_netra/internal/store"
)

type Deps struct {
	Store    store.Store
	Auth     auth.Provider
	Hub      *events.Hub
	Notifier notify.Notifier
	Now      func() time.Time
}

type Services struct {
	Users            *UserService
	Signups          *SignupService
	Workers          *WorkerService
	WorkerRequests   *WorkerApprovalService
	FeederPoints     *FeederPointService
	Contractors      *ContractorService
	DailyAssignments *DailyAssignmentService
	Trips            *TripService

	deps Deps
}

func New(deps Deps) *Services {
	if deps.Hub == nil {
		deps.Hub = events.NewHub()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.LogNotifier{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	feederPoints := &FeederPointService{deps: deps}
	return &Services{
		Users:            &UserService{deps: deps},
		Signups:          &SignupService{deps: deps},
		Workers:          &WorkerService{deps: deps},
		WorkerRequests:   &WorkerApprovalService{deps: deps},
		FeederPoints:     feederPoints,
		Contractors:      &ContractorService{deps: deps, feederPoints: feederPoints},
		DailyAssignments: &DailyAssignmentService{deps: deps},
		Trips:            &TripService{deps: deps},
		deps:             deps,
	}
}

// Hub is the change feed every service publishes to.
func (s *Services) Hub() *events.Hub { return s.deps.Hub }

// Today is the current UTC calendar day in the format plans and trips use.
func (s *Services) Today() string { return models.FormatDate(s.deps.now()) }

func (d Deps) now() time.Time {
	return d.Now().UTC()
}

func (d Deps) publish(changes ...events.Change) {
	for _, c := range changes {
		d.Hub.Publish(c)
	}
}

// notifyUsers pushes a message to every listed user with a registered token.
// Lookup and delivery failures are logged and otherwise ignored.
func (d Deps) notifyUsers(ctx context.Context, title, body string, data map[string]string, userIDs ...string) {
	var batch []notify.Notification
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		var user models.User
		if err := d.Store.Get(ctx, models.CollectionUsers, id, &user); err != nil {
			log.WithFields(log.Fields{"user": id}).WithError(err).Warn("skipping notification")
			continue
		}
		if user.ExpoToken == "" {
			continue
		}
		batch = append(batch, notify.Notification{Token: user.ExpoToken, Title: title, Body: body, Data: data})
	}
	d.Notifier.Send(ctx, batch)
}

// feederPointsByIDs loads feeder points in the given order, skipping ids that
// no longer exist.
func feederPointsByIDs(ctx context.Context, st store.Store, ids []string, activeOnly bool) ([]models.FeederPoint, error) {
	out := make([]models.FeederPoint, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		var fp models.FeederPoint
		err := st.Get(ctx, models.CollectionFeederPoints, id, &fp)
		if errors.Is(err, store.ErrNotFound) {
			log.WithFields(log.Fields{"feederPoint": id}).Warn("referenced feeder point is missing")
			continue
		}
		if err != nil {
			return nil, err
		}
		if activeOnly && !fp.IsActive {
			continue
		}
		out = append(out, fp)
	}
	return out, nil
}

func sortByTime[T any](items []T, at func(T) time.Time, desc bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return at(items[i]).After(at(items[j]))
		}
		return at(items[i]).Before(at(items[j]))
	})
}
