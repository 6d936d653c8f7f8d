package services

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"swachh_netra/internal/events"
	"swachh_netra/internal/models"
	"swachh_netra/internal/store"
)

type TripService struct {
	deps Deps
}

type StartTripParams struct {
	DriverID      string `json:"driverId"`
	FeederPointID string `json:"feederPointId"`
	TripNumber    int    `json:"tripNumber"`
}

type CompleteTripParams struct {
	WasteWeight float64                 `json:"wasteWeight"`
	Attendance  []models.AttendanceMark `json:"workerAttendance"`
}

type AttendanceParams struct {
	WorkerID      string `json:"workerId"`
	FeederPointID string `json:"feederPointId"`
	TripID        string `json:"tripId"`
	Date          string `json:"date"`
	Present       bool   `json:"present"`
}

// StartTrip opens a trip for today. The feeder point must be on the driver's
// active plan, the driver may have one trip in progress at a time, and each
// trip number is used once per feeder point per day.
func (s *TripService) StartTrip(ctx context.Context, p StartTripParams) (models.TripRecord, error) {
	if p.TripNumber < 1 || p.TripNumber > models.MaxTripsPerFeederPoint {
		return models.TripRecord{}, ErrInvalidTripNumber
	}

	now := s.deps.now()
	date := models.FormatDate(now)
	var trip models.TripRecord
	err := s.deps.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		plan, err := findDailyAssignment(ctx, tx, p.DriverID, date)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotAssigned
			}
			return err
		}
		if plan.Status != models.DailyActive || !contains(plan.FeederPointIDs, p.FeederPointID) {
			return ErrNotAssigned
		}

		var running []models.TripRecord
		q := store.Where(store.Eq("driverId", p.DriverID), store.Eq("status", models.TripInProgress))
		if err := tx.Find(ctx, models.CollectionTripRecords, q, &running); err != nil {
			return err
		}
		if len(running) > 0 {
			return ErrTripInProgress
		}

		var today []models.TripRecord
		q = store.Where(
			store.Eq("driverId", p.DriverID),
			store.Eq("feederPointId", p.FeederPointID),
			store.Eq("tripDate", date),
		)
		if err := tx.Find(ctx, models.CollectionTripRecords, q, &today); err != nil {
			return err
		}
		for _, t := range today {
			if t.TripNumber == p.TripNumber && t.Status != models.TripCancelled {
				return ErrTripNumberUsed
			}
		}

		vehicleID := plan.VehicleID
		if vehicleID == "" {
			var driver models.User
			if err := tx.Get(ctx, models.CollectionUsers, p.DriverID, &driver); err != nil {
				return err
			}
			vehicleID = driver.AssignedVehicleID
		}

		trip = models.TripRecord{
			DriverID:         p.DriverID,
			VehicleID:        vehicleID,
			FeederPointID:    p.FeederPointID,
			ContractorID:     plan.ContractorID,
			TripDate:         date,
			TripNumber:       p.TripNumber,
			StartTime:        now,
			Status:           models.TripInProgress,
			WorkerAttendance: []models.AttendanceMark{},
		}
		_, err = tx.Create(ctx, models.CollectionTripRecords, &trip)
		return err
	})
	if err != nil {
		return models.TripRecord{}, fail("startTrip", "Failed to start trip", err)
	}

	log.WithFields(log.Fields{"trip": trip.ID, "driver": p.DriverID, "feederPoint": p.FeederPointID, "number": p.TripNumber}).Info("trip started")
	s.deps.publish(s.change(trip, events.Created))
	return trip, nil
}

// CompleteTrip closes an in-progress trip and records attendance for the
// workers marked on it.
func (s *TripService) CompleteTrip(ctx context.Context, driverID, tripID string, p CompleteTripParams) (models.TripRecord, error) {
	if p.WasteWeight < 0 {
		return models.TripRecord{}, invalid(map[string]string{"wasteWeight": "Waste weight cannot be negative"})
	}
	if p.Attendance == nil {
		p.Attendance = []models.AttendanceMark{}
	}

	var trip models.TripRecord
	err := s.deps.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.Get(ctx, models.CollectionTripRecords, tripID, &trip); err != nil {
			return err
		}
		if trip.DriverID != driverID {
			return ErrForbidden
		}
		if trip.Status != models.TripInProgress {
			return ErrInvalidTransition
		}

		now := s.deps.now()
		weight := p.WasteWeight
		trip.Status = models.TripCompleted
		trip.EndTime = &now
		trip.WasteWeight = &weight
		trip.WorkerAttendance = p.Attendance
		if err := tx.Update(ctx, models.CollectionTripRecords, tripID, map[string]interface{}{
			"status":           trip.Status,
			"endTime":          now,
			"wasteWeight":      weight,
			"workerAttendance": p.Attendance,
		}); err != nil {
			return err
		}

		for _, mark := range p.Attendance {
			record := attendanceRecord(mark.WorkerID, trip.FeederPointID, trip.ID, trip.TripDate, mark.Present, driverID, now)
			if err := tx.Set(ctx, models.CollectionWorkerAttendance, &record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.TripRecord{}, fail("completeTrip", "Failed to complete trip", err)
	}

	log.WithFields(log.Fields{"trip": tripID, "wasteWeight": p.WasteWeight, "attendance": len(p.Attendance)}).Info("trip completed")
	s.deps.publish(s.change(trip, events.Updated))
	return trip, nil
}

func (s *TripService) CancelTrip(ctx context.Context, driverID, tripID string) error {
	var trip models.TripRecord
	err := s.deps.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.Get(ctx, models.CollectionTripRecords, tripID, &trip); err != nil {
			return err
		}
		if trip.DriverID != driverID {
			return ErrForbidden
		}
		if trip.Status != models.TripInProgress && trip.Status != models.TripPending {
			return ErrInvalidTransition
		}
		now := s.deps.now()
		trip.Status = models.TripCancelled
		trip.EndTime = &now
		return tx.Update(ctx, models.CollectionTripRecords, tripID, map[string]interface{}{
			"status":  trip.Status,
			"endTime": now,
		})
	})
	if err != nil {
		return fail("cancelTrip", "Failed to cancel trip", err)
	}

	s.deps.publish(s.change(trip, events.Updated))
	return nil
}

func (s *TripService) GetDriverTrips(ctx context.Context, driverID, date string) ([]models.TripRecord, error) {
	var trips []models.TripRecord
	q := store.Where(store.Eq("driverId", driverID), store.Eq("tripDate", date))
	if err := s.deps.Store.Find(ctx, models.CollectionTripRecords, q, &trips); err != nil {
		return nil, fail("getDriverTrips", "Failed to load trips", err)
	}
	sortByTime(trips, func(t models.TripRecord) time.Time { return t.StartTime }, false)
	return trips, nil
}

// MarkWorkerAttendance writes the worker's attendance for the day, replacing
// any earlier mark for the same day.
func (s *TripService) MarkWorkerAttendance(ctx context.Context, p AttendanceParams, markedBy string) (models.WorkerAttendance, error) {
	fields := map[string]string{}
	if strings.TrimSpace(p.WorkerID) == "" {
		fields["workerId"] = "Worker is required"
	}
	if strings.TrimSpace(p.FeederPointID) == "" {
		fields["feederPointId"] = "Feeder point is required"
	}
	if p.Date == "" {
		p.Date = models.FormatDate(s.deps.now())
	} else if _, err := models.ParseDate(p.Date); err != nil {
		fields["date"] = "Date must be in YYYY-MM-DD format"
	}
	if err := invalid(fields); err != nil {
		return models.WorkerAttendance{}, err
	}

	var worker models.Worker
	if err := s.deps.Store.Get(ctx, models.CollectionWorkers, p.WorkerID, &worker); err != nil {
		return models.WorkerAttendance{}, fail("markWorkerAttendance", "Failed to mark attendance", err)
	}

	record := attendanceRecord(p.WorkerID, p.FeederPointID, p.TripID, p.Date, p.Present, markedBy, s.deps.now())
	if err := s.deps.Store.Set(ctx, models.CollectionWorkerAttendance, &record); err != nil {
		return models.WorkerAttendance{}, fail("markWorkerAttendance", "Failed to mark attendance", err)
	}

	s.deps.publish(events.Change{Collection: models.CollectionWorkerAttendance, DocumentID: record.ID, Type: events.Updated})
	return record, nil
}

func (s *TripService) GetAttendanceForDate(ctx context.Context, feederPointID, date string) ([]models.WorkerAttendance, error) {
	var records []models.WorkerAttendance
	q := store.Where(store.Eq("feederPointId", feederPointID), store.Eq("date", date))
	if err := s.deps.Store.Find(ctx, models.CollectionWorkerAttendance, q, &records); err != nil {
		return nil, fail("getAttendanceForDate", "Failed to load attendance", err)
	}
	return records, nil
}

func (s *TripService) change(trip models.TripRecord, t events.ChangeType) events.Change {
	return events.Change{
		Collection:   models.CollectionTripRecords,
		DocumentID:   trip.ID,
		Type:         t,
		ContractorID: trip.ContractorID,
		DriverID:     trip.DriverID,
	}
}

func attendanceRecord(workerID, feederPointID, tripID, date string, present bool, markedBy string, at time.Time) models.WorkerAttendance {
	status := models.AttendanceAbsent
	if present {
		status = models.AttendancePresent
	}
	record := models.WorkerAttendance{
		WorkerID:      workerID,
		FeederPointID: feederPointID,
		TripID:        tripID,
		Date:          date,
		Status:        status,
		MarkedBy:      markedBy,
		MarkedAt:      at,
	}
	record.ID = models.AttendanceID(workerID, date)
	return record
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
