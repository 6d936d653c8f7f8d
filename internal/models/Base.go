package models

import (
	"fmt"
	"time"
)

// Document is implemented by every type stored in a collection.
type Document interface {
	GetID() string
	SetID(id string)
}

// Base carries the document id. It is embedded by every collection type so the
// id is persisted alongside the other fields.
type Base struct {
	ID string `json:"id" firestore:"id" gorm:"primaryKey;type:varchar(128)"`
}

func (b *Base) GetID() string { return b.ID }

func (b *Base) SetID(id string) { b.ID = id }

// Collection names shared by every storage backend.
const (
	CollectionUsers                  = "users"
	CollectionSignupRequests         = "signupRequests"
	CollectionWorkers                = "workers"
	CollectionWorkerApprovalRequests = "workerApprovalRequests"
	CollectionFeederPoints           = "feederPoints"
	CollectionFeederPointAssignments = "feederPointAssignments"
	CollectionVehicles               = "vehicles"
	CollectionDriverAssignments      = "driverAssignments"
	CollectionDailyAssignments       = "dailyAssignments"
	CollectionTripRecords            = "tripRecords"
	CollectionWorkerAttendance       = "workerAttendance"
	CollectionAuthAccounts           = "authAccounts"
)

var registry = map[string]func() Document{
	CollectionUsers:                  func() Document { return &User{} },
	CollectionSignupRequests:         func() Document { return &SignupRequest{} },
	CollectionWorkers:                func() Document { return &Worker{} },
	CollectionWorkerApprovalRequests: func() Document { return &WorkerApprovalRequest{} },
	CollectionFeederPoints:           func() Document { return &FeederPoint{} },
	CollectionFeederPointAssignments: func() Document { return &FeederPointAssignment{} },
	CollectionVehicles:               func() Document { return &Vehicle{} },
	CollectionDriverAssignments:      func() Document { return &DriverAssignment{} },
	CollectionDailyAssignments:       func() Document { return &DailyAssignment{} },
	CollectionTripRecords:            func() Document { return &TripRecord{} },
	CollectionWorkerAttendance:       func() Document { return &WorkerAttendance{} },
	CollectionAuthAccounts:           func() Document { return &AuthAccount{} },
}

// NewDocument returns an empty document for the given collection.
func NewDocument(collection string) (Document, error) {
	factory, ok := registry[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
	return factory(), nil
}

// All returns one empty value per collection, used for schema migration.
func All() []interface{} {
	out := make([]interface{}, 0, len(registry))
	for _, factory := range registry {
		out = append(out, factory())
	}
	return out
}

// DateLayout is the calendar-day format used by assignment and trip records.
const DateLayout = "2006-01-02"

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
