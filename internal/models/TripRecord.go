package models

import "time"

type TripStatus string

const (
	TripPending    TripStatus = "pending"
	TripInProgress TripStatus = "in_progress"
	TripCompleted  TripStatus = "completed"
	TripCancelled  TripStatus = "cancelled"
)

const MaxTripsPerFeederPoint = 3

type AttendanceMark struct {
	WorkerID string `json:"workerId" firestore:"workerId"`
	Present  bool   `json:"present" firestore:"present"`
}

// TripRecord is one collection run by a driver to a feeder point.
type TripRecord struct {
	Base
	DriverID         string           `json:"driverId" firestore:"driverId" gorm:"index"`
	VehicleID        string           `json:"vehicleId" firestore:"vehicleId"`
	FeederPointID    string           `json:"feederPointId" firestore:"feederPointId" gorm:"index"`
	ContractorID     string           `json:"contractorId" firestore:"contractorId" gorm:"index"`
	TripDate         string           `json:"tripDate" firestore:"tripDate" gorm:"index;type:varchar(10)"`
	TripNumber       int              `json:"tripNumber" firestore:"tripNumber"`
	StartTime        time.Time        `json:"startTime" firestore:"startTime"`
	EndTime          *time.Time       `json:"endTime,omitempty" firestore:"endTime,omitempty"`
	WasteWeight      *float64         `json:"wasteWeight,omitempty" firestore:"wasteWeight,omitempty"`
	Status           TripStatus       `json:"status" firestore:"status" gorm:"index;type:varchar(16)"`
	WorkerAttendance []AttendanceMark `json:"workerAttendance" firestore:"workerAttendance" gorm:"serializer:json;type:text"`
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// WorkerAttendance is one worker's attendance on one day, keyed by AttendanceID.
type WorkerAttendance struct {
	Base
	WorkerID      string           `json:"workerId" firestore:"workerId" gorm:"index"`
	FeederPointID string           `json:"feederPointId" firestore:"feederPointId" gorm:"index"`
	TripID        string           `json:"tripId,omitempty" firestore:"tripId,omitempty"`
	Date          string           `json:"date" firestore:"date" gorm:"index;type:varchar(10)"`
	Status        AttendanceStatus `json:"status" firestore:"status" gorm:"type:varchar(16)"`
	MarkedBy      string           `json:"markedBy" firestore:"markedBy"`
	MarkedAt      time.Time        `json:"markedAt" firestore:"markedAt"`
}
