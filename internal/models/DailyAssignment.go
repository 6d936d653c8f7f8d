package models

import "time"

type DailyStatus string

const (
	DailyActive    DailyStatus = "active"
	DailyCompleted DailyStatus = "completed"
	DailyCancelled DailyStatus = "cancelled"
)

// DailyAssignment is a driver's route plan for one day. New documents use
// DailyAssignmentID(driverID, date) as their id.
type DailyAssignment struct {
	Base
	DriverID       string      `json:"driverId" firestore:"driverId" gorm:"index"`
	ContractorID   string      `json:"contractorId" firestore:"contractorId" gorm:"index"`
	AssignmentDate string      `json:"assignmentDate" firestore:"assignmentDate" gorm:"index;type:varchar(10)"`
	FeederPointIDs []string    `json:"feederPointIds" firestore:"feederPointIds" gorm:"serializer:json;type:text"`
	VehicleID      string      `json:"vehicleId,omitempty" firestore:"vehicleId,omitempty"`
	Status         DailyStatus `json:"status" firestore:"status" gorm:"type:varchar(16)"`
	CreatedAt      time.Time   `json:"createdAt" firestore:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt" firestore:"updatedAt"`
}
