// internal/models/vehicle.go
package models

import "time"

type VehicleStatus string

const (
	VehicleActive      VehicleStatus = "active"
	VehicleAssigned    VehicleStatus = "assigned"
	VehicleMaintenance VehicleStatus = "maintenance"
	VehicleInactive    VehicleStatus = "inactive"
)

func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleActive, VehicleAssigned, VehicleMaintenance, VehicleInactive:
		return true
	}
	return false
}

type Vehicle struct {
	Base
	VehicleNumber string        `json:"vehicleNumber" firestore:"vehicleNumber" gorm:"index"`
	Type          string        `json:"type" firestore:"type"`
	Capacity      float64       `json:"capacity" firestore:"capacity"`
	ContractorID  string        `json:"contractorId" firestore:"contractorId" gorm:"index"`
	DriverID      string        `json:"driverId,omitempty" firestore:"driverId,omitempty"`
	Status        VehicleStatus `json:"status" firestore:"status" gorm:"type:varchar(16)"`
	CreatedAt     time.Time     `json:"createdAt" firestore:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt" firestore:"updatedAt"`
}

// DriverAssignment records which vehicle and feeder points a contractor gave
// to a driver.
type DriverAssignment struct {
	Base
	ContractorID   string           `json:"contractorId" firestore:"contractorId" gorm:"index"`
	DriverID       string           `json:"driverId" firestore:"driverId" gorm:"index"`
	VehicleID      string           `json:"vehicleId" firestore:"vehicleId"`
	FeederPointIDs []string         `json:"feederPointIds" firestore:"feederPointIds" gorm:"serializer:json;type:text"`
	AssignedAt     time.Time        `json:"assignedAt" firestore:"assignedAt"`
	Status         AssignmentStatus `json:"status" firestore:"status" gorm:"type:varchar(16)"`
}
