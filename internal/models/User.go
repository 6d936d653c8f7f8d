package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleVehicleOwner Role = "vehicle_owner"
	RoleDriver       Role = "driver"
	RoleSwachhAdmin  Role = "swachh_admin"
	RoleAllAdmin     Role = "all_admin"
	RoleContractor   Role = "contractor"
	RoleSwachhHR     Role = "swachh_hr"
	RoleAdmin        Role = "admin"
)

type roleInfo struct {
	description string
	color       string
}

var roles = map[Role]roleInfo{
	RoleVehicleOwner: {"Vehicle owner managing vehicles, drivers and feeder point routes", "#2196F3"},
	RoleContractor:   {"Contractor managing vehicles, drivers and feeder point routes", "#3F51B5"},
	RoleDriver:       {"Driver collecting waste from assigned feeder points", "#4CAF50"},
	RoleSwachhAdmin:  {"Swachh administrator overseeing sanitation operations", "#FF9800"},
	RoleSwachhHR:     {"Swachh HR managing sanitation worker records", "#9C27B0"},
	RoleAllAdmin:     {"Administrator with access to every dashboard", "#F44336"},
	RoleAdmin:        {"System administrator", "#F44336"},
}

// ParseRole lower-cases and trims the input and checks it is a known role.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := roles[role]
	return role, ok
}

func (r Role) Description() string { return roles[r].description }

func (r Role) Color() string { return roles[r].color }

// IsAdmin reports whether the role may review signups and worker requests.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleAllAdmin || r == RoleSwachhAdmin
}

// IsContractor reports whether the role owns vehicles and plans routes.
// Vehicle owners and contractors are the same actor.
func (r Role) IsContractor() bool {
	return r == RoleContractor || r == RoleVehicleOwner
}

// User is created when a signup request is approved. Users are never
// hard-deleted; deactivation clears IsActive.
type User struct {
	Base
	Email                  string    `json:"email" firestore:"email" gorm:"index"`
	Role                   Role      `json:"role" firestore:"role" gorm:"index;type:varchar(32)"`
	DisplayName            string    `json:"displayName" firestore:"displayName"`
	Phone                  string    `json:"phone,omitempty" firestore:"phone,omitempty"`
	Organization           string    `json:"organization,omitempty" firestore:"organization,omitempty"`
	Department             string    `json:"department,omitempty" firestore:"department,omitempty"`
	Description            string    `json:"description" firestore:"description"`
	Color                  string    `json:"color" firestore:"color"`
	IsActive               bool      `json:"isActive" firestore:"isActive"`
	ContractorID           string    `json:"contractorId,omitempty" firestore:"contractorId,omitempty" gorm:"index"`
	AssignedVehicleID      string    `json:"assignedVehicleId,omitempty" firestore:"assignedVehicleId,omitempty"`
	AssignedFeederPointIDs []string  `json:"assignedFeederPointIds,omitempty" firestore:"assignedFeederPointIds,omitempty" gorm:"serializer:json;type:text"`
	ExpoToken              string    `json:"expoToken,omitempty" firestore:"expoToken,omitempty"`
	CreatedAt              time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// AuthAccount is the credential record kept by the local identity provider.
type AuthAccount struct {
	Base
	Email        string    `json:"email" firestore:"email" gorm:"uniqueIndex"`
	PasswordHash string    `json:"passwordHash" firestore:"passwordHash"`
	DisplayName  string    `json:"displayName" firestore:"displayName"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
}
