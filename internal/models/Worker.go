package models

import "time"

// WorkerData is the editable part of a worker record. It is also the payload
// of add/edit approval requests.
//
// Older documents carry the name as fullName; Normalize moves it to Name.
type WorkerData struct {
	Name           string `json:"name" firestore:"name"`
	LegacyFullName string `json:"fullName,omitempty" firestore:"fullName,omitempty" gorm:"-"`
	EmployeeID     string `json:"employeeId,omitempty" firestore:"employeeId,omitempty" gorm:"index"`
	Designation    string `json:"designation,omitempty" firestore:"designation,omitempty"`
	Department     string `json:"department,omitempty" firestore:"department,omitempty"`
	Phone          string `json:"phone" firestore:"phone"`
	Address        string `json:"address" firestore:"address"`
	Zone           string `json:"zone,omitempty" firestore:"zone,omitempty"`
	Ward           string `json:"ward,omitempty" firestore:"ward,omitempty"`
	Kothi          string `json:"kothi,omitempty" firestore:"kothi,omitempty"`
	FeederPoint    string `json:"feederPoint,omitempty" firestore:"feederPoint,omitempty" gorm:"index"`
	ShiftTiming    string `json:"shiftTiming,omitempty" firestore:"shiftTiming,omitempty"`
	AadhaarNumber  string `json:"aadhaarNumber,omitempty" firestore:"aadhaarNumber,omitempty"`
	SupervisorID   string `json:"supervisorId,omitempty" firestore:"supervisorId,omitempty"`
}

// Normalize applies the fullName -> name migration. Name wins when both are set.
func (d *WorkerData) Normalize() {
	if d.Name == "" && d.LegacyFullName != "" {
		d.Name = d.LegacyFullName
	}
	d.LegacyFullName = ""
}

// Fields returns the data as a document field map for partial updates.
func (d WorkerData) Fields() map[string]interface{} {
	return map[string]interface{}{
		"name":          d.Name,
		"employeeId":    d.EmployeeID,
		"designation":   d.Designation,
		"department":    d.Department,
		"phone":         d.Phone,
		"address":       d.Address,
		"zone":          d.Zone,
		"ward":          d.Ward,
		"kothi":         d.Kothi,
		"feederPoint":   d.FeederPoint,
		"shiftTiming":   d.ShiftTiming,
		"aadhaarNumber": d.AadhaarNumber,
		"supervisorId":  d.SupervisorID,
	}
}

type Worker struct {
	Base
	WorkerData `gorm:"embedded"`
	IsActive   bool      `json:"isActive" firestore:"isActive"`
	CreatedBy  string    `json:"createdBy" firestore:"createdBy"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" firestore:"updatedAt"`
}

type WorkerRequestType string

const (
	WorkerAdd    WorkerRequestType = "worker_add"
	WorkerEdit   WorkerRequestType = "worker_edit"
	WorkerDelete WorkerRequestType = "worker_delete"
)

// WorkerApprovalRequest defers a worker mutation until an admin approves it.
// Add carries WorkerData, edit carries WorkerData and OriginalData, delete
// carries OriginalData only.
type WorkerApprovalRequest struct {
	Base
	Type         WorkerRequestType `json:"type" firestore:"type" gorm:"type:varchar(16)"`
	WorkerID     string            `json:"workerId,omitempty" firestore:"workerId,omitempty" gorm:"index"`
	WorkerData   *WorkerData       `json:"workerData,omitempty" firestore:"workerData,omitempty" gorm:"serializer:json;type:text"`
	OriginalData *WorkerData       `json:"originalData,omitempty" firestore:"originalData,omitempty" gorm:"serializer:json;type:text"`
	Status       RequestStatus     `json:"status" firestore:"status" gorm:"index;type:varchar(16)"`
	RequestedBy  string            `json:"requestedBy" firestore:"requestedBy" gorm:"index"`
	RequestedAt  time.Time         `json:"requestedAt" firestore:"requestedAt"`
	ApprovedBy   string            `json:"approvedBy,omitempty" firestore:"approvedBy,omitempty"`
	ApprovedAt   *time.Time        `json:"approvedAt,omitempty" firestore:"approvedAt,omitempty"`
	RejectedBy   string            `json:"rejectedBy,omitempty" firestore:"rejectedBy,omitempty"`
	RejectedAt   *time.Time        `json:"rejectedAt,omitempty" firestore:"rejectedAt,omitempty"`
	Reason       string            `json:"reason,omitempty" firestore:"reason,omitempty"`
}
