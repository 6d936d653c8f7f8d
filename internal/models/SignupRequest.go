package models

import "time"

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// SignupRequest is submitted from the signup form and reviewed by an admin.
// PendingEmail holds the normalized email only while the request is pending so
// that relational backends can enforce one pending request per email.
type SignupRequest struct {
	Base
	Name           string        `json:"name" firestore:"name"`
	Email          string        `json:"email" firestore:"email" gorm:"index"`
	PendingEmail   *string       `json:"pendingEmail,omitempty" firestore:"pendingEmail,omitempty" gorm:"uniqueIndex"`
	Phone          string        `json:"phone" firestore:"phone"`
	RequestedRole  Role          `json:"requestedRole" firestore:"requestedRole" gorm:"type:varchar(32)"`
	Organization   string        `json:"organization" firestore:"organization"`
	Department     string        `json:"department" firestore:"department"`
	Reason         string        `json:"reason" firestore:"reason"`
	PasswordHash   string        `json:"passwordHash,omitempty" firestore:"passwordHash"`
	Status         RequestStatus `json:"status" firestore:"status" gorm:"index;type:varchar(16)"`
	SubmittedAt    time.Time     `json:"submittedAt" firestore:"submittedAt"`
	ReviewedAt     *time.Time    `json:"reviewedAt,omitempty" firestore:"reviewedAt,omitempty"`
	ReviewedBy     string        `json:"reviewedBy,omitempty" firestore:"reviewedBy,omitempty"`
	ReviewComments string        `json:"reviewComments,omitempty" firestore:"reviewComments,omitempty"`
	UserID         string        `json:"userId,omitempty" firestore:"userId,omitempty"`
}

// Redacted returns a copy safe to hand to clients.
func (r SignupRequest) Redacted() SignupRequest {
	r.PasswordHash = ""
	r.PendingEmail = nil
	return r
}
