package models

import "time"

type ApplicationStatus string

const (
	ApplicationStatusPending         ApplicationStatus = "pending"
	ApplicationStatusViewed          ApplicationStatus = "viewed"
	ApplicationStatusInConsideration ApplicationStatus = "in consideration"
	ApplicationStatusAccepted        ApplicationStatus = "accepted"
	ApplicationStatusRejected        ApplicationStatus = "rejected"
)

func ValidApplicationStatus(s ApplicationStatus) bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusViewed,
		ApplicationStatusInConsideration, ApplicationStatusAccepted,
		ApplicationStatusRejected:
		return true
	}
	return false
}

type Application struct {
	ID        string
	JobID     string
	UserID    string
	UserCV    *Attachment
	Status    ApplicationStatus
	CreatedAt time.Time
	UpdatedAt time.Time

	// Populated for listings and exports.
	ApplicantName  string
	ApplicantEmail string
	JobTitle       string
}
