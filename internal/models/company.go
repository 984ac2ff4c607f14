package models

import "time"

type Company struct {
	ID                string
	Name              string
	Description       string
	Industry          string
	Address           string
	NumberOfEmployees string
	Email             string
	CreatedBy         string
	Logo              *Attachment
	CoverPic          *Attachment
	HRs               []string
	BannedAt          *time.Time
	DeletedAt         *time.Time
	LegalAttachment   *Attachment
	ApprovedByAdmin   bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (c Company) IsOwner(userID string) bool {
	return c.CreatedBy == userID
}

func (c Company) IsHR(userID string) bool {
	for _, hr := range c.HRs {
		if hr == userID {
			return true
		}
	}
	return false
}
