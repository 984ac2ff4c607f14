package models

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type Provider string

const (
	ProviderSystem Provider = "system"
	ProviderGoogle Provider = "google"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

type OTPKind string

const (
	OTPKindConfirmEmail   OTPKind = "confirmEmail"
	OTPKindForgetPassword OTPKind = "forgetPassword"
)

type User struct {
	ID                   string
	FirstName            string
	LastName             string
	Email                string
	PasswordHash         []byte
	Provider             Provider
	Gender               Gender
	DateOfBirth          time.Time
	MobileNumber         string
	Role                 UserRole
	IsConfirmed          bool
	DeletedAt            *time.Time
	BannedAt             *time.Time
	ChangeCredentialTime *time.Time
	ProfilePic           *Attachment
	CoverPic             *Attachment
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Username is the display name shown to chat peers and applicants.
func (u User) Username() string {
	return u.FirstName + " " + u.LastName
}

func (u User) Active() bool {
	return u.DeletedAt == nil && u.BannedAt == nil
}

type OTP struct {
	ID        string
	UserID    string
	CodeHash  []byte
	Kind      OTPKind
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Attachment is a stored object reference: the durable public URL plus the
// object key needed to delete or replace it later.
type Attachment struct {
	URL string `json:"url"`
	Key string `json:"key"`
}
