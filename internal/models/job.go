package models

import "time"

type JobLocation string

const (
	JobLocationOnsite   JobLocation = "onsite"
	JobLocationRemotely JobLocation = "remotely"
	JobLocationHybrid   JobLocation = "hybrid"
)

type WorkingTime string

const (
	WorkingTimePartTime WorkingTime = "part-time"
	WorkingTimeFullTime WorkingTime = "full-time"
)

type SeniorityLevel string

const (
	SeniorityFresh    SeniorityLevel = "fresh"
	SeniorityJunior   SeniorityLevel = "Junior"
	SeniorityMidLevel SeniorityLevel = "Mid-Level"
	SenioritySenior   SeniorityLevel = "Senior"
	SeniorityTeamLead SeniorityLevel = "Team-Lead"
	SeniorityCTO      SeniorityLevel = "CTO"
)

func ValidJobLocation(l JobLocation) bool {
	switch l {
	case JobLocationOnsite, JobLocationRemotely, JobLocationHybrid:
		return true
	}
	return false
}

func ValidWorkingTime(w WorkingTime) bool {
	switch w {
	case WorkingTimePartTime, WorkingTimeFullTime:
		return true
	}
	return false
}

func ValidSeniorityLevel(s SeniorityLevel) bool {
	switch s {
	case SeniorityFresh, SeniorityJunior, SeniorityMidLevel,
		SenioritySenior, SeniorityTeamLead, SeniorityCTO:
		return true
	}
	return false
}

type Job struct {
	ID              string
	Title           string
	Location        JobLocation
	WorkingTime     WorkingTime
	SeniorityLevel  SeniorityLevel
	Description     string
	TechnicalSkills []string
	SoftSkills      []string
	AddedBy         string
	UpdatedBy       *string
	Closed          bool
	CompanyID       string
	DeletedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
