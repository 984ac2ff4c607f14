package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"jobboard/internal/apperr"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
)

func fail(c *gin.Context, err error) {
	c.JSON(apperr.StatusOf(err), gin.H{"error": apperr.MessageOf(err)})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// currentUser ends the request with 401 when the auth middleware did not
// run; routes behind Auth never hit that path.
func currentUser(c *gin.Context) (models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return user, ok
}

func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

type userResponse struct {
	ID           string             `json:"id"`
	FirstName    string             `json:"firstName"`
	LastName     string             `json:"lastName"`
	Email        string             `json:"email"`
	Gender       string             `json:"gender"`
	DateOfBirth  time.Time          `json:"dateOfBirth"`
	MobileNumber string             `json:"mobileNumber"`
	Role         string             `json:"role"`
	IsConfirmed  bool               `json:"isConfirmed"`
	ProfilePic   *models.Attachment `json:"profilePic,omitempty"`
	CoverPic     *models.Attachment `json:"coverPic,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
}

func userView(u models.User) userResponse {
	return userResponse{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Gender:       string(u.Gender),
		DateOfBirth:  u.DateOfBirth,
		MobileNumber: u.MobileNumber,
		Role:         string(u.Role),
		IsConfirmed:  u.IsConfirmed,
		ProfilePic:   u.ProfilePic,
		CoverPic:     u.CoverPic,
		CreatedAt:    u.CreatedAt,
	}
}

type companyResponse struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	Industry          string             `json:"industry"`
	Address           string             `json:"address"`
	NumberOfEmployees string             `json:"numberOfEmployees"`
	Email             string             `json:"email"`
	CreatedBy         string             `json:"createdBy"`
	HRs               []string           `json:"hrs"`
	Logo              *models.Attachment `json:"logo,omitempty"`
	CoverPic          *models.Attachment `json:"coverPic,omitempty"`
	ApprovedByAdmin   bool               `json:"approvedByAdmin"`
	CreatedAt         time.Time          `json:"createdAt"`
}

func companyView(c models.Company) companyResponse {
	return companyResponse{
		ID:                c.ID,
		Name:              c.Name,
		Description:       c.Description,
		Industry:          c.Industry,
		Address:           c.Address,
		NumberOfEmployees: c.NumberOfEmployees,
		Email:             c.Email,
		CreatedBy:         c.CreatedBy,
		HRs:               c.HRs,
		Logo:              c.Logo,
		CoverPic:          c.CoverPic,
		ApprovedByAdmin:   c.ApprovedByAdmin,
		CreatedAt:         c.CreatedAt,
	}
}

type jobResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Location        string    `json:"location"`
	WorkingTime     string    `json:"workingTime"`
	SeniorityLevel  string    `json:"seniorityLevel"`
	Description     string    `json:"description"`
	TechnicalSkills []string  `json:"technicalSkills"`
	SoftSkills      []string  `json:"softSkills"`
	AddedBy         string    `json:"addedBy"`
	Closed          bool      `json:"closed"`
	CompanyID       string    `json:"companyId"`
	CreatedAt       time.Time `json:"createdAt"`
}

func jobView(j models.Job) jobResponse {
	return jobResponse{
		ID:              j.ID,
		Title:           j.Title,
		Location:        string(j.Location),
		WorkingTime:     string(j.WorkingTime),
		SeniorityLevel:  string(j.SeniorityLevel),
		Description:     j.Description,
		TechnicalSkills: j.TechnicalSkills,
		SoftSkills:      j.SoftSkills,
		AddedBy:         j.AddedBy,
		Closed:          j.Closed,
		CompanyID:       j.CompanyID,
		CreatedAt:       j.CreatedAt,
	}
}

func jobViews(list []models.Job) []jobResponse {
	out := make([]jobResponse, 0, len(list))
	for _, j := range list {
		out = append(out, jobView(j))
	}
	return out
}

type applicationResponse struct {
	ID             string             `json:"id"`
	JobID          string             `json:"jobId"`
	UserID         string             `json:"userId"`
	UserCV         *models.Attachment `json:"userCV,omitempty"`
	Status         string             `json:"status"`
	ApplicantName  string             `json:"applicantName,omitempty"`
	ApplicantEmail string             `json:"applicantEmail,omitempty"`
	JobTitle       string             `json:"jobTitle,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
}

func applicationView(a models.Application) applicationResponse {
	return applicationResponse{
		ID:             a.ID,
		JobID:          a.JobID,
		UserID:         a.UserID,
		UserCV:         a.UserCV,
		Status:         string(a.Status),
		ApplicantName:  a.ApplicantName,
		ApplicantEmail: a.ApplicantEmail,
		JobTitle:       a.JobTitle,
		CreatedAt:      a.CreatedAt,
	}
}
