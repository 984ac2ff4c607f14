package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/service"
)

type jobRequest struct {
	Title           string   `json:"title" binding:"required"`
	Location        string   `json:"location" binding:"required"`
	WorkingTime     string   `json:"workingTime" binding:"required"`
	SeniorityLevel  string   `json:"seniorityLevel" binding:"required"`
	Description     string   `json:"description"`
	TechnicalSkills []string `json:"technicalSkills"`
	SoftSkills      []string `json:"softSkills"`
	Closed          bool     `json:"closed"`
	CompanyID       string   `json:"companyId"`
}

func (req jobRequest) toInput() service.JobInput {
	return service.JobInput{
		Title:           req.Title,
		Location:        models.JobLocation(req.Location),
		WorkingTime:     models.WorkingTime(req.WorkingTime),
		SeniorityLevel:  models.SeniorityLevel(req.SeniorityLevel),
		Description:     req.Description,
		TechnicalSkills: req.TechnicalSkills,
		SoftSkills:      req.SoftSkills,
		Closed:          req.Closed,
	}
}

func (h HandlerSet) CreateJob(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	job, err := h.jobs.Create(c.Request.Context(), user, c.Param("companyId"), req.toInput())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"job": jobView(job)})
}

func (h HandlerSet) UpdateJob(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	job, err := h.jobs.Update(c.Request.Context(), user, c.Param("jobId"), req.CompanyID, req.toInput())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": jobView(job)})
}

func (h HandlerSet) DeleteJob(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.jobs.SoftDelete(c.Request.Context(), user, c.Param("jobId")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) GetJob(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": jobView(job)})
}

func (h HandlerSet) SearchJobs(c *gin.Context) {
	filter := repository.JobFilter{
		CompanyID:      c.Query("companyId"),
		Title:          c.Query("title"),
		Location:       models.JobLocation(c.Query("location")),
		WorkingTime:    models.WorkingTime(c.Query("workingTime")),
		SeniorityLevel: models.SeniorityLevel(c.Query("seniorityLevel")),
	}
	if skills := c.Query("technicalSkills"); skills != "" {
		filter.TechnicalSkills = strings.Split(skills, ",")
	}

	page, err := h.jobs.Search(c.Request.Context(), filter, intQuery(c, "page"), intQuery(c, "size"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobViews(page.Jobs),
		"total": page.Total,
		"page":  page.Page,
		"size":  page.Size,
	})
}

func (h HandlerSet) ListApplications(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	page, err := h.jobs.Applications(c.Request.Context(), user, c.Param("jobId"), intQuery(c, "page"), intQuery(c, "size"))
	if err != nil {
		fail(c, err)
		return
	}

	views := make([]applicationResponse, 0, len(page.Applications))
	for _, app := range page.Applications {
		views = append(views, applicationView(app))
	}
	c.JSON(http.StatusOK, gin.H{
		"applications": views,
		"total":        page.Total,
		"page":         page.Page,
		"size":         page.Size,
	})
}

// Apply accepts an optional "cv" multipart field.
func (h HandlerSet) Apply(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var (
		cv          io.Reader
		size        int64
		contentType string
	)
	if header, err := c.FormFile("cv"); err == nil {
		var file multipart.File
		file, err = header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable cv file"})
			return
		}
		defer file.Close()
		cv = file
		size = header.Size
		contentType = header.Header.Get("Content-Type")
	}

	app, err := h.jobs.Apply(c.Request.Context(), user, c.Param("jobId"), cv, size, contentType)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"application": applicationView(app)})
}

type reviewRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h HandlerSet) ReviewApplication(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	app, err := h.jobs.Review(c.Request.Context(), user, c.Param("jobId"), c.Param("applicationId"), models.ApplicationStatus(req.Status))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"application": applicationView(app)})
}
