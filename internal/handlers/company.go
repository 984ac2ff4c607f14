package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobboard/internal/models"
	"jobboard/internal/service"
)

type companyRequest struct {
	Name              string   `json:"name" binding:"required"`
	Description       string   `json:"description"`
	Industry          string   `json:"industry"`
	Address           string   `json:"address"`
	NumberOfEmployees string   `json:"numberOfEmployees"`
	Email             string   `json:"email" binding:"required,email"`
	HRs               []string `json:"hrs"`
}

func (req companyRequest) toInput() service.CompanyInput {
	return service.CompanyInput{
		Name:              req.Name,
		Description:       req.Description,
		Industry:          req.Industry,
		Address:           req.Address,
		NumberOfEmployees: req.NumberOfEmployees,
		Email:             req.Email,
		HRs:               req.HRs,
	}
}

func (h HandlerSet) CreateCompany(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	company, err := h.companies.Create(c.Request.Context(), user, req.toInput())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"company": companyView(company)})
}

func (h HandlerSet) UpdateCompany(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	company, err := h.companies.Update(c.Request.Context(), user, c.Param("companyId"), req.toInput())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": companyView(company)})
}

func (h HandlerSet) DeleteCompany(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.companies.SoftDelete(c.Request.Context(), user, c.Param("companyId")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) GetCompany(c *gin.Context) {
	result, err := h.companies.GetWithJobs(c.Request.Context(), c.Param("companyId"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"company": companyView(result.Company),
		"jobs":    jobViews(result.Jobs),
	})
}

func (h HandlerSet) SearchCompanies(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name query is required"})
		return
	}

	companies, err := h.companies.Search(c.Request.Context(), name)
	if err != nil {
		fail(c, err)
		return
	}

	views := make([]companyResponse, 0, len(companies))
	for _, company := range companies {
		views = append(views, companyView(company))
	}
	c.JSON(http.StatusOK, gin.H{"companies": views})
}

func (h HandlerSet) KickHR(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.companies.KickHR(c.Request.Context(), user, c.Param("companyId"), c.Param("userId")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "hr removed"})
}

func (h HandlerSet) UploadCompanyLogo(c *gin.Context) {
	h.uploadCompanyAsset(c, h.companies.UploadLogo)
}

func (h HandlerSet) UploadCompanyCoverPic(c *gin.Context) {
	h.uploadCompanyAsset(c, h.companies.UploadCoverPic)
}

func (h HandlerSet) DeleteCompanyLogo(c *gin.Context) {
	h.deleteCompanyAsset(c, h.companies.DeleteLogo)
}

func (h HandlerSet) DeleteCompanyCoverPic(c *gin.Context) {
	h.deleteCompanyAsset(c, h.companies.DeleteCoverPic)
}

func (h HandlerSet) uploadCompanyAsset(
	c *gin.Context,
	upload func(ctx context.Context, actor models.User, companyID string, r io.Reader, size int64, contentType string) (models.Company, error),
) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	file, header, ok := formImage(c)
	if !ok {
		return
	}
	defer file.Close()

	company, err := upload(c.Request.Context(), user, c.Param("companyId"), file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": companyView(company)})
}

func (h HandlerSet) deleteCompanyAsset(
	c *gin.Context,
	remove func(ctx context.Context, actor models.User, companyID string) error,
) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := remove(c.Request.Context(), user, c.Param("companyId")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportApplications streams the day's applications as an Excel workbook.
func (h HandlerSet) ExportApplications(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	day, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query must be YYYY-MM-DD"})
		return
	}

	content, filename, err := h.companies.ExportApplicationsExcel(c.Request.Context(), user, c.Param("companyId"), day)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}
