package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobboard/internal/apperr"
	"jobboard/internal/repository"
)

func (h HandlerSet) BanUser(c *gin.Context) {
	now := time.Now()
	user, err := h.userRepo.SetBanned(c.Request.Context(), c.Param("userId"), &now)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			fail(c, apperr.NotFound("user not found"))
			return
		}
		fail(c, err)
		return
	}
	h.log.Info().Str("user_id", user.ID).Msg("user banned")
	c.JSON(http.StatusOK, gin.H{"user": userView(user)})
}

func (h HandlerSet) UnbanUser(c *gin.Context) {
	user, err := h.userRepo.SetBanned(c.Request.Context(), c.Param("userId"), nil)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			fail(c, apperr.NotFound("user not found"))
			return
		}
		fail(c, err)
		return
	}
	h.log.Info().Str("user_id", user.ID).Msg("user unbanned")
	c.JSON(http.StatusOK, gin.H{"user": userView(user)})
}

func (h HandlerSet) BanCompany(c *gin.Context) {
	now := time.Now()
	company, err := h.companyRepo.SetBanned(c.Request.Context(), c.Param("companyId"), &now)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			fail(c, apperr.NotFound("company not found"))
			return
		}
		fail(c, err)
		return
	}
	h.log.Info().Str("company_id", company.ID).Msg("company banned")
	c.JSON(http.StatusOK, gin.H{"company": companyView(company)})
}

func (h HandlerSet) UnbanCompany(c *gin.Context) {
	company, err := h.companyRepo.SetBanned(c.Request.Context(), c.Param("companyId"), nil)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			fail(c, apperr.NotFound("company not found"))
			return
		}
		fail(c, err)
		return
	}
	h.log.Info().Str("company_id", company.ID).Msg("company unbanned")
	c.JSON(http.StatusOK, gin.H{"company": companyView(company)})
}

func (h HandlerSet) ApproveCompany(c *gin.Context) {
	company, err := h.companyRepo.SetApproved(c.Request.Context(), c.Param("companyId"))
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			fail(c, apperr.NotFound("company not found"))
			return
		}
		fail(c, err)
		return
	}
	h.log.Info().Str("company_id", company.ID).Msg("company approved")
	c.JSON(http.StatusOK, gin.H{"company": companyView(company)})
}
