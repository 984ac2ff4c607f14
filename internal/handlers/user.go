package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobboard/internal/models"
	"jobboard/internal/service"
)

func (h HandlerSet) GetAccount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	account, err := h.users.GetAccount(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        userView(account.User),
		"displayRole": account.DisplayRole,
	})
}

func (h HandlerSet) GetProfile(c *gin.Context) {
	user, err := h.users.GetProfile(c.Request.Context(), c.Param("userId"))
	if err != nil {
		fail(c, err)
		return
	}

	view := userView(user)
	view.Email = ""
	view.MobileNumber = ""
	c.JSON(http.StatusOK, gin.H{"user": view})
}

type updateAccountRequest struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	Gender       string `json:"gender"`
	DateOfBirth  string `json:"dateOfBirth" binding:"required"`
	MobileNumber string `json:"mobileNumber"`
}

func (h HandlerSet) UpdateAccount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dateOfBirth must be YYYY-MM-DD"})
		return
	}

	updated, err := h.users.UpdateAccount(c.Request.Context(), user.ID, service.UpdateAccountInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Gender:       models.Gender(req.Gender),
		DateOfBirth:  dob,
		MobileNumber: req.MobileNumber,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userView(updated)})
}

func (h HandlerSet) DeleteAccount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.users.SoftDeleteAccount(c.Request.Context(), user.ID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) UploadProfilePic(c *gin.Context) {
	h.uploadUserPic(c, h.users.UploadProfilePic)
}

func (h HandlerSet) UploadCoverPic(c *gin.Context) {
	h.uploadUserPic(c, h.users.UploadCoverPic)
}

func (h HandlerSet) DeleteProfilePic(c *gin.Context) {
	h.deleteUserPic(c, h.users.DeleteProfilePic)
}

func (h HandlerSet) DeleteCoverPic(c *gin.Context) {
	h.deleteUserPic(c, h.users.DeleteCoverPic)
}

// formImage opens the "image" multipart field.
func formImage(c *gin.Context) (multipart.File, *multipart.FileHeader, bool) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return nil, nil, false
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image file"})
		return nil, nil, false
	}
	return file, header, true
}

func (h HandlerSet) uploadUserPic(
	c *gin.Context,
	upload func(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (models.User, error),
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

	updated, err := upload(c.Request.Context(), user.ID, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userView(updated)})
}

func (h HandlerSet) deleteUserPic(
	c *gin.Context,
	remove func(ctx context.Context, userID string) error,
) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := remove(c.Request.Context(), user.ID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
