package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-profile-api/internal/models"
	appErrors "github.com/noah-isme/student-profile-api/pkg/errors"
	"github.com/noah-isme/student-profile-api/pkg/response"
)

type profileService interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error)
	UpdatePhoto(ctx context.Context, userID string, payload []byte) (*models.Profile, error)
}

// ProfileHandler exposes the signed-in user's profile document.
type ProfileHandler struct {
	service       profileService
	photoMaxBytes int64
}

// NewProfileHandler builds a new handler.
func NewProfileHandler(service profileService, photoMaxBytes int64) *ProfileHandler {
	return &ProfileHandler{service: service, photoMaxBytes: photoMaxBytes}
}

// Get godoc
// @Summary Get profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.service.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// Update godoc
// @Summary Update profile
// @Description Merge status and/or photo (data URI) into the profile
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body models.ProfilePatch true "Fields to merge"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Security BearerAuth
// @Router /profile [patch]
func (h *ProfileHandler) Update(c *gin.Context) {
	var patch models.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid profile payload"))
		return
	}
	profile, err := h.service.Update(c.Request.Context(), currentUserID(c), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// UploadPhoto godoc
// @Summary Upload profile photo
// @Description Store a JPEG, PNG or WebP upload as the profile photo
// @Tags Profile
// @Accept mpfd
// @Produce json
// @Param photo formData file true "Image file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /profile/photo [post]
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, appErrors.Validation(err, "photo file is required"))
		return
	}
	if h.photoMaxBytes > 0 && fileHeader.Size > h.photoMaxBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("photo exceeds %d bytes", h.photoMaxBytes)))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Validation(err, "unable to read photo"))
		return
	}
	defer file.Close() //nolint:errcheck

	payload, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Validation(err, "unable to read photo"))
		return
	}

	profile, err := h.service.UpdatePhoto(c.Request.Context(), currentUserID(c), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}
