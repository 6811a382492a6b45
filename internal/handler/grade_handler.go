package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-profile-api/internal/grading"
	"github.com/noah-isme/student-profile-api/internal/middleware"
	"github.com/noah-isme/student-profile-api/internal/models"
	"github.com/noah-isme/student-profile-api/pkg/response"
)

type gradeSummaryService interface {
	Summary(ctx context.Context, userID string) (*models.GradeSummary, bool, error)
}

type transcriptService interface {
	Export(ctx context.Context, userID, format string) (*models.TranscriptFile, error)
	Share(ctx context.Context, userID, format string) (*models.TranscriptShare, error)
	Download(ctx context.Context, token string) (*models.TranscriptFile, error)
}

// GradeHandler exposes the GPA summary, the grade scale and transcripts.
type GradeHandler struct {
	summary      gradeSummaryService
	transcripts  transcriptService
	downloadPath string
}

// NewGradeHandler builds a new handler. downloadPath is the public route serving shared transcripts.
func NewGradeHandler(summary gradeSummaryService, transcripts transcriptService, downloadPath string) *GradeHandler {
	return &GradeHandler{summary: summary, transcripts: transcripts, downloadPath: downloadPath}
}

// Summary godoc
// @Summary GPA summary
// @Description Credit-weighted GPA over completed subjects, with completed and total counts
// @Tags Grades
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/summary [get]
func (h *GradeHandler) Summary(c *gin.Context) {
	summary, cacheHit, err := h.summary.Summary(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, middleware.ExtractMeta(c))
}

// Scale godoc
// @Summary Grade scale
// @Description Letter grades and their grade points, in descending order
// @Tags Grades
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grades/scale [get]
func (h *GradeHandler) Scale(c *gin.Context) {
	response.JSON(c, http.StatusOK, grading.Scale())
}

// Transcript godoc
// @Summary Download transcript
// @Tags Grades
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/transcript [get]
func (h *GradeHandler) Transcript(c *gin.Context) {
	file, err := h.transcripts.Export(c.Request.Context(), currentUserID(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	writeFile(c, file)
}

// ShareTranscript godoc
// @Summary Share transcript
// @Description Store the transcript and return a signed, expiring download link
// @Tags Grades
// @Produce json
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/transcript/share [post]
func (h *GradeHandler) ShareTranscript(c *gin.Context) {
	share, err := h.transcripts.Share(c.Request.Context(), currentUserID(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	share.URL = h.downloadPath + "?token=" + url.QueryEscape(share.Token)
	response.Created(c, share)
}

// DownloadTranscript godoc
// @Summary Download a shared transcript
// @Tags Grades
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /transcripts/download [get]
func (h *GradeHandler) DownloadTranscript(c *gin.Context) {
	file, err := h.transcripts.Download(c.Request.Context(), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	writeFile(c, file)
}

func writeFile(c *gin.Context, file *models.TranscriptFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
