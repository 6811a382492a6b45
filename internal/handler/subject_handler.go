package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-profile-api/internal/models"
	appErrors "github.com/noah-isme/student-profile-api/pkg/errors"
	"github.com/noah-isme/student-profile-api/pkg/response"
)

type subjectService interface {
	Create(ctx context.Context, userID string, req models.CreateSubjectRequest) (*models.SubjectRecord, error)
	List(ctx context.Context, userID string) ([]models.SubjectRecord, error)
	Watch(ctx context.Context, userID string, fn func(models.SubjectSnapshot) error) error
}

// SubjectHandler exposes the subject form and the live subject list.
type SubjectHandler struct {
	service   subjectService
	heartbeat time.Duration
}

// NewSubjectHandler builds a new handler. heartbeat is the interval between SSE keep-alive comments.
func NewSubjectHandler(service subjectService, heartbeat time.Duration) *SubjectHandler {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &SubjectHandler{service: service, heartbeat: heartbeat}
}

// List godoc
// @Summary List subjects
// @Tags Subjects
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	records, err := h.service.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, map[string]interface{}{"total": len(records)})
}

// Create godoc
// @Summary Add a subject
// @Description Status must be completed or in_progress. Grade points are derived from the grade.
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body models.CreateSubjectRequest true "Subject form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Security BearerAuth
// @Router /subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	h.create(c, "")
}

// CreateDone godoc
// @Summary Add a completed subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body models.CreateSubjectRequest true "Subject form (status ignored)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /subjects/done [post]
func (h *SubjectHandler) CreateDone(c *gin.Context) {
	h.create(c, models.SubjectCompleted)
}

// CreateInProgress godoc
// @Summary Add an in-progress subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body models.CreateSubjectRequest true "Subject form (status ignored)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /subjects/in-progress [post]
func (h *SubjectHandler) CreateInProgress(c *gin.Context) {
	h.create(c, models.SubjectInProgress)
}

func (h *SubjectHandler) create(c *gin.Context, status models.SubjectStatus) {
	var req models.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid subject payload"))
		return
	}
	if status != "" {
		req.Status = status
	}

	record, err := h.service.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Stream godoc
// @Summary Live subject list
// @Description Server-Sent Events. Emits a "snapshot" event with all records and the GPA summary now and after every change.
// @Tags Subjects
// @Produce text/event-stream
// @Success 200 {object} models.SubjectSnapshot
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /subjects/stream [get]
func (h *SubjectHandler) Stream(c *gin.Context) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	snapshots := make(chan models.SubjectSnapshot, 1)
	done := make(chan error, 1)
	go func() {
		done <- h.service.Watch(ctx, currentUserID(c), func(s models.SubjectSnapshot) error {
			select {
			case snapshots <- s:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	// Errors before the first snapshot are reported as a regular JSON response.
	var first models.SubjectSnapshot
	select {
	case first = <-snapshots:
	case err := <-done:
		if err != nil {
			response.Error(c, err)
		}
		return
	}

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	send := func(s models.SubjectSnapshot) {
		c.SSEvent("snapshot", s)
		c.Writer.Flush()
	}
	send(first)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case s := <-snapshots:
			send(s)
		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n") //nolint:errcheck
			c.Writer.Flush()
		case err := <-done:
			for pending := true; pending; {
				select {
				case s := <-snapshots:
					send(s)
				default:
					pending = false
				}
			}
			if err != nil {
				c.SSEvent("error", appErrors.FromError(err))
				c.Writer.Flush()
			}
			return
		}
	}
}
