package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/student-profile-api/pkg/errors"
	"github.com/noah-isme/student-profile-api/pkg/middleware/requestid"
	"github.com/noah-isme/student-profile-api/pkg/observability"
)

// Envelope is the body of every JSON response: data on success, error otherwise.
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error *appErrors.Error       `json:"error,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON sends data with optional meta. Profile and grade payloads are private, so nothing is cacheable.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data}
	if len(meta) > 0 && len(meta[0]) > 0 {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error writes err as an error envelope. The request ID goes into meta so a
// user can quote it. 5xx failures are attached to the context and sent to Sentry.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	reqID := requestid.Value(c)

	if appErr.Status >= http.StatusInternalServerError {
		_ = c.Error(appErr)
		observability.CaptureWithTags(appErr, map[string]string{
			"code":       appErr.Code,
			"route":      c.FullPath(),
			"request_id": reqID,
		})
	}

	envelope := Envelope{Error: appErr}
	if reqID != "" {
		envelope.Meta = map[string]interface{}{"request_id": reqID}
	}
	noStore(c)
	c.JSON(appErr.Status, envelope)
}

// NoContent sends a 204 response. The header is flushed immediately since no body follows.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
	c.Writer.WriteHeaderNow()
}
