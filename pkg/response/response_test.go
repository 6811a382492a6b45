package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/student-profile-api/pkg/errors"
	"github.com/noah-isme/student-profile-api/pkg/middleware/requestid"
)

func TestErrorWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Error(c, appErrors.Clone(appErrors.ErrEmailTaken, ""))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var env struct {
		Error appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "EMAIL_ALREADY_IN_USE", env.Error.Code)
	assert.Empty(t, c.Errors)
}

func TestErrorRecordsServerFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Error(c, errors.New("db down"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Len(t, c.Errors, 1)
}

func TestJSONOmitsEmptyMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	JSON(c, http.StatusOK, gin.H{"ok": true}, map[string]interface{}{})

	assert.JSONEq(t, `{"data":{"ok":true}}`, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestErrorCarriesRequestIDAndFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(requestid.Middleware())
	r.POST("/subjects", func(c *gin.Context) {
		appErr := appErrors.Clone(appErrors.ErrValidation, "please fill in all fields")
		appErr.Fields = []appErrors.FieldError{{Field: "teacher", Rule: "required"}}
		Error(c, appErr)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/subjects", nil)
	req.Header.Set("X-Request-ID", "req-42")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{
		"error": {
			"code": "VALIDATION_ERROR",
			"message": "please fill in all fields",
			"status": 400,
			"fields": [{"field": "teacher", "rule": "required"}]
		},
		"meta": {"request_id": "req-42"}
	}`, rec.Body.String())
}

func TestNoContentFlushesStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	NoContent(c)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, c.Writer.Written())
	assert.Zero(t, rec.Body.Len())
}
