package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestCloneKeepsIdentity(t *testing.T) {
	clone := Clone(ErrWeakPassword, "too short")
	assert.Equal(t, "too short", clone.Message)
	assert.True(t, errors.Is(clone, ErrWeakPassword))
	assert.False(t, errors.Is(clone, ErrInvalidEmail))
	assert.Equal(t, "password must be at least 6 characters", ErrWeakPassword.Message)
}

func TestWrapUnwraps(t *testing.T) {
	root := errors.New("connection refused")
	wrapped := Wrap(root, ErrStoreUnavailable.Code, ErrStoreUnavailable.Status, "failed to save subject")
	assert.True(t, errors.Is(wrapped, root))
	assert.Contains(t, wrapped.Error(), "connection refused")
}

type signupForm struct {
	FirstName string `json:"firstName" validate:"required"`
	Credits   int    `json:"credits" validate:"oneof=1 2 3 4"`
}

func TestValidationListsFieldsByJSONName(t *testing.T) {
	v := validator.New()
	UseJSONNames(v)

	appErr := Validation(v.Struct(signupForm{Credits: 7}), "please fill in all fields")

	assert.True(t, errors.Is(appErr, ErrValidation))
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "please fill in all fields", appErr.Message)
	assert.Equal(t, []FieldError{
		{Field: "firstName", Rule: "required"},
		{Field: "credits", Rule: "oneof", Param: "1 2 3 4"},
	}, appErr.Fields)
}

func TestValidationWithoutValidatorErrors(t *testing.T) {
	appErr := Validation(errors.New("unexpected EOF"), "")
	assert.Equal(t, ErrValidation.Message, appErr.Message)
	assert.Empty(t, appErr.Fields)
}

func TestValidationReportsOversizeBody(t *testing.T) {
	err := fmt.Errorf("decode: %w", &http.MaxBytesError{Limit: 10})
	appErr := Validation(err, "invalid payload")
	assert.Equal(t, ErrPayloadTooLarge.Code, appErr.Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, appErr.Status)
}
