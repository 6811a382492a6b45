package errors

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError names one rejected input and the rule it broke.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// Validation turns a validator failure into a VALIDATION_ERROR listing every
// rejected field. Non-validator errors are wrapped without fields. A body cut off by
// http.MaxBytesReader becomes PAYLOAD_TOO_LARGE.
func Validation(err error, message string) *Error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return Wrap(err, ErrPayloadTooLarge.Code, ErrPayloadTooLarge.Status, ErrPayloadTooLarge.Message)
	}
	if message == "" {
		message = ErrValidation.Message
	}
	appErr := Wrap(err, ErrValidation.Code, ErrValidation.Status, message)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		appErr.Fields = make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			appErr.Fields = append(appErr.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		}
	}
	return appErr
}

// UseJSONNames makes v report fields by their json tag, so FieldError names
// match the request body the client sent.
func UseJSONNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return field.Name
		default:
			return name
		}
	})
}
