package types

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("Blog post")
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus())
	assert.Equal(t, CodeNotFound, err.Code)
	assert.Equal(t, "Blog post not found", err.Message)

	assert.Equal(t, "Resource not found", NotFound("").Message)
}

func TestInternalWrapsCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := Internal(cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestValidationCarriesFieldErrors(t *testing.T) {
	err := Validation("Validation failed", []FieldError{{Field: "email", Message: "must be a valid email address"}})

	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, CodeValidation, err.Code)
	fields, ok := err.Details["errors"].([]FieldError)
	assert.True(t, ok)
	assert.Len(t, fields, 1)
}

func TestErrorsAsFindsWrappedAPIError(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), Conflict("slug taken"))

	var apiErr *APIError
	assert.True(t, errors.As(wrapped, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, CodeDuplicateEntry, apiErr.Code)
}
