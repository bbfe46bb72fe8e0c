package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Clone(ErrConflict, "code already exists"))

	appErr := FromError(wrapped)
	assert.Equal(t, ErrConflict.Code, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "code already exists", appErr.Message)
}

func TestFromErrorHidesUnknownErrors(t *testing.T) {
	appErr := FromError(errors.New("pq: connection refused"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, "internal server error", appErr.Message)
	assert.EqualError(t, appErr.Unwrap(), "pq: connection refused")
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrNotFound, "task not found")
	assert.Equal(t, "task not found", clone.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestValidation(t *testing.T) {
	err := Validation("group name is required")
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "VALIDATION_ERROR", err.Code)
}
