package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Auth("no"), http.StatusUnauthorized},
		{Forbidden("mine"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("taken"), http.StatusConflict},
		{TooManyRequests("slow down"), http.StatusTooManyRequests},
		{Persistence("db", errors.New("x")), http.StatusInternalServerError},
		{Unknown(errors.New("x")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.StatusCode(), tt.err.Kind.String())
	}
}

func TestFromWrapsUnclassifiedErrors(t *testing.T) {
	assert.Nil(t, From(nil))

	raw := errors.New("driver failure")
	got := From(raw)
	assert.Equal(t, KindUnknown, got.Kind)
	assert.Equal(t, "something went wrong", got.Message)
	assert.ErrorIs(t, got, raw)

	wrapped := fmt.Errorf("context: %w", NotFound("video not found"))
	assert.Equal(t, KindNotFound, From(wrapped).Kind)
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(raw, KindNotFound))
}

func TestValidationDetails(t *testing.T) {
	err := Validation("all fields are required", "email is required", "password is required")
	assert.Equal(t, []string{"email is required", "password is required"}, err.Details)
	assert.Contains(t, err.Error(), "ValidationError")
}
