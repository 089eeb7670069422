package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsMatchByCode(t *testing.T) {
	err := NotFound("music %s not found", "m1")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "music m1 not found", err.Error())

	wrapped := fmt.Errorf("service: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transport(cause, "invoke musicManager")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, "invoke musicManager: connection refused", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeInitialization, http.StatusServiceUnavailable},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.code.HTTPStatus())
		})
	}
}

func TestMessageHidesInternalCause(t *testing.T) {
	err := Internal(errors.New("dial tcp 10.0.0.3:3306"), "list categories failed")
	assert.Equal(t, "list categories failed", Message(err))
	assert.Equal(t, "internal error", Message(errors.New("boom")))
	assert.Equal(t, "name is required", Message(Validation("name is required")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}
