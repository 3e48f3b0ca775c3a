package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error code wins", New(http.StatusTeapot, "short and stout", ErrBadRequest), http.StatusTeapot},
		{"not found helper", NotFound("user not found"), http.StatusNotFound},
		{"invalid helper", Invalid("bad field"), http.StatusBadRequest},
		{"forbidden helper", Forbidden("not yours"), http.StatusForbidden},
		{"wrapped sentinel", fmt.Errorf("outer: %w", ErrUnauthorized), http.StatusUnauthorized},
		{"self action", ErrSelfAction, http.StatusBadRequest},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatus(tt.err))
		})
	}
}

func TestAppErrorUnwrapsSentinel(t *testing.T) {
	err := NotFound("post not found")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "post not found", err.Error())
}
