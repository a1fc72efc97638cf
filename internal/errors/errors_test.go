package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"dish not found", ErrDishNotFound, http.StatusNotFound, "DISH_NOT_FOUND"},
		{"wrapped insufficient balance", fmt.Errorf("place order: %w", ErrInsufficientBalance), http.StatusBadRequest, "INSUFFICIENT_BALANCE"},
		{"duplicate email is a bad request", ErrEmailTaken, http.StatusBadRequest, "EMAIL_TAKEN"},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.ToErrorResponse().Code)
		})
	}
}

func TestMapErrorToHTTP_HidesInternalMessage(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("dial tcp 10.0.0.1:3306: connection refused"))
	assert.Equal(t, "internal server error", httpErr.Message)
}
