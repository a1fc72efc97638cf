package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrDishNotFound is returned when a dish does not exist.
	ErrDishNotFound = errors.New("dish not found")
	// ErrOrderNotFound is returned when an order does not exist or belongs to someone else.
	ErrOrderNotFound = errors.New("order not found")
	// ErrRequestNotFound is returned when a purchase or top-up request does not exist.
	ErrRequestNotFound = errors.New("request not found")
	// ErrAllergenNotFound is returned when a referenced allergen does not exist.
	ErrAllergenNotFound = errors.New("allergen not found")
	// ErrInsufficientBalance is returned when the user cannot pay for an order.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidOrder is returned when order parameters are malformed.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrInvalidAmount is returned when amount is invalid.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidRating is returned when a review rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrInvalidStatus is returned when a request status is not one of pending, approved or rejected.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrRequestFinalized is returned when a request already left the pending state.
	ErrRequestFinalized = errors.New("request already processed")
	// ErrEmailTaken is returned when registering with an email that is already in use.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidRole is returned when registration asks for a role it may not assign.
	ErrInvalidRole = errors.New("invalid role")
	// ErrAllergenExists is returned when creating a duplicate allergen.
	ErrAllergenExists = errors.New("allergen already exists")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrWrongPassword is returned when a password change supplies the wrong old password.
	ErrWrongPassword = errors.New("old password is incorrect")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

var mapping = []struct {
	err    error
	status int
	code   string
}{
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrDishNotFound, http.StatusNotFound, "DISH_NOT_FOUND"},
	{ErrOrderNotFound, http.StatusNotFound, "ORDER_NOT_FOUND"},
	{ErrRequestNotFound, http.StatusNotFound, "REQUEST_NOT_FOUND"},
	{ErrAllergenNotFound, http.StatusNotFound, "ALLERGEN_NOT_FOUND"},
	{ErrInsufficientBalance, http.StatusBadRequest, "INSUFFICIENT_BALANCE"},
	{ErrInvalidOrder, http.StatusBadRequest, "INVALID_ORDER"},
	{ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
	{ErrInvalidRating, http.StatusBadRequest, "INVALID_RATING"},
	{ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{ErrRequestFinalized, http.StatusBadRequest, "REQUEST_ALREADY_PROCESSED"},
	{ErrEmailTaken, http.StatusBadRequest, "EMAIL_TAKEN"},
	{ErrInvalidRole, http.StatusBadRequest, "INVALID_ROLE"},
	{ErrAllergenExists, http.StatusBadRequest, "ALLERGEN_EXISTS"},
	{ErrWrongPassword, http.StatusBadRequest, "WRONG_PASSWORD"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are
// matched with errors.Is; anything unknown becomes a 500.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mapping {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
