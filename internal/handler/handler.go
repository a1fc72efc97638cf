package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"canteen/internal/errors"
	"canteen/internal/logger"
	"canteen/internal/middleware"
	"canteen/internal/repository"
)

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError maps a service error to its HTTP form. Unexpected errors are
// logged with the request ID and hidden from the client.
func respondError(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		logger.Log.Error("request failed",
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(message, code string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{Error: message, Code: code})
}

// bindAndValidate decodes the request body into req and runs struct validation.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(req); err != nil {
		return badRequest(err.Error(), "VALIDATION_ERROR")
	}
	return nil
}

// currentUserID returns the authenticated caller's ID. Routes using it sit
// behind the JWT middleware.
func currentUserID(c echo.Context) uint {
	if claims := middleware.CurrentClaims(c); claims != nil {
		return claims.UserID
	}
	return 0
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid "+name, "INVALID_ID")
	}
	return uint(id), nil
}

// pageFromQuery reads skip and limit. Bounds are clamped by the repository.
func pageFromQuery(c echo.Context) (repository.Page, error) {
	var page repository.Page
	if v := c.QueryParam("skip"); v != "" {
		skip, err := strconv.Atoi(v)
		if err != nil || skip < 0 {
			return page, badRequest("invalid skip", "INVALID_QUERY")
		}
		page.Skip = skip
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return page, badRequest("invalid limit", "INVALID_QUERY")
		}
		page.Limit = limit
	}
	return page, nil
}

// parseDate accepts RFC3339 or a bare YYYY-MM-DD in local time.
func parseDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func dateRangeFromQuery(c echo.Context) (repository.DateRange, error) {
	start, err := parseDate(c.QueryParam("start_date"))
	if err != nil {
		return repository.DateRange{}, badRequest("invalid start_date", "INVALID_QUERY")
	}
	end, err := parseDate(c.QueryParam("end_date"))
	if err != nil {
		return repository.DateRange{}, badRequest("invalid end_date", "INVALID_QUERY")
	}
	return repository.DateRange{Start: start, End: end}, nil
}

func boolQuery(c echo.Context, name string) (*bool, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, badRequest("invalid "+name, "INVALID_QUERY")
	}
	return &b, nil
}
