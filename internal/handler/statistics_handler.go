package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"canteen/internal/service"
)

// StatisticsHandler serves admin reports.
type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

// NewStatisticsHandler creates a statistics handler.
func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

// Payments godoc
// @Summary Revenue statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "Inclusive lower bound"
// @Param end_date query string false "Inclusive upper bound"
// @Success 200 {object} service.PaymentStats
// @Router /admin/statistics/payments [get]
func (h *StatisticsHandler) Payments(c echo.Context) error {
	period, err := dateRangeFromQuery(c)
	if err != nil {
		return err
	}
	stats, err := h.statisticsService.PaymentStatistics(c.Request().Context(), period)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Attendance godoc
// @Summary Attendance statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "Inclusive lower bound"
// @Param end_date query string false "Inclusive upper bound"
// @Success 200 {object} service.AttendanceStats
// @Router /admin/statistics/attendance [get]
func (h *StatisticsHandler) Attendance(c echo.Context) error {
	period, err := dateRangeFromQuery(c)
	if err != nil {
		return err
	}
	stats, err := h.statisticsService.AttendanceStatistics(c.Request().Context(), period)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Report godoc
// @Summary Payment report
// @Description Statistics plus the latest orders. Pass format=csv for a spreadsheet export.
// @Tags admin
// @Produce json
// @Produce text/csv
// @Security BearerAuth
// @Param start_date query string false "Inclusive lower bound"
// @Param end_date query string false "Inclusive upper bound"
// @Param format query string false "json or csv"
// @Success 200 {object} service.PaymentReport
// @Router /admin/reports/payments [get]
func (h *StatisticsHandler) Report(c echo.Context) error {
	period, err := dateRangeFromQuery(c)
	if err != nil {
		return err
	}
	format := c.QueryParam("format")
	if format != "" && format != "json" && format != "csv" {
		return badRequest("invalid format", "INVALID_QUERY")
	}

	report, err := h.statisticsService.PaymentReport(c.Request().Context(), period)
	if err != nil {
		return respondError(c, err)
	}
	if format != "csv" {
		return c.JSON(http.StatusOK, report)
	}

	filename := fmt.Sprintf("payments_%s.csv", time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().WriteHeader(http.StatusOK)
	return report.WriteCSV(c.Response())
}
