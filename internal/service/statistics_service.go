package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"canteen/internal/model"
	"canteen/internal/repository"
)

// reportOrderLimit caps the order rows of a payment report.
const reportOrderLimit = 1000

// PaymentStats summarises revenue over a period.
type PaymentStats struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	OrdersCount       int64           `json:"orders_count"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// AttendanceStats summarises canteen usage. UniqueUsers counts every student
// that ever ordered, regardless of the period.
type AttendanceStats struct {
	UniqueUsers          int64   `json:"unique_users"`
	TotalOrders          int64   `json:"total_orders"`
	AverageOrdersPerUser float64 `json:"average_orders_per_user"`
}

// ReportPeriod echoes the requested bounds.
type ReportPeriod struct {
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// ReportOrder is one row of a payment report.
type ReportOrder struct {
	ID          uint              `json:"id"`
	StudentID   uint              `json:"student_id"`
	DishName    string            `json:"dish_name"`
	Price       decimal.Decimal   `json:"price"`
	PaymentType model.PaymentType `json:"payment_type"`
	CreatedAt   time.Time         `json:"created_at"`
}

// PaymentReport bundles statistics with the latest orders.
type PaymentReport struct {
	Statistics PaymentStats  `json:"statistics"`
	Period     ReportPeriod  `json:"period"`
	Orders     []ReportOrder `json:"orders"`
}

// StatisticsService computes admin reports.
type StatisticsService interface {
	PaymentStatistics(ctx context.Context, period repository.DateRange) (*PaymentStats, error)
	AttendanceStatistics(ctx context.Context, period repository.DateRange) (*AttendanceStats, error)
	PaymentReport(ctx context.Context, period repository.DateRange) (*PaymentReport, error)
}

type statisticsService struct {
	store repository.Store
}

// NewStatisticsService creates a new statistics service.
func NewStatisticsService(store repository.Store) StatisticsService {
	return &statisticsService{store: store}
}

func (s *statisticsService) PaymentStatistics(ctx context.Context, period repository.DateRange) (*PaymentStats, error) {
	summary, err := s.store.Orders().Revenue(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}

	stats := &PaymentStats{
		TotalRevenue:      summary.Revenue,
		OrdersCount:       summary.Count,
		AverageOrderValue: decimal.Zero,
	}
	if summary.Count > 0 {
		stats.AverageOrderValue = summary.Revenue.Div(decimal.NewFromInt(summary.Count)).Round(2)
	}
	return stats, nil
}

func (s *statisticsService) AttendanceStatistics(ctx context.Context, period repository.DateRange) (*AttendanceStats, error) {
	unique, err := s.store.Orders().CountDistinctStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}
	total, err := s.store.Orders().Count(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	stats := &AttendanceStats{UniqueUsers: unique, TotalOrders: total}
	if unique > 0 {
		stats.AverageOrdersPerUser = decimal.NewFromInt(total).Div(decimal.NewFromInt(unique)).Round(2).InexactFloat64()
	}
	return stats, nil
}

// PaymentReport lists the newest orders overall; only the statistics honour
// the period.
func (s *statisticsService) PaymentReport(ctx context.Context, period repository.DateRange) (*PaymentReport, error) {
	stats, err := s.PaymentStatistics(ctx, period)
	if err != nil {
		return nil, err
	}
	orders, err := s.store.Orders().ListCreated(ctx, repository.DateRange{}, reportOrderLimit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	rows := make([]ReportOrder, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, ReportOrder{
			ID:          o.ID,
			StudentID:   o.StudentID,
			DishName:    o.Dish.Name,
			Price:       o.Dish.Price,
			PaymentType: o.PaymentType,
			CreatedAt:   o.CreatedAt,
		})
	}

	return &PaymentReport{
		Statistics: *stats,
		Period:     ReportPeriod{StartDate: period.Start, EndDate: period.End},
		Orders:     rows,
	}, nil
}

// WriteCSV writes the report's order rows as CSV with a header line.
func (r *PaymentReport) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "student_id", "dish_name", "price", "payment_type", "created_at"}); err != nil {
		return err
	}
	for _, o := range r.Orders {
		record := []string{
			strconv.FormatUint(uint64(o.ID), 10),
			strconv.FormatUint(uint64(o.StudentID), 10),
			o.DishName,
			o.Price.StringFixed(2),
			string(o.PaymentType),
			o.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
