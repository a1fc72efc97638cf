package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteen/internal/model"
	"canteen/internal/repository"
)

func TestStatisticsService_Empty(t *testing.T) {
	env := newTestEnv(t)
	svc := NewStatisticsService(env.store)
	ctx := context.Background()

	payments, err := svc.PaymentStatistics(ctx, repository.DateRange{})
	require.NoError(t, err)
	assertMoney(t, "0", payments.TotalRevenue)
	assert.Equal(t, int64(0), payments.OrdersCount)
	assertMoney(t, "0", payments.AverageOrderValue)

	attendance, err := svc.AttendanceStatistics(ctx, repository.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), attendance.UniqueUsers)
	assert.Equal(t, float64(0), attendance.AverageOrdersPerUser)
}

func TestStatisticsService_WithOrders(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@school.test", model.RoleStudent, "1000")
	bob := env.createUser(t, "bob@school.test", model.RoleStudent, "1000")
	soup := env.createDish(t, "Soup", "100", 10)
	tea := env.createDish(t, "Tea", "15", 10)
	orders := newOrderService(env, time.Now())
	ctx := context.Background()

	place := func(studentID, dishID uint) {
		_, err := orders.PlaceOrder(ctx, PlaceOrderInput{StudentID: studentID, DishID: dishID, PaymentType: model.PaymentTypeOneTime})
		require.NoError(t, err)
	}
	place(alice.ID, soup.ID)
	place(alice.ID, tea.ID)
	place(bob.ID, tea.ID)

	svc := NewStatisticsService(env.store)

	payments, err := svc.PaymentStatistics(ctx, repository.DateRange{})
	require.NoError(t, err)
	assertMoney(t, "130", payments.TotalRevenue)
	assert.Equal(t, int64(3), payments.OrdersCount)
	assertMoney(t, "43.33", payments.AverageOrderValue)

	attendance, err := svc.AttendanceStatistics(ctx, repository.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), attendance.UniqueUsers)
	assert.Equal(t, int64(3), attendance.TotalOrders)
	assert.Equal(t, 1.5, attendance.AverageOrdersPerUser)

	future := time.Now().Add(24 * time.Hour)
	later, err := svc.AttendanceStatistics(ctx, repository.DateRange{Start: &future})
	require.NoError(t, err)
	assert.Equal(t, int64(0), later.TotalOrders)
	assert.Equal(t, int64(2), later.UniqueUsers, "unique users ignore the period")

	emptyPeriod, err := svc.PaymentStatistics(ctx, repository.DateRange{Start: &future})
	require.NoError(t, err)
	assertMoney(t, "0", emptyPeriod.TotalRevenue)
	assertMoney(t, "0", emptyPeriod.AverageOrderValue)

	report, err := svc.PaymentReport(ctx, repository.DateRange{Start: &future})
	require.NoError(t, err)
	assert.Equal(t, int64(0), report.Statistics.OrdersCount)
	assert.Equal(t, &future, report.Period.StartDate)
	require.Len(t, report.Orders, 3)
	assert.Equal(t, "Tea", report.Orders[0].DishName)

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"id", "student_id", "dish_name", "price", "payment_type", "created_at"}, records[0])
	assert.Equal(t, "15.00", records[1][3])
	assert.Equal(t, "one-time", records[1][4])
}
