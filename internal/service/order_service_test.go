package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "canteen/internal/errors"
	"canteen/internal/model"
	"canteen/internal/repository"
)

func newOrderService(env *testEnv, now time.Time) OrderService {
	svc := NewOrderService(env.store, env.ledger, env.cache)
	svc.(*orderService).now = func() time.Time { return now }
	return svc
}

func intPtr(v int) *int { return &v }

func TestOrderService_PlaceOneTimeOrder(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "kid@school.test", model.RoleStudent, "500")
	dish := env.createDish(t, "Porridge", "200", 10)
	svc := newOrderService(env, time.Now())

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		StudentID:   student.ID,
		DishID:      dish.ID,
		PaymentType: model.PaymentTypeOneTime,
	})
	require.NoError(t, err)

	assert.Equal(t, student.ID, order.StudentID)
	assert.Equal(t, "Porridge", order.Dish.Name)
	assert.False(t, order.IsReceived)
	assert.Nil(t, order.OrderDate)
	assertMoney(t, "300", env.balance(t, student.ID))
	assert.Equal(t, 9, env.stock(t, dish.ID))
	assert.Equal(t, int64(1), env.count(t, &model.Order{}))

	entries, err := env.ledger.History(context.Background(), student.ID, repository.Page{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.LedgerEntryDebit, entries[0].Type)
	assertMoney(t, "200", entries[0].Amount)
	assertMoney(t, "500", entries[0].BalanceBefore)
	assertMoney(t, "300", entries[0].BalanceAfter)
	assert.Equal(t, RefOrder, entries[0].ReferenceType)
	assert.Equal(t, order.ID, entries[0].ReferenceID)
}

func TestOrderService_PlaceSubscription(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "kid@school.test", model.RoleStudent, "1000")
	dish := env.createDish(t, "Soup", "150", 5)
	svc := newOrderService(env, time.Now())

	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local)
	order, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		StudentID:         student.ID,
		DishID:            dish.ID,
		PaymentType:       model.PaymentTypeSubscription,
		OrderDate:         &start,
		SubscriptionWeeks: intPtr(3),
	})
	require.NoError(t, err)
	require.NotNil(t, order.OrderDate)
	assert.True(t, start.Equal(*order.OrderDate))

	assertMoney(t, "550", env.balance(t, student.ID))
	assert.Equal(t, 2, env.stock(t, dish.ID))

	orders, err := svc.ListStudentOrders(context.Background(), student.ID, repository.Page{})
	require.NoError(t, err)
	require.Len(t, orders, 3)

	dates := make([]time.Time, 0, 3)
	for i := len(orders) - 1; i >= 0; i-- {
		require.NotNil(t, orders[i].OrderDate)
		dates = append(dates, *orders[i].OrderDate)
	}
	assert.True(t, start.Equal(dates[0]))
	assert.True(t, start.AddDate(0, 0, 7).Equal(dates[1]))
	assert.True(t, start.AddDate(0, 0, 14).Equal(dates[2]))

	assert.Equal(t, int64(1), env.count(t, &model.LedgerEntry{}))
}

func TestOrderService_SubscriptionAnchorsOnTodaysWeekday(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "kid@school.test", model.RoleStudent, "100")
	dish := env.createDish(t, "Soup", "40", 5)
	now := time.Date(2026, 10, 15, 11, 30, 0, 0, time.Local)
	svc := newOrderService(env, now)

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		StudentID:         student.ID,
		DishID:            dish.ID,
		PaymentType:       model.PaymentTypeSubscription,
		SubscriptionWeeks: intPtr(2),
	})
	require.NoError(t, err)
	require.NotNil(t, order.OrderDate)
	assert.True(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.Local).Equal(*order.OrderDate))
	assertMoney(t, "20", env.balance(t, student.ID))

	orders, err := env.store.Orders().ListByStudent(context.Background(), student.ID, repository.Page{})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	for _, o := range orders {
		require.NotNil(t, o.OrderDate)
		assert.Equal(t, now.Weekday(), o.OrderDate.Weekday())
	}
}

func TestOrderService_InsufficientBalanceChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "kid@school.test", model.RoleStudent, "300")
	dish := env.createDish(t, "Soup", "150", 5)
	svc := newOrderService(env, time.Now())

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		StudentID:         student.ID,
		DishID:            dish.ID,
		PaymentType:       model.PaymentTypeSubscription,
		SubscriptionWeeks: intPtr(3),
	})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	assertMoney(t, "300", env.balance(t, student.ID))
	assert.Equal(t, 5, env.stock(t, dish.ID))
	assert.Equal(t, int64(0), env.count(t, &model.Order{}))
	assert.Equal(t, int64(0), env.count(t, &model.LedgerEntry{}))
}

func TestOrderService_StockMayGoNegative(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "kid@school.test", model.RoleStudent, "100")
	dish := env.createDish(t, "Soup", "10", 0)
	svc := newOrderService(env, time.Now())

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		StudentID:   student.ID,
		DishID:      dish.ID,
		PaymentType: model.PaymentTypeOneTime,
	})
	require.NoError(t, err)
	assert.Equal(t, -1, env.stock(t, dish.ID))
}

func TestOrderService_PlaceOrderValidation(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "kid@school.test", model.RoleStudent, "100")
	dish := env.createDish(t, "Soup", "10", 1)
	svc := newOrderService(env, time.Now())

	tests := []struct {
		name    string
		input   PlaceOrderInput
		wantErr error
	}{
		{"unknown payment type", PlaceOrderInput{StudentID: student.ID, DishID: dish.ID, PaymentType: "credit"}, apperrors.ErrInvalidOrder},
		{"zero weeks", PlaceOrderInput{StudentID: student.ID, DishID: dish.ID, PaymentType: model.PaymentTypeSubscription, SubscriptionWeeks: intPtr(0)}, apperrors.ErrInvalidOrder},
		{"missing dish", PlaceOrderInput{StudentID: student.ID, DishID: 999, PaymentType: model.PaymentTypeOneTime}, apperrors.ErrDishNotFound},
		{"missing user", PlaceOrderInput{StudentID: 999, DishID: dish.ID, PaymentType: model.PaymentTypeOneTime}, apperrors.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := svc.PlaceOrder(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, order)
		})
	}
	assert.Equal(t, int64(0), env.count(t, &model.Order{}))
}

func TestOrderService_InvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "kid@school.test", model.RoleStudent, "100")
	dish := env.createDish(t, "Soup", "10", 1)
	svc := newOrderService(env, time.Now())
	ctx := context.Background()

	dishes := NewDishService(env.store, env.cache)
	_, err := dishes.Get(ctx, dish.ID)
	require.NoError(t, err)
	require.True(t, env.redis.Exists(dishCacheKey(dish.ID)))

	_, err = svc.PlaceOrder(ctx, PlaceOrderInput{StudentID: student.ID, DishID: dish.ID, PaymentType: model.PaymentTypeOneTime})
	require.NoError(t, err)
	assert.False(t, env.redis.Exists(dishCacheKey(dish.ID)))

	fresh, err := dishes.Get(ctx, dish.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.StockQuantity)
}

func TestOrderService_MarkReceived(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@school.test", model.RoleStudent, "100")
	other := env.createUser(t, "other@school.test", model.RoleStudent, "100")
	dish := env.createDish(t, "Soup", "10", 1)
	svc := newOrderService(env, time.Now())
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, PlaceOrderInput{StudentID: owner.ID, DishID: dish.ID, PaymentType: model.PaymentTypeOneTime})
	require.NoError(t, err)

	_, err = svc.MarkReceived(ctx, order.ID, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)
	_, err = svc.MarkReceived(ctx, 999, owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)

	received, err := svc.MarkReceived(ctx, order.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, received.IsReceived)

	orders, err := svc.ListStudentOrders(ctx, owner.ID, repository.Page{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].IsReceived)
}

func TestOrderService_ListTodayOrders(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "kid@school.test", model.RoleStudent, "1000")
	dish := env.createDish(t, "Soup", "10", 10)
	now := time.Now()
	svc := newOrderService(env, now)
	ctx := context.Background()

	tomorrow := startOfDay(now).AddDate(0, 0, 1)
	today := startOfDay(now).Add(time.Hour)

	for _, date := range []*time.Time{nil, &today, &tomorrow} {
		_, err := svc.PlaceOrder(ctx, PlaceOrderInput{StudentID: student.ID, DishID: dish.ID, PaymentType: model.PaymentTypeOneTime, OrderDate: date})
		require.NoError(t, err)
	}

	orders, err := svc.ListTodayOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	all, err := svc.ListAllOrders(ctx, repository.Page{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestOrderService_DeletedDishStillResolves(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "kid@school.test", model.RoleStudent, "100")
	dish := env.createDish(t, "Soup", "10", 1)
	svc := newOrderService(env, time.Now())
	ctx := context.Background()

	_, err := svc.PlaceOrder(ctx, PlaceOrderInput{StudentID: student.ID, DishID: dish.ID, PaymentType: model.PaymentTypeOneTime})
	require.NoError(t, err)
	require.NoError(t, NewDishService(env.store, env.cache).Delete(ctx, dish.ID))

	orders, err := svc.ListStudentOrders(ctx, student.ID, repository.Page{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Soup", orders[0].Dish.Name)
}
