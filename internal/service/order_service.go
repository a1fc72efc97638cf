package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"canteen/internal/cache"
	apperrors "canteen/internal/errors"
	"canteen/internal/logger"
	"canteen/internal/metrics"
	"canteen/internal/model"
	"canteen/internal/repository"
)

// subscriptionStepDays is the gap between consecutive subscription orders.
const subscriptionStepDays = 7

// PlaceOrderInput is a request to buy a dish.
type PlaceOrderInput struct {
	StudentID   uint
	DishID      uint
	PaymentType model.PaymentType
	OrderDate   *time.Time
	// SubscriptionWeeks is the number of weekly orders for a subscription.
	// Nil means one week. Ignored for one-time orders.
	SubscriptionWeeks *int
}

// OrderService settles orders and serves order listings.
type OrderService interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*model.Order, error)
	ListStudentOrders(ctx context.Context, studentID uint, page repository.Page) ([]model.Order, error)
	MarkReceived(ctx context.Context, orderID, studentID uint) (*model.Order, error)
	ListAllOrders(ctx context.Context, page repository.Page) ([]model.Order, error)
	ListTodayOrders(ctx context.Context) ([]model.Order, error)
}

type orderService struct {
	store  repository.Store
	ledger LedgerService
	cache  *cache.Client
	now    func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(store repository.Store, ledger LedgerService, cache *cache.Client) OrderService {
	return &orderService{
		store:  store,
		ledger: ledger,
		cache:  cache,
		now:    time.Now,
	}
}

// PlaceOrder debits the student, creates the order rows and lowers stock in
// one transaction. Subscriptions create one order per week starting at the
// order date, or today when none is given.
func (s *orderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*model.Order, error) {
	if !in.PaymentType.Valid() {
		return nil, apperrors.ErrInvalidOrder
	}
	if in.SubscriptionWeeks != nil && *in.SubscriptionWeeks < 1 {
		return nil, apperrors.ErrInvalidOrder
	}

	var firstID uint
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		dish, err := tx.Dishes().FindByIDForUpdate(ctx, in.DishID)
		if err != nil {
			return notFound(err, apperrors.ErrDishNotFound)
		}
		student, err := tx.Users().FindByIDForUpdate(ctx, in.StudentID)
		if err != nil {
			return notFound(err, apperrors.ErrUserNotFound)
		}

		orders := s.buildOrders(in)
		total := dish.Price.Mul(decimal.NewFromInt(int64(len(orders))))
		if student.Balance.LessThan(total) {
			return apperrors.ErrInsufficientBalance
		}

		if err := tx.Orders().Create(ctx, orders); err != nil {
			return fmt.Errorf("create orders: %w", err)
		}
		firstID = orders[0].ID

		ref := LedgerRef{Type: RefOrder, ID: firstID, Reason: fmt.Sprintf("%s x%d", dish.Name, len(orders))}
		if _, err := s.ledger.Debit(ctx, tx, in.StudentID, total, ref); err != nil {
			return err
		}

		if err := tx.Dishes().DecrementStock(ctx, dish.ID, len(orders)); err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.OrdersPlaced.WithLabelValues(string(in.PaymentType), settlementOutcome(err)).Inc()
		return nil, err
	}

	metrics.OrdersPlaced.WithLabelValues(string(in.PaymentType), "success").Inc()
	_ = s.cache.Delete(ctx, dishCacheKey(in.DishID), userCacheKey(in.StudentID))
	logger.Log.Info("order placed",
		zap.Uint("student_id", in.StudentID),
		zap.Uint("dish_id", in.DishID),
		zap.String("payment_type", string(in.PaymentType)),
		zap.Uint("order_id", firstID),
	)

	order, err := s.store.Orders().FindByID(ctx, firstID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return order, nil
}

func (s *orderService) buildOrders(in PlaceOrderInput) []model.Order {
	if in.PaymentType == model.PaymentTypeOneTime {
		return []model.Order{{
			StudentID:   in.StudentID,
			DishID:      in.DishID,
			PaymentType: in.PaymentType,
			OrderDate:   in.OrderDate,
		}}
	}

	weeks := 1
	if in.SubscriptionWeeks != nil {
		weeks = *in.SubscriptionWeeks
	}
	// without a date the next occurrence of today's weekday is today itself
	anchor := startOfDay(s.now())
	if in.OrderDate != nil {
		anchor = *in.OrderDate
	}

	orders := make([]model.Order, 0, weeks)
	for i := 0; i < weeks; i++ {
		date := anchor.AddDate(0, 0, i*subscriptionStepDays)
		orders = append(orders, model.Order{
			StudentID:   in.StudentID,
			DishID:      in.DishID,
			PaymentType: in.PaymentType,
			OrderDate:   &date,
		})
	}
	return orders
}

func settlementOutcome(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, apperrors.ErrDishNotFound), errors.Is(err, apperrors.ErrUserNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func (s *orderService) ListStudentOrders(ctx context.Context, studentID uint, page repository.Page) ([]model.Order, error) {
	return s.store.Orders().ListByStudent(ctx, studentID, page)
}

// MarkReceived flags the student's own order as collected. Orders of other
// students are reported as missing.
func (s *orderService) MarkReceived(ctx context.Context, orderID, studentID uint) (*model.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrOrderNotFound)
	}
	if order.StudentID != studentID {
		return nil, apperrors.ErrOrderNotFound
	}

	if err := s.store.Orders().MarkReceived(ctx, orderID); err != nil {
		return nil, fmt.Errorf("mark received: %w", err)
	}
	order.IsReceived = true
	return order, nil
}

func (s *orderService) ListAllOrders(ctx context.Context, page repository.Page) ([]model.Order, error) {
	return s.store.Orders().ListAll(ctx, page)
}

// ListTodayOrders returns orders scheduled for today, falling back to the
// creation time for orders without a date.
func (s *orderService) ListTodayOrders(ctx context.Context) ([]model.Order, error) {
	from := startOfDay(s.now())
	return s.store.Orders().ListScheduledBetween(ctx, from, from.AddDate(0, 0, 1))
}
