package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"canteen/internal/model"
)

// DateRange bounds a query on created_at. Nil ends are open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func (d DateRange) apply(db *gorm.DB, column string) *gorm.DB {
	if d.Start != nil {
		db = db.Where(column+" >= ?", *d.Start)
	}
	if d.End != nil {
		db = db.Where(column+" <= ?", *d.End)
	}
	return db
}

// RevenueSummary is the aggregate of dish prices over a set of orders.
type RevenueSummary struct {
	Revenue decimal.Decimal
	Count   int64
}

// OrderRepository defines order persistence operations.
type OrderRepository interface {
	Create(ctx context.Context, orders []model.Order) error
	FindByID(ctx context.Context, id uint) (*model.Order, error)
	ListByStudent(ctx context.Context, studentID uint, page Page) ([]model.Order, error)
	ListAll(ctx context.Context, page Page) ([]model.Order, error)
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]model.Order, error)
	ListCreated(ctx context.Context, period DateRange, limit int) ([]model.Order, error)
	MarkReceived(ctx context.Context, id uint) error
	Revenue(ctx context.Context, period DateRange) (RevenueSummary, error)
	Count(ctx context.Context, period DateRange) (int64, error)
	CountDistinctStudents(ctx context.Context) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// withDish preloads the dish including soft-deleted ones so history stays intact.
func withDish(db *gorm.DB) *gorm.DB {
	return db.Preload("Dish", func(tx *gorm.DB) *gorm.DB {
		return tx.Unscoped()
	})
}

func (r *orderRepository) Create(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Student", "Dish").Create(&orders).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := withDish(r.db.WithContext(ctx)).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByStudent(ctx context.Context, studentID uint, page Page) ([]model.Order, error) {
	orders := []model.Order{}
	query := withDish(r.db.WithContext(ctx)).Where("student_id = ?", studentID)
	if err := page.apply(query).Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) ListAll(ctx context.Context, page Page) ([]model.Order, error) {
	orders := []model.Order{}
	if err := page.apply(withDish(r.db.WithContext(ctx))).Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListScheduledBetween returns orders whose scheduled date, or creation time
// when unscheduled, falls in [from, to).
func (r *orderRepository) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	orders := []model.Order{}
	err := withDish(r.db.WithContext(ctx)).
		Where("COALESCE(order_date, created_at) >= ? AND COALESCE(order_date, created_at) < ?", from, to).
		Order("id").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) ListCreated(ctx context.Context, period DateRange, limit int) ([]model.Order, error) {
	orders := []model.Order{}
	query := period.apply(withDish(r.db.WithContext(ctx)), "created_at")
	if err := (Page{Limit: limit}).apply(query).Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) MarkReceived(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		UpdateColumn("is_received", true).Error
}

// Revenue sums the current dish price over every order created in the period.
func (r *orderRepository) Revenue(ctx context.Context, period DateRange) (RevenueSummary, error) {
	var row struct {
		Revenue decimal.NullDecimal
		Count   int64
	}
	query := r.db.WithContext(ctx).Table("orders").
		Select("SUM(dishes.price) AS revenue, COUNT(orders.id) AS count").
		Joins("JOIN dishes ON dishes.id = orders.dish_id")
	if err := period.apply(query, "orders.created_at").Scan(&row).Error; err != nil {
		return RevenueSummary{}, err
	}

	summary := RevenueSummary{Revenue: decimal.Zero, Count: row.Count}
	if row.Revenue.Valid {
		summary.Revenue = row.Revenue.Decimal
	}
	return summary, nil
}

func (r *orderRepository) Count(ctx context.Context, period DateRange) (int64, error) {
	var count int64
	query := period.apply(r.db.WithContext(ctx).Model(&model.Order{}), "created_at")
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountDistinctStudents counts every student that ever ordered.
func (r *orderRepository) CountDistinctStudents(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).Distinct("student_id").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
