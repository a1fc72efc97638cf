package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Page is an offset/limit window over a listing.
type Page struct {
	Skip  int
	Limit int
}

// apply clamps the page to sane bounds and applies it to the query.
func (p Page) apply(db *gorm.DB) *gorm.DB {
	skip, limit := p.Skip, p.Limit
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return db.Offset(skip).Limit(limit)
}

// forUpdate adds a row-level write lock. Dialects without row locks (SQLite)
// drop the clause.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Store groups every repository over the same database handle so that a
// transaction can span all of them.
type Store interface {
	Users() UserRepository
	Allergens() AllergenRepository
	Dishes() DishRepository
	Orders() OrderRepository
	PurchaseRequests() PurchaseRequestRepository
	TopupRequests() TopupRequestRepository
	Reviews() ReviewRepository
	Ledger() LedgerRepository
	// WithTransaction executes fn within a database transaction. Every
	// repository obtained from tx shares that transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type store struct {
	db *gorm.DB
}

// NewStore creates a GORM-backed store.
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Users() UserRepository         { return NewUserRepository(s.db) }
func (s *store) Allergens() AllergenRepository { return NewAllergenRepository(s.db) }
func (s *store) Dishes() DishRepository        { return NewDishRepository(s.db) }
func (s *store) Orders() OrderRepository       { return NewOrderRepository(s.db) }
func (s *store) Reviews() ReviewRepository     { return NewReviewRepository(s.db) }
func (s *store) Ledger() LedgerRepository      { return NewLedgerRepository(s.db) }

func (s *store) PurchaseRequests() PurchaseRequestRepository {
	return NewPurchaseRequestRepository(s.db)
}

func (s *store) TopupRequests() TopupRequestRepository {
	return NewTopupRequestRepository(s.db)
}

// WithTransaction executes a function within a database transaction.
func (s *store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &store{db: tx})
	})
}
