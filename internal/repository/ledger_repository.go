package repository

import (
	"context"

	"gorm.io/gorm"

	"canteen/internal/model"
)

// LedgerRepository stores balance movements.
type LedgerRepository interface {
	Create(ctx context.Context, entry *model.LedgerEntry) error
	ListByUser(ctx context.Context, userID uint, page Page) ([]model.LedgerEntry, error)
	CountByReference(ctx context.Context, refType string, refID uint) (int64, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository.
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Create(ctx context.Context, entry *model.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ledgerRepository) ListByUser(ctx context.Context, userID uint, page Page) ([]model.LedgerEntry, error) {
	entries := []model.LedgerEntry{}
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if err := page.apply(query).Order("id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ledgerRepository) CountByReference(ctx context.Context, refType string, refID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
