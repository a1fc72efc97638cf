package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "canteen/internal/errors"
	"canteen/internal/model"
	"canteen/internal/repository"
)

// Ledger reference types.
const (
	RefOrder = "order"
	RefTopup = "topup"
	RefSeed  = "seed"
)

// LedgerRef describes what caused a balance movement.
type LedgerRef struct {
	Type   string
	ID     uint
	Reason string
}

// LedgerService is the only writer of user balances. Credit and Debit run on
// a transaction-bound store supplied by the caller.
type LedgerService interface {
	Credit(ctx context.Context, tx repository.Store, userID uint, amount decimal.Decimal, ref LedgerRef) (*model.LedgerEntry, error)
	Debit(ctx context.Context, tx repository.Store, userID uint, amount decimal.Decimal, ref LedgerRef) (*model.LedgerEntry, error)
	GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error)
	History(ctx context.Context, userID uint, page repository.Page) ([]model.LedgerEntry, error)
}

type ledgerService struct {
	store repository.Store
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(store repository.Store) LedgerService {
	return &ledgerService{store: store}
}

func (s *ledgerService) Credit(ctx context.Context, tx repository.Store, userID uint, amount decimal.Decimal, ref LedgerRef) (*model.LedgerEntry, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.ErrInvalidAmount
	}

	user, err := lockUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	newBalance := user.Balance.Add(amount)
	if err := tx.Users().UpdateBalance(ctx, userID, newBalance); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}
	return s.record(ctx, tx, user, model.LedgerEntryCredit, amount, newBalance, ref)
}

func (s *ledgerService) Debit(ctx context.Context, tx repository.Store, userID uint, amount decimal.Decimal, ref LedgerRef) (*model.LedgerEntry, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.ErrInvalidAmount
	}

	user, err := lockUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if user.Balance.LessThan(amount) {
		return nil, apperrors.ErrInsufficientBalance
	}

	newBalance := user.Balance.Sub(amount)
	ok, err := tx.Users().DeductBalance(ctx, userID, amount, newBalance)
	if err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}
	if !ok {
		return nil, apperrors.ErrInsufficientBalance
	}
	return s.record(ctx, tx, user, model.LedgerEntryDebit, amount, newBalance, ref)
}

func (s *ledgerService) record(ctx context.Context, tx repository.Store, user *model.User, kind model.LedgerEntryType, amount, newBalance decimal.Decimal, ref LedgerRef) (*model.LedgerEntry, error) {
	entry := &model.LedgerEntry{
		UserID:        user.ID,
		Type:          kind,
		Amount:        amount,
		BalanceBefore: user.Balance,
		BalanceAfter:  newBalance,
		Reason:        ref.Reason,
		ReferenceType: ref.Type,
		ReferenceID:   ref.ID,
	}
	if err := tx.Ledger().Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create ledger entry: %w", err)
	}
	user.Balance = newBalance
	return entry, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return decimal.Zero, notFound(err, apperrors.ErrUserNotFound)
	}
	return user.Balance, nil
}

func (s *ledgerService) History(ctx context.Context, userID uint, page repository.Page) ([]model.LedgerEntry, error) {
	return s.store.Ledger().ListByUser(ctx, userID, page)
}

func lockUser(ctx context.Context, tx repository.Store, userID uint) (*model.User, error) {
	user, err := tx.Users().FindByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return user, nil
}

// notFound translates gorm.ErrRecordNotFound into the given domain error and
// wraps anything else.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("query: %w", err)
}
