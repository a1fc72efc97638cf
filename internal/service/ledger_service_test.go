package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "canteen/internal/errors"
	"canteen/internal/model"
	"canteen/internal/repository"
)

func TestLedgerService_CreditDebit(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "kid@school.test", model.RoleStudent, "100")
	ctx := context.Background()

	err := env.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := env.ledger.Credit(ctx, tx, user.ID, decimal.NewFromInt(50), LedgerRef{Type: RefTopup, ID: 1}); err != nil {
			return err
		}
		_, err := env.ledger.Debit(ctx, tx, user.ID, decimal.NewFromInt(120), LedgerRef{Type: RefOrder, ID: 2})
		return err
	})
	require.NoError(t, err)

	balance, err := env.ledger.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assertMoney(t, "30", balance)

	history, err := env.ledger.History(ctx, user.ID, repository.Page{})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.LedgerEntryDebit, history[0].Type)
	assertMoney(t, "150", history[0].BalanceBefore)
	assertMoney(t, "30", history[0].BalanceAfter)
	assert.Equal(t, model.LedgerEntryCredit, history[1].Type)
}

func TestLedgerService_Errors(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "kid@school.test", model.RoleStudent, "10")
	ctx := context.Background()

	tests := []struct {
		name    string
		run     func(tx repository.Store) error
		wantErr error
	}{
		{"overdraft", func(tx repository.Store) error {
			_, err := env.ledger.Debit(ctx, tx, user.ID, decimal.NewFromInt(11), LedgerRef{})
			return err
		}, apperrors.ErrInsufficientBalance},
		{"zero credit", func(tx repository.Store) error {
			_, err := env.ledger.Credit(ctx, tx, user.ID, decimal.Zero, LedgerRef{})
			return err
		}, apperrors.ErrInvalidAmount},
		{"negative debit", func(tx repository.Store) error {
			_, err := env.ledger.Debit(ctx, tx, user.ID, decimal.NewFromInt(-1), LedgerRef{})
			return err
		}, apperrors.ErrInvalidAmount},
		{"unknown user", func(tx repository.Store) error {
			_, err := env.ledger.Credit(ctx, tx, 999, decimal.NewFromInt(1), LedgerRef{})
			return err
		}, apperrors.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
				return tt.run(tx)
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assertMoney(t, "10", env.balance(t, user.ID))
	assert.Equal(t, int64(0), env.count(t, &model.LedgerEntry{}))

	_, err := env.ledger.GetBalance(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestReviewService(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "kid@school.test", model.RoleStudent, "0")
	dish := env.createDish(t, "Soup", "10", 1)
	svc := NewReviewService(env.store)
	ctx := context.Background()

	review, err := svc.Create(ctx, student.ID, dish.ID, 5, "tasty")
	require.NoError(t, err)
	assert.NotZero(t, review.ID)

	_, err = svc.Create(ctx, student.ID, dish.ID, 6, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidRating)
	_, err = svc.Create(ctx, student.ID, dish.ID, 0, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidRating)
	_, err = svc.Create(ctx, student.ID, 999, 3, "")
	assert.ErrorIs(t, err, apperrors.ErrDishNotFound)

	byDish, err := svc.ListByDish(ctx, dish.ID, repository.Page{})
	require.NoError(t, err)
	require.Len(t, byDish, 1)
	assert.Equal(t, "tasty", byDish[0].Comment)

	byUser, err := svc.ListByUser(ctx, student.ID, repository.Page{})
	require.NoError(t, err)
	assert.Len(t, byUser, 1)
}
