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

func strPtr(v string) *string { return &v }

func statusPtr(s model.RequestStatus) *model.RequestStatus { return &s }

func TestTopupService_ApproveCreditsOnce(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "kid@school.test", model.RoleStudent, "0")
	svc := NewTopupService(env.store, env.ledger, env.cache)
	ctx := context.Background()

	req, err := svc.Create(ctx, student.ID, decimal.RequireFromString("250.50"))
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, req.Status)

	updated, err := svc.UpdateStatus(ctx, req.ID, model.RequestStatusApproved, strPtr("ok"))
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusApproved, updated.Status)
	assert.Equal(t, "ok", updated.AdminComment)
	assertMoney(t, "250.50", env.balance(t, student.ID))

	again, err := svc.UpdateStatus(ctx, req.ID, model.RequestStatusApproved, nil)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusApproved, again.Status)
	assertMoney(t, "250.50", env.balance(t, student.ID))
	assert.Equal(t, int64(1), env.count(t, &model.LedgerEntry{}))
}

func TestTopupService_SameStatusUpdatesCommentOnly(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "kid@school.test", model.RoleStudent, "0")
	svc := NewTopupService(env.store, env.ledger, env.cache)
	ctx := context.Background()

	req, err := svc.Create(ctx, student.ID, decimal.NewFromInt(100))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, req.ID, model.RequestStatusPending, strPtr("checking with parents"))
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, updated.Status)
	assert.Equal(t, "checking with parents", updated.AdminComment)
	assertMoney(t, "0", env.balance(t, student.ID))
}

func TestTopupService_FinalizedRequestCannotFlip(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "kid@school.test", model.RoleStudent, "0")
	svc := NewTopupService(env.store, env.ledger, env.cache)
	ctx := context.Background()

	req, err := svc.Create(ctx, student.ID, decimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, req.ID, model.RequestStatusRejected, nil)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, req.ID, model.RequestStatusApproved, nil)
	assert.ErrorIs(t, err, apperrors.ErrRequestFinalized)
	_, err = svc.UpdateStatus(ctx, req.ID, model.RequestStatusPending, nil)
	assert.ErrorIs(t, err, apperrors.ErrRequestFinalized)
	assertMoney(t, "0", env.balance(t, student.ID))
}

func TestTopupService_Errors(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "kid@school.test", model.RoleStudent, "0")
	svc := NewTopupService(env.store, env.ledger, env.cache)
	ctx := context.Background()

	_, err := svc.Create(ctx, student.ID, decimal.Zero)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	_, err = svc.Create(ctx, student.ID, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	_, err = svc.UpdateStatus(ctx, 404, model.RequestStatusApproved, nil)
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)

	req, err := svc.Create(ctx, student.ID, decimal.NewFromInt(5))
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, req.ID, "done", nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}

func TestTopupService_Listings(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@school.test", model.RoleStudent, "0")
	bob := env.createUser(t, "bob@school.test", model.RoleStudent, "0")
	svc := NewTopupService(env.store, env.ledger, env.cache)
	ctx := context.Background()

	first, err := svc.Create(ctx, alice.ID, decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = svc.Create(ctx, alice.ID, decimal.NewFromInt(20))
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob.ID, decimal.NewFromInt(30))
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, first.ID, model.RequestStatusApproved, nil)
	require.NoError(t, err)

	mine, err := svc.ListByStudent(ctx, alice.ID, nil, repository.Page{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	pendingMine, err := svc.ListByStudent(ctx, alice.ID, statusPtr(model.RequestStatusPending), repository.Page{})
	require.NoError(t, err)
	require.Len(t, pendingMine, 1)
	assertMoney(t, "20", pendingMine[0].Amount)

	all, err := svc.ListAll(ctx, nil, repository.Page{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, r := range all {
		require.NotNil(t, r.Student)
		assert.Equal(t, r.StudentID, r.Student.ID)
	}

	pending, err := svc.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending)
}
