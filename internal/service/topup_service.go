package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"canteen/internal/cache"
	apperrors "canteen/internal/errors"
	"canteen/internal/logger"
	"canteen/internal/metrics"
	"canteen/internal/model"
	"canteen/internal/repository"
)

// TopupService handles student balance top-up requests.
type TopupService interface {
	Create(ctx context.Context, studentID uint, amount decimal.Decimal) (*model.BalanceTopupRequest, error)
	ListByStudent(ctx context.Context, studentID uint, status *model.RequestStatus, page repository.Page) ([]model.BalanceTopupRequest, error)
	ListAll(ctx context.Context, status *model.RequestStatus, page repository.Page) ([]model.BalanceTopupRequest, error)
	UpdateStatus(ctx context.Context, id uint, status model.RequestStatus, comment *string) (*model.BalanceTopupRequest, error)
	PendingCount(ctx context.Context) (int64, error)
}

type topupService struct {
	store  repository.Store
	ledger LedgerService
	cache  *cache.Client
}

// NewTopupService creates a new top-up service.
func NewTopupService(store repository.Store, ledger LedgerService, cache *cache.Client) TopupService {
	return &topupService{store: store, ledger: ledger, cache: cache}
}

func (s *topupService) Create(ctx context.Context, studentID uint, amount decimal.Decimal) (*model.BalanceTopupRequest, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.ErrInvalidAmount
	}

	req := &model.BalanceTopupRequest{
		StudentID: studentID,
		Amount:    amount,
		Status:    model.RequestStatusPending,
	}
	if err := s.store.TopupRequests().Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create topup request: %w", err)
	}
	return req, nil
}

func (s *topupService) ListByStudent(ctx context.Context, studentID uint, status *model.RequestStatus, page repository.Page) ([]model.BalanceTopupRequest, error) {
	return s.store.TopupRequests().List(ctx, &studentID, status, page)
}

func (s *topupService) ListAll(ctx context.Context, status *model.RequestStatus, page repository.Page) ([]model.BalanceTopupRequest, error) {
	return s.store.TopupRequests().List(ctx, nil, status, page)
}

// UpdateStatus moves a request out of pending. Approval credits the student
// in the same transaction; the locked request row keeps a second approval
// from crediting again.
func (s *topupService) UpdateStatus(ctx context.Context, id uint, status model.RequestStatus, comment *string) (*model.BalanceTopupRequest, error) {
	var (
		req     *model.BalanceTopupRequest
		changed bool
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		req, err = tx.TopupRequests().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrRequestNotFound)
		}

		changed, err = transition(req.Status, status)
		if err != nil {
			return err
		}
		if !changed && comment == nil {
			return nil
		}

		if changed && status == model.RequestStatusApproved {
			ref := LedgerRef{Type: RefTopup, ID: req.ID, Reason: "balance top-up"}
			if _, err := s.ledger.Credit(ctx, tx, req.StudentID, req.Amount, ref); err != nil {
				return err
			}
		}

		req.Status = status
		if comment != nil {
			req.AdminComment = *comment
		}
		if err := tx.TopupRequests().Update(ctx, req); err != nil {
			return fmt.Errorf("update topup request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		metrics.TopupDecisions.WithLabelValues(string(status)).Inc()
		_ = s.cache.Delete(ctx, userCacheKey(req.StudentID))
		logger.Log.Info("topup request updated",
			zap.Uint("request_id", req.ID),
			zap.Uint("student_id", req.StudentID),
			zap.String("status", string(status)),
			zap.String("amount", req.Amount.StringFixed(2)),
		)
	}
	return req, nil
}

func (s *topupService) PendingCount(ctx context.Context) (int64, error) {
	return s.store.TopupRequests().CountByStatus(ctx, model.RequestStatusPending)
}
