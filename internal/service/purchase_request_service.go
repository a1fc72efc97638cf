package service

import (
	"context"
	"fmt"

	apperrors "canteen/internal/errors"
	"canteen/internal/model"
	"canteen/internal/repository"
)

// PurchaseRequestService handles chef requests for ingredients.
type PurchaseRequestService interface {
	Create(ctx context.Context, chefID uint, itemName, quantity string) (*model.PurchaseRequest, error)
	ListByChef(ctx context.Context, chefID uint, status *model.RequestStatus, page repository.Page) ([]model.PurchaseRequest, error)
	ListAll(ctx context.Context, status *model.RequestStatus, page repository.Page) ([]model.PurchaseRequest, error)
	UpdateStatus(ctx context.Context, id uint, status model.RequestStatus, comment *string) (*model.PurchaseRequest, error)
}

type purchaseRequestService struct {
	store repository.Store
}

// NewPurchaseRequestService creates a new purchase request service.
func NewPurchaseRequestService(store repository.Store) PurchaseRequestService {
	return &purchaseRequestService{store: store}
}

func (s *purchaseRequestService) Create(ctx context.Context, chefID uint, itemName, quantity string) (*model.PurchaseRequest, error) {
	req := &model.PurchaseRequest{
		ChefID:   chefID,
		ItemName: itemName,
		Quantity: quantity,
		Status:   model.RequestStatusPending,
	}
	if err := s.store.PurchaseRequests().Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create purchase request: %w", err)
	}
	return req, nil
}

func (s *purchaseRequestService) ListByChef(ctx context.Context, chefID uint, status *model.RequestStatus, page repository.Page) ([]model.PurchaseRequest, error) {
	return s.store.PurchaseRequests().List(ctx, &chefID, status, page)
}

func (s *purchaseRequestService) ListAll(ctx context.Context, status *model.RequestStatus, page repository.Page) ([]model.PurchaseRequest, error) {
	return s.store.PurchaseRequests().List(ctx, nil, status, page)
}

func (s *purchaseRequestService) UpdateStatus(ctx context.Context, id uint, status model.RequestStatus, comment *string) (*model.PurchaseRequest, error) {
	var req *model.PurchaseRequest
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		req, err = tx.PurchaseRequests().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrRequestNotFound)
		}

		changed, err := transition(req.Status, status)
		if err != nil {
			return err
		}
		if !changed && comment == nil {
			return nil
		}

		req.Status = status
		if comment != nil {
			req.AdminComment = *comment
		}
		if err := tx.PurchaseRequests().Update(ctx, req); err != nil {
			return fmt.Errorf("update purchase request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}
