package repository

import (
	"context"

	"gorm.io/gorm"

	"canteen/internal/model"
)

// PurchaseRequestRepository defines purchase request persistence operations.
type PurchaseRequestRepository interface {
	Create(ctx context.Context, req *model.PurchaseRequest) error
	FindByIDForUpdate(ctx context.Context, id uint) (*model.PurchaseRequest, error)
	List(ctx context.Context, chefID *uint, status *model.RequestStatus, page Page) ([]model.PurchaseRequest, error)
	Update(ctx context.Context, req *model.PurchaseRequest) error
}

type purchaseRequestRepository struct {
	db *gorm.DB
}

// NewPurchaseRequestRepository creates a new purchase request repository.
func NewPurchaseRequestRepository(db *gorm.DB) PurchaseRequestRepository {
	return &purchaseRequestRepository{db: db}
}

func (r *purchaseRequestRepository) Create(ctx context.Context, req *model.PurchaseRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *purchaseRequestRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.PurchaseRequest, error) {
	var req model.PurchaseRequest
	if err := forUpdate(r.db.WithContext(ctx)).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns requests newest first. A nil chefID lists every chef's requests.
func (r *purchaseRequestRepository) List(ctx context.Context, chefID *uint, status *model.RequestStatus, page Page) ([]model.PurchaseRequest, error) {
	query := r.db.WithContext(ctx).Model(&model.PurchaseRequest{})
	if chefID != nil {
		query = query.Where("chef_id = ?", *chefID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	reqs := []model.PurchaseRequest{}
	if err := page.apply(query).Order("created_at DESC, id DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *purchaseRequestRepository) Update(ctx context.Context, req *model.PurchaseRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

// TopupRequestRepository defines balance top-up request persistence operations.
type TopupRequestRepository interface {
	Create(ctx context.Context, req *model.BalanceTopupRequest) error
	FindByID(ctx context.Context, id uint) (*model.BalanceTopupRequest, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.BalanceTopupRequest, error)
	List(ctx context.Context, studentID *uint, status *model.RequestStatus, page Page) ([]model.BalanceTopupRequest, error)
	Update(ctx context.Context, req *model.BalanceTopupRequest) error
	CountByStatus(ctx context.Context, status model.RequestStatus) (int64, error)
}

type topupRequestRepository struct {
	db *gorm.DB
}

// NewTopupRequestRepository creates a new top-up request repository.
func NewTopupRequestRepository(db *gorm.DB) TopupRequestRepository {
	return &topupRequestRepository{db: db}
}

func (r *topupRequestRepository) Create(ctx context.Context, req *model.BalanceTopupRequest) error {
	return r.db.WithContext(ctx).Omit("Student").Create(req).Error
}

func (r *topupRequestRepository) FindByID(ctx context.Context, id uint) (*model.BalanceTopupRequest, error) {
	var req model.BalanceTopupRequest
	if err := r.db.WithContext(ctx).Preload("Student").First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *topupRequestRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.BalanceTopupRequest, error) {
	var req model.BalanceTopupRequest
	if err := forUpdate(r.db.WithContext(ctx)).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns requests newest first. A nil studentID lists every student's
// requests with the student preloaded.
func (r *topupRequestRepository) List(ctx context.Context, studentID *uint, status *model.RequestStatus, page Page) ([]model.BalanceTopupRequest, error) {
	query := r.db.WithContext(ctx).Model(&model.BalanceTopupRequest{})
	if studentID != nil {
		query = query.Where("student_id = ?", *studentID)
	} else {
		query = query.Preload("Student")
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	reqs := []model.BalanceTopupRequest{}
	if err := page.apply(query).Order("created_at DESC, id DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *topupRequestRepository) Update(ctx context.Context, req *model.BalanceTopupRequest) error {
	return r.db.WithContext(ctx).Omit("Student").Save(req).Error
}

func (r *topupRequestRepository) CountByStatus(ctx context.Context, status model.RequestStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.BalanceTopupRequest{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
