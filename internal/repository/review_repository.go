package repository

import (
	"context"

	"gorm.io/gorm"

	"canteen/internal/model"
)

// ReviewRepository defines review persistence operations.
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	ListByDish(ctx context.Context, dishID uint, page Page) ([]model.Review, error)
	ListByStudent(ctx context.Context, studentID uint, page Page) ([]model.Review, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) ListByDish(ctx context.Context, dishID uint, page Page) ([]model.Review, error) {
	return r.list(ctx, "dish_id = ?", dishID, page)
}

func (r *reviewRepository) ListByStudent(ctx context.Context, studentID uint, page Page) ([]model.Review, error) {
	return r.list(ctx, "student_id = ?", studentID, page)
}

func (r *reviewRepository) list(ctx context.Context, cond string, arg uint, page Page) ([]model.Review, error) {
	reviews := []model.Review{}
	query := r.db.WithContext(ctx).Where(cond, arg)
	if err := page.apply(query).Order("created_at DESC, id DESC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}
