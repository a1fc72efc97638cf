package service

import (
	"context"
	"fmt"

	apperrors "canteen/internal/errors"
	"canteen/internal/model"
	"canteen/internal/repository"
)

// ReviewService stores dish ratings.
type ReviewService interface {
	Create(ctx context.Context, studentID, dishID uint, rating int, comment string) (*model.Review, error)
	ListByDish(ctx context.Context, dishID uint, page repository.Page) ([]model.Review, error)
	ListByUser(ctx context.Context, userID uint, page repository.Page) ([]model.Review, error)
}

type reviewService struct {
	store repository.Store
}

// NewReviewService creates a new review service.
func NewReviewService(store repository.Store) ReviewService {
	return &reviewService{store: store}
}

// Create records a rating. Students may review any existing dish.
func (s *reviewService) Create(ctx context.Context, studentID, dishID uint, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.ErrInvalidRating
	}
	if _, err := s.store.Dishes().FindByID(ctx, dishID); err != nil {
		return nil, notFound(err, apperrors.ErrDishNotFound)
	}

	review := &model.Review{
		StudentID: studentID,
		DishID:    dishID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.store.Reviews().Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return review, nil
}

func (s *reviewService) ListByDish(ctx context.Context, dishID uint, page repository.Page) ([]model.Review, error) {
	return s.store.Reviews().ListByDish(ctx, dishID, page)
}

func (s *reviewService) ListByUser(ctx context.Context, userID uint, page repository.Page) ([]model.Review, error) {
	return s.store.Reviews().ListByStudent(ctx, userID, page)
}
