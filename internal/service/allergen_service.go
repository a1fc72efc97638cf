package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "canteen/internal/errors"
	"canteen/internal/model"
	"canteen/internal/repository"
)

// AllergenService manages the allergen registry.
type AllergenService interface {
	List(ctx context.Context, page repository.Page) ([]model.Allergen, error)
	Create(ctx context.Context, name, description string) (*model.Allergen, error)
}

type allergenService struct {
	store repository.Store
}

// NewAllergenService creates a new allergen service.
func NewAllergenService(store repository.Store) AllergenService {
	return &allergenService{store: store}
}

func (s *allergenService) List(ctx context.Context, page repository.Page) ([]model.Allergen, error) {
	return s.store.Allergens().List(ctx, page)
}

func (s *allergenService) Create(ctx context.Context, name, description string) (*model.Allergen, error) {
	name = strings.TrimSpace(name)
	_, err := s.store.Allergens().FindByName(ctx, name)
	if err == nil {
		return nil, apperrors.ErrAllergenExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check allergen: %w", err)
	}

	allergen := &model.Allergen{Name: name, Description: description}
	if err := s.store.Allergens().Create(ctx, allergen); err != nil {
		return nil, fmt.Errorf("create allergen: %w", err)
	}
	return allergen, nil
}
