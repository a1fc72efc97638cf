package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"canteen/internal/cache"
	apperrors "canteen/internal/errors"
	"canteen/internal/model"
	"canteen/internal/repository"
)

const dishCacheTTL = 5 * time.Minute

// DishInput is the full set of fields for a new dish.
type DishInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	IsBreakfast   bool
	StockQuantity int
	AllergenIDs   []uint
}

// DishUpdate is a partial update. A non-nil AllergenIDs replaces the set.
type DishUpdate struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	IsBreakfast   *bool
	StockQuantity *int
	AllergenIDs   *[]uint
}

// MenuQuery selects the dishes shown to a user.
type MenuQuery struct {
	UserID      uint
	IsBreakfast *bool
	// ExcludeAllergens hides dishes containing any of the user's allergens.
	ExcludeAllergens bool
	Page             repository.Page
}

// DishService manages the dish catalog.
type DishService interface {
	Menu(ctx context.Context, q MenuQuery) ([]model.Dish, error)
	List(ctx context.Context, filter repository.DishFilter, page repository.Page) ([]model.Dish, error)
	Get(ctx context.Context, id uint) (*model.Dish, error)
	Create(ctx context.Context, in DishInput) (*model.Dish, error)
	Update(ctx context.Context, id uint, in DishUpdate) (*model.Dish, error)
	Delete(ctx context.Context, id uint) error
}

type dishService struct {
	store repository.Store
	cache *cache.Client
}

// NewDishService creates a new dish service.
func NewDishService(store repository.Store, cache *cache.Client) DishService {
	return &dishService{store: store, cache: cache}
}

func dishCacheKey(id uint) string {
	return fmt.Sprintf("dish:%d", id)
}

func (s *dishService) Menu(ctx context.Context, q MenuQuery) ([]model.Dish, error) {
	filter := repository.DishFilter{IsBreakfast: q.IsBreakfast}
	if q.ExcludeAllergens {
		user, err := s.store.Users().FindByID(ctx, q.UserID)
		if err != nil {
			return nil, notFound(err, apperrors.ErrUserNotFound)
		}
		filter.ExcludeAllergenIDs = user.AllergenIDs()
	}
	return s.List(ctx, filter, q.Page)
}

func (s *dishService) List(ctx context.Context, filter repository.DishFilter, page repository.Page) ([]model.Dish, error) {
	dishes, err := s.store.Dishes().List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	return dishes, nil
}

func (s *dishService) Get(ctx context.Context, id uint) (*model.Dish, error) {
	var cached model.Dish
	if s.cache.GetJSON(ctx, dishCacheKey(id), &cached) {
		return &cached, nil
	}

	dish, err := s.store.Dishes().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrDishNotFound)
	}
	s.cache.SetJSON(ctx, dishCacheKey(id), dish, dishCacheTTL)
	return dish, nil
}

func (s *dishService) Create(ctx context.Context, in DishInput) (*model.Dish, error) {
	if in.Price.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.ErrInvalidAmount
	}
	allergens, err := resolveAllergens(ctx, s.store, in.AllergenIDs)
	if err != nil {
		return nil, err
	}

	dish := &model.Dish{
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		IsBreakfast:   in.IsBreakfast,
		StockQuantity: in.StockQuantity,
		Allergens:     allergens,
	}
	if err := s.store.Dishes().Create(ctx, dish); err != nil {
		return nil, fmt.Errorf("create dish: %w", err)
	}
	return dish, nil
}

func (s *dishService) Update(ctx context.Context, id uint, in DishUpdate) (*model.Dish, error) {
	if in.Price != nil && in.Price.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.ErrInvalidAmount
	}

	fields := map[string]interface{}{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.IsBreakfast != nil {
		fields["is_breakfast"] = *in.IsBreakfast
	}
	if in.StockQuantity != nil {
		fields["stock_quantity"] = *in.StockQuantity
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		dish, err := tx.Dishes().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrDishNotFound)
		}
		if err := tx.Dishes().UpdateFields(ctx, id, fields); err != nil {
			return fmt.Errorf("update dish: %w", err)
		}
		if in.AllergenIDs != nil {
			allergens, err := resolveAllergens(ctx, tx, *in.AllergenIDs)
			if err != nil {
				return err
			}
			if err := tx.Dishes().ReplaceAllergens(ctx, dish, allergens); err != nil {
				return fmt.Errorf("replace allergens: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, dishCacheKey(id))
	dish, err := s.store.Dishes().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrDishNotFound)
	}
	return dish, nil
}

// Delete soft-deletes the dish. Orders keep pointing at it.
func (s *dishService) Delete(ctx context.Context, id uint) error {
	if err := s.store.Dishes().Delete(ctx, id); err != nil {
		return notFound(err, apperrors.ErrDishNotFound)
	}
	_ = s.cache.Delete(ctx, dishCacheKey(id))
	return nil
}
