package repository

import (
	"context"

	"gorm.io/gorm"

	"canteen/internal/model"
)

// AllergenRepository defines allergen persistence operations.
type AllergenRepository interface {
	Create(ctx context.Context, allergen *model.Allergen) error
	FindByName(ctx context.Context, name string) (*model.Allergen, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Allergen, error)
	List(ctx context.Context, page Page) ([]model.Allergen, error)
}

type allergenRepository struct {
	db *gorm.DB
}

// NewAllergenRepository creates a new allergen repository.
func NewAllergenRepository(db *gorm.DB) AllergenRepository {
	return &allergenRepository{db: db}
}

func (r *allergenRepository) Create(ctx context.Context, allergen *model.Allergen) error {
	return r.db.WithContext(ctx).Create(allergen).Error
}

func (r *allergenRepository) FindByName(ctx context.Context, name string) (*model.Allergen, error) {
	var allergen model.Allergen
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&allergen).Error; err != nil {
		return nil, err
	}
	return &allergen, nil
}

func (r *allergenRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Allergen, error) {
	allergens := []model.Allergen{}
	if len(ids) == 0 {
		return allergens, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&allergens).Error; err != nil {
		return nil, err
	}
	return allergens, nil
}

func (r *allergenRepository) List(ctx context.Context, page Page) ([]model.Allergen, error) {
	allergens := []model.Allergen{}
	if err := page.apply(r.db.WithContext(ctx)).Order("name").Find(&allergens).Error; err != nil {
		return nil, err
	}
	return allergens, nil
}
