package repository

import (
	"context"

	"gorm.io/gorm"

	"canteen/internal/model"
)

// DishFilter narrows a menu listing.
type DishFilter struct {
	IsBreakfast *bool
	// ExcludeAllergenIDs drops every dish tagged with at least one of these allergens.
	ExcludeAllergenIDs []uint
}

// DishRepository defines dish persistence operations.
type DishRepository interface {
	Create(ctx context.Context, dish *model.Dish) error
	FindByID(ctx context.Context, id uint) (*model.Dish, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Dish, error)
	FindByName(ctx context.Context, name string) (*model.Dish, error)
	List(ctx context.Context, filter DishFilter, page Page) ([]model.Dish, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	ReplaceAllergens(ctx context.Context, dish *model.Dish, allergens []model.Allergen) error
	DecrementStock(ctx context.Context, id uint, by int) error
	Delete(ctx context.Context, id uint) error
}

type dishRepository struct {
	db *gorm.DB
}

// NewDishRepository creates a new dish repository.
func NewDishRepository(db *gorm.DB) DishRepository {
	return &dishRepository{db: db}
}

func (r *dishRepository) Create(ctx context.Context, dish *model.Dish) error {
	return r.db.WithContext(ctx).Create(dish).Error
}

func (r *dishRepository) FindByID(ctx context.Context, id uint) (*model.Dish, error) {
	var dish model.Dish
	if err := r.db.WithContext(ctx).Preload("Allergens").First(&dish, id).Error; err != nil {
		return nil, err
	}
	return &dish, nil
}

// FindByIDForUpdate loads the dish row with a write lock.
func (r *dishRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Dish, error) {
	var dish model.Dish
	if err := forUpdate(r.db.WithContext(ctx)).First(&dish, id).Error; err != nil {
		return nil, err
	}
	return &dish, nil
}

func (r *dishRepository) FindByName(ctx context.Context, name string) (*model.Dish, error) {
	var dish model.Dish
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&dish).Error; err != nil {
		return nil, err
	}
	return &dish, nil
}

func (r *dishRepository) List(ctx context.Context, filter DishFilter, page Page) ([]model.Dish, error) {
	db := r.db.WithContext(ctx)
	query := db.Model(&model.Dish{}).Preload("Allergens")

	if filter.IsBreakfast != nil {
		query = query.Where("is_breakfast = ?", *filter.IsBreakfast)
	}
	if len(filter.ExcludeAllergenIDs) > 0 {
		tagged := db.Table("dish_allergens").Select("dish_id").Where("allergen_id IN ?", filter.ExcludeAllergenIDs)
		query = query.Where("id NOT IN (?)", tagged)
	}

	dishes := []model.Dish{}
	if err := page.apply(query).Order("id").Find(&dishes).Error; err != nil {
		return nil, err
	}
	return dishes, nil
}

func (r *dishRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Dish{}).Where("id = ?", id).Updates(fields).Error
}

func (r *dishRepository) ReplaceAllergens(ctx context.Context, dish *model.Dish, allergens []model.Allergen) error {
	return r.db.WithContext(ctx).Model(dish).Association("Allergens").Replace(allergens)
}

// DecrementStock lowers stock_quantity by the given amount. There is no
// floor; stock may go negative.
func (r *dishRepository) DecrementStock(ctx context.Context, id uint, by int) error {
	return r.db.WithContext(ctx).Model(&model.Dish{}).
		Where("id = ?", id).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", by)).Error
}

// Delete soft-deletes a dish so existing orders keep their reference.
func (r *dishRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Dish{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
