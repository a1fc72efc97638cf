package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"canteen/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	UpdateBalance(ctx context.Context, id uint, newBalance decimal.Decimal) error
	DeductBalance(ctx context.Context, id uint, amount, newBalance decimal.Decimal) (bool, error)
	ReplaceAllergens(ctx context.Context, user *model.User, allergens []model.Allergen) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Allergens").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDForUpdate loads the user row with a write lock. Associations are
// not preloaded.
func (r *userRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := forUpdate(r.db.WithContext(ctx)).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *userRepository) UpdateBalance(ctx context.Context, id uint, newBalance decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("balance", newBalance).Error
}

// DeductBalance writes newBalance only while the stored balance still covers
// amount. It reports false when the guard did not match.
func (r *userRepository) DeductBalance(ctx context.Context, id uint, amount, newBalance decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND balance >= ?", id, amount).
		UpdateColumn("balance", newBalance)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *userRepository) ReplaceAllergens(ctx context.Context, user *model.User, allergens []model.Allergen) error {
	return r.db.WithContext(ctx).Model(user).Association("Allergens").Replace(allergens)
}
