package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"canteen/internal/cache"
	apperrors "canteen/internal/errors"
	"canteen/internal/model"
	"canteen/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// ProfileUpdate changes dietary settings. Nil fields are left untouched.
type ProfileUpdate struct {
	AllergenIDs *[]uint
	Preferences *string
}

// PersonalInfoUpdate changes name and class. Nil fields are left untouched.
type PersonalInfoUpdate struct {
	FullName  *string
	ClassName *string
}

// UserService exposes profile operations for the current user.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	UpdateProfile(ctx context.Context, id uint, in ProfileUpdate) (*model.User, error)
	UpdatePersonalInfo(ctx context.Context, id uint, in PersonalInfoUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, id uint, oldPassword, newPassword string) error
}

type userService struct {
	store repository.Store
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(store repository.Store, cache *cache.Client) UserService {
	return &userService{store: store, cache: cache}
}

func userCacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, userCacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	s.cache.SetJSON(ctx, userCacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uint, in ProfileUpdate) (*model.User, error) {
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		user, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrUserNotFound)
		}

		if in.AllergenIDs != nil {
			allergens, err := resolveAllergens(ctx, tx, *in.AllergenIDs)
			if err != nil {
				return err
			}
			if err := tx.Users().ReplaceAllergens(ctx, user, allergens); err != nil {
				return fmt.Errorf("replace allergens: %w", err)
			}
		}
		if in.Preferences != nil {
			if err := tx.Users().UpdateFields(ctx, id, map[string]interface{}{"preferences": *in.Preferences}); err != nil {
				return fmt.Errorf("update preferences: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *userService) UpdatePersonalInfo(ctx context.Context, id uint, in PersonalInfoUpdate) (*model.User, error) {
	fields := map[string]interface{}{}
	if in.FullName != nil {
		fields["full_name"] = *in.FullName
	}
	if in.ClassName != nil {
		fields["class_name"] = *in.ClassName
	}

	if _, err := s.store.Users().FindByID(ctx, id); err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	if err := s.store.Users().UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("update personal info: %w", err)
	}
	return s.reload(ctx, id)
}

func (s *userService) ChangePassword(ctx context.Context, id uint, oldPassword, newPassword string) error {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return notFound(err, apperrors.ErrUserNotFound)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return apperrors.ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.Users().UpdateFields(ctx, id, map[string]interface{}{"password_hash": string(hashed)}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// reload drops the cached copy and reads the user back from the database.
func (s *userService) reload(ctx context.Context, id uint) (*model.User, error) {
	_ = s.cache.Delete(ctx, userCacheKey(id))
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return user, nil
}
