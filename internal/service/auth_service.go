package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"canteen/internal/auth"
	apperrors "canteen/internal/errors"
	"canteen/internal/model"
	"canteen/internal/repository"
)

const bcryptCost = 10

// RegisterInput carries the public registration form.
type RegisterInput struct {
	Email       string
	Password    string
	FullName    string
	ClassName   string
	Role        model.Role
	AllergenIDs []uint
	Preferences string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *model.User
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken, accessToken string) error
}

type authService struct {
	store      repository.Store
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(store repository.Store, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		store:      store,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Register creates a student or chef account with a hashed password.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	role := in.Role
	if role == "" {
		role = model.RoleStudent
	}
	if role != model.RoleStudent && role != model.RoleChef {
		return nil, apperrors.ErrInvalidRole
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := s.store.Users().FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	allergens, err := resolveAllergens(ctx, s.store, in.AllergenIDs)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		FullName:     in.FullName,
		ClassName:    in.ClassName,
		PasswordHash: string(hashedPassword),
		Role:         role,
		Balance:      decimal.Zero,
		Preferences:  in.Preferences,
		IsActive:     true,
		Allergens:    allergens,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.store.Users().FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, s.jwtService.RefreshExpiry()); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &LoginResult{AccessToken: accessToken, RefreshToken: refreshToken, User: user}, nil
}

// RefreshToken validates a refresh token and returns a new access token
// carrying the user's current role.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return "", apperrors.ErrInvalidRefreshToken
	}

	storedUserID, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil || storedUserID != claims.UserID {
		return "", apperrors.ErrInvalidRefreshToken
	}

	user, err := s.store.Users().FindByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return "", apperrors.ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout invalidates a refresh token and, when given, revokes the access
// token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, refreshToken, accessToken string) error {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidRefreshToken
	}
	if err := s.tokenStore.DeleteRefreshToken(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	if accessToken == "" {
		return nil
	}
	access, err := s.jwtService.ValidateToken(accessToken)
	if err != nil {
		// already unusable
		return nil
	}
	return s.tokenStore.BlacklistAccessToken(ctx, access.ID, access.RemainingTTL(time.Now()))
}

// resolveAllergens loads the allergens for ids and fails if any is unknown.
func resolveAllergens(ctx context.Context, store repository.Store, ids []uint) ([]model.Allergen, error) {
	ids = uniqueIDs(ids)
	allergens, err := store.Allergens().FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load allergens: %w", err)
	}
	if len(allergens) != len(ids) {
		return nil, apperrors.ErrAllergenNotFound
	}
	return allergens, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
