// Package seed loads demo users, allergens and dishes from YAML fixtures.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"canteen/internal/logger"
	"canteen/internal/model"
	"canteen/internal/repository"
	"canteen/internal/service"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixtures is the document layout of a seed file.
type Fixtures struct {
	Allergens []AllergenFixture `yaml:"allergens"`
	Users     []UserFixture     `yaml:"users"`
	Dishes    []DishFixture     `yaml:"dishes"`
}

type AllergenFixture struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type UserFixture struct {
	Email     string          `yaml:"email"`
	Password  string          `yaml:"password"`
	FullName  string          `yaml:"full_name"`
	ClassName string          `yaml:"class_name"`
	Role      model.Role      `yaml:"role"`
	Balance   decimal.Decimal `yaml:"balance"`
	Allergens []string        `yaml:"allergens"`
}

type DishFixture struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Price       decimal.Decimal `yaml:"price"`
	Breakfast   bool            `yaml:"breakfast"`
	Stock       int             `yaml:"stock"`
	Allergens   []string        `yaml:"allergens"`
}

// Result counts what a run created. Existing rows are left untouched.
type Result struct {
	Allergens int
	Users     int
	Dishes    int
	Skipped   int
}

// Default returns the fixtures bundled with the binary.
func Default() (*Fixtures, error) {
	return Parse(bytes.NewReader(defaultFixtures))
}

// Parse decodes and validates a fixtures document.
func Parse(r io.Reader) (*Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	for _, u := range f.Users {
		if u.Email == "" || u.Password == "" {
			return nil, fmt.Errorf("user fixture %q: email and password are required", u.Email)
		}
		if !u.Role.Valid() {
			return nil, fmt.Errorf("user fixture %q: unknown role %q", u.Email, u.Role)
		}
		if u.Balance.IsNegative() {
			return nil, fmt.Errorf("user fixture %q: negative balance", u.Email)
		}
	}
	for _, d := range f.Dishes {
		if d.Name == "" || !d.Price.IsPositive() {
			return nil, fmt.Errorf("dish fixture %q: name and a positive price are required", d.Name)
		}
	}
	return &f, nil
}

// Seeder writes fixtures through the repositories. Starting balances are
// credited via the ledger so balance history stays consistent.
type Seeder struct {
	store  repository.Store
	ledger service.LedgerService
}

// New creates a seeder.
func New(store repository.Store, ledger service.LedgerService) *Seeder {
	return &Seeder{store: store, ledger: ledger}
}

// Run applies the fixtures in one transaction. It is safe to run repeatedly.
func (s *Seeder) Run(ctx context.Context, f *Fixtures) (Result, error) {
	var res Result
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		allergens, err := s.seedAllergens(ctx, tx, f.Allergens, &res)
		if err != nil {
			return err
		}
		if err := s.seedUsers(ctx, tx, f.Users, allergens, &res); err != nil {
			return err
		}
		return s.seedDishes(ctx, tx, f.Dishes, allergens, &res)
	})
	if err != nil {
		return Result{}, err
	}
	logger.Log.Info("seed completed",
		zap.Int("allergens", res.Allergens),
		zap.Int("users", res.Users),
		zap.Int("dishes", res.Dishes),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

func (s *Seeder) seedAllergens(ctx context.Context, tx repository.Store, items []AllergenFixture, res *Result) (map[string]model.Allergen, error) {
	byName := make(map[string]model.Allergen, len(items))
	for _, item := range items {
		existing, err := tx.Allergens().FindByName(ctx, item.Name)
		switch {
		case err == nil:
			byName[item.Name] = *existing
			res.Skipped++
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("find allergen %q: %w", item.Name, err)
		}

		allergen := model.Allergen{Name: item.Name, Description: item.Description}
		if err := tx.Allergens().Create(ctx, &allergen); err != nil {
			return nil, fmt.Errorf("create allergen %q: %w", item.Name, err)
		}
		byName[item.Name] = allergen
		res.Allergens++
	}
	return byName, nil
}

func (s *Seeder) seedUsers(ctx context.Context, tx repository.Store, items []UserFixture, allergens map[string]model.Allergen, res *Result) error {
	for _, item := range items {
		email := strings.ToLower(strings.TrimSpace(item.Email))
		_, err := tx.Users().FindByEmail(ctx, email)
		if err == nil {
			res.Skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find user %q: %w", email, err)
		}

		tags, err := lookup(allergens, item.Allergens)
		if err != nil {
			return fmt.Errorf("user %q: %w", email, err)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(item.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		user := model.User{
			Email:        email,
			FullName:     item.FullName,
			ClassName:    item.ClassName,
			PasswordHash: string(hashed),
			Role:         item.Role,
			Balance:      decimal.Zero,
			IsActive:     true,
			Allergens:    tags,
		}
		if err := tx.Users().Create(ctx, &user); err != nil {
			return fmt.Errorf("create user %q: %w", email, err)
		}
		if item.Balance.IsPositive() {
			ref := service.LedgerRef{Type: service.RefSeed, Reason: "initial balance"}
			if _, err := s.ledger.Credit(ctx, tx, user.ID, item.Balance, ref); err != nil {
				return fmt.Errorf("credit user %q: %w", email, err)
			}
		}
		res.Users++
	}
	return nil
}

func (s *Seeder) seedDishes(ctx context.Context, tx repository.Store, items []DishFixture, allergens map[string]model.Allergen, res *Result) error {
	for _, item := range items {
		_, err := tx.Dishes().FindByName(ctx, item.Name)
		if err == nil {
			res.Skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find dish %q: %w", item.Name, err)
		}

		tags, err := lookup(allergens, item.Allergens)
		if err != nil {
			return fmt.Errorf("dish %q: %w", item.Name, err)
		}
		dish := model.Dish{
			Name:          item.Name,
			Description:   item.Description,
			Price:         item.Price,
			IsBreakfast:   item.Breakfast,
			StockQuantity: item.Stock,
			Allergens:     tags,
		}
		if err := tx.Dishes().Create(ctx, &dish); err != nil {
			return fmt.Errorf("create dish %q: %w", item.Name, err)
		}
		res.Dishes++
	}
	return nil
}

func lookup(allergens map[string]model.Allergen, names []string) ([]model.Allergen, error) {
	out := make([]model.Allergen, 0, len(names))
	for _, name := range names {
		a, ok := allergens[name]
		if !ok {
			return nil, fmt.Errorf("unknown allergen %q", name)
		}
		out = append(out, a)
	}
	return out, nil
}
