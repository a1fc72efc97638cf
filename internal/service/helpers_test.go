package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"canteen/internal/cache"
	"canteen/internal/model"
	"canteen/internal/repository"
	"canteen/internal/testutil"
)

type testEnv struct {
	db     *gorm.DB
	store  repository.Store
	cache  *cache.Client
	redis  *miniredis.Miniredis
	ledger LedgerService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gormDB := testutil.NewDB(t)
	client, mr := testutil.NewCache(t)
	store := repository.NewStore(gormDB)
	return &testEnv{
		db:     gormDB,
		store:  store,
		cache:  client,
		redis:  mr,
		ledger: NewLedgerService(store),
	}
}

func (e *testEnv) createUser(t *testing.T, email string, role model.Role, balance string, allergens ...model.Allergen) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		FullName:     "Test " + string(role),
		PasswordHash: "x",
		Role:         role,
		Balance:      decimal.RequireFromString(balance),
		IsActive:     true,
		Allergens:    allergens,
	}
	require.NoError(t, e.store.Users().Create(context.Background(), user))
	return user
}

func (e *testEnv) createAllergen(t *testing.T, name string) model.Allergen {
	t.Helper()
	allergen := model.Allergen{Name: name}
	require.NoError(t, e.store.Allergens().Create(context.Background(), &allergen))
	return allergen
}

func (e *testEnv) createDish(t *testing.T, name, price string, stock int, allergens ...model.Allergen) *model.Dish {
	t.Helper()
	dish := &model.Dish{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		IsBreakfast:   true,
		StockQuantity: stock,
		Allergens:     allergens,
	}
	require.NoError(t, e.store.Dishes().Create(context.Background(), dish))
	return dish
}

func (e *testEnv) balance(t *testing.T, userID uint) decimal.Decimal {
	t.Helper()
	user, err := e.store.Users().FindByID(context.Background(), userID)
	require.NoError(t, err)
	return user.Balance
}

func (e *testEnv) stock(t *testing.T, dishID uint) int {
	t.Helper()
	var dish model.Dish
	require.NoError(t, e.db.Unscoped().First(&dish, dishID).Error)
	return dish.StockQuantity
}

func (e *testEnv) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}
