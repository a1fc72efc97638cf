package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "canteen/internal/errors"
	"canteen/internal/model"
	"canteen/internal/repository"
)

func dishNames(dishes []model.Dish) []string {
	names := make([]string, 0, len(dishes))
	for _, d := range dishes {
		names = append(names, d.Name)
	}
	return names
}

func TestDishService_MenuExcludesUserAllergens(t *testing.T) {
	env := newTestEnv(t)
	nuts := env.createAllergen(t, "nuts")
	milk := env.createAllergen(t, "milk")
	gluten := env.createAllergen(t, "gluten")
	student := env.createUser(t, "kid@school.test", model.RoleStudent, "0", nuts, milk)

	env.createDish(t, "Nut Bar", "10", 1, nuts)
	env.createDish(t, "Pancakes", "10", 1, milk, gluten)
	env.createDish(t, "Toast", "10", 1, gluten)
	env.createDish(t, "Apple", "10", 1)

	svc := NewDishService(env.store, env.cache)
	ctx := context.Background()

	menu, err := svc.Menu(ctx, MenuQuery{UserID: student.ID, ExcludeAllergens: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Toast", "Apple"}, dishNames(menu))

	everything, err := svc.Menu(ctx, MenuQuery{UserID: student.ID})
	require.NoError(t, err)
	assert.Len(t, everything, 4)
}

func TestDishService_MealTypeFilter(t *testing.T) {
	env := newTestEnv(t)
	svc := NewDishService(env.store, env.cache)
	ctx := context.Background()

	_, err := svc.Create(ctx, DishInput{Name: "Oatmeal", Price: decimal.NewFromInt(50), IsBreakfast: true, StockQuantity: 3})
	require.NoError(t, err)
	lunch, err := svc.Create(ctx, DishInput{Name: "Borscht", Price: decimal.NewFromInt(120), IsBreakfast: false, StockQuantity: 3})
	require.NoError(t, err)
	assert.False(t, lunch.IsBreakfast)

	no := false
	dishes, err := svc.List(ctx, repository.DishFilter{IsBreakfast: &no}, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Borscht"}, dishNames(dishes))
}

func TestDishService_CreateUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	nuts := env.createAllergen(t, "nuts")
	milk := env.createAllergen(t, "milk")
	svc := NewDishService(env.store, env.cache)
	ctx := context.Background()

	_, err := svc.Create(ctx, DishInput{Name: "Free lunch", Price: decimal.Zero})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	_, err = svc.Create(ctx, DishInput{Name: "Mystery", Price: decimal.NewFromInt(1), AllergenIDs: []uint{42}})
	assert.ErrorIs(t, err, apperrors.ErrAllergenNotFound)

	dish, err := svc.Create(ctx, DishInput{Name: "Cake", Price: decimal.NewFromInt(80), StockQuantity: 4, AllergenIDs: []uint{nuts.ID}})
	require.NoError(t, err)

	_, err = svc.Get(ctx, dish.ID)
	require.NoError(t, err)
	require.True(t, env.redis.Exists(dishCacheKey(dish.ID)))

	price := decimal.RequireFromString("95.50")
	ids := []uint{milk.ID}
	updated, err := svc.Update(ctx, dish.ID, DishUpdate{Price: &price, AllergenIDs: &ids})
	require.NoError(t, err)
	assertMoney(t, "95.50", updated.Price)
	assert.Equal(t, "Cake", updated.Name)
	require.Len(t, updated.Allergens, 1)
	assert.Equal(t, "milk", updated.Allergens[0].Name)
	assert.False(t, env.redis.Exists(dishCacheKey(dish.ID)))

	negative := decimal.NewFromInt(-1)
	_, err = svc.Update(ctx, dish.ID, DishUpdate{Price: &negative})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	_, err = svc.Update(ctx, 999, DishUpdate{Name: strPtr("x")})
	assert.ErrorIs(t, err, apperrors.ErrDishNotFound)

	require.NoError(t, svc.Delete(ctx, dish.ID))
	_, err = svc.Get(ctx, dish.ID)
	assert.ErrorIs(t, err, apperrors.ErrDishNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, dish.ID), apperrors.ErrDishNotFound)
}

func TestAllergenService(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAllergenService(env.store)
	ctx := context.Background()

	_, err := svc.Create(ctx, "peanuts", "all peanut products")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "eggs", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, " peanuts ", "")
	assert.ErrorIs(t, err, apperrors.ErrAllergenExists)

	list, err := svc.List(ctx, repository.Page{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "eggs", list[0].Name)
}
