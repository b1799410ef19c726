package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lamason/internal/models"
	"lamason/internal/store/memstore"
)

func TestMenuService_CreateValidatesAndNormalizes(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	categories := NewCategoryService(s.Categories)
	menu := NewMenuService(s.Menu, s.Categories)

	pizzas, err := categories.Create(ctx, CategoryInput{Name: "Pizzas"})
	require.NoError(t, err)

	_, err = menu.Create(ctx, MenuItemInput{Name: "", Price: 0, CategoryID: primitive.NewObjectID().Hex()})
	verr := requireValidation(t, err)
	assert.Equal(t, "Name is required", messageFor(verr, "name"))
	assert.Equal(t, "Price must be greater than zero", messageFor(verr, "price"))
	assert.Equal(t, "Unknown category", messageFor(verr, "categoryId"))

	item, err := menu.Create(ctx, MenuItemInput{
		Name:       " Margherita ",
		Price:      22.99,
		CategoryID: pizzas.ID.Hex(),
		Tags:       []string{"Vegetarian", " vegetarian", "Classic"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Margherita", item.Name)
	assert.True(t, item.IsAvailable)
	assert.Equal(t, models.StringList{"vegetarian", "classic"}, item.Tags)
}

func TestMenuService_RetireHidesFromPublicList(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	category, err := NewCategoryService(s.Categories).Create(ctx, CategoryInput{Name: "Desserts"})
	require.NoError(t, err)
	menu := NewMenuService(s.Menu, s.Categories)

	item, err := menu.Create(ctx, MenuItemInput{Name: "Tiramisu", Price: 8, CategoryID: category.ID.Hex(), Featured: true})
	require.NoError(t, err)

	retired, err := menu.Retire(ctx, item.ID.Hex())
	require.NoError(t, err)
	assert.False(t, retired.IsAvailable)

	public, total, err := menu.List(ctx, MenuQuery{})
	require.NoError(t, err)
	assert.Empty(t, public)
	assert.Zero(t, total)

	all, _, err := menu.List(ctx, MenuQuery{IncludeUnavailable: true, CategoryID: category.ID.Hex()})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = menu.Retire(ctx, primitive.NewObjectID().Hex())
	var nerr *NotFoundError
	assert.True(t, errors.As(err, &nerr))
}

func TestMenuService_UpdatePatchesOnlyGivenFields(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	category, err := NewCategoryService(s.Categories).Create(ctx, CategoryInput{Name: "Mains"})
	require.NoError(t, err)
	menu := NewMenuService(s.Menu, s.Categories)

	item, err := menu.Create(ctx, MenuItemInput{Name: "Lasagna", Price: 18, CategoryID: category.ID.Hex(), Description: "Layered"})
	require.NoError(t, err)

	price := 19.5
	updated, err := menu.Update(ctx, item.ID.Hex(), MenuItemPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 19.5, updated.Price)
	assert.Equal(t, "Layered", updated.Description)

	_, err = menu.Update(ctx, item.ID.Hex(), MenuItemPatch{})
	assert.True(t, requireValidation(t, err).Has("body"))

	negative := -1.0
	_, err = menu.Update(ctx, item.ID.Hex(), MenuItemPatch{Price: &negative})
	assert.True(t, requireValidation(t, err).Has("price"))
}

func TestCategoryService_DuplicateNamesConflict(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	svc := NewCategoryService(s.Categories)

	pizzas, err := svc.Create(ctx, CategoryInput{Name: "Pizzas"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CategoryInput{Name: "Drinks"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CategoryInput{Name: "pizzas"})
	var cerr *ConflictError
	assert.True(t, errors.As(err, &cerr))

	drinks := "DRINKS"
	_, err = svc.Update(ctx, pizzas.ID.Hex(), CategoryPatch{Name: &drinks})
	assert.True(t, errors.As(err, &cerr))

	renamed := "PIZZAS"
	updated, err := svc.Update(ctx, pizzas.ID.Hex(), CategoryPatch{Name: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "PIZZAS", updated.Name)

	deactivated, err := svc.Deactivate(ctx, pizzas.ID.Hex())
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Drinks", active[0].Name)
}
