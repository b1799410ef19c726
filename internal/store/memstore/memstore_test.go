package memstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lamason/internal/models"
	"lamason/internal/store"
)

func countDefaults(t *testing.T, repo store.CurrencyRepository) int {
	t.Helper()
	settings, err := repo.List(context.Background())
	require.NoError(t, err)

	n := 0
	for _, s := range settings {
		if s.IsDefault {
			n++
		}
	}
	return n
}

func TestCurrencySetDefaultKeepsExactlyOne(t *testing.T) {
	ctx := context.Background()
	s := New()

	var ids []primitive.ObjectID
	for i, code := range []string{"USD", "EUR", "GBP"} {
		setting := &models.CurrencySetting{Code: code, Symbol: code, Rate: 1, IsDefault: i == 0}
		require.NoError(t, s.Currencies.Create(ctx, setting))
		ids = append(ids, setting.ID)
	}

	for _, i := range []int{1, 2, 2, 0, 1} {
		updated, err := s.Currencies.SetDefault(ctx, ids[i])
		require.NoError(t, err)
		assert.True(t, updated.IsDefault)
		assert.Equal(t, 1, countDefaults(t, s.Currencies))
	}

	def, err := s.Currencies.FindDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, "EUR", def.Code)
}

func TestCurrencySetDefaultConcurrent(t *testing.T) {
	ctx := context.Background()
	s := New()

	var ids []primitive.ObjectID
	for _, code := range []string{"USD", "EUR", "GBP", "JPY"} {
		setting := &models.CurrencySetting{Code: code, Symbol: code, Rate: 1}
		require.NoError(t, s.Currencies.Create(ctx, setting))
		ids = append(ids, setting.ID)
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(id primitive.ObjectID) {
			defer wg.Done()
			_, _ = s.Currencies.SetDefault(ctx, id)
		}(ids[i%len(ids)])
	}
	wg.Wait()

	assert.Equal(t, 1, countDefaults(t, s.Currencies))
}

func TestCurrencySetDefaultUnknownID(t *testing.T) {
	_, err := New().Currencies.SetDefault(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCurrencyCreateRejectsDuplicateCode(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Currencies.Create(ctx, &models.CurrencySetting{Code: "EUR", Rate: 0.9}))
	assert.ErrorIs(t, s.Currencies.Create(ctx, &models.CurrencySetting{Code: "eur", Rate: 0.9}), store.ErrDuplicate)
}

func TestOrderUpdateStatusComparesCurrentStatus(t *testing.T) {
	ctx := context.Background()
	s := New()

	order := &models.Order{Status: models.OrderPending, Items: []models.OrderItem{{Name: "Soup", Quantity: 1}}}
	require.NoError(t, s.Orders.Create(ctx, order))
	require.False(t, order.ID.IsZero())

	updated, err := s.Orders.UpdateStatus(ctx, order.ID, models.OrderPending, models.OrderProcessing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, updated.Status)

	_, err = s.Orders.UpdateStatus(ctx, order.ID, models.OrderPending, models.OrderCancelled)
	assert.ErrorIs(t, err, store.ErrStatusConflict)

	_, err = s.Orders.UpdateStatus(ctx, primitive.NewObjectID(), models.OrderPending, models.OrderCancelled)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOrderListFiltersByOwnerNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner := primitive.NewObjectID()

	require.NoError(t, s.Orders.Create(ctx, &models.Order{Notes: "guest", Status: models.OrderPending}))
	require.NoError(t, s.Orders.Create(ctx, &models.Order{Notes: "first", UserID: &owner, Status: models.OrderPending}))
	require.NoError(t, s.Orders.Create(ctx, &models.Order{Notes: "second", UserID: &owner, Status: models.OrderCompleted}))

	own, err := s.Orders.List(ctx, store.OrderFilter{UserID: &owner})
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, "second", own[0].Notes)

	pending, err := s.Orders.List(ctx, store.OrderFilter{Status: models.OrderPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestStoredOrdersAreIsolatedFromCallers(t *testing.T) {
	ctx := context.Background()
	s := New()

	order := &models.Order{Items: []models.OrderItem{{Name: "Soup", Price: 6, Quantity: 1}}}
	require.NoError(t, s.Orders.Create(ctx, order))
	order.Items[0].Price = 0

	stored, err := s.Orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, stored.Items[0].Price)
}

func TestMenuListPaginates(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, s.Menu.Create(ctx, &models.MenuItem{Name: name, IsAvailable: true}))
	}

	page, total, err := s.Menu.List(ctx, store.MenuFilter{Skip: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "c", page[0].Name)
}
