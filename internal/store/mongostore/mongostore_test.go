package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lamason/internal/database"
	"lamason/internal/models"
	"lamason/internal/store"
)

// newTestStore connects to MONGO_URI and uses a throwaway database.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	client, err := database.Connect(uri)
	require.NoError(t, err)

	db := client.Database("lamason_test_" + primitive.NewObjectID().Hex())
	database.EnsureIndexes(db)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return New(db)
}

func TestOrderUpdateStatus_CompareAndSwap(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	order := &models.Order{Status: models.OrderPending, Total: 54.6584, CreatedAt: time.Now()}
	require.NoError(t, st.Orders.Create(ctx, order))
	require.False(t, order.ID.IsZero())

	updated, err := st.Orders.UpdateStatus(ctx, order.ID, models.OrderPending, models.OrderProcessing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, updated.Status)

	_, err = st.Orders.UpdateStatus(ctx, order.ID, models.OrderPending, models.OrderCancelled)
	assert.ErrorIs(t, err, store.ErrStatusConflict)

	_, err = st.Orders.UpdateStatus(ctx, primitive.NewObjectID(), models.OrderPending, models.OrderProcessing)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCurrencyCreate_DuplicateCode(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Currencies.Create(ctx, &models.CurrencySetting{Code: "EUR", Symbol: "€", Rate: 0.92}))
	err := st.Currencies.Create(ctx, &models.CurrencySetting{Code: "EUR", Symbol: "€", Rate: 0.9})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = st.Currencies.FindByCode(ctx, "GBP")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
