package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"

	"lamason/internal/events"
	"lamason/internal/events/mock_events"
	"lamason/internal/models"
	"lamason/internal/pricing"
	"lamason/internal/store"
	"lamason/internal/store/memstore"
)

var testRates = pricing.Rates{TaxRate: 0.08, DeliveryFee: 5.00}

func seedMenuItem(t *testing.T, s *store.Store, name string, price float64, available bool) models.MenuItem {
	t.Helper()
	item := &models.MenuItem{Name: name, Price: price, IsAvailable: available}
	require.NoError(t, s.Menu.Create(context.Background(), item))
	return *item
}

func validOrderInput(menuItemID string) OrderInput {
	return OrderInput{
		Name:          "Ada Lovelace",
		Email:         "Ada@Example.com ",
		Phone:         "+1 555 123 4567",
		Address:       "12 Harbour Street",
		OrderType:     models.OrderTypeDelivery,
		PaymentMethod: models.PaymentCard,
		Items:         []OrderItemInput{{MenuItemID: menuItemID, Quantity: 2}},
	}
}

func requireValidation(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	return verr
}

func messageFor(verr *ValidationError, path string) string {
	for _, f := range verr.Fields {
		if f.Path == path {
			return f.Message
		}
	}
	return ""
}

func TestSubmit_PricesDeliveryOrderFromCatalog(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mock_events.NewMockPublisher(ctrl)
	s := memstore.New()
	pizza := seedMenuItem(t, s, "Margherita", 22.99, true)

	publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e events.Event) error {
			assert.Equal(t, events.OrderCreated, e.Type)
			assert.Equal(t, "pending", e.Status)
			return nil
		})

	svc := NewOrderService(s.Orders, s.Menu, publisher, testRates)
	input := validOrderInput(pizza.ID.Hex())
	input.Items[0].Price = 0.01

	order, err := svc.Submit(context.Background(), input, nil)
	require.NoError(t, err)

	assert.False(t, order.ID.IsZero())
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, "ada@example.com", order.Customer.Email)
	assert.InDelta(t, 45.98, order.Subtotal, 1e-9)
	assert.InDelta(t, 3.6784, order.Tax, 1e-9)
	assert.InDelta(t, 5.00, order.DeliveryFee, 1e-9)
	assert.InDelta(t, 54.6584, order.Total, 1e-9)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 22.99, order.Items[0].Price)
	assert.Equal(t, "Margherita", order.Items[0].Name)

	stored, err := s.Orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Total, stored.Total)
}

func TestSubmit_RejectsQuantitiesPastTheLineLimit(t *testing.T) {
	s := memstore.New()
	pizza := seedMenuItem(t, s, "Margherita", 22.99, true)
	svc := NewOrderService(s.Orders, s.Menu, events.Nop{}, testRates)

	input := validOrderInput(pizza.ID.Hex())
	input.Items = []OrderItemInput{
		{MenuItemID: pizza.ID.Hex(), Quantity: math.MaxInt},
		{MenuItemID: pizza.ID.Hex(), Quantity: 2},
	}
	_, err := svc.Submit(context.Background(), input, nil)
	assert.Equal(t, "Quantity must be at most 99", messageFor(requireValidation(t, err), "items[0].quantity"))

	input.Items = []OrderItemInput{
		{MenuItemID: pizza.ID.Hex(), Quantity: 60},
		{MenuItemID: pizza.ID.Hex(), Quantity: 40},
	}
	_, err = svc.Submit(context.Background(), input, nil)
	verr := requireValidation(t, err)
	assert.Equal(t, "Quantity must be at most 99", messageFor(verr, "items[1].quantity"))
	assert.False(t, verr.Has("items[0].quantity"))

	orders, err := s.Orders.List(context.Background(), store.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)

	input.Items = []OrderItemInput{
		{MenuItemID: pizza.ID.Hex(), Quantity: 60},
		{MenuItemID: pizza.ID.Hex(), Quantity: 39},
	}
	order, err := svc.Submit(context.Background(), input, nil)
	require.NoError(t, err)
	assert.Equal(t, 99, order.Items[0].Quantity)
	assert.Positive(t, order.Total)
}

func TestSubmit_MergesDuplicateItemsAndDropsAddressForPickup(t *testing.T) {
	s := memstore.New()
	pizza := seedMenuItem(t, s, "Margherita", 10, true)
	svc := NewOrderService(s.Orders, s.Menu, events.Nop{}, testRates)

	input := validOrderInput(pizza.ID.Hex())
	input.OrderType = models.OrderTypePickup
	input.Items = []OrderItemInput{
		{MenuItemID: pizza.ID.Hex(), Quantity: 1},
		{MenuItemID: pizza.ID.Hex(), Quantity: 2},
	}

	order, err := svc.Submit(context.Background(), input, nil)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Zero(t, order.DeliveryFee)
	assert.Empty(t, order.Customer.Address)
	assert.InDelta(t, 32.4, order.Total, 1e-9)
}

func TestSubmit_MissingPhoneCreatesNoOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	// No expectations: any publish fails the test.
	publisher := mock_events.NewMockPublisher(ctrl)
	s := memstore.New()
	pizza := seedMenuItem(t, s, "Margherita", 22.99, true)
	svc := NewOrderService(s.Orders, s.Menu, publisher, testRates)

	input := validOrderInput(pizza.ID.Hex())
	input.Phone = ""

	order, err := svc.Submit(context.Background(), input, nil)
	assert.Nil(t, order)
	verr := requireValidation(t, err)
	assert.Equal(t, "Phone number is required", messageFor(verr, "phone"))

	orders, err := s.Orders.List(context.Background(), store.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestSubmit_ReportsEveryInvalidField(t *testing.T) {
	s := memstore.New()
	pizza := seedMenuItem(t, s, "Margherita", 22.99, true)
	svc := NewOrderService(s.Orders, s.Menu, events.Nop{}, testRates)

	input := validOrderInput(pizza.ID.Hex())
	input.Name = "   "
	input.Email = "not-an-email"
	input.Address = "abc"
	input.PaymentMethod = "bitcoin"
	input.Items = append(input.Items, OrderItemInput{MenuItemID: pizza.ID.Hex(), Quantity: 0})

	_, err := svc.Submit(context.Background(), input, nil)
	verr := requireValidation(t, err)

	assert.Equal(t, "Name is required", messageFor(verr, "name"))
	assert.Equal(t, "Please enter a valid email address", messageFor(verr, "email"))
	assert.Equal(t, "Address must be at least 5 characters", messageFor(verr, "address"))
	assert.Equal(t, "Payment method must be card or cash", messageFor(verr, "paymentMethod"))
	assert.Equal(t, "Quantity must be at least 1", messageFor(verr, "items[1].quantity"))
}

func TestSubmit_DeliveryNeedsAddress(t *testing.T) {
	s := memstore.New()
	pizza := seedMenuItem(t, s, "Margherita", 22.99, true)
	svc := NewOrderService(s.Orders, s.Menu, events.Nop{}, testRates)

	input := validOrderInput(pizza.ID.Hex())
	input.Address = ""

	_, err := svc.Submit(context.Background(), input, nil)
	verr := requireValidation(t, err)
	assert.Equal(t, "Delivery address is required", messageFor(verr, "address"))
}

func TestSubmit_EmptyCartIsRejected(t *testing.T) {
	s := memstore.New()
	svc := NewOrderService(s.Orders, s.Menu, events.Nop{}, testRates)

	input := validOrderInput("")
	input.Items = nil

	_, err := svc.Submit(context.Background(), input, nil)
	verr := requireValidation(t, err)
	assert.Equal(t, "Your cart is empty", messageFor(verr, "items"))
}

func TestSubmit_UnknownAndUnavailableItems(t *testing.T) {
	s := memstore.New()
	soldOut := seedMenuItem(t, s, "Tiramisu", 8, false)
	svc := NewOrderService(s.Orders, s.Menu, events.Nop{}, testRates)

	input := validOrderInput(soldOut.ID.Hex())
	input.Items = append(input.Items,
		OrderItemInput{MenuItemID: primitive.NewObjectID().Hex(), Quantity: 1},
		OrderItemInput{MenuItemID: "7", Quantity: 1},
	)

	_, err := svc.Submit(context.Background(), input, nil)
	verr := requireValidation(t, err)
	assert.Equal(t, "Tiramisu is currently unavailable", messageFor(verr, "items[0].menuItemId"))
	assert.Equal(t, "Unknown menu item", messageFor(verr, "items[1].menuItemId"))
	assert.Equal(t, "Unknown menu item", messageFor(verr, "items[2].menuItemId"))
}

type failingOrders struct {
	store.OrderRepository
	err error
}

func (f failingOrders) Create(context.Context, *models.Order) error { return f.err }

func TestSubmit_PropagatesPersistenceFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mock_events.NewMockPublisher(ctrl)
	s := memstore.New()
	pizza := seedMenuItem(t, s, "Margherita", 22.99, true)

	boom := errors.New("connection reset")
	svc := NewOrderService(failingOrders{OrderRepository: s.Orders, err: boom}, s.Menu, publisher, testRates)

	order, err := svc.Submit(context.Background(), validOrderInput(pizza.ID.Hex()), nil)
	assert.Nil(t, order)

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.ErrorIs(t, err, boom)
}

func TestSubmit_PublishFailureDoesNotFailOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mock_events.NewMockPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	s := memstore.New()
	pizza := seedMenuItem(t, s, "Margherita", 22.99, true)
	svc := NewOrderService(s.Orders, s.Menu, publisher, testRates)

	order, err := svc.Submit(context.Background(), validOrderInput(pizza.ID.Hex()), nil)
	require.NoError(t, err)
	assert.NotNil(t, order)
}

func createOrder(t *testing.T, s *store.Store, owner *primitive.ObjectID, status models.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{UserID: owner, Status: status, Total: 10}
	require.NoError(t, s.Orders.Create(context.Background(), order))
	return order
}

func TestOrderSetStatus_FollowsLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mock_events.NewMockPublisher(ctrl)
	s := memstore.New()
	order := createOrder(t, s, nil, models.OrderPending)
	svc := NewOrderService(s.Orders, s.Menu, publisher, testRates)

	publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e events.Event) error {
			assert.Equal(t, events.OrderStatusChanged, e.Type)
			assert.Equal(t, "pending", e.PrevStatus)
			assert.Equal(t, "processing", e.Status)
			return nil
		})

	updated, err := svc.SetStatus(context.Background(), order.ID.Hex(), "Processing")
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, updated.Status)
}

func TestOrderSetStatus_RejectsIllegalTransition(t *testing.T) {
	s := memstore.New()
	order := createOrder(t, s, nil, models.OrderCompleted)
	svc := NewOrderService(s.Orders, s.Menu, events.Nop{}, testRates)

	_, err := svc.SetStatus(context.Background(), order.ID.Hex(), "pending")

	var terr *IllegalTransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "completed", terr.From)
	assert.Equal(t, "pending", terr.To)

	stored, err := s.Orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, stored.Status)
}

func TestOrderSetStatus_UnknownStatusAndMissingOrder(t *testing.T) {
	s := memstore.New()
	order := createOrder(t, s, nil, models.OrderPending)
	svc := NewOrderService(s.Orders, s.Menu, events.Nop{}, testRates)

	_, err := svc.SetStatus(context.Background(), order.ID.Hex(), "shipped")
	verr := requireValidation(t, err)
	assert.True(t, verr.Has("status"))

	_, err = svc.SetStatus(context.Background(), primitive.NewObjectID().Hex(), "processing")
	var nerr *NotFoundError
	assert.True(t, errors.As(err, &nerr))
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.SetStatus(context.Background(), "not-an-id", "processing")
	assert.True(t, errors.As(err, &nerr))
}

// racingOrders lets another writer move the order right before the first
// compare-and-swap.
type racingOrders struct {
	store.OrderRepository
	raced bool
	to    models.OrderStatus
}

func (r *racingOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	if !r.raced {
		r.raced = true
		if _, err := r.OrderRepository.UpdateStatus(ctx, id, from, r.to); err != nil {
			return nil, err
		}
	}
	return r.OrderRepository.UpdateStatus(ctx, id, from, to)
}

func TestOrderSetStatus_LosingRaceIsJudgedAgainstNewStatus(t *testing.T) {
	s := memstore.New()
	order := createOrder(t, s, nil, models.OrderPending)
	repo := &racingOrders{OrderRepository: s.Orders, to: models.OrderCancelled}
	svc := NewOrderService(repo, s.Menu, events.Nop{}, testRates)

	_, err := svc.SetStatus(context.Background(), order.ID.Hex(), "processing")

	var terr *IllegalTransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "cancelled", terr.From)
}

func TestOrderSetStatus_LosingRaceRetriesWhenStillAllowed(t *testing.T) {
	s := memstore.New()
	order := createOrder(t, s, nil, models.OrderPending)
	repo := &racingOrders{OrderRepository: s.Orders, to: models.OrderProcessing}
	svc := NewOrderService(repo, s.Menu, events.Nop{}, testRates)

	updated, err := svc.SetStatus(context.Background(), order.ID.Hex(), "cancelled")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, updated.Status)
}

func TestOrderListAndGet_RespectOwnership(t *testing.T) {
	s := memstore.New()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
	aliceOrder := createOrder(t, s, &alice, models.OrderPending)
	createOrder(t, s, &bob, models.OrderPending)
	createOrder(t, s, nil, models.OrderCompleted)
	svc := NewOrderService(s.Orders, s.Menu, events.Nop{}, testRates)
	ctx := context.Background()

	all, err := svc.List(ctx, Viewer{Admin: true}, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	completed, err := svc.List(ctx, Viewer{Admin: true}, "completed")
	require.NoError(t, err)
	assert.Len(t, completed, 1)

	own, err := svc.List(ctx, Viewer{UserID: &alice}, "")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, aliceOrder.ID, own[0].ID)

	_, err = svc.Get(ctx, Viewer{UserID: &bob}, aliceOrder.ID.Hex())
	var nerr *NotFoundError
	assert.True(t, errors.As(err, &nerr))

	got, err := svc.Get(ctx, Viewer{UserID: &alice}, aliceOrder.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, aliceOrder.ID, got.ID)
}
