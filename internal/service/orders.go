package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lamason/internal/events"
	"lamason/internal/models"
	"lamason/internal/pricing"
	"lamason/internal/store"
)

// casAttempts bounds how often a status update is re-evaluated after losing a race.
const casAttempts = 3

type OrderItemInput struct {
	MenuItemID string `json:"menuItemId" validate:"required"`
	// Price is accepted for compatibility and ignored; the catalog price wins.
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity" validate:"min=1,max=99"`
}

type OrderInput struct {
	Name          string               `json:"name" validate:"required,max=100"`
	Email         string               `json:"email" validate:"required,email"`
	Phone         string               `json:"phone" validate:"required,phone"`
	Address       string               `json:"address"`
	OrderType     models.OrderType     `json:"orderType" validate:"required,oneof=delivery pickup"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" validate:"required,oneof=card cash"`
	Notes         string               `json:"notes" validate:"max=500"`
	Items         []OrderItemInput     `json:"items" validate:"required,min=1,dive"`
}

func (in OrderInput) normalized() OrderInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.Notes = strings.TrimSpace(in.Notes)
	in.OrderType = models.OrderType(strings.ToLower(strings.TrimSpace(string(in.OrderType))))
	in.PaymentMethod = models.PaymentMethod(strings.ToLower(strings.TrimSpace(string(in.PaymentMethod))))
	items := make([]OrderItemInput, len(in.Items))
	for i, item := range in.Items {
		item.MenuItemID = strings.TrimSpace(item.MenuItemID)
		items[i] = item
	}
	if in.Items != nil {
		in.Items = items
	}
	return in
}

// Viewer is who is asking. A nil UserID is a guest.
type Viewer struct {
	UserID *primitive.ObjectID
	Admin  bool
}

func (v Viewer) owns(owner *primitive.ObjectID) bool {
	return v.Admin || (v.UserID != nil && owner != nil && *v.UserID == *owner)
}

type OrderService struct {
	orders    store.OrderRepository
	menu      store.MenuRepository
	publisher events.Publisher
	rates     pricing.Rates
	now       func() time.Time
}

func NewOrderService(orders store.OrderRepository, menu store.MenuRepository, publisher events.Publisher, rates pricing.Rates) *OrderService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &OrderService{orders: orders, menu: menu, publisher: publisher, rates: rates, now: time.Now}
}

// Submit validates the checkout form, prices it from the catalog and persists
// a pending order. Nothing is written unless every field is valid.
func (s *OrderService) Submit(ctx context.Context, input OrderInput, owner *primitive.ObjectID) (*models.Order, error) {
	in := input.normalized()
	fields := checkStruct(in)

	if in.OrderType == models.OrderTypeDelivery {
		switch {
		case in.Address == "":
			fields = append(fields, FieldError{Path: "address", Message: "Delivery address is required"})
		case len([]rune(in.Address)) < 5:
			fields = append(fields, FieldError{Path: "address", Message: "Address must be at least 5 characters"})
		}
	}

	ids := make([]primitive.ObjectID, len(in.Items))
	var lookup []primitive.ObjectID
	for i, item := range in.Items {
		if item.MenuItemID == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(item.MenuItemID)
		if err != nil {
			fields = append(fields, FieldError{Path: fmt.Sprintf("items[%d].menuItemId", i), Message: "Unknown menu item"})
			continue
		}
		ids[i] = id
		lookup = append(lookup, id)
	}

	catalog := map[primitive.ObjectID]models.MenuItem{}
	if len(lookup) > 0 {
		found, err := s.menu.FindByIDs(ctx, lookup)
		if err != nil {
			return nil, &PersistenceError{Op: "load menu items", Err: err}
		}
		for _, item := range found {
			catalog[item.ID] = item
		}
	}
	merged := map[primitive.ObjectID]int{}
	for i, id := range ids {
		if id.IsZero() {
			continue
		}
		if q := in.Items[i].Quantity; q >= 1 && q <= pricing.MaxQuantity {
			merged[id] += q
			if merged[id] > pricing.MaxQuantity {
				fields = append(fields, FieldError{Path: fmt.Sprintf("items[%d].quantity", i), Message: quantityTooLarge})
			}
		}
		item, ok := catalog[id]
		switch {
		case !ok:
			fields = append(fields, FieldError{Path: fmt.Sprintf("items[%d].menuItemId", i), Message: "Unknown menu item"})
		case !item.IsAvailable:
			fields = append(fields, FieldError{Path: fmt.Sprintf("items[%d].menuItemId", i), Message: item.Name + " is currently unavailable"})
		}
	}

	if len(fields) > 0 {
		log.Printf("[ORDER] [INFO] rejected order: %d invalid fields", len(fields))
		return nil, &ValidationError{Fields: fields}
	}

	cart := pricing.NewCart(s.rates, in.OrderType)
	for i, item := range in.Items {
		menuItem := catalog[ids[i]]
		cart.AddLine(pricing.Item{ID: menuItem.ID.Hex(), Name: menuItem.Name, Price: menuItem.Price}, item.Quantity)
	}

	lines := cart.Lines()
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		id, _ := primitive.ObjectIDFromHex(line.MenuItemID)
		items = append(items, models.OrderItem{MenuItemID: id, Name: line.Name, Price: line.UnitPrice, Quantity: line.Quantity})
	}

	totals := cart.Totals()
	now := s.now().UTC()
	order := &models.Order{
		UserID: owner,
		Customer: models.OrderCustomer{
			Name:  in.Name,
			Email: in.Email,
			Phone: in.Phone,
		},
		Items:         items,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		DeliveryFee:   totals.DeliveryFee,
		Total:         totals.Total,
		OrderType:     in.OrderType,
		PaymentMethod: in.PaymentMethod,
		Status:        models.OrderPending,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.OrderType == models.OrderTypeDelivery {
		order.Customer.Address = in.Address
	}

	if err := s.orders.Create(ctx, order); err != nil {
		log.Printf("[ORDER] [ERROR] create failed: %v", err)
		return nil, &PersistenceError{Op: "create order", Err: err}
	}
	log.Printf("[ORDER] [INFO] order %s created total=%.2f", order.ID.Hex(), order.Total)

	s.publish(ctx, events.Event{
		Type:       events.OrderCreated,
		EntityID:   order.ID.Hex(),
		Status:     string(order.Status),
		Total:      order.Total,
		OccurredAt: now,
	})
	return order, nil
}

// SetStatus moves an order one step through its lifecycle.
func (s *OrderService) SetStatus(ctx context.Context, rawID, rawStatus string) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, &NotFoundError{Entity: "order", ID: rawID}
	}
	next := models.OrderStatus(strings.ToLower(strings.TrimSpace(rawStatus)))
	if next == "" {
		return nil, invalid("status", "Status is required")
	}
	if !next.Valid() {
		return nil, invalid("status", "Unknown order status")
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		current, err := s.orders.FindByID(ctx, id)
		if err != nil {
			return nil, orderLookupError(rawID, err)
		}
		if !current.Status.CanTransitionTo(next) {
			return nil, &IllegalTransitionError{Entity: "order", From: string(current.Status), To: string(next)}
		}

		updated, err := s.orders.UpdateStatus(ctx, id, current.Status, next)
		if errors.Is(err, store.ErrStatusConflict) {
			log.Printf("[ORDER] [WARN] status of %s changed concurrently, re-reading", rawID)
			continue
		}
		if err != nil {
			return nil, orderLookupError(rawID, err)
		}

		log.Printf("[ORDER] [INFO] order %s %s -> %s", rawID, current.Status, next)
		s.publish(ctx, events.Event{
			Type:       events.OrderStatusChanged,
			EntityID:   rawID,
			Status:     string(next),
			PrevStatus: string(current.Status),
			Total:      updated.Total,
			OccurredAt: s.now().UTC(),
		})
		return updated, nil
	}
	return nil, &ConflictError{Message: "order status is changing too quickly, try again"}
}

// List returns every order to an admin and only owned orders to a user.
func (s *OrderService) List(ctx context.Context, viewer Viewer, rawStatus string) ([]models.Order, error) {
	filter := store.OrderFilter{}
	if rawStatus != "" {
		status := models.OrderStatus(strings.ToLower(rawStatus))
		if !status.Valid() {
			return nil, invalid("status", "Unknown order status")
		}
		filter.Status = status
	}
	if !viewer.Admin {
		if viewer.UserID == nil {
			return []models.Order{}, nil
		}
		filter.UserID = viewer.UserID
	}

	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, &PersistenceError{Op: "list orders", Err: err}
	}
	return orders, nil
}

// Get hides orders the viewer does not own behind a not-found.
func (s *OrderService) Get(ctx context.Context, viewer Viewer, rawID string) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, &NotFoundError{Entity: "order", ID: rawID}
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, orderLookupError(rawID, err)
	}
	if !viewer.owns(order.UserID) {
		return nil, &NotFoundError{Entity: "order", ID: rawID}
	}
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("[EVENTS] [WARN] publish %s for %s failed: %v", event.Type, event.EntityID, err)
	}
}

func orderLookupError(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Entity: "order", ID: id}
	}
	return &PersistenceError{Op: "load order", Err: err}
}
