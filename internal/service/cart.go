package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lamason/internal/cache"
	"lamason/internal/models"
	"lamason/internal/pricing"
	"lamason/internal/store"
)

type CartItemInput struct {
	MenuItemID string `json:"menuItemId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"max=99"`
}

type CartQuantityInput struct {
	Quantity int `json:"quantity" validate:"max=99"`
}

type CartOrderTypeInput struct {
	OrderType models.OrderType `json:"orderType" validate:"required,oneof=delivery pickup"`
}

// CartView is what the cart endpoints return.
type CartView struct {
	SessionID string                `json:"sessionId"`
	OrderType models.OrderType      `json:"orderType"`
	Lines     []pricing.Line        `json:"lines"`
	Totals    pricing.Totals        `json:"totals"`
	Display   pricing.DisplayTotals `json:"display"`
}

type CartService struct {
	carts      cache.CartStore
	menu       store.MenuRepository
	currencies *CurrencyService
}

func NewCartService(carts cache.CartStore, menu store.MenuRepository, currencies *CurrencyService) *CartService {
	return &CartService{carts: carts, menu: menu, currencies: currencies}
}

func (s *CartService) View(ctx context.Context, sessionID, currencyCode string) (*CartView, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, sessionID, cart, currencyCode)
}

// AddItem snapshots the catalog name and price; a repeated item merges.
func (s *CartService) AddItem(ctx context.Context, sessionID string, in CartItemInput) (*CartView, error) {
	in.MenuItemID = strings.TrimSpace(in.MenuItemID)
	if fields := checkStruct(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	id, err := primitive.ObjectIDFromHex(in.MenuItemID)
	if err != nil {
		return nil, invalid("menuItemId", "Unknown menu item")
	}
	item, err := s.menu.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, invalid("menuItemId", "Unknown menu item")
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load menu item", Err: err}
	}
	if !item.IsAvailable {
		return nil, invalid("menuItemId", item.Name+" is currently unavailable")
	}

	return s.mutate(ctx, sessionID, func(cart *pricing.Cart) error {
		if cart.Quantity(item.ID.Hex())+max(in.Quantity, 1) > pricing.MaxQuantity {
			return invalid("quantity", quantityTooLarge)
		}
		cart.AddLine(pricing.Item{ID: item.ID.Hex(), Name: item.Name, Price: item.Price}, in.Quantity)
		return nil
	})
}

// SetQuantity removes the line when quantity drops below one; removing a line
// that is not there is a no-op.
func (s *CartService) SetQuantity(ctx context.Context, sessionID, menuItemID string, in CartQuantityInput) (*CartView, error) {
	if fields := checkStruct(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return s.mutate(ctx, sessionID, func(cart *pricing.Cart) error {
		if !cart.SetQuantity(menuItemID, in.Quantity) && in.Quantity >= 1 {
			return &NotFoundError{Entity: "cart line", ID: menuItemID}
		}
		return nil
	})
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID, menuItemID string) (*CartView, error) {
	return s.mutate(ctx, sessionID, func(cart *pricing.Cart) error {
		cart.RemoveLine(menuItemID)
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if err := s.carts.Delete(ctx, sessionID); err != nil {
		return &PersistenceError{Op: "clear cart", Err: err}
	}
	return nil
}

func (s *CartService) SetOrderType(ctx context.Context, sessionID string, in CartOrderTypeInput) (*CartView, error) {
	in.OrderType = models.OrderType(strings.ToLower(strings.TrimSpace(string(in.OrderType))))
	if fields := checkStruct(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return s.mutate(ctx, sessionID, func(cart *pricing.Cart) error {
		cart.SetOrderType(in.OrderType)
		return nil
	})
}

// mutate runs change through the store's atomic update so concurrent requests
// on one session do not overwrite each other.
func (s *CartService) mutate(ctx context.Context, sessionID string, change func(*pricing.Cart) error) (*CartView, error) {
	var changeErr error
	cart, err := s.carts.Update(ctx, sessionID, func(cart *pricing.Cart) error {
		changeErr = change(cart)
		return changeErr
	})
	if changeErr != nil {
		return nil, changeErr
	}
	if errors.Is(err, cache.ErrCartContention) {
		return nil, &ConflictError{Message: "cart was changed by another request, please retry"}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "save cart", Err: err}
	}
	return s.view(ctx, sessionID, cart, "")
}

func (s *CartService) load(ctx context.Context, sessionID string) (*pricing.Cart, error) {
	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, &PersistenceError{Op: "load cart", Err: err}
	}
	return cart, nil
}

func (s *CartService) view(ctx context.Context, sessionID string, cart *pricing.Cart, currencyCode string) (*CartView, error) {
	currency, err := s.currencies.Resolve(ctx, currencyCode)
	if err != nil {
		return nil, err
	}
	totals := cart.Totals()
	return &CartView{
		SessionID: sessionID,
		OrderType: cart.OrderType(),
		Lines:     cart.Lines(),
		Totals:    totals,
		Display:   totals.Display(currency),
	}, nil
}
