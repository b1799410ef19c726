package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"lamason/internal/models"
)

// MaxQuantity bounds a single line. Merges stop there instead of overflowing.
const MaxQuantity = 99

// Rates are the configured pricing knobs applied to every cart.
type Rates struct {
	TaxRate     float64
	DeliveryFee float64
}

// Item is the menu data a line snapshots when added.
type Item struct {
	ID    string
	Name  string
	Price float64
}

// Line is one cart entry. Quantity is always >= 1.
type Line struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unitPrice"`
	Quantity   int     `json:"quantity"`
}

// Totals are derived values, never stored on the cart.
type Totals struct {
	Subtotal    float64 `json:"subtotal"`
	Tax         float64 `json:"tax"`
	DeliveryFee float64 `json:"deliveryFee"`
	Total       float64 `json:"total"`
}

// DisplayTotals are Totals converted and formatted for one currency.
type DisplayTotals struct {
	Currency    string `json:"currency"`
	Subtotal    string `json:"subtotal"`
	Tax         string `json:"tax"`
	DeliveryFee string `json:"deliveryFee"`
	Total       string `json:"total"`
}

// Cart holds lines unique by menu item id, in insertion order.
type Cart struct {
	orderType models.OrderType
	rates     Rates
	lines     []Line
}

func NewCart(rates Rates, orderType models.OrderType) *Cart {
	if !orderType.Valid() {
		orderType = models.OrderTypePickup
	}
	return &Cart{orderType: orderType, rates: rates}
}

func (c *Cart) OrderType() models.OrderType {
	return c.orderType
}

// SetOrderType ignores unknown order types.
func (c *Cart) SetOrderType(orderType models.OrderType) {
	if orderType.Valid() {
		c.orderType = orderType
	}
}

// AddLine increments an existing line or appends a new one.
// Non-positive quantities count as 1 and a line never exceeds MaxQuantity.
func (c *Cart) AddLine(item Item, quantity int) {
	quantity = clampQuantity(quantity)
	id := strings.TrimSpace(item.ID)
	if i := c.index(id); i >= 0 {
		c.lines[i].Quantity = clampQuantity(c.lines[i].Quantity + quantity)
		return
	}
	c.lines = append(c.lines, Line{
		MenuItemID: id,
		Name:       item.Name,
		UnitPrice:  item.Price,
		Quantity:   quantity,
	})
}

func (c *Cart) RemoveLine(menuItemID string) {
	i := c.index(menuItemID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// SetQuantity removes the line when quantity < 1. It reports whether the line
// existed.
func (c *Cart) SetQuantity(menuItemID string, quantity int) bool {
	i := c.index(menuItemID)
	if i < 0 {
		return false
	}
	if quantity < 1 {
		c.RemoveLine(menuItemID)
		return true
	}
	c.lines[i].Quantity = clampQuantity(quantity)
	return true
}

// Quantity reports the quantity of a line, 0 when absent.
func (c *Cart) Quantity(menuItemID string) int {
	if i := c.index(menuItemID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// clampQuantity keeps q in [1, MaxQuantity]; both operands of a merge are
// already clamped, so their sum cannot overflow.
func clampQuantity(q int) int {
	switch {
	case q < 1:
		return 1
	case q > MaxQuantity:
		return MaxQuantity
	}
	return q
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Subtotal() float64 {
	return c.subtotal().InexactFloat64()
}

func (c *Cart) Tax() float64 {
	return c.tax().InexactFloat64()
}

func (c *Cart) DeliveryFee() float64 {
	return c.deliveryFee().InexactFloat64()
}

func (c *Cart) Total() float64 {
	return c.subtotal().Add(c.tax()).Add(c.deliveryFee()).InexactFloat64()
}

func (c *Cart) Totals() Totals {
	return Totals{
		Subtotal:    c.Subtotal(),
		Tax:         c.Tax(),
		DeliveryFee: c.DeliveryFee(),
		Total:       c.Total(),
	}
}

func (t Totals) Display(currency Currency) DisplayTotals {
	return DisplayTotals{
		Currency:    currency.Code,
		Subtotal:    currency.Show(t.Subtotal),
		Tax:         currency.Show(t.Tax),
		DeliveryFee: currency.Show(t.DeliveryFee),
		Total:       currency.Show(t.Total),
	}
}

func (c *Cart) subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, line := range c.lines {
		sum = sum.Add(decimal.NewFromFloat(line.UnitPrice).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return sum
}

func (c *Cart) tax() decimal.Decimal {
	return c.subtotal().Mul(decimal.NewFromFloat(c.rates.TaxRate))
}

func (c *Cart) deliveryFee() decimal.Decimal {
	if c.orderType != models.OrderTypeDelivery || c.IsEmpty() {
		return decimal.Zero
	}
	return decimal.NewFromFloat(c.rates.DeliveryFee)
}

func (c *Cart) index(menuItemID string) int {
	id := strings.TrimSpace(menuItemID)
	for i, line := range c.lines {
		if line.MenuItemID == id {
			return i
		}
	}
	return -1
}
