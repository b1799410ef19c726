package pricing

import (
	"encoding/json"
	"errors"
	"fmt"

	"lamason/internal/models"
)

// CartFormatVersion is written into every stored cart. Bump it when the
// payload shape changes.
const CartFormatVersion = 1

var ErrUnsupportedCartVersion = errors.New("unsupported cart format version")

type cartPayload struct {
	Version   int              `json:"version"`
	OrderType models.OrderType `json:"orderType"`
	Lines     []Line           `json:"lines"`
}

func MarshalCart(c *Cart) ([]byte, error) {
	return json.Marshal(cartPayload{
		Version:   CartFormatVersion,
		OrderType: c.orderType,
		Lines:     c.Lines(),
	})
}

// UnmarshalCart rebuilds a cart through AddLine, so stored lines with a bad
// quantity or duplicated ids come back normalized.
func UnmarshalCart(data []byte, rates Rates) (*Cart, error) {
	var payload cartPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if payload.Version != CartFormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCartVersion, payload.Version)
	}

	cart := NewCart(rates, payload.OrderType)
	for _, line := range payload.Lines {
		if line.MenuItemID == "" {
			continue
		}
		cart.AddLine(Item{ID: line.MenuItemID, Name: line.Name, Price: line.UnitPrice}, line.Quantity)
	}
	return cart, nil
}
