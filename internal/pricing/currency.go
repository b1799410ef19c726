package pricing

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var ErrInvalidRate = errors.New("exchange rate must be greater than zero")

// Currency is the display side of a currency setting.
type Currency struct {
	Code   string  `json:"code"`
	Symbol string  `json:"symbol"`
	Rate   float64 `json:"rate"`
}

// BaseUSD is used when no currency setting exists yet.
var BaseUSD = Currency{Code: "USD", Symbol: "$", Rate: 1}

// Convert multiplies an amount in base currency by rate.
func Convert(amount, rate float64) float64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate)).InexactFloat64()
}

// Format renders amount with two decimals, rounding half away from zero.
func Format(amount float64, symbol string) string {
	return symbol + decimal.NewFromFloat(amount).StringFixed(2)
}

func ValidateRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return ErrInvalidRate
	}
	return nil
}

// Show converts a base amount into c and formats it.
func (c Currency) Show(amount float64) string {
	return Format(Convert(amount, c.Rate), c.Symbol)
}
