package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BaseCurrency is the currency every price is stored in.
const BaseCurrency = "USD"

// CurrencySetting is a display currency. Only one setting is default at a time.
type CurrencySetting struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code      string             `bson:"code" json:"code"`
	Symbol    string             `bson:"symbol" json:"symbol"`
	Rate      float64            `bson:"rate" json:"rate"`
	IsDefault bool               `bson:"isDefault" json:"isDefault"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
