package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lamason/internal/models"
	"lamason/internal/pricing"
	"lamason/internal/store"
)

type CurrencyInput struct {
	Code      string  `json:"code" validate:"required,currency"`
	Symbol    string  `json:"symbol" validate:"required,max=5"`
	Rate      float64 `json:"rate"`
	IsDefault bool    `json:"isDefault"`
}

type CurrencyService struct {
	currencies store.CurrencyRepository
	now        func() time.Time
}

func NewCurrencyService(currencies store.CurrencyRepository) *CurrencyService {
	return &CurrencyService{currencies: currencies, now: time.Now}
}

func (s *CurrencyService) List(ctx context.Context) ([]models.CurrencySetting, error) {
	settings, err := s.currencies.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list currencies", Err: err}
	}
	return settings, nil
}

// Create stores a new display currency. The first one ever created becomes
// the default regardless of the request.
func (s *CurrencyService) Create(ctx context.Context, input CurrencyInput) (*models.CurrencySetting, error) {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	input.Symbol = strings.TrimSpace(input.Symbol)

	fields := checkStruct(input)
	if err := pricing.ValidateRate(input.Rate); err != nil {
		fields = append(fields, FieldError{Path: "rate", Message: "Exchange rate must be greater than zero"})
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	isDefault := input.IsDefault
	if !isDefault {
		if _, err := s.currencies.FindDefault(ctx); errors.Is(err, store.ErrNotFound) {
			isDefault = true
		} else if err != nil {
			return nil, &PersistenceError{Op: "load default currency", Err: err}
		}
	}

	setting := &models.CurrencySetting{
		Code:      input.Code,
		Symbol:    input.Symbol,
		Rate:      input.Rate,
		IsDefault: isDefault,
		CreatedAt: s.now().UTC(),
	}
	if err := s.currencies.Create(ctx, setting); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &ConflictError{Message: "currency " + input.Code + " already exists"}
		}
		log.Printf("[CURRENCY] [ERROR] create %s failed: %v", input.Code, err)
		return nil, &PersistenceError{Op: "create currency", Err: err}
	}
	log.Printf("[CURRENCY] [INFO] currency %s created default=%t", setting.Code, setting.IsDefault)
	return setting, nil
}

// SetDefault makes id the only default currency.
func (s *CurrencyService) SetDefault(ctx context.Context, rawID string) (*models.CurrencySetting, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, &NotFoundError{Entity: "currency", ID: rawID}
	}
	setting, err := s.currencies.SetDefault(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Entity: "currency", ID: rawID}
		}
		log.Printf("[CURRENCY] [ERROR] set default %s failed: %v", rawID, err)
		return nil, &PersistenceError{Op: "set default currency", Err: err}
	}
	log.Printf("[CURRENCY] [INFO] default currency is now %s", setting.Code)
	return setting, nil
}

// Resolve picks the display currency for code, falling back to the default
// setting and then to the base currency.
func (s *CurrencyService) Resolve(ctx context.Context, code string) (pricing.Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code != "" {
		setting, err := s.currencies.FindByCode(ctx, code)
		switch {
		case errors.Is(err, store.ErrNotFound) && code == pricing.BaseUSD.Code:
			return pricing.BaseUSD, nil
		case errors.Is(err, store.ErrNotFound):
			return pricing.Currency{}, &NotFoundError{Entity: "currency", ID: code}
		case err != nil:
			return pricing.Currency{}, &PersistenceError{Op: "load currency", Err: err}
		}
		return toCurrency(setting), nil
	}

	setting, err := s.currencies.FindDefault(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return pricing.BaseUSD, nil
	}
	if err != nil {
		return pricing.Currency{}, &PersistenceError{Op: "load default currency", Err: err}
	}
	return toCurrency(setting), nil
}

// EnsureBase seeds the base currency as default on an empty collection.
func (s *CurrencyService) EnsureBase(ctx context.Context) error {
	settings, err := s.currencies.List(ctx)
	if err != nil {
		return err
	}
	if len(settings) > 0 {
		return nil
	}
	_, err = s.Create(ctx, CurrencyInput{Code: pricing.BaseUSD.Code, Symbol: pricing.BaseUSD.Symbol, Rate: pricing.BaseUSD.Rate, IsDefault: true})
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return nil
	}
	return err
}

func toCurrency(setting *models.CurrencySetting) pricing.Currency {
	return pricing.Currency{Code: setting.Code, Symbol: setting.Symbol, Rate: setting.Rate}
}
