package memstore

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lamason/internal/models"
	"lamason/internal/store"
)

type currencyRepo struct{ *db }

func (r *currencyRepo) List(_ context.Context) ([]models.CurrencySetting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.CurrencySetting, 0, len(r.currencies))
	for _, c := range r.currencies {
		out = append(out, *c)
	}
	return out, nil
}

func (r *currencyRepo) Create(_ context.Context, setting *models.CurrencySetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.currencies {
		if strings.EqualFold(c.Code, setting.Code) {
			return store.ErrDuplicate
		}
	}
	assignID(&setting.ID)
	if setting.IsDefault {
		for _, c := range r.currencies {
			c.IsDefault = false
		}
	}
	stored := *setting
	r.currencies = append(r.currencies, &stored)
	return nil
}

func (r *currencyRepo) FindDefault(_ context.Context) (*models.CurrencySetting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.currencies {
		if c.IsDefault {
			out := *c
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *currencyRepo) FindByCode(_ context.Context, code string) (*models.CurrencySetting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.currencies {
		if strings.EqualFold(c.Code, code) {
			out := *c
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *currencyRepo) SetDefault(_ context.Context, id primitive.ObjectID) (*models.CurrencySetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var target *models.CurrencySetting
	for _, c := range r.currencies {
		if c.ID == id {
			target = c
		}
	}
	if target == nil {
		return nil, store.ErrNotFound
	}

	for _, c := range r.currencies {
		c.IsDefault = false
	}
	target.IsDefault = true

	out := *target
	return &out, nil
}
