package memstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lamason/internal/models"
	"lamason/internal/store"
)

type orderRepo struct{ *db }

func (r *orderRepo) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	assignID(&order.ID)
	r.orders = append(r.orders, copyOrder(order))
	return nil
}

func (r *orderRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.ID == id {
			return copyOrder(o), nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *orderRepo) List(_ context.Context, filter store.OrderFilter) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Order, 0, len(r.orders))
	for i := len(r.orders) - 1; i >= 0; i-- {
		o := r.orders[i]
		if filter.UserID != nil && (o.UserID == nil || *o.UserID != *filter.UserID) {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, *copyOrder(o))
	}
	return out, nil
}

func (r *orderRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		if o.ID != id {
			continue
		}
		if o.Status != from {
			return nil, store.ErrStatusConflict
		}
		o.Status = to
		o.UpdatedAt = time.Now()
		return copyOrder(o), nil
	}
	return nil, store.ErrNotFound
}
