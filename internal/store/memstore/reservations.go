package memstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lamason/internal/models"
	"lamason/internal/store"
)

type reservationRepo struct{ *db }

func (r *reservationRepo) Create(_ context.Context, reservation *models.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	assignID(&reservation.ID)
	r.reservations = append(r.reservations, copyReservation(reservation))
	return nil
}

func (r *reservationRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, res := range r.reservations {
		if res.ID == id {
			return copyReservation(res), nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *reservationRepo) List(_ context.Context, filter store.ReservationFilter) ([]models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Reservation, 0, len(r.reservations))
	for i := len(r.reservations) - 1; i >= 0; i-- {
		res := r.reservations[i]
		if filter.UserID != nil && (res.UserID == nil || *res.UserID != *filter.UserID) {
			continue
		}
		if filter.Status != "" && res.Status != filter.Status {
			continue
		}
		out = append(out, *copyReservation(res))
	}
	return out, nil
}

func (r *reservationRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to models.ReservationStatus) (*models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, res := range r.reservations {
		if res.ID != id {
			continue
		}
		if res.Status != from {
			return nil, store.ErrStatusConflict
		}
		res.Status = to
		res.UpdatedAt = time.Now()
		return copyReservation(res), nil
	}
	return nil, store.ErrNotFound
}
