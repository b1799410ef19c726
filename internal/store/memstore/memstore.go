// Package memstore keeps every collection in process memory behind one lock.
package memstore

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lamason/internal/models"
	"lamason/internal/store"
)

type db struct {
	mu           sync.RWMutex
	orders       []*models.Order
	reservations []*models.Reservation
	currencies   []*models.CurrencySetting
	menu         []*models.MenuItem
	categories   []*models.Category
	users        []*models.User
}

// New returns a store.Store whose repositories share one in-memory database.
func New() *store.Store {
	d := &db{}
	return &store.Store{
		Orders:       &orderRepo{d},
		Reservations: &reservationRepo{d},
		Currencies:   &currencyRepo{d},
		Menu:         &menuRepo{d},
		Categories:   &categoryRepo{d},
		Users:        &userRepo{d},
		Ping:         func(context.Context) error { return nil },
	}
}

func assignID(id *primitive.ObjectID) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
}

func copyOrder(o *models.Order) *models.Order {
	out := *o
	out.Items = append([]models.OrderItem(nil), o.Items...)
	if o.UserID != nil {
		uid := *o.UserID
		out.UserID = &uid
	}
	return &out
}

func copyReservation(r *models.Reservation) *models.Reservation {
	out := *r
	if r.UserID != nil {
		uid := *r.UserID
		out.UserID = &uid
	}
	return &out
}

func copyMenuItem(m *models.MenuItem) *models.MenuItem {
	out := *m
	out.Tags = append(models.StringList(nil), m.Tags...)
	return &out
}
