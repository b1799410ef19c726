// Package events fans order and reservation lifecycle changes out to Kafka
// and to admin dashboards connected over WebSocket.
package events

//go:generate mockgen -destination=mock_events/publisher.go -package=mock_events lamason/internal/events Publisher

import (
	"context"
	"errors"
	"time"
)

type Type string

const (
	OrderCreated             Type = "order.created"
	OrderStatusChanged       Type = "order.status_changed"
	ReservationCreated       Type = "reservation.created"
	ReservationStatusChanged Type = "reservation.status_changed"
)

type Event struct {
	Type       Type      `json:"type"`
	EntityID   string    `json:"entityId"`
	Status     string    `json:"status"`
	PrevStatus string    `json:"prevStatus,omitempty"`
	Total      float64   `json:"total,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi publishes to every sink and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
