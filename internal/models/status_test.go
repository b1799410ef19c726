package models

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderCancelled, true},
		{OrderProcessing, OrderCompleted, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderPending, OrderCompleted, false},
		{OrderCompleted, OrderPending, false},
		{OrderCancelled, OrderProcessing, false},
		{OrderProcessing, OrderPending, false},
		{OrderPending, OrderPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestReservationStatusTransitions(t *testing.T) {
	if !ReservationPending.CanTransitionTo(ReservationConfirmed) {
		t.Fatal("expected pending -> confirmed to be allowed")
	}
	if !ReservationConfirmed.CanTransitionTo(ReservationCancelled) {
		t.Fatal("expected confirmed -> cancelled to be allowed")
	}
	if ReservationCompleted.CanTransitionTo(ReservationPending) {
		t.Fatal("expected completed -> pending to be rejected")
	}
	if ReservationPending.CanTransitionTo(ReservationCompleted) {
		t.Fatal("expected pending -> completed to be rejected")
	}
}

func TestStatusValidity(t *testing.T) {
	if OrderStatus("shipped").Valid() {
		t.Fatal("unknown order status reported as valid")
	}
	if ReservationStatus("processing").Valid() {
		t.Fatal("order-only status reported as valid for reservations")
	}
	if !OrderCompleted.Terminal() || !ReservationCancelled.Terminal() {
		t.Fatal("expected terminal statuses")
	}
	if OrderPending.Terminal() {
		t.Fatal("pending must not be terminal")
	}
}
