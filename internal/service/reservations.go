package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lamason/internal/events"
	"lamason/internal/models"
	"lamason/internal/store"
)

type ReservationInput struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,phone"`
	Date            string `json:"date" validate:"required,isodate"`
	Time            string `json:"time" validate:"required,clock"`
	Guests          int    `json:"guests" validate:"min=1,max=10"`
	SpecialRequests string `json:"specialRequests" validate:"max=500"`
}

func (in ReservationInput) normalized() ReservationInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.SpecialRequests = strings.TrimSpace(in.SpecialRequests)
	return in
}

type ReservationService struct {
	reservations store.ReservationRepository
	publisher    events.Publisher
	now          func() time.Time
}

func NewReservationService(reservations store.ReservationRepository, publisher events.Publisher) *ReservationService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &ReservationService{reservations: reservations, publisher: publisher, now: time.Now}
}

// Create books a table in pending state.
func (s *ReservationService) Create(ctx context.Context, input ReservationInput, owner *primitive.ObjectID) (*models.Reservation, error) {
	in := input.normalized()
	fields := checkStruct(in)

	if day, err := time.Parse(dateLayout, in.Date); err == nil {
		today := s.now().UTC().Truncate(24 * time.Hour)
		if day.Before(today) {
			fields = append(fields, FieldError{Path: "date", Message: "Date cannot be in the past"})
		}
	}

	if len(fields) > 0 {
		log.Printf("[RESERVATION] [INFO] rejected booking: %d invalid fields", len(fields))
		return nil, &ValidationError{Fields: fields}
	}

	now := s.now().UTC()
	reservation := &models.Reservation{
		UserID:          owner,
		Name:            in.Name,
		Email:           in.Email,
		Phone:           in.Phone,
		Date:            in.Date,
		Time:            in.Time,
		Guests:          in.Guests,
		SpecialRequests: in.SpecialRequests,
		Status:          models.ReservationPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.reservations.Create(ctx, reservation); err != nil {
		log.Printf("[RESERVATION] [ERROR] create failed: %v", err)
		return nil, &PersistenceError{Op: "create reservation", Err: err}
	}
	log.Printf("[RESERVATION] [INFO] reservation %s for %s %s (%d guests)", reservation.ID.Hex(), in.Date, in.Time, in.Guests)

	s.publish(ctx, events.Event{
		Type:       events.ReservationCreated,
		EntityID:   reservation.ID.Hex(),
		Status:     string(reservation.Status),
		OccurredAt: now,
	})
	return reservation, nil
}

func (s *ReservationService) SetStatus(ctx context.Context, rawID, rawStatus string) (*models.Reservation, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, &NotFoundError{Entity: "reservation", ID: rawID}
	}
	next := models.ReservationStatus(strings.ToLower(strings.TrimSpace(rawStatus)))
	if next == "" {
		return nil, invalid("status", "Status is required")
	}
	if !next.Valid() {
		return nil, invalid("status", "Unknown reservation status")
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		current, err := s.reservations.FindByID(ctx, id)
		if err != nil {
			return nil, reservationLookupError(rawID, err)
		}
		if !current.Status.CanTransitionTo(next) {
			return nil, &IllegalTransitionError{Entity: "reservation", From: string(current.Status), To: string(next)}
		}

		updated, err := s.reservations.UpdateStatus(ctx, id, current.Status, next)
		if errors.Is(err, store.ErrStatusConflict) {
			log.Printf("[RESERVATION] [WARN] status of %s changed concurrently, re-reading", rawID)
			continue
		}
		if err != nil {
			return nil, reservationLookupError(rawID, err)
		}

		log.Printf("[RESERVATION] [INFO] reservation %s %s -> %s", rawID, current.Status, next)
		s.publish(ctx, events.Event{
			Type:       events.ReservationStatusChanged,
			EntityID:   rawID,
			Status:     string(next),
			PrevStatus: string(current.Status),
			OccurredAt: s.now().UTC(),
		})
		return updated, nil
	}
	return nil, &ConflictError{Message: "reservation status is changing too quickly, try again"}
}

func (s *ReservationService) List(ctx context.Context, viewer Viewer, rawStatus string) ([]models.Reservation, error) {
	filter := store.ReservationFilter{}
	if rawStatus != "" {
		status := models.ReservationStatus(strings.ToLower(rawStatus))
		if !status.Valid() {
			return nil, invalid("status", "Unknown reservation status")
		}
		filter.Status = status
	}
	if !viewer.Admin {
		if viewer.UserID == nil {
			return []models.Reservation{}, nil
		}
		filter.UserID = viewer.UserID
	}

	reservations, err := s.reservations.List(ctx, filter)
	if err != nil {
		return nil, &PersistenceError{Op: "list reservations", Err: err}
	}
	return reservations, nil
}

// Get returns a reservation by id without an ownership check; the id itself
// is the confirmation reference.
func (s *ReservationService) Get(ctx context.Context, rawID string) (*models.Reservation, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, &NotFoundError{Entity: "reservation", ID: rawID}
	}
	reservation, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, reservationLookupError(rawID, err)
	}
	return reservation, nil
}

func (s *ReservationService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("[EVENTS] [WARN] publish %s for %s failed: %v", event.Type, event.EntityID, err)
	}
}

func reservationLookupError(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Entity: "reservation", ID: id}
	}
	return &PersistenceError{Op: "load reservation", Err: err}
}
