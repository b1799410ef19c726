package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"

	"lamason/internal/events"
	"lamason/internal/events/mock_events"
	"lamason/internal/models"
	"lamason/internal/store/memstore"
)

func fixedReservationService(t *testing.T, publisher events.Publisher) *ReservationService {
	t.Helper()
	s := memstore.New()
	svc := NewReservationService(s.Reservations, publisher)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC) }
	return svc
}

func validReservation() ReservationInput {
	return ReservationInput{
		Name:   "Grace Hopper",
		Email:  "grace@example.com",
		Phone:  "555-010-2030",
		Date:   "2026-03-12",
		Time:   "19:30",
		Guests: 4,
	}
}

func TestCreateReservation_StartsPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mock_events.NewMockPublisher(ctrl)
	publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e events.Event) error {
			assert.Equal(t, events.ReservationCreated, e.Type)
			return nil
		})

	svc := fixedReservationService(t, publisher)
	owner := primitive.NewObjectID()

	reservation, err := svc.Create(context.Background(), validReservation(), &owner)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPending, reservation.Status)
	assert.Equal(t, owner, *reservation.UserID)
	assert.Equal(t, 4, reservation.Guests)
}

func TestCreateReservation_TodayIsAllowed(t *testing.T) {
	svc := fixedReservationService(t, events.Nop{})
	input := validReservation()
	input.Date = "2026-03-10"

	_, err := svc.Create(context.Background(), input, nil)
	require.NoError(t, err)
}

func TestCreateReservation_CollectsEveryError(t *testing.T) {
	svc := fixedReservationService(t, events.Nop{})
	input := ReservationInput{
		Name:            "",
		Email:           "grace",
		Phone:           "12",
		Date:            "2026-03-09",
		Time:            "7pm",
		Guests:          11,
		SpecialRequests: strings.Repeat("x", 501),
	}

	_, err := svc.Create(context.Background(), input, nil)
	verr := requireValidation(t, err)

	assert.Equal(t, "Name is required", messageFor(verr, "name"))
	assert.Equal(t, "Please enter a valid email address", messageFor(verr, "email"))
	assert.Equal(t, "Please enter a valid phone number", messageFor(verr, "phone"))
	assert.Equal(t, "Date cannot be in the past", messageFor(verr, "date"))
	assert.Equal(t, "Time must use the HH:MM format", messageFor(verr, "time"))
	assert.Equal(t, "Party size must be between 1 and 10", messageFor(verr, "guests"))
	assert.True(t, verr.Has("specialRequests"))
}

func TestCreateReservation_BadDateFormat(t *testing.T) {
	svc := fixedReservationService(t, events.Nop{})
	input := validReservation()
	input.Date = "12/03/2026"
	input.Guests = 0

	_, err := svc.Create(context.Background(), input, nil)
	verr := requireValidation(t, err)
	assert.Equal(t, "Date must use the YYYY-MM-DD format", messageFor(verr, "date"))
	assert.Equal(t, "Party size must be between 1 and 10", messageFor(verr, "guests"))
}

func TestReservationSetStatus(t *testing.T) {
	svc := fixedReservationService(t, events.Nop{})
	ctx := context.Background()

	reservation, err := svc.Create(ctx, validReservation(), nil)
	require.NoError(t, err)
	id := reservation.ID.Hex()

	confirmed, err := svc.SetStatus(ctx, id, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationConfirmed, confirmed.Status)

	completed, err := svc.SetStatus(ctx, id, "completed")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCompleted, completed.Status)

	_, err = svc.SetStatus(ctx, id, "pending")
	var terr *IllegalTransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "completed", terr.From)

	_, err = svc.SetStatus(ctx, id, "processing")
	assert.True(t, requireValidation(t, err).Has("status"))
}

func TestListReservations_UserSeesOwn(t *testing.T) {
	svc := fixedReservationService(t, events.Nop{})
	ctx := context.Background()
	owner := primitive.NewObjectID()

	_, err := svc.Create(ctx, validReservation(), &owner)
	require.NoError(t, err)
	_, err = svc.Create(ctx, validReservation(), nil)
	require.NoError(t, err)

	own, err := svc.List(ctx, Viewer{UserID: &owner}, "")
	require.NoError(t, err)
	assert.Len(t, own, 1)

	all, err := svc.List(ctx, Viewer{Admin: true}, "pending")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	guest, err := svc.List(ctx, Viewer{}, "")
	require.NoError(t, err)
	assert.Empty(t, guest)
}
