package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lamason/internal/models"
	"lamason/internal/store"
)

type reservationRepo struct {
	coll *mongo.Collection
}

func (r *reservationRepo) Create(ctx context.Context, reservation *models.Reservation) error {
	res, err := r.coll.InsertOne(ctx, reservation)
	if err != nil {
		return translate(err)
	}
	if id := insertedID(res); !id.IsZero() {
		reservation.ID = id
	}
	return nil
}

func (r *reservationRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation); err != nil {
		return nil, translate(err)
	}
	return &reservation, nil
}

func (r *reservationRepo) List(ctx context.Context, filter store.ReservationFilter) ([]models.Reservation, error) {
	query := bson.M{}
	if filter.UserID != nil {
		query["userId"] = *filter.UserID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reservations := make([]models.Reservation, 0)
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.ReservationStatus) (*models.Reservation, error) {
	var updated models.Reservation
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, casMiss(ctx, r.coll, id)
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
