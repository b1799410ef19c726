// Package mongostore implements the store contracts on MongoDB.
package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"lamason/internal/store"
)

const (
	ordersCollection       = "orders"
	reservationsCollection = "reservations"
	currenciesCollection   = "currency_settings"
	menuCollection         = "menu_items"
	categoriesCollection   = "categories"
	usersCollection        = "users"
)

func New(db *mongo.Database) *store.Store {
	return &store.Store{
		Orders:       &orderRepo{coll: db.Collection(ordersCollection)},
		Reservations: &reservationRepo{coll: db.Collection(reservationsCollection)},
		Currencies:   &currencyRepo{db: db, coll: db.Collection(currenciesCollection)},
		Menu:         &menuRepo{coll: db.Collection(menuCollection)},
		Categories:   &categoryRepo{coll: db.Collection(categoriesCollection)},
		Users:        &userRepo{coll: db.Collection(usersCollection)},
		Ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
	}
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	default:
		return err
	}
}

// casMiss tells a missing document apart from one whose status moved on.
func casMiss(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) error {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return store.ErrStatusConflict
}

func insertedID(res *mongo.InsertOneResult) primitive.ObjectID {
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		return id
	}
	return primitive.NilObjectID
}
