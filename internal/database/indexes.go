package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ensure(db *mongo.Database, collection string, model mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	name := ""
	if model.Options != nil && model.Options.Name != nil {
		name = *model.Options.Name
	}

	log.Printf("[DB] [INFO] %s: creating %s index", collection, name)
	if _, err := db.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
		log.Printf("[DB] [ERROR] %s: %s index error: %v", collection, name, err)
		return err
	}
	log.Printf("[DB] [INFO] %s: %s index created", collection, name)
	return nil
}

func EnsureUserIndexes(db *mongo.Database) error {
	return ensure(db, "users", mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	})
}

func EnsureOrderIndexes(db *mongo.Database) error {
	if err := ensure(db, "orders", mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("userId_createdAt"),
	}); err != nil {
		return err
	}
	return ensure(db, "orders", mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}},
		Options: options.Index().SetName("status_index"),
	})
}

func EnsureReservationIndexes(db *mongo.Database) error {
	return ensure(db, "reservations", mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}},
		Options: options.Index().SetName("date_time"),
	})
}

// EnsureCurrencyIndexes also backs the single-default rule at the storage
// level: a second document with isDefault=true fails to write.
func EnsureCurrencyIndexes(db *mongo.Database) error {
	if err := ensure(db, "currency_settings", mongo.IndexModel{
		Keys: bson.D{{Key: "code", Value: 1}},
		Options: options.Index().
			SetName("code_unique").
			SetUnique(true),
	}); err != nil {
		return err
	}
	return ensure(db, "currency_settings", mongo.IndexModel{
		Keys: bson.D{{Key: "isDefault", Value: 1}},
		Options: options.Index().
			SetName("single_default").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"isDefault": true}),
	})
}

func EnsureMenuIndexes(db *mongo.Database) error {
	if err := ensure(db, "menu_items", mongo.IndexModel{
		Keys:    bson.D{{Key: "categoryId", Value: 1}},
		Options: options.Index().SetName("categoryId_index"),
	}); err != nil {
		return err
	}
	return ensure(db, "categories", mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
		Options: options.Index().
			SetName("name_unique").
			SetUnique(true),
	})
}

// EnsureIndexes runs every index helper and logs failures instead of stopping.
func EnsureIndexes(db *mongo.Database) {
	steps := []struct {
		name string
		fn   func(*mongo.Database) error
	}{
		{"user", EnsureUserIndexes},
		{"order", EnsureOrderIndexes},
		{"reservation", EnsureReservationIndexes},
		{"currency", EnsureCurrencyIndexes},
		{"menu", EnsureMenuIndexes},
	}
	for _, step := range steps {
		if err := step.fn(db); err != nil {
			log.Printf("[DB] [WARN] %s index warning: %v", step.name, err)
		}
	}
}
