package mongostore

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lamason/internal/models"
	"lamason/internal/store"
)

type currencyRepo struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func (r *currencyRepo) List(ctx context.Context) ([]models.CurrencySetting, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	settings := make([]models.CurrencySetting, 0)
	if err := cursor.All(ctx, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Create inserts the setting; a new default clears the old one in the same
// transaction.
func (r *currencyRepo) Create(ctx context.Context, setting *models.CurrencySetting) error {
	if !setting.IsDefault {
		res, err := r.coll.InsertOne(ctx, setting)
		if err != nil {
			return translate(err)
		}
		setting.ID = insertedID(res)
		return nil
	}

	_, err := r.withTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := r.coll.UpdateMany(sessCtx, bson.M{"isDefault": true}, bson.M{"$set": bson.M{"isDefault": false}}); err != nil {
			return nil, err
		}
		res, err := r.coll.InsertOne(sessCtx, setting)
		if err != nil {
			return nil, err
		}
		setting.ID = insertedID(res)
		return nil, nil
	})
	return translate(err)
}

func (r *currencyRepo) FindDefault(ctx context.Context) (*models.CurrencySetting, error) {
	var setting models.CurrencySetting
	if err := r.coll.FindOne(ctx, bson.M{"isDefault": true}).Decode(&setting); err != nil {
		return nil, translate(err)
	}
	return &setting, nil
}

func (r *currencyRepo) FindByCode(ctx context.Context, code string) (*models.CurrencySetting, error) {
	var setting models.CurrencySetting
	filter := bson.M{"code": bson.M{"$regex": "^" + regexp.QuoteMeta(code) + "$", "$options": "i"}}
	if err := r.coll.FindOne(ctx, filter).Decode(&setting); err != nil {
		return nil, translate(err)
	}
	return &setting, nil
}

func (r *currencyRepo) SetDefault(ctx context.Context, id primitive.ObjectID) (*models.CurrencySetting, error) {
	result, err := r.withTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		n, err := r.coll.CountDocuments(sessCtx, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, store.ErrNotFound
		}

		if _, err := r.coll.UpdateMany(sessCtx,
			bson.M{"_id": bson.M{"$ne": id}, "isDefault": true},
			bson.M{"$set": bson.M{"isDefault": false}},
		); err != nil {
			return nil, err
		}

		var updated models.CurrencySetting
		err = r.coll.FindOneAndUpdate(
			sessCtx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"isDefault": true}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err != nil {
			return nil, err
		}
		return &updated, nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return result.(*models.CurrencySetting), nil
}

func (r *currencyRepo) withTransaction(ctx context.Context, fn func(mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	return session.WithTransaction(ctx, fn)
}
