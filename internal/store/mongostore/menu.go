package mongostore

import (
	"context"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lamason/internal/models"
	"lamason/internal/store"
)

type menuRepo struct {
	coll *mongo.Collection
}

func (r *menuRepo) List(ctx context.Context, filter store.MenuFilter) ([]models.MenuItem, int64, error) {
	query := bson.M{}
	if filter.CategoryID != nil {
		query["categoryId"] = *filter.CategoryID
	}
	if filter.FeaturedOnly {
		query["featured"] = true
	}
	if filter.AvailableOnly {
		query["isAvailable"] = bson.M{"$ne": false}
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := regexp.QuoteMeta(search)
		query["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
			{"tags": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Skip > 0 {
		opts.SetSkip(filter.Skip)
	}
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	items := make([]models.MenuItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *menuRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *menuRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.MenuItem, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]models.MenuItem, 0, len(ids))
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *menuRepo) Create(ctx context.Context, item *models.MenuItem) error {
	res, err := r.coll.InsertOne(ctx, item)
	if err != nil {
		return translate(err)
	}
	item.ID = insertedID(res)
	return nil
}

func (r *menuRepo) Update(ctx context.Context, id primitive.ObjectID, update store.MenuItemUpdate) (*models.MenuItem, error) {
	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.CategoryID != nil {
		set["categoryId"] = *update.CategoryID
	}
	if update.Tags != nil {
		set["tags"] = *update.Tags
	}
	if update.ImageURL != nil {
		set["imageUrl"] = *update.ImageURL
	}
	if update.Featured != nil {
		set["featured"] = *update.Featured
	}
	if update.IsAvailable != nil {
		set["isAvailable"] = *update.IsAvailable
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	var updated models.MenuItem
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}
