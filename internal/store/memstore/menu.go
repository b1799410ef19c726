package memstore

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lamason/internal/models"
	"lamason/internal/store"
)

type menuRepo struct{ *db }

func (r *menuRepo) List(_ context.Context, filter store.MenuFilter) ([]models.MenuItem, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]models.MenuItem, 0, len(r.menu))
	for i := len(r.menu) - 1; i >= 0; i-- {
		item := r.menu[i]
		if filter.CategoryID != nil && item.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.FeaturedOnly && !item.Featured {
			continue
		}
		if filter.AvailableOnly && !item.IsAvailable {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			continue
		}
		matched = append(matched, *copyMenuItem(item))
	}

	total := int64(len(matched))
	if filter.Skip > 0 {
		if filter.Skip >= total {
			return []models.MenuItem{}, total, nil
		}
		matched = matched[filter.Skip:]
	}
	if filter.Limit > 0 && int64(len(matched)) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *menuRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.menu {
		if item.ID == id {
			return copyMenuItem(item), nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *menuRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	out := make([]models.MenuItem, 0, len(ids))
	for _, item := range r.menu {
		if _, ok := wanted[item.ID]; ok {
			out = append(out, *copyMenuItem(item))
		}
	}
	return out, nil
}

func (r *menuRepo) Create(_ context.Context, item *models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	assignID(&item.ID)
	r.menu = append(r.menu, copyMenuItem(item))
	return nil
}

func (r *menuRepo) Update(_ context.Context, id primitive.ObjectID, update store.MenuItemUpdate) (*models.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.menu {
		if item.ID != id {
			continue
		}
		if update.Name != nil {
			item.Name = *update.Name
		}
		if update.Description != nil {
			item.Description = *update.Description
		}
		if update.Price != nil {
			item.Price = *update.Price
		}
		if update.CategoryID != nil {
			item.CategoryID = *update.CategoryID
		}
		if update.Tags != nil {
			item.Tags = *update.Tags
		}
		if update.ImageURL != nil {
			item.ImageURL = *update.ImageURL
		}
		if update.Featured != nil {
			item.Featured = *update.Featured
		}
		if update.IsAvailable != nil {
			item.IsAvailable = *update.IsAvailable
		}
		return copyMenuItem(item), nil
	}
	return nil, store.ErrNotFound
}
