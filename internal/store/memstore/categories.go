package memstore

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lamason/internal/models"
	"lamason/internal/store"
)

type categoryRepo struct{ *db }

func (r *categoryRepo) List(_ context.Context, activeOnly bool) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Category, 0, len(r.categories))
	for i := len(r.categories) - 1; i >= 0; i-- {
		c := r.categories[i]
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *categoryRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.categories {
		if c.ID == id {
			out := *c
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *categoryRepo) Create(_ context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.categories {
		if strings.EqualFold(c.Name, category.Name) {
			return store.ErrDuplicate
		}
	}
	assignID(&category.ID)
	stored := *category
	r.categories = append(r.categories, &stored)
	return nil
}

func (r *categoryRepo) Update(_ context.Context, id primitive.ObjectID, update store.CategoryUpdate) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.categories {
		if c.ID != id {
			continue
		}
		if update.Name != nil {
			c.Name = *update.Name
		}
		if update.IsActive != nil {
			c.IsActive = *update.IsActive
		}
		out := *c
		return &out, nil
	}
	return nil, store.ErrNotFound
}

func (r *categoryRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.categories {
		if strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}
