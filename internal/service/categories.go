package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lamason/internal/models"
	"lamason/internal/store"
)

type CategoryInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	IsActive *bool  `json:"isActive"`
}

type CategoryPatch struct {
	Name     *string `json:"name" validate:"omitempty,max=100"`
	IsActive *bool   `json:"isActive"`
}

type CategoryService struct {
	categories store.CategoryRepository
	now        func() time.Time
}

func NewCategoryService(categories store.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories, now: time.Now}
}

func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	categories, err := s.categories.List(ctx, activeOnly)
	if err != nil {
		return nil, &PersistenceError{Op: "list categories", Err: err}
	}
	return categories, nil
}

// Create rejects a name that already exists, ignoring case.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if fields := checkStruct(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	exists, err := s.categories.ExistsByName(ctx, in.Name)
	if err != nil {
		return nil, &PersistenceError{Op: "check category name", Err: err}
	}
	if exists {
		return nil, &ConflictError{Message: "category " + in.Name + " already exists"}
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	category := &models.Category{Name: in.Name, IsActive: active, CreatedAt: s.now().UTC()}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &ConflictError{Message: "category " + in.Name + " already exists"}
		}
		return nil, &PersistenceError{Op: "create category", Err: err}
	}
	log.Printf("[MENU] [INFO] category %s created (%s)", category.ID.Hex(), category.Name)
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, rawID string, patch CategoryPatch) (*models.Category, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, &NotFoundError{Entity: "category", ID: rawID}
	}
	if fields := checkStruct(patch); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if patch.Name == nil && patch.IsActive == nil {
		return nil, invalid("body", "No fields to update")
	}

	current, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, categoryLookupError(rawID, err)
	}

	update := store.CategoryUpdate{IsActive: patch.IsActive}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, invalid("name", "Name is required")
		}
		if !strings.EqualFold(name, current.Name) {
			exists, err := s.categories.ExistsByName(ctx, name)
			if err != nil {
				return nil, &PersistenceError{Op: "check category name", Err: err}
			}
			if exists {
				return nil, &ConflictError{Message: "category " + name + " already exists"}
			}
		}
		update.Name = &name
	}

	category, err := s.categories.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &ConflictError{Message: "category name already exists"}
		}
		return nil, categoryLookupError(rawID, err)
	}
	return category, nil
}

// Deactivate hides a category from the public menu.
func (s *CategoryService) Deactivate(ctx context.Context, rawID string) (*models.Category, error) {
	inactive := false
	return s.Update(ctx, rawID, CategoryPatch{IsActive: &inactive})
}

func categoryLookupError(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Entity: "category", ID: id}
	}
	return &PersistenceError{Op: "load category", Err: err}
}
