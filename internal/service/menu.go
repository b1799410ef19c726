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

type MenuItemInput struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=1000"`
	Price       float64  `json:"price" validate:"gt=0"`
	CategoryID  string   `json:"categoryId" validate:"required"`
	Tags        []string `json:"tags"`
	ImageURL    string   `json:"imageUrl" validate:"omitempty,url"`
	Featured    bool     `json:"featured"`
	IsAvailable *bool    `json:"isAvailable"`
}

// MenuItemPatch changes only the fields that are set.
type MenuItemPatch struct {
	Name        *string   `json:"name" validate:"omitempty,max=100"`
	Description *string   `json:"description" validate:"omitempty,max=1000"`
	Price       *float64  `json:"price" validate:"omitempty,gt=0"`
	CategoryID  *string   `json:"categoryId"`
	Tags        *[]string `json:"tags"`
	ImageURL    *string   `json:"imageUrl" validate:"omitempty,url"`
	Featured    *bool     `json:"featured"`
	IsAvailable *bool     `json:"isAvailable"`
}

type MenuQuery struct {
	CategoryID string
	Featured   bool
	Search     string
	// IncludeUnavailable is set for the admin listing only.
	IncludeUnavailable bool
	Skip               int64
	Limit              int64
}

type MenuService struct {
	menu       store.MenuRepository
	categories store.CategoryRepository
	now        func() time.Time
}

func NewMenuService(menu store.MenuRepository, categories store.CategoryRepository) *MenuService {
	return &MenuService{menu: menu, categories: categories, now: time.Now}
}

func (s *MenuService) List(ctx context.Context, q MenuQuery) ([]models.MenuItem, int64, error) {
	filter := store.MenuFilter{
		FeaturedOnly:  q.Featured,
		Search:        strings.TrimSpace(q.Search),
		AvailableOnly: !q.IncludeUnavailable,
		Skip:          q.Skip,
		Limit:         q.Limit,
	}
	if raw := strings.TrimSpace(q.CategoryID); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, 0, invalid("category", "Unknown category")
		}
		filter.CategoryID = &id
	}

	items, total, err := s.menu.List(ctx, filter)
	if err != nil {
		return nil, 0, &PersistenceError{Op: "list menu", Err: err}
	}
	return items, total, nil
}

func (s *MenuService) Get(ctx context.Context, rawID string) (*models.MenuItem, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, &NotFoundError{Entity: "menu item", ID: rawID}
	}
	item, err := s.menu.FindByID(ctx, id)
	if err != nil {
		return nil, menuLookupError(rawID, err)
	}
	return item, nil
}

func (s *MenuService) Create(ctx context.Context, in MenuItemInput) (*models.MenuItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)

	fields := checkStruct(in)
	categoryID, categoryErr := s.resolveCategory(ctx, in.CategoryID)
	if categoryErr != nil {
		var verr *ValidationError
		if !errors.As(categoryErr, &verr) {
			return nil, categoryErr
		}
		if in.CategoryID != "" {
			fields = append(fields, verr.Fields...)
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}
	item := &models.MenuItem{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  categoryID,
		Tags:        models.NormalizeTags(in.Tags),
		ImageURL:    in.ImageURL,
		Featured:    in.Featured,
		IsAvailable: available,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.menu.Create(ctx, item); err != nil {
		return nil, &PersistenceError{Op: "create menu item", Err: err}
	}
	log.Printf("[MENU] [INFO] menu item %s created (%s)", item.ID.Hex(), item.Name)
	return item, nil
}

func (s *MenuService) Update(ctx context.Context, rawID string, patch MenuItemPatch) (*models.MenuItem, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, &NotFoundError{Entity: "menu item", ID: rawID}
	}

	fields := checkStruct(patch)
	update := store.MenuItemUpdate{
		Description: patch.Description,
		Price:       patch.Price,
		Featured:    patch.Featured,
		IsAvailable: patch.IsAvailable,
		ImageURL:    patch.ImageURL,
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			fields = append(fields, FieldError{Path: "name", Message: "Name is required"})
		}
		update.Name = &name
	}
	if patch.Tags != nil {
		tags := models.NormalizeTags(*patch.Tags)
		update.Tags = &tags
	}
	if patch.CategoryID != nil {
		categoryID, err := s.resolveCategory(ctx, *patch.CategoryID)
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			fields = append(fields, verr.Fields...)
		case err != nil:
			return nil, err
		default:
			update.CategoryID = &categoryID
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	if update == (store.MenuItemUpdate{}) {
		return nil, invalid("body", "No fields to update")
	}

	item, err := s.menu.Update(ctx, id, update)
	if err != nil {
		return nil, menuLookupError(rawID, err)
	}
	log.Printf("[MENU] [INFO] menu item %s updated", rawID)
	return item, nil
}

// Retire hides a menu item instead of deleting it; past orders keep their
// snapshot either way.
func (s *MenuService) Retire(ctx context.Context, rawID string) (*models.MenuItem, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, &NotFoundError{Entity: "menu item", ID: rawID}
	}
	unavailable := false
	item, err := s.menu.Update(ctx, id, store.MenuItemUpdate{IsAvailable: &unavailable})
	if err != nil {
		return nil, menuLookupError(rawID, err)
	}
	log.Printf("[MENU] [INFO] menu item %s retired", rawID)
	return item, nil
}

func (s *MenuService) resolveCategory(ctx context.Context, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, invalid("categoryId", "Unknown category")
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return primitive.NilObjectID, invalid("categoryId", "Unknown category")
		}
		return primitive.NilObjectID, &PersistenceError{Op: "load category", Err: err}
	}
	return id, nil
}

func menuLookupError(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Entity: "menu item", ID: id}
	}
	return &PersistenceError{Op: "load menu item", Err: err}
}
