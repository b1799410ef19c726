// Package store defines the persistence contracts used by the services and
// handlers. mongostore is the production implementation, memstore backs tests
// and local runs without a database.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lamason/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrStatusConflict means the entity exists but its status no longer
	// matches the expected one.
	ErrStatusConflict = errors.New("status changed concurrently")
	ErrDuplicate      = errors.New("duplicate key")
)

type OrderFilter struct {
	UserID *primitive.ObjectID
	Status models.OrderStatus
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	// UpdateStatus sets status to `to` only while the stored status equals `from`.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error)
}

type ReservationFilter struct {
	UserID *primitive.ObjectID
	Status models.ReservationStatus
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]models.Reservation, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.ReservationStatus) (*models.Reservation, error)
}

type CurrencyRepository interface {
	List(ctx context.Context) ([]models.CurrencySetting, error)
	Create(ctx context.Context, setting *models.CurrencySetting) error
	FindDefault(ctx context.Context) (*models.CurrencySetting, error)
	FindByCode(ctx context.Context, code string) (*models.CurrencySetting, error)
	// SetDefault clears every default flag and sets it on id in one atomic step.
	SetDefault(ctx context.Context, id primitive.ObjectID) (*models.CurrencySetting, error)
}

type MenuFilter struct {
	CategoryID    *primitive.ObjectID
	FeaturedOnly  bool
	Search        string
	AvailableOnly bool
	Skip          int64
	Limit         int64
}

type MenuItemUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	CategoryID  *primitive.ObjectID
	Tags        *models.StringList
	ImageURL    *string
	Featured    *bool
	IsAvailable *bool
}

type MenuRepository interface {
	List(ctx context.Context, filter MenuFilter) ([]models.MenuItem, int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.MenuItem, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.MenuItem, error)
	Create(ctx context.Context, item *models.MenuItem) error
	Update(ctx context.Context, id primitive.ObjectID, update MenuItemUpdate) (*models.MenuItem, error)
}

type CategoryUpdate struct {
	Name     *string
	IsActive *bool
}

type CategoryRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Category, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, id primitive.ObjectID, update CategoryUpdate) (*models.Category, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

// Store bundles every repository plus a liveness probe.
type Store struct {
	Orders       OrderRepository
	Reservations ReservationRepository
	Currencies   CurrencyRepository
	Menu         MenuRepository
	Categories   CategoryRepository
	Users        UserRepository
	Ping         func(ctx context.Context) error
}
