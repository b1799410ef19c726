package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"lamason/internal/models"
	"lamason/internal/store"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password
// alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
}

type UserService struct {
	users store.UserRepository
	cost  int
	now   func() time.Time
}

func NewUserService(users store.UserRepository) *UserService {
	return &UserService{users: users, cost: bcrypt.DefaultCost, now: time.Now}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if fields := checkStruct(in); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return s.create(ctx, in, models.RoleUser)
}

func (s *UserService) create(ctx context.Context, in RegisterInput, role string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &models.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Phone:        in.Phone,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &ConflictError{Message: "an account with this email already exists"}
		}
		return nil, &PersistenceError{Op: "create user", Err: err}
	}
	log.Printf("[AUTH] [INFO] %s account created: %s", role, user.Email)
	return user, nil
}

// Authenticate checks the password against the stored bcrypt hash.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load user", Err: err}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Entity: "user", ID: id.Hex()}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load user", Err: err}
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list users", Err: err}
	}
	return users, nil
}

// EnsureAdmin creates the admin account once. An existing account with the
// same email is left untouched.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		log.Println("[AUTH] [WARN] ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	_, err := s.create(ctx, RegisterInput{Name: "Administrator", Email: email, Password: password}, models.RoleAdmin)
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return nil
	}
	return err
}
