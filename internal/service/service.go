// Package service implements the user management operations behind the users page.
package service

import (
	"context"
	"fmt"

	"github.com/patric-chuzhbe/usersweb/internal/models"
	"github.com/patric-chuzhbe/usersweb/internal/user"
)

type userKeeper interface {
	ListUsers(ctx context.Context) ([]user.User, error)

	CreateUser(ctx context.Context, usr *user.User) (string, error)

	GetUserByID(ctx context.Context, userID string) (*user.User, error)

	UpdateUser(ctx context.Context, userID string, update models.UserUpdate) error

	DeleteUser(ctx context.Context, userID string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	userKeeper
	pinger
}

type formValidator interface {
	ValidateUserForm(form models.UserForm) []models.ValidationError
}

type passwordHasher interface {
	Hash(plain string) (string, error)
}

// Service validates, hashes and stores users on behalf of the router.
type Service struct {
	db        storage
	validator formValidator
	hasher    passwordHasher
}

// New returns a Service over db.
func New(
	db storage,
	validator formValidator,
	hasher passwordHasher,
) *Service {
	return &Service{
		db:        db,
		validator: validator,
		hasher:    hasher,
	}
}

// ListUsers returns all users as the store orders them.
func (s *Service) ListUsers(ctx context.Context) ([]user.User, error) {
	users, err := s.db.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/service.go/ListUsers(): error while `s.db.ListUsers()` calling: %w", err)
	}
	if users == nil {
		users = []user.User{}
	}

	return users, nil
}

// CreateUser validates form and, when every rule passes, stores a new user
// with a hashed password. A non-empty validation result means nothing was written.
func (s *Service) CreateUser(ctx context.Context, form models.UserForm) (string, []models.ValidationError, error) {
	if validationErrors := s.validator.ValidateUserForm(form); len(validationErrors) > 0 {
		return "", validationErrors, nil
	}

	digest, err := s.hasher.Hash(form.Password)
	if err != nil {
		return "", nil, err
	}

	userID, err := s.db.CreateUser(ctx, &user.User{
		Name:     form.Name,
		Email:    form.Email,
		Password: digest,
	})
	if err != nil {
		return "", nil, fmt.Errorf("in internal/service/service.go/CreateUser(): error while `s.db.CreateUser()` calling: %w", err)
	}

	return userID, nil, nil
}

// GetUser returns nil when no user has the given ID.
func (s *Service) GetUser(ctx context.Context, userID string) (*user.User, error) {
	usr, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/service.go/GetUser(): error while `s.db.GetUserByID()` calling: %w", err)
	}

	return usr, nil
}

// UpdateUser applies update. A supplied password is rehashed; an empty one is ignored.
func (s *Service) UpdateUser(ctx context.Context, userID string, update models.UserUpdate) error {
	if update.Password != nil {
		if *update.Password == "" {
			update.Password = nil
		} else {
			digest, err := s.hasher.Hash(*update.Password)
			if err != nil {
				return err
			}
			update.Password = &digest
		}
	}

	if update.IsEmpty() {
		return nil
	}

	if err := s.db.UpdateUser(ctx, userID, update); err != nil {
		return fmt.Errorf("in internal/service/service.go/UpdateUser(): error while `s.db.UpdateUser()` calling: %w", err)
	}

	return nil
}

// DeleteUser removes the user if it exists.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	if err := s.db.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("in internal/service/service.go/DeleteUser(): error while `s.db.DeleteUser()` calling: %w", err)
	}

	return nil
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
