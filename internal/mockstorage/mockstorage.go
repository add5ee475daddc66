// Package mockstorage provides a testify-based mock of the user store.
// It is used to drive the failure paths of the service and router tests.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/usersweb/internal/models"
	"github.com/patric-chuzhbe/usersweb/internal/user"
)

// StorageMock implements every storage interface used by the service and the app.
type StorageMock struct {
	mock.Mock
}

// Ping mocks the storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ListUsers mocks fetching the whole collection.
func (m *StorageMock) ListUsers(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]user.User)
	return users, args.Error(1)
}

// CreateUser mocks user creation and returns a generated ID.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	args := m.Called(ctx, usr)
	return args.String(0), args.Error(1)
}

// GetUserByID mocks fetching a user by ID.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// UpdateUser mocks a field-level update.
func (m *StorageMock) UpdateUser(ctx context.Context, userID string, update models.UserUpdate) error {
	args := m.Called(ctx, userID, update)
	return args.Error(0)
}

// DeleteUser mocks deletion by ID.
func (m *StorageMock) DeleteUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// Close mocks closing the storage.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
