package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/patric-chuzhbe/usersweb/internal/db/memorystorage"
	"github.com/patric-chuzhbe/usersweb/internal/mockstorage"
	"github.com/patric-chuzhbe/usersweb/internal/models"
	"github.com/patric-chuzhbe/usersweb/internal/password"
	"github.com/patric-chuzhbe/usersweb/internal/user"
	"github.com/patric-chuzhbe/usersweb/internal/validation"
)

func strPtr(s string) *string {
	return &s
}

func newTestService(t *testing.T, db storage) (*Service, *password.Hasher) {
	t.Helper()

	v, err := validation.New()
	require.NoError(t, err)

	hasher, err := password.New(bcrypt.MinCost)
	require.NoError(t, err)

	return New(db, v, hasher), hasher
}

func TestCreateUser(t *testing.T) {
	db, err := memorystorage.New()
	require.NoError(t, err)
	s, hasher := newTestService(t, db)
	ctx := context.Background()

	t.Run("valid form is stored with a hashed password", func(t *testing.T) {
		userID, validationErrors, err := s.CreateUser(ctx, models.UserForm{
			Name:     "Ann Lee",
			Email:    "ann@example.com",
			Password: "secret1",
		})
		require.NoError(t, err)
		assert.Empty(t, validationErrors)
		require.NotEmpty(t, userID)

		usr, err := s.GetUser(ctx, userID)
		require.NoError(t, err)
		require.NotNil(t, usr)
		assert.Equal(t, "Ann Lee", usr.Name)
		assert.Equal(t, "ann@example.com", usr.Email)
		assert.NotEqual(t, "secret1", usr.Password)
		assert.NoError(t, hasher.Compare(usr.Password, "secret1"))
	})

	t.Run("invalid form writes nothing", func(t *testing.T) {
		before, err := s.ListUsers(ctx)
		require.NoError(t, err)

		userID, validationErrors, err := s.CreateUser(ctx, models.UserForm{
			Name:     "John3",
			Email:    "not-an-email",
			Password: "abc",
		})
		require.NoError(t, err)
		assert.Empty(t, userID)
		require.Len(t, validationErrors, 3)
		assert.Equal(t, validation.MsgNameSpecialChars, validationErrors[0].Msg)
		assert.Equal(t, validation.MsgEmailInvalid, validationErrors[1].Msg)
		assert.Equal(t, validation.MsgPasswordTooShort, validationErrors[2].Msg)

		after, err := s.ListUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestListUsersEmpty(t *testing.T) {
	db, err := memorystorage.New()
	require.NoError(t, err)
	s, _ := newTestService(t, db)

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUpdateUser(t *testing.T) {
	db, err := memorystorage.New()
	require.NoError(t, err)
	s, hasher := newTestService(t, db)
	ctx := context.Background()

	userID, _, err := s.CreateUser(ctx, models.UserForm{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	original, err := s.GetUser(ctx, userID)
	require.NoError(t, err)

	t.Run("name only keeps the password digest", func(t *testing.T) {
		err := s.UpdateUser(ctx, userID, models.UserUpdate{Name: strPtr("Anna"), Password: strPtr("")})
		require.NoError(t, err)

		usr, err := s.GetUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "Anna", usr.Name)
		assert.Equal(t, original.Password, usr.Password)
	})

	t.Run("new password is rehashed", func(t *testing.T) {
		err := s.UpdateUser(ctx, userID, models.UserUpdate{Password: strPtr("another1")})
		require.NoError(t, err)

		usr, err := s.GetUser(ctx, userID)
		require.NoError(t, err)
		assert.NotEqual(t, "another1", usr.Password)
		assert.NoError(t, hasher.Compare(usr.Password, "another1"))
	})

	t.Run("missing user is a no-op", func(t *testing.T) {
		assert.NoError(t, s.UpdateUser(ctx, "nonexistent", models.UserUpdate{Name: strPtr("X")}))
	})
}

func TestDeleteUser(t *testing.T) {
	db, err := memorystorage.New()
	require.NoError(t, err)
	s, _ := newTestService(t, db)
	ctx := context.Background()

	userID, _, err := s.CreateUser(ctx, models.UserForm{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(ctx, "nonexistent"))
	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, s.DeleteUser(ctx, userID))
	users, err = s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestStorageErrorsPropagate(t *testing.T) {
	dbErr := errors.New("db error")
	db := new(mockstorage.StorageMock)
	s, _ := newTestService(t, db)
	ctx := context.Background()

	db.On("ListUsers", mock.Anything).Return(nil, dbErr)
	db.On("CreateUser", mock.Anything, mock.AnythingOfType("*user.User")).Return("", dbErr)
	db.On("GetUserByID", mock.Anything, "id").Return((*user.User)(nil), dbErr)
	db.On("UpdateUser", mock.Anything, "id", mock.Anything).Return(dbErr)
	db.On("DeleteUser", mock.Anything, "id").Return(dbErr)
	db.On("Ping", mock.Anything).Return(dbErr)

	_, err := s.ListUsers(ctx)
	assert.ErrorIs(t, err, dbErr)

	_, _, err = s.CreateUser(ctx, models.UserForm{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, dbErr)

	_, err = s.GetUser(ctx, "id")
	assert.ErrorIs(t, err, dbErr)

	assert.ErrorIs(t, s.UpdateUser(ctx, "id", models.UserUpdate{Name: strPtr("x")}), dbErr)
	assert.ErrorIs(t, s.DeleteUser(ctx, "id"), dbErr)
	assert.ErrorIs(t, s.Ping(ctx), dbErr)

	db.AssertExpectations(t)
}

func TestEmptyUpdateSkipsStorage(t *testing.T) {
	db := new(mockstorage.StorageMock)
	s, _ := newTestService(t, db)

	require.NoError(t, s.UpdateUser(context.Background(), "id", models.UserUpdate{Password: strPtr("")}))
	db.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestLongPasswords(t *testing.T) {
	db, err := memorystorage.New()
	require.NoError(t, err)
	s, hasher := newTestService(t, db)
	ctx := context.Background()

	long := strings.Repeat("a", 73)
	userID, validationErrors, err := s.CreateUser(ctx, models.UserForm{
		Name:     "John",
		Email:    "john@example.com",
		Password: long,
	})
	require.NoError(t, err)
	assert.Empty(t, validationErrors)

	usr, err := s.GetUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, usr)
	assert.NoError(t, hasher.Compare(usr.Password, long))

	longer := strings.Repeat("b", 80)
	require.NoError(t, s.UpdateUser(ctx, userID, models.UserUpdate{Password: strPtr(longer)}))

	usr, err = s.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.NoError(t, hasher.Compare(usr.Password, longer))
}
