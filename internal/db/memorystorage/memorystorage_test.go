package memorystorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/usersweb/internal/user"
)

func Test(t *testing.T) {
	t.Run("The base memorystorage package test", func(t *testing.T) {
		theStorage, err := New()
		require.NoError(t, err, "The memorystorage.New() should not return error")

		id, err := theStorage.CreateUser(context.Background(), &user.User{Name: "Ann", Email: "ann@example.com"})
		assert.NoError(t, err, "The `theStorage.CreateUser()` should not return error")

		usr, err := theStorage.GetUserByID(context.Background(), id)
		assert.NoError(t, err)
		require.NotNil(t, usr)
		assert.Equal(t, "Ann", usr.Name, "Should be equal to `Ann`")

		err = theStorage.Ping(context.Background())
		assert.NoError(t, err, "The memorystorage.Ping() should not return error")

		err = theStorage.Close()
		assert.NoError(t, err, "The memorystorage.Close() should not return error")
	})
}
