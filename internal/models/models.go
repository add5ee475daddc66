package models

import (
	"github.com/patric-chuzhbe/usersweb/internal/user"
)

// UserForm is the create form as submitted by the users page.
type UserForm struct {
	Name     string
	Email    string
	Password string
}

// UserUpdate carries the editable fields of an update request.
// A nil field is left untouched by the store.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

// IsEmpty reports whether the update would change nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.Password == nil
}

// ListPage is the data bag of the list view.
type ListPage struct {
	BasePath string
	Users    []user.User
	Errors   []ValidationError
}

// EditPage is the data bag of the edit partial. User is nil when the
// requested record does not exist.
type EditPage struct {
	BasePath string
	User     *user.User
}

// ValidationError is one failed rule as exposed to the views.
type ValidationError struct {
	Field string
	Msg   string
}

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)
