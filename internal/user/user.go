// Package user defines the user record kept by the record store
// and rendered by the users page.
package user

// User represents a managed user.
type User struct {
	// ID is the store-assigned identifier, a UUID. It never changes after creation.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Email is stored as submitted; format is only checked on creation.
	Email string `json:"email"`

	// Password holds the bcrypt digest, never the plaintext.
	Password string `json:"password"`
}
