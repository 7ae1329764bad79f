package entity

import "strings"

// User is the aggregate root for accounts. It exclusively owns its recipes:
// deleting a user deletes every recipe that references it.
//
// The password is write-only, see Password.
type User struct {
	ID       int64
	Username string
	Password Password
	ImageURL string
	Bio      string
	Recipes  []Recipe
}

// NewUser builds a user without a password; call SetPassword before persisting
// if the account should be able to log in.
func NewUser(username, imageURL, bio string) (*User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, NewValidationError("username", "Username is required.")
	}
	return &User{Username: username, ImageURL: imageURL, Bio: bio}, nil
}

// SetPassword hashes plaintext into the user's write-only password.
func (u *User) SetPassword(h PasswordHasher, plaintext string) error {
	return u.Password.Set(h, plaintext)
}

// CheckPassword verifies plaintext against the stored digest.
func (u *User) CheckPassword(h PasswordHasher, plaintext string) bool {
	return u.Password.Verify(h, plaintext)
}
