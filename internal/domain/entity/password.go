package entity

import (
	"database/sql/driver"
	"errors"
)

// ErrPasswordWriteOnly is returned by any attempt to read a password digest.
var ErrPasswordWriteOnly = errors.New("password hash is write-only")

// PasswordHasher wraps a salted one-way hash function.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(digest, plaintext string) bool
}

// Password is a write-only password digest. It can be set and verified but
// never read back; Value exists only so the database driver can persist it.
type Password struct {
	digest string
}

// RestorePassword rebuilds a Password from a persisted column value.
func RestorePassword(digest *string) Password {
	if digest == nil {
		return Password{}
	}
	return Password{digest: *digest}
}

// Set hashes plaintext and replaces the stored digest.
func (p *Password) Set(h PasswordHasher, plaintext string) error {
	if plaintext == "" {
		return NewValidationError("password", "Password cannot be empty.")
	}
	digest, err := h.Hash(plaintext)
	if err != nil {
		return err
	}
	p.digest = digest
	return nil
}

// Verify reports whether plaintext matches. An unset password never matches.
func (p Password) Verify(h PasswordHasher, plaintext string) bool {
	if p.digest == "" {
		return false
	}
	return h.Compare(p.digest, plaintext)
}

// IsSet reports whether a digest is present.
func (p Password) IsSet() bool { return p.digest != "" }

// Value implements driver.Valuer. An unset password is stored as NULL.
func (p Password) Value() (driver.Value, error) {
	if p.digest == "" {
		return nil, nil
	}
	return p.digest, nil
}

func (p Password) MarshalJSON() ([]byte, error) { return nil, ErrPasswordWriteOnly }

func (p Password) MarshalText() ([]byte, error) { return nil, ErrPasswordWriteOnly }

func (p Password) String() string { return "[redacted]" }

func (p Password) GoString() string { return "entity.Password{[redacted]}" }
