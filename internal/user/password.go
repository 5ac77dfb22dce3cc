package user

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher abstracts how passwords are stored and compared.
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(stored, pw string) bool
	// IsHashed reports whether s is already in stored form, so an update
	// that carries the stored value back is not hashed twice.
	IsHashed(s string) bool
}

// PlainText keeps passwords as given and compares them in constant time.
// It is the default and stores credentials unprotected.
type PlainText struct{}

func (PlainText) Hash(pw string) (string, error) { return pw, nil }
func (PlainText) Verify(stored, pw string) bool  { return ConstantTimeCompare(stored, pw) }
func (PlainText) IsHashed(string) bool           { return false }

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func (b BcryptHasher) IsHashed(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// NewHasher maps a configured name to a hasher; unknown names fall back to PlainText.
func NewHasher(name string, cost int) PasswordHasher {
	if name == "bcrypt" {
		return BcryptHasher{Cost: cost}
	}
	return PlainText{}
}

// ConstantTimeCompare reports whether a and b are equal without leaking timing.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
