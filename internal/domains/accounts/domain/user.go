package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	// RoleAdmin grants access to order status management.
	RoleAdmin = "admin"
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 6
)

var (
	ErrEmptyName     = errors.New("name is required")
	ErrInvalidEmail  = errors.New("email must contain '@'")
	ErrWeakPassword  = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrEmptyPassword = errors.New("password is required")
)

// User is a registered storefront customer.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}

// NewUser validates the registration fields and hashes the password.
func NewUser(id, name, email, password string, now time.Time) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &User{ID: id, Name: name, Email: email, PasswordHash: hash, CreatedAt: now}, nil
}

// NormalizeEmail trims and lower-cases the address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// HashPassword enforces the minimum length and returns a bcrypt hash.
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrEmptyPassword
	}
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u == nil || u.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (u *User) IsAdmin() bool {
	return u != nil && slices.Contains(u.Roles, RoleAdmin)
}

// Grant adds role once.
func (u *User) Grant(role string) {
	role = strings.TrimSpace(role)
	if role == "" || slices.Contains(u.Roles, role) {
		return
	}
	u.Roles = append(u.Roles, role)
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = slices.Clone(u.Roles)
	return &clone
}
