// Package auth wraps the identity provider that owns login credentials.
// Application data about a user lives in the users collection; the provider
// only knows uid, email and password.
package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"swachh_netra/internal/models"
)

var (
	ErrAccountNotFound    = errors.New("auth account not found")
	ErrAccountExists      = errors.New("auth account already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Account struct {
	UID         string
	Email       string
	DisplayName string
}

// NewAccount describes an account to create. The password arrives already
// bcrypt-hashed; plaintext passwords are never stored.
type NewAccount struct {
	Email        string
	DisplayName  string
	PasswordHash string
	Role         models.Role
}

type Claims struct {
	UID  string
	Role models.Role
}

type Provider interface {
	CreateAccount(ctx context.Context, account NewAccount) (string, error)
	LookupEmail(ctx context.Context, email string) (Account, error)
	VerifyToken(ctx context.Context, token string) (Claims, error)
}

// SignInProvider is implemented by providers that issue their own tokens.
// With Firebase the mobile client signs in directly against Firebase Auth.
type SignInProvider interface {
	SignIn(ctx context.Context, email, password string) (string, Account, error)
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
