package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"swachh_netra/internal/models"
	"swachh_netra/internal/store"
)

// LocalProvider keeps credentials in the authAccounts collection and issues
// HS256 JWTs.
type LocalProvider struct {
	store  store.Store
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewLocalProvider(st store.Store, secret string, expiry time.Duration) *LocalProvider {
	if expiry <= 0 {
		expiry = 72 * time.Hour
	}
	return &LocalProvider{store: st, secret: []byte(secret), expiry: expiry, now: time.Now}
}

func (p *LocalProvider) CreateAccount(ctx context.Context, account NewAccount) (string, error) {
	email := NormalizeEmail(account.Email)
	if _, err := p.LookupEmail(ctx, email); err == nil {
		return "", ErrAccountExists
	} else if !errors.Is(err, ErrAccountNotFound) {
		return "", err
	}

	record := &models.AuthAccount{
		Email:        email,
		PasswordHash: account.PasswordHash,
		DisplayName:  account.DisplayName,
		CreatedAt:    p.now(),
	}
	uid, err := p.store.Create(ctx, models.CollectionAuthAccounts, record)
	if errors.Is(err, store.ErrAlreadyExists) {
		return "", ErrAccountExists
	}
	return uid, err
}

func (p *LocalProvider) LookupEmail(ctx context.Context, email string) (Account, error) {
	record, err := p.findAccount(ctx, email)
	if err != nil {
		return Account{}, err
	}
	return Account{UID: record.ID, Email: record.Email, DisplayName: record.DisplayName}, nil
}

func (p *LocalProvider) findAccount(ctx context.Context, email string) (models.AuthAccount, error) {
	var records []models.AuthAccount
	q := store.Query{Filters: []store.Filter{store.Eq("email", NormalizeEmail(email))}, Limit: 1}
	if err := p.store.Find(ctx, models.CollectionAuthAccounts, q, &records); err != nil {
		return models.AuthAccount{}, err
	}
	if len(records) == 0 {
		return models.AuthAccount{}, ErrAccountNotFound
	}
	return records[0], nil
}

// SignIn checks the password and returns a signed token. The role claim is
// taken from the user document when one exists.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (string, Account, error) {
	record, err := p.findAccount(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		return "", Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)); err != nil {
		return "", Account{}, ErrInvalidCredentials
	}

	var user models.User
	role := models.Role("")
	if err := p.store.Get(ctx, models.CollectionUsers, record.ID, &user); err == nil {
		role = user.Role
	}

	token, err := p.GenerateToken(record.ID, role)
	if err != nil {
		return "", Account{}, err
	}
	return token, Account{UID: record.ID, Email: record.Email, DisplayName: record.DisplayName}, nil
}

func (p *LocalProvider) GenerateToken(uid string, role models.Role) (string, error) {
	claims := jwt.MapClaims{
		"user_id": uid,
		"role":    string(role),
		"exp":     p.now().Add(p.expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

func (p *LocalProvider) VerifyToken(ctx context.Context, tokenStr string) (Claims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now))
	if err != nil || !token.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	uid, _ := claims["user_id"].(string)
	if uid == "" {
		return Claims{}, ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	return Claims{UID: uid, Role: models.Role(role)}, nil
}
