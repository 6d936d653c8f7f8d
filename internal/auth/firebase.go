package auth

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/auth"
	"firebase.google.com/go/auth/hash"
	log "github.com/sirupsen/logrus"

	"swachh_netra/internal/models"
)

// FirebaseProvider delegates accounts and ID tokens to Firebase Auth.
type FirebaseProvider struct {
	client *auth.Client
}

func NewFirebaseProvider(client *auth.Client) *FirebaseProvider {
	return &FirebaseProvider{client: client}
}

// CreateAccount imports the account with its bcrypt hash so the password
// never has to be kept in plaintext. The role is stored as a custom claim.
func (p *FirebaseProvider) CreateAccount(ctx context.Context, account NewAccount) (string, error) {
	uid := models.NewID()
	user := (&auth.UserToImport{}).
		UID(uid).
		Email(NormalizeEmail(account.Email)).
		DisplayName(account.DisplayName).
		PasswordHash([]byte(account.PasswordHash)).
		CustomClaims(map[string]interface{}{"role": string(account.Role)})

	result, err := p.client.ImportUsers(ctx, []*auth.UserToImport{user}, auth.WithHash(hash.Bcrypt{}))
	if err != nil {
		return "", err
	}
	if result.FailureCount > 0 {
		reason := "unknown"
		if len(result.Errors) > 0 {
			reason = result.Errors[0].Reason
		}
		log.Errorf("importing firebase user %s: %s", account.Email, reason)
		if _, lookupErr := p.LookupEmail(ctx, account.Email); lookupErr == nil {
			return "", ErrAccountExists
		}
		return "", fmt.Errorf("import firebase user: %s", reason)
	}
	return uid, nil
}

func (p *FirebaseProvider) LookupEmail(ctx context.Context, email string) (Account, error) {
	record, err := p.client.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if auth.IsUserNotFound(err) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return Account{UID: record.UID, Email: record.Email, DisplayName: record.DisplayName}, nil
}

func (p *FirebaseProvider) VerifyToken(ctx context.Context, idToken string) (Claims, error) {
	token, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}
	role, _ := token.Claims["role"].(string)
	return Claims{UID: token.UID, Role: models.Role(role)}, nil
}
