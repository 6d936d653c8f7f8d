package services

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"swachh_netra/internal/auth"
	"swachh_netra/internal/events"
	"swachh_netra/internal/models"
	"swachh_netra/internal/notify"
	"swachh_netra/internal/store"
)

// Session is the authenticated caller.
type Session struct {
	User models.User
	Role models.Role
}

func (s Session) UID() string { return s.User.ID }

type UserService struct {
	deps Deps
}

// Authenticate verifies a bearer token and loads the caller's user document.
// The role always comes from the document, not from token claims.
func (s *UserService) Authenticate(ctx context.Context, token string) (Session, error) {
	claims, err := s.deps.Auth.VerifyToken(ctx, token)
	if err != nil {
		return Session{}, auth.ErrInvalidToken
	}

	var user models.User
	if err := s.deps.Store.Get(ctx, models.CollectionUsers, claims.UID, &user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, auth.ErrInvalidToken
		}
		return Session{}, fail("authenticate", "Failed to load user profile", err)
	}
	if !user.IsActive {
		return Session{}, ErrInactiveAccount
	}
	return Session{User: user, Role: user.Role}, nil
}

// SignIn exchanges email and password for a token. Only providers that issue
// their own tokens support it.
func (s *UserService) SignIn(ctx context.Context, email, password string) (string, models.User, error) {
	provider, ok := s.deps.Auth.(auth.SignInProvider)
	if !ok {
		return "", models.User{}, ErrUnsupported
	}

	token, account, err := provider.SignIn(ctx, email, password)
	if err != nil {
		return "", models.User{}, fail("signIn", "Failed to sign in", err)
	}

	var user models.User
	if err := s.deps.Store.Get(ctx, models.CollectionUsers, account.UID, &user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", models.User{}, auth.ErrInvalidCredentials
		}
		return "", models.User{}, fail("signIn", "Failed to load user profile", err)
	}
	if !user.IsActive {
		return "", models.User{}, ErrInactiveAccount
	}

	log.WithFields(log.Fields{"user": user.ID, "role": user.Role}).Info("user signed in")
	return token, user, nil
}

func (s *UserService) GetUser(ctx context.Context, uid string) (models.User, error) {
	var user models.User
	if err := s.deps.Store.Get(ctx, models.CollectionUsers, uid, &user); err != nil {
		return models.User{}, fail("getUser", "Failed to load user", err)
	}
	return user, nil
}

func (s *UserService) GetUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	if err := s.deps.Store.Find(ctx, models.CollectionUsers, store.Where(store.Eq("role", role)), &users); err != nil {
		return nil, fail("getUsersByRole", "Failed to load users", err)
	}
	return users, nil
}

func (s *UserService) UpdateUserRole(ctx context.Context, uid, rawRole string) (models.User, error) {
	role, ok := models.ParseRole(rawRole)
	if !ok {
		return models.User{}, invalid(map[string]string{"role": "Please select a valid role"})
	}

	err := s.deps.Store.Update(ctx, models.CollectionUsers, uid, map[string]interface{}{
		"role":        role,
		"description": role.Description(),
		"color":       role.Color(),
		"updatedAt":   s.deps.now(),
	})
	if err != nil {
		return models.User{}, fail("updateUserRole", "Failed to update user role", err)
	}

	log.WithFields(log.Fields{"user": uid, "role": role}).Info("user role updated")
	s.deps.publish(events.Change{Collection: models.CollectionUsers, DocumentID: uid, Type: events.Updated})
	return s.GetUser(ctx, uid)
}

// DeactivateUser clears isActive. Users are never hard-deleted.
func (s *UserService) DeactivateUser(ctx context.Context, uid string) error {
	err := s.deps.Store.Update(ctx, models.CollectionUsers, uid, map[string]interface{}{
		"isActive":  false,
		"updatedAt": s.deps.now(),
	})
	if err != nil {
		return fail("deactivateUser", "Failed to deactivate user", err)
	}

	log.WithFields(log.Fields{"user": uid}).Info("user deactivated")
	s.deps.publish(events.Change{Collection: models.CollectionUsers, DocumentID: uid, Type: events.Updated})
	return nil
}

func (s *UserService) RegisterPushToken(ctx context.Context, uid, token string) error {
	token = strings.TrimSpace(token)
	if !notify.ValidToken(token) {
		return invalid(map[string]string{"expoToken": "Invalid Expo push token"})
	}

	err := s.deps.Store.Update(ctx, models.CollectionUsers, uid, map[string]interface{}{
		"expoToken": token,
		"updatedAt": s.deps.now(),
	})
	return fail("registerPushToken", "Failed to register push token", err)
}
