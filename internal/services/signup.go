package services

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"swachh_netra/internal/auth"
	"swachh_netra/internal/events"
	"swachh_netra/internal/models"
	"swachh_netra/internal/store"
	"swachh_netra/internal/validation"
)

type SignupService struct {
	deps Deps
}

// SubmitSignupRequest stores a pending request. Only one pending request may
// exist per normalized email; the check and insert share a transaction.
func (s *SignupService) SubmitSignupRequest(ctx context.Context, form validation.SignupForm) (models.SignupRequest, error) {
	if err := invalid(validation.ValidateSignupForm(form)); err != nil {
		return models.SignupRequest{}, err
	}
	role, _ := models.ParseRole(form.RequestedRole)

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		return models.SignupRequest{}, fail("submitSignupRequest", "Failed to submit signup request", err)
	}

	email := auth.NormalizeEmail(form.Email)
	req := &models.SignupRequest{
		Name:          strings.TrimSpace(form.Name),
		Email:         email,
		PendingEmail:  &email,
		Phone:         strings.TrimSpace(form.Phone),
		RequestedRole: role,
		Organization:  strings.TrimSpace(form.Organization),
		Department:    strings.TrimSpace(form.Department),
		Reason:        strings.TrimSpace(form.Reason),
		PasswordHash:  hash,
		Status:        models.StatusPending,
		SubmittedAt:   s.deps.now(),
	}

	err = s.deps.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		var pending []models.SignupRequest
		q := store.Where(store.Eq("email", email), store.Eq("status", models.StatusPending))
		if err := tx.Find(ctx, models.CollectionSignupRequests, q, &pending); err != nil {
			return err
		}
		if len(pending) > 0 {
			return ErrDuplicatePendingRequest
		}
		_, err := tx.Create(ctx, models.CollectionSignupRequests, req)
		return err
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		err = ErrDuplicatePendingRequest
	}
	if err != nil {
		return models.SignupRequest{}, fail("submitSignupRequest", "Failed to submit signup request", err)
	}

	log.WithFields(log.Fields{"request": req.ID, "role": role}).Info("signup request submitted")
	s.deps.publish(events.Change{Collection: models.CollectionSignupRequests, DocumentID: req.ID, Type: events.Created})
	return req.Redacted(), nil
}

// ApproveSignupRequest creates (or reuses) the identity account, writes the
// user document and marks the request approved.
func (s *SignupService) ApproveSignupRequest(ctx context.Context, requestID, reviewerID, comments string) (models.User, error) {
	var req models.SignupRequest
	if err := s.deps.Store.Get(ctx, models.CollectionSignupRequests, requestID, &req); err != nil {
		return models.User{}, fail("approveSignupRequest", "Failed to approve signup request", err)
	}
	if req.Status != models.StatusPending {
		return models.User{}, ErrAlreadyProcessed
	}

	uid, err := s.ensureAccount(ctx, req)
	if err != nil {
		return models.User{}, fail("approveSignupRequest", "Failed to create user account", err)
	}

	var user models.User
	err = s.deps.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		var current models.SignupRequest
		if err := tx.Get(ctx, models.CollectionSignupRequests, requestID, &current); err != nil {
			return err
		}
		if current.Status != models.StatusPending {
			return ErrAlreadyProcessed
		}

		now := s.deps.now()
		var existing models.User
		createdAt := now
		switch err := tx.Get(ctx, models.CollectionUsers, uid, &existing); {
		case err == nil:
			createdAt = existing.CreatedAt
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		user = models.User{
			Email:        current.Email,
			Role:         current.RequestedRole,
			DisplayName:  current.Name,
			Phone:        current.Phone,
			Organization: current.Organization,
			Department:   current.Department,
			Description:  current.RequestedRole.Description(),
			Color:        current.RequestedRole.Color(),
			IsActive:     true,
			ExpoToken:    existing.ExpoToken,
			ContractorID: existing.ContractorID,
			CreatedAt:    createdAt,
			UpdatedAt:    now,
		}
		user.ID = uid
		if err := tx.Set(ctx, models.CollectionUsers, &user); err != nil {
			return err
		}

		return tx.Update(ctx, models.CollectionSignupRequests, requestID, map[string]interface{}{
			"status":         models.StatusApproved,
			"reviewedAt":     now,
			"reviewedBy":     reviewerID,
			"reviewComments": strings.TrimSpace(comments),
			"userId":         uid,
			"pendingEmail":   nil,
			"passwordHash":   "",
		})
	})
	if err != nil {
		return models.User{}, fail("approveSignupRequest", "Failed to approve signup request", err)
	}

	log.WithFields(log.Fields{"request": requestID, "user": uid, "reviewer": reviewerID}).Info("signup request approved")
	s.deps.publish(
		events.Change{Collection: models.CollectionSignupRequests, DocumentID: requestID, Type: events.Updated},
		events.Change{Collection: models.CollectionUsers, DocumentID: uid, Type: events.Created},
	)
	return user, nil
}

// ensureAccount returns the uid of the identity account for the request's
// email, creating it from the stored password hash when none exists.
func (s *SignupService) ensureAccount(ctx context.Context, req models.SignupRequest) (string, error) {
	account, err := s.deps.Auth.LookupEmail(ctx, req.Email)
	if err == nil {
		log.WithFields(log.Fields{"email": req.Email, "user": account.UID}).Info("reusing existing auth account")
		return account.UID, nil
	}
	if !errors.Is(err, auth.ErrAccountNotFound) {
		return "", err
	}

	uid, err := s.deps.Auth.CreateAccount(ctx, auth.NewAccount{
		Email:        req.Email,
		DisplayName:  req.Name,
		PasswordHash: req.PasswordHash,
		Role:         req.RequestedRole,
	})
	if errors.Is(err, auth.ErrAccountExists) {
		account, err = s.deps.Auth.LookupEmail(ctx, req.Email)
		return account.UID, err
	}
	return uid, err
}

// RejectSignupRequest deletes a pending request. A comment is mandatory.
func (s *SignupService) RejectSignupRequest(ctx context.Context, requestID, reviewerID, comments string) error {
	if strings.TrimSpace(comments) == "" {
		return ErrReviewCommentRequired
	}

	err := s.deps.Store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		var req models.SignupRequest
		if err := tx.Get(ctx, models.CollectionSignupRequests, requestID, &req); err != nil {
			return err
		}
		if req.Status != models.StatusPending {
			return ErrAlreadyProcessed
		}
		return tx.Delete(ctx, models.CollectionSignupRequests, requestID)
	})
	if err != nil {
		return fail("rejectSignupRequest", "Failed to reject signup request", err)
	}

	log.WithFields(log.Fields{"request": requestID, "reviewer": reviewerID, "comments": comments}).Info("signup request rejected")
	s.deps.publish(events.Change{Collection: models.CollectionSignupRequests, DocumentID: requestID, Type: events.Deleted})
	return nil
}

func (s *SignupService) GetPendingSignupRequests(ctx context.Context) ([]models.SignupRequest, error) {
	return s.find(ctx, store.Where(store.Eq("status", models.StatusPending)))
}

func (s *SignupService) GetAllSignupRequests(ctx context.Context) ([]models.SignupRequest, error) {
	return s.find(ctx, store.Query{})
}

func (s *SignupService) GetSignupRequest(ctx context.Context, requestID string) (models.SignupRequest, error) {
	var req models.SignupRequest
	if err := s.deps.Store.Get(ctx, models.CollectionSignupRequests, requestID, &req); err != nil {
		return models.SignupRequest{}, fail("getSignupRequest", "Failed to load signup request", err)
	}
	return req.Redacted(), nil
}

func (s *SignupService) find(ctx context.Context, q store.Query) ([]models.SignupRequest, error) {
	var requests []models.SignupRequest
	if err := s.deps.Store.Find(ctx, models.CollectionSignupRequests, q, &requests); err != nil {
		return nil, fail("getSignupRequests", "Failed to load signup requests", err)
	}
	sortByTime(requests, func(r models.SignupRequest) time.Time { return r.SubmittedAt }, true)
	for i := range requests {
		requests[i] = requests[i].Redacted()
	}
	return requests, nil
}
