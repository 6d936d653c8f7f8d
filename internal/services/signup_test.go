package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swachh_netra/internal/models"
	"swachh_netra/internal/validation"
)

func signupForm(email string) validation.SignupForm {
	return validation.SignupForm{
		Name:            "Asha Verma",
		Email:           email,
		Phone:           "+919876543210",
		RequestedRole:   "contractor",
		Organization:    "Verma Transport",
		Department:      "Operations",
		Reason:          "Managing collection vehicles for ward 12",
		Password:        "Abcdef1!",
		ConfirmPassword: "Abcdef1!",
	}
}

func TestSubmitSignupRequestRejectsSecondPendingRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Signups.SubmitSignupRequest(ctx, signupForm("Asha@Example.com "))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, "asha@example.com", req.Email)
	assert.Empty(t, req.PasswordHash)

	_, err = f.svc.Signups.SubmitSignupRequest(ctx, signupForm("asha@example.com"))
	assert.ErrorIs(t, err, ErrDuplicatePendingRequest)

	all, err := f.svc.Signups.GetAllSignupRequests(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSubmitSignupRequestReturnsFieldErrors(t *testing.T) {
	f := newFixture(t)
	form := signupForm("not-an-email")
	form.Password = "abc"
	form.ConfirmPassword = "abc"

	_, err := f.svc.Signups.SubmitSignupRequest(context.Background(), form)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "email")
	assert.Contains(t, validationErr.Fields, "password")
}

func TestApproveSignupRequestCreatesAccountAndUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Signups.SubmitSignupRequest(ctx, signupForm("asha@example.com"))
	require.NoError(t, err)

	user, err := f.svc.Signups.ApproveSignupRequest(ctx, req.ID, "admin-1", "welcome")
	require.NoError(t, err)
	assert.Equal(t, models.RoleContractor, user.Role)
	assert.Equal(t, models.RoleContractor.Description(), user.Description)
	assert.Equal(t, models.RoleContractor.Color(), user.Color)
	assert.True(t, user.IsActive)

	account, err := f.auth.LookupEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.UID, user.ID)

	var stored models.SignupRequest
	require.NoError(t, f.store.Get(ctx, models.CollectionSignupRequests, req.ID, &stored))
	assert.Equal(t, models.StatusApproved, stored.Status)
	assert.Equal(t, "admin-1", stored.ReviewedBy)
	assert.Equal(t, user.ID, stored.UserID)
	assert.Nil(t, stored.PendingEmail)
	assert.Empty(t, stored.PasswordHash)

	token, signedIn, err := f.svc.Users.SignIn(ctx, "asha@example.com", "Abcdef1!")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, signedIn.ID)
}

func TestApproveSignupRequestTwiceFailsWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Signups.SubmitSignupRequest(ctx, signupForm("asha@example.com"))
	require.NoError(t, err)
	_, err = f.svc.Signups.ApproveSignupRequest(ctx, req.ID, "admin-1", "")
	require.NoError(t, err)

	_, err = f.svc.Signups.ApproveSignupRequest(ctx, req.ID, "admin-2", "again")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	var accounts []models.AuthAccount
	count(t, f.store, models.CollectionAuthAccounts, &accounts)
	assert.Len(t, accounts, 1)

	var stored models.SignupRequest
	require.NoError(t, f.store.Get(ctx, models.CollectionSignupRequests, req.ID, &stored))
	assert.Equal(t, "admin-1", stored.ReviewedBy)
}

func TestApproveSignupRequestReusesExistingAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uid, err := f.auth.CreateAccount(ctx, accountFor("asha@example.com"))
	require.NoError(t, err)

	req, err := f.svc.Signups.SubmitSignupRequest(ctx, signupForm("asha@example.com"))
	require.NoError(t, err)
	user, err := f.svc.Signups.ApproveSignupRequest(ctx, req.ID, "admin-1", "")
	require.NoError(t, err)

	assert.Equal(t, uid, user.ID)
}

func TestApproveSignupRequestMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Signups.ApproveSignupRequest(context.Background(), "missing", "admin-1", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRejectSignupRequestDeletesRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Signups.SubmitSignupRequest(ctx, signupForm("asha@example.com"))
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Signups.RejectSignupRequest(ctx, req.ID, "admin-1", "  "), ErrReviewCommentRequired)
	require.NoError(t, f.svc.Signups.RejectSignupRequest(ctx, req.ID, "admin-1", "unknown organization"))

	_, err = f.svc.Signups.GetSignupRequest(ctx, req.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	pending, err := f.svc.Signups.GetPendingSignupRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = f.svc.Signups.SubmitSignupRequest(ctx, signupForm("asha@example.com"))
	assert.NoError(t, err)
}
