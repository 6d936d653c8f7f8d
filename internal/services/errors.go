package services

import (
	"errors"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"swachh_netra/internal/auth"
	"swachh_netra/internal/store"
)

var (
	ErrNotFound                = store.ErrNotFound
	ErrAlreadyProcessed        = errors.New("request has already been processed")
	ErrDuplicatePendingRequest = errors.New("a signup request for this email is already pending")
	ErrReviewCommentRequired   = errors.New("review comments are required to reject a request")
	ErrInactiveAccount         = errors.New("account has been deactivated")
	ErrForbidden               = errors.New("resource belongs to another contractor")
	ErrInvalidRequest          = errors.New("invalid request")
	ErrInvalidTransition       = errors.New("status change not allowed")
	ErrTripInProgress          = errors.New("driver already has a trip in progress")
	ErrInvalidTripNumber       = errors.New("trip number must be between 1 and 3")
	ErrTripNumberUsed          = errors.New("trip number already used for this feeder point today")
	ErrWrongRole               = errors.New("user does not have the required role")
	ErrNotAssigned             = errors.New("feeder point is not assigned to the driver today")
	ErrUnsupported             = errors.New("operation not supported by the identity provider")
)

// domainErrors pass through fail untouched; callers match them with errors.Is.
var domainErrors = []error{
	store.ErrNotFound,
	store.ErrAlreadyExists,
	ErrAlreadyProcessed,
	ErrDuplicatePendingRequest,
	ErrReviewCommentRequired,
	ErrInactiveAccount,
	ErrForbidden,
	ErrInvalidRequest,
	ErrInvalidTransition,
	ErrTripInProgress,
	ErrInvalidTripNumber,
	ErrTripNumberUsed,
	ErrWrongRole,
	ErrNotAssigned,
	ErrUnsupported,
	auth.ErrInvalidCredentials,
	auth.ErrInvalidToken,
}

// ValidationError carries field-level messages for form input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

func invalid(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// BackendError is a storage or provider failure. Error returns the message
// shown to users; the cause stays reachable through Unwrap.
type BackendError struct {
	Op      string
	Message string
	Err     error
}

func (e *BackendError) Error() string { return e.Message }

func (e *BackendError) Unwrap() error { return e.Err }

// fail logs err and wraps it as a BackendError unless it is already a
// domain error.
func fail(op, message string, err error) error {
	if err == nil {
		return nil
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	var validationErr *ValidationError
	var backendErr *BackendError
	if errors.As(err, &validationErr) || errors.As(err, &backendErr) {
		return err
	}

	log.WithFields(log.Fields{"op": op}).WithError(err).Error(message)
	return &BackendError{Op: op, Message: message, Err: err}
}
