package domain

import (
	"errors"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Entry errors
var (
	// ErrInvalidOdds is returned when an entry's original odds are ≤ 1.
	// Rejected before any store write.
	ErrInvalidOdds = errors.New("original odds must be greater than 1")

	// ErrInvalidOutcome is returned when a resolution outcome is neither
	// green nor red.
	ErrInvalidOutcome = errors.New("invalid outcome: must be green or red")

	// ErrInvalidKind is returned when the entry kind is neither horse nor
	// greyhound.
	ErrInvalidKind = errors.New("invalid entry kind: must be horse or greyhound")

	// ErrEntryNotFound is returned when no entry matches the given id for
	// the requesting user. Resolve and delete treat it as a silent no-op
	// because it only arises from stale client state.
	ErrEntryNotFound = errors.New("entry not found")
)

// Goal errors
var (
	// ErrGoalNotFound is returned when no goal row exists for the natural
	// key (user, month, year). Callers substitute a default-valued goal.
	ErrGoalNotFound = errors.New("goal not found")

	// ErrInvalidMonth is returned when a month outside [1,12] is requested.
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
)

// User / auth errors
var (
	// ErrUserNotFound is returned when no user matches the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned on registration when the email already exists.
	ErrEmailTaken = errors.New("email address is already registered")

	// ErrInvalidCredentials is returned when login credentials are wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailNotConfirmed is returned when a user signs in before clicking
	// the confirmation link.
	ErrEmailNotConfirmed = errors.New("email address has not been confirmed")

	// ErrInvalidConfirmToken is returned when a confirmation token matches
	// no pending account.
	ErrInvalidConfirmToken = errors.New("confirmation token is invalid or already used")

	// ErrUnauthorized is returned when a valid token is not present.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired is returned when a JWT has passed its TTL.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid is returned when a token cannot be parsed or its
	// signature does not match.
	ErrTokenInvalid = errors.New("token is invalid")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// notFoundErrors collects all "entity not found" sentinel errors so that
// IsNotFound can stay in sync automatically.
var notFoundErrors = []error{
	ErrEntryNotFound,
	ErrGoalNotFound,
	ErrUserNotFound,
}

// IsNotFound returns true when err (or any error in its chain) is one of
// the domain "not found" errors.
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValidation returns true for errors caused by input failing a domain
// rule; these map to HTTP 400 and never reach the store.
func IsValidation(err error) bool {
	validationErrors := []error{
		ErrInvalidOdds,
		ErrInvalidOutcome,
		ErrInvalidKind,
		ErrInvalidMonth,
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsAuthError returns true for authentication errors.
func IsAuthError(err error) bool {
	authErrors := []error{
		ErrUnauthorized,
		ErrTokenExpired,
		ErrTokenInvalid,
		ErrInvalidCredentials,
		ErrEmailNotConfirmed,
	}
	for _, target := range authErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
