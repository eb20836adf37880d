package domain

import (
	"errors"
	"fmt"
)

var (
	ErrStoreNotFound   = errors.New("store not found")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrSessionNotFound = errors.New("session not found")

	ErrInvalidSlug            = errors.New("invalid store slug")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrTrackingNumberRequired = fmt.Errorf("%w: tracking number is required to ship", ErrInvalidTransition)
	ErrConcurrentUpdate       = errors.New("order status changed concurrently")
	ErrInvalidOrder           = errors.New("invalid order")
	ErrInvalidProduct         = errors.New("invalid product")
	ErrIdempotencyKeyInUse    = errors.New("an order with this idempotency key is still being placed")

	ErrUnauthenticated     = errors.New("authentication required")
	ErrForbidden           = errors.New("access forbidden")
	ErrAuthorizationDenied = errors.New("identity is not authorized as an admin or seller")
)

// Identity provider error codes.
const (
	AuthCodeInvalidCredential   = "auth/invalid-credential"
	AuthCodeUserNotFound        = "auth/user-not-found"
	AuthCodeWrongPassword       = "auth/wrong-password"
	AuthCodeEmailAlreadyInUse   = "auth/email-already-in-use"
	AuthCodeWeakPassword        = "auth/weak-password"
	AuthCodeNetworkRequest      = "auth/network-request-failed"
	AuthCodeUnauthorizedDomain  = "auth/unauthorized-domain"
	AuthCodeMissingIdentityData = "auth/missing-identifier"
)

var authMessages = map[string]string{
	AuthCodeInvalidCredential:   "Invalid phone number or password.",
	AuthCodeUserNotFound:        "Account not found. Please register first.",
	AuthCodeWrongPassword:       "Incorrect password.",
	AuthCodeEmailAlreadyInUse:   "This account is already registered.",
	AuthCodeWeakPassword:        "Password should be at least 6 characters.",
	AuthCodeNetworkRequest:      "Network error. Please check your internet connection.",
	AuthCodeMissingIdentityData: "Please provide an email or phone number and a password.",
}

// AuthError is an authentication failure reported by the identity provider.
type AuthError struct {
	Code string
	Err  error
}

func NewAuthError(code string) *AuthError {
	return &AuthError{Code: code}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed (%s): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("authentication failed (%s)", e.Code)
}

func (e *AuthError) Unwrap() error { return e.Err }

// UserMessage returns text that is safe to show to the end user.
func (e *AuthError) UserMessage() string {
	if msg, ok := authMessages[e.Code]; ok {
		return msg
	}
	return "Authentication failed."
}

// ConfigurationError means the calling origin is not registered with the
// identity provider. It is user-actionable and never folded into a generic failure.
type ConfigurationError struct {
	Origin string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("origin %q is not authorized for sign-in", e.Origin)
}

// Remediation tells the operator how to fix the setup.
func (e *ConfigurationError) Remediation() string {
	origin := e.Origin
	if origin == "" {
		origin = "<unknown origin>"
	}
	return fmt.Sprintf("Add %s to AUTHORIZED_ORIGINS and restart the service.", origin)
}

// PersistenceError wraps any failure of the document store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError unless it already carries a
// domain meaning (not found, concurrent update) or is nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrStoreNotFound),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrConcurrentUpdate):
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
