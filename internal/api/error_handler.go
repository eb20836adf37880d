package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/quickorder/storefront/internal/core/domain"
	"github.com/quickorder/storefront/internal/core/payment"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error       string `json:"error"`
	Code        string `json:"code,omitempty"`
	Remediation string `json:"remediation,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain errors
// to status codes and renders {"error": "<message>"}. Unexpected errors are
// logged and never leak their cause to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		return authStatus(authErr.Code), errorResponse{Error: authErr.UserMessage(), Code: authErr.Code}
	}

	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) {
		return http.StatusPreconditionFailed, errorResponse{
			Error:       cfgErr.Error(),
			Code:        domain.AuthCodeUnauthorizedDomain,
			Remediation: cfgErr.Remediation(),
		}
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusUnprocessableEntity, errorResponse{Error: validationErr.Error()}
	}

	switch {
	case errors.Is(err, domain.ErrStoreNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "authentication required"}
	case errors.Is(err, domain.ErrAuthorizationDenied):
		return http.StatusForbidden, errorResponse{Error: "Access denied. You are not authorized as an admin or seller."}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden"}
	case errors.Is(err, domain.ErrConcurrentUpdate),
		errors.Is(err, domain.ErrIdempotencyKeyInUse):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidOrder),
		errors.Is(err, domain.ErrInvalidProduct),
		errors.Is(err, domain.ErrInvalidSlug),
		errors.Is(err, payment.ErrInvalidPaymentIntent):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error()}
	}

	var persistErr *domain.PersistenceError
	if errors.As(err, &persistErr) {
		log.Error().
			Err(err).
			Str("op", persistErr.Op).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("persistence failure")
		return http.StatusServiceUnavailable, errorResponse{Error: "service temporarily unavailable"}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

func authStatus(code string) int {
	switch code {
	case domain.AuthCodeEmailAlreadyInUse:
		return http.StatusConflict
	case domain.AuthCodeWeakPassword, domain.AuthCodeMissingIdentityData:
		return http.StatusBadRequest
	case domain.AuthCodeNetworkRequest:
		return http.StatusServiceUnavailable
	}
	return http.StatusUnauthorized
}
