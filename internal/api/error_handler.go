package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/aimatch/portal/internal/api/handler"
	"github.com/aimatch/portal/internal/core/domain"
)

const (
	loginRedirect      = "/login"
	marketplaceFailure = "The marketplace could not process the request, please try again"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to HTTP status codes.
//   - Tells the UI to log in again on 401.
//   - Logs unexpected errors without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if code == http.StatusUnauthorized {
			body.Redirect = loginRedirect
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.ErrorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, handler.ErrorResponse{Error: "validation failed", Fields: ve.Fields}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: "invalid credentials"}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: "session expired, please log in again"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, handler.ErrorResponse{Error: "access forbidden"}
	case errors.Is(err, domain.ErrNoWizardForRole):
		return http.StatusForbidden, handler.ErrorResponse{Error: "no wizard is available for this role"}
	case errors.Is(err, domain.ErrNoEnterprise):
		return http.StatusForbidden, handler.ErrorResponse{Error: "the account is not linked to an enterprise"}
	case errors.Is(err, domain.ErrWizardNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Error: "wizard not found"}
	case errors.Is(err, domain.ErrEnterpriseNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Error: "enterprise not found"}
	case errors.Is(err, domain.ErrUnknownGroup):
		return http.StatusNotFound, handler.ErrorResponse{Error: "unknown group on this step"}
	case errors.Is(err, domain.ErrEntryIndexOutOfRange):
		return http.StatusNotFound, handler.ErrorResponse{Error: "entry not found"}
	case errors.Is(err, domain.ErrCompletenessBelowThreshold):
		return http.StatusConflict, handler.ErrorResponse{Error: "completeness is below the submission threshold"}
	case errors.Is(err, domain.ErrSubmissionInFlight):
		return http.StatusConflict, handler.ErrorResponse{Error: "a submission is already in progress"}
	case errors.Is(err, domain.ErrIllegalTransition):
		return http.StatusConflict, handler.ErrorResponse{Error: "this action is not available on the current step"}
	case errors.Is(err, domain.ErrWizardClosed):
		return http.StatusConflict, handler.ErrorResponse{Error: "wizard is closed"}
	case errors.Is(err, domain.ErrAlreadyVerified):
		return http.StatusConflict, handler.ErrorResponse{Error: "qualification is already verified"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, handler.ErrorResponse{Error: marketplaceFailure, Retryable: true}
	case errors.Is(err, domain.ErrMarketplaceUnavailable):
		log.Warn().Err(err).Str("path", c.Path()).Msg("marketplace unreachable")
		return http.StatusBadGateway, handler.ErrorResponse{Error: marketplaceFailure, Retryable: true}
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = marketplaceFailure
		}
		log.Warn().
			Int("upstream_status", apiErr.Status).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("marketplace error")
		return http.StatusBadGateway, handler.ErrorResponse{Error: msg, Retryable: true}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorResponse{Error: "internal server error"}
}
