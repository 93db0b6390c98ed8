package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"forumregistrations/internal/domain"
)

// WriteServiceError maps a service error onto the API envelope. Unexpected
// errors are logged and reported as 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var perr *domain.ProviderError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrMissingEmailField):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, validationMessage(err))
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, domain.ErrForumUnavailable),
		errors.Is(err, domain.ErrAlreadySent),
		errors.Is(err, domain.ErrDuplicateAttendee):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.As(err, &perr):
		logger.WarnContext(r.Context(), "provider failure", "path", r.URL.Path, "method", r.Method, "provider", perr.Provider, "err", err)
		WriteJSONError(w, http.StatusBadGateway, ErrCodeBadGateway, perr.Message)
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
	}
}

// validationMessage prefers the bare ValidationError text over the wrapped chain.
func validationMessage(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return err.Error()
}
