package httpx

import (
	"errors"
	"net/http"

	"github.com/meridian-books/meridian/internal/accounting/shared"
)

// ErrNotFound marks a missing resource at the HTTP boundary.
var ErrNotFound = errors.New("resource not found")

// RespondError maps domain errors to RFC7807 responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, shared.ErrClientNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrInvalidPeriod):
		Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
	case errors.Is(err, shared.ErrInvalidInput):
		Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case errors.Is(err, shared.ErrPeriodLocked),
		errors.Is(err, shared.ErrPeriodClosed),
		errors.Is(err, shared.ErrCloseInProgress):
		Problem(w, http.StatusConflict, "Period Locked", err.Error())
	case errors.Is(err, shared.ErrBatchAlreadyPosted):
		Problem(w, http.StatusConflict, "Already Posted", err.Error())
	case errors.Is(err, shared.ErrUnbalanced):
		Problem(w, http.StatusUnprocessableEntity, "Unbalanced Batch", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
