package httputil

import (
	"net/http"

	"github.com/AdamBeresnev/toilescoins/internal/bracket"
	"github.com/AdamBeresnev/toilescoins/internal/logging"
	"github.com/AdamBeresnev/toilescoins/internal/service"
	"github.com/AdamBeresnev/toilescoins/internal/store"
	"github.com/cockroachdb/errors"
)

type errorBody struct {
	Error string `json:"error"`
}

// StatusFor maps an error category to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, bracket.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, bracket.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, bracket.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrPersistence), errors.Is(err, service.ErrRewardsFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteError logs err and answers with its category's status. Unknown errors
// are not echoed back.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := err.Error()

	switch {
	case status == http.StatusInternalServerError:
		logging.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	case status >= 500:
		logging.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	default:
		logging.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	WriteJSON(w, status, errorBody{Error: msg})
}

func BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	WriteError(w, r, bracket.MarkCategory(errors.New(msg), bracket.ErrValidation))
}

func NotFound(w http.ResponseWriter, r *http.Request, msg string) {
	WriteError(w, r, bracket.MarkCategory(errors.New(msg), bracket.ErrNotFound))
}
