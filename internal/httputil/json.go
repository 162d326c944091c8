package httputil

import (
	"io"
	"net/http"

	"github.com/AdamBeresnev/toilescoins/internal/bracket"
	"github.com/AdamBeresnev/toilescoins/internal/logging"
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

const maxBodyBytes = 1 << 20

func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		logging.Error("encode response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Debug("write response", "error", err)
	}
}

// DecodeJSON reads the request body into dst. A malformed body is a
// validation error.
func DecodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return bracket.MarkCategory(errors.Wrap(err, "read request body"), bracket.ErrValidation)
	}
	if len(body) > maxBodyBytes {
		return bracket.MarkCategory(errors.New("request body too large"), bracket.ErrValidation)
	}
	if len(body) == 0 {
		return bracket.MarkCategory(errors.New("request body is empty"), bracket.ErrValidation)
	}
	if err := sonic.Unmarshal(body, dst); err != nil {
		return bracket.MarkCategory(errors.Wrap(err, "malformed JSON body"), bracket.ErrValidation)
	}
	return nil
}
