package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AdamBeresnev/toilescoins/internal/bracket"
	"github.com/AdamBeresnev/toilescoins/internal/service"
	"github.com/AdamBeresnev/toilescoins/internal/store"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "validation", err: errors.Wrap(bracket.ErrKnockoutTie, "match m1"), expected: http.StatusBadRequest},
		{name: "not found", err: bracket.ErrTournamentNotFound, expected: http.StatusNotFound},
		{name: "user not found", err: store.ErrUserNotFound, expected: http.StatusNotFound},
		{name: "forbidden", err: bracket.ErrForbidden, expected: http.StatusForbidden},
		{name: "persistence", err: bracket.MarkCategory(errors.New("disk I/O error"), store.ErrPersistence), expected: http.StatusBadGateway},
		{name: "rewards", err: bracket.MarkCategory(errors.New("ledger down"), service.ErrRewardsFailed), expected: http.StatusBadGateway},
		{name: "unknown", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StatusFor(tc.err))
		})
	}
}

func TestWriteError(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/tournaments", nil)

	w := httptest.NewRecorder()
	WriteError(w, r, errors.Wrap(bracket.ErrNotEnoughPlayers, "start"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"start: at least 2 players are required"}`, w.Body.String())

	w = httptest.NewRecorder()
	WriteError(w, r, errors.New("secret internals"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")

	w = httptest.NewRecorder()
	NotFound(w, r, "tournament not found")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"tournament not found"}`, w.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Cup"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "Cup", dst.Name)

	for _, body := range []string{"", "{not json"} {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := DecodeJSON(r, &dst)
		assert.ErrorIs(t, err, bracket.ErrValidation, "body %q", body)
	}
}
