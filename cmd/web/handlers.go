package main

import (
	"net/http"

	"github.com/AdamBeresnev/toilescoins/internal/bracket"
	"github.com/AdamBeresnev/toilescoins/internal/httputil"
	"github.com/AdamBeresnev/toilescoins/internal/live"
	"github.com/AdamBeresnev/toilescoins/internal/middleware"
	"github.com/AdamBeresnev/toilescoins/internal/service"
	users "github.com/AdamBeresnev/toilescoins/internal/user"
	"github.com/go-chi/chi/v5"
)

// tournamentResponse adds the store id, which the document body leaves out.
type tournamentResponse struct {
	ID string `json:"id"`
	*bracket.Tournament
	SaveError string `json:"saveError,omitempty"`
}

func newTournamentResponse(t *bracket.Tournament, saveErr error) tournamentResponse {
	resp := tournamentResponse{ID: t.ID, Tournament: t}
	if saveErr != nil {
		resp.SaveError = saveErr.Error()
	}
	return resp
}

type completeResponse struct {
	Podium     bracket.Podium     `json:"podium"`
	Tournament tournamentResponse `json:"tournament"`
}

type publishResponse struct {
	PublicID string `json:"publicId"`
}

// sessionAction runs one admin operation against a loaded session and returns
// the response body.
type sessionAction func(r *http.Request, s *service.TournamentSession, actor *users.User) (int, any, error)

func (app *application) withSession(action sessionAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.GetAuthenticatedUser(r.Context())
		session, err := app.tournaments.Session(r.Context(), actor, chi.URLParam(r, "id"))
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}

		status, body, err := action(r, session, actor)
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		if body == nil {
			w.WriteHeader(status)
			return
		}
		httputil.WriteJSON(w, status, body)
	}
}

// current answers with the session state after a mutation.
func current(s *service.TournamentSession) (int, any, error) {
	return http.StatusOK, newTournamentResponse(s.Snapshot(), s.LastSaveError()), nil
}

func getTournament(r *http.Request, s *service.TournamentSession, actor *users.User) (int, any, error) {
	return current(s)
}

func updateSettings(r *http.Request, s *service.TournamentSession, actor *users.User) (int, any, error) {
	var in service.UpdateSettingsInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		return 0, nil, err
	}
	if _, err := s.UpdateSettings(r.Context(), actor, in); err != nil {
		return 0, nil, err
	}
	return current(s)
}

func addPlayer(r *http.Request, s *service.TournamentSession, actor *users.User) (int, any, error) {
	var in service.PlayerInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		return 0, nil, err
	}
	player, err := s.AddPlayer(r.Context(), actor, in)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, player, nil
}

func removePlayer(r *http.Request, s *service.TournamentSession, actor *users.User) (int, any, error) {
	if _, err := s.RemovePlayer(r.Context(), actor, chi.URLParam(r, "playerID")); err != nil {
		return 0, nil, err
	}
	return current(s)
}

func updateMatchScore(r *http.Request, s *service.TournamentSession, actor *users.User) (int, any, error) {
	var in service.ScoreInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		return 0, nil, err
	}
	if _, err := s.UpdateMatchScore(r.Context(), actor, chi.URLParam(r, "matchID"), in); err != nil {
		return 0, nil, err
	}
	return current(s)
}

func start(r *http.Request, s *service.TournamentSession, actor *users.User) (int, any, error) {
	if _, err := s.Start(r.Context(), actor); err != nil {
		return 0, nil, err
	}
	return current(s)
}

func recalculate(r *http.Request, s *service.TournamentSession, actor *users.User) (int, any, error) {
	if _, err := s.Recalculate(r.Context(), actor); err != nil {
		return 0, nil, err
	}
	return current(s)
}

func generateKnockout(r *http.Request, s *service.TournamentSession, actor *users.User) (int, any, error) {
	if _, err := s.GenerateKnockout(r.Context(), actor); err != nil {
		return 0, nil, err
	}
	return current(s)
}

func complete(r *http.Request, s *service.TournamentSession, actor *users.User) (int, any, error) {
	podium, err := s.Complete(r.Context(), actor)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, completeResponse{
		Podium:     podium,
		Tournament: newTournamentResponse(s.Snapshot(), s.LastSaveError()),
	}, nil
}

func save(r *http.Request, s *service.TournamentSession, actor *users.User) (int, any, error) {
	if err := s.Save(r.Context(), actor); err != nil {
		return 0, nil, err
	}
	return http.StatusNoContent, nil, nil
}

func publish(r *http.Request, s *service.TournamentSession, actor *users.User) (int, any, error) {
	publicID, err := s.Publish(r.Context(), actor)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, publishResponse{PublicID: publicID}, nil
}

func (app *application) handleListTournaments(w http.ResponseWriter, r *http.Request) {
	list, err := app.tournaments.List(r.Context(), middleware.GetAuthenticatedUser(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	resp := make([]tournamentResponse, 0, len(list))
	for _, t := range list {
		resp = append(resp, newTournamentResponse(t, nil))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (app *application) handleCreateTournament(w http.ResponseWriter, r *http.Request) {
	var in service.CreateTournamentInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	session, err := app.tournaments.Create(r.Context(), middleware.GetAuthenticatedUser(r.Context()), in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, newTournamentResponse(session.Snapshot(), nil))
}

func (app *application) handleFindUsers(w http.ResponseWriter, r *http.Request) {
	found, err := app.users.FindUsersByNamePrefix(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, found)
}

func (app *application) handlePublicTournament(w http.ResponseWriter, r *http.Request) {
	view, err := app.tournaments.PublicView(r.Context(), chi.URLParam(r, live.PublicIDParam))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (app *application) handleGuestLogin(w http.ResponseWriter, r *http.Request) {
	user, err := app.users.EnsureGuestUser(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	app.signIn(w, r, user)
}

// handleDevLogin signs in as any existing user. Only routed in development.
func (app *application) handleDevLogin(w http.ResponseWriter, r *http.Request) {
	user, err := app.users.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	app.signIn(w, r, user)
}

func (app *application) signIn(w http.ResponseWriter, r *http.Request, user *users.User) {
	if err := app.sessionManager.RenewToken(r.Context()); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	app.sessionManager.Put(r.Context(), middleware.SessionUserKey, user.ID)
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (app *application) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) handleMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetAuthenticatedUser(r.Context())
	if user == nil {
		httputil.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}
