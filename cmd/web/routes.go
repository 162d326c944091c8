package main

import (
	"net/http"

	"github.com/AdamBeresnev/toilescoins/internal/live"
	"github.com/AdamBeresnev/toilescoins/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// Spectators: no session, readable from any allowed origin.
	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: app.cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			MaxAge:         300,
		}))

		r.Route("/public/tournaments/{"+live.PublicIDParam+"}", func(r chi.Router) {
			r.Get("/", app.handlePublicTournament)
			r.Get("/ws", live.NewHandler(app.hub, app.cfg.CORSAllowedOrigins).ServeWS)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(app.sessionManager.LoadAndSave)
		r.Use(middleware.LoadAuthenticatedUser(app.sessionManager, app.userStore))

		r.Post("/auth/guest", app.handleGuestLogin)
		if app.cfg.IsDevelopment() {
			r.Post("/auth/dev/{userID}", app.handleDevLogin)
		}
		r.Post("/logout", app.handleLogout)
		r.Get("/auth/me", app.handleMe)

		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/users", app.handleFindUsers)

			r.Get("/tournaments", app.handleListTournaments)
			r.Post("/tournaments", app.handleCreateTournament)
			r.Route("/tournaments/{id}", func(r chi.Router) {
				r.Get("/", app.withSession(getTournament))
				r.Patch("/", app.withSession(updateSettings))
				r.Post("/players", app.withSession(addPlayer))
				r.Delete("/players/{playerID}", app.withSession(removePlayer))
				r.Put("/matches/{matchID}/score", app.withSession(updateMatchScore))
				r.Post("/start", app.withSession(start))
				r.Post("/recalculate", app.withSession(recalculate))
				r.Post("/knockout", app.withSession(generateKnockout))
				r.Post("/complete", app.withSession(complete))
				r.Post("/save", app.withSession(save))
				r.Post("/publish", app.withSession(publish))
			})
		})
	})

	return r
}
