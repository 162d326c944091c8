package main

import (
	"github.com/AdamBeresnev/toilescoins/internal/config"
	"github.com/AdamBeresnev/toilescoins/internal/live"
	"github.com/AdamBeresnev/toilescoins/internal/service"
	"github.com/AdamBeresnev/toilescoins/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
)

type application struct {
	cfg            *config.Config
	sessionManager *scs.SessionManager
	sessionStore   *sqlite3store.SQLite3Store
	userStore      *store.UserStore
	tournaments    *service.TournamentService
	users          *service.UserService
	hub            *live.Hub
}

func newApplication(cfg *config.Config, database *sqlx.DB) *application {
	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.Secure = !cfg.IsDevelopment()
	sessionStore := sqlite3store.New(database.DB)
	sessionManager.Store = sessionStore

	userStore := store.NewUserStore(database)
	tournamentStore := store.NewTournamentStore(store.NewSQLDocumentStore(database))
	tournaments := service.NewTournamentService(tournamentStore, userStore, userStore, service.Options{
		AutosaveDelay: cfg.AutosaveDelay,
		Rewards:       cfg.Rewards,
	})

	return &application{
		cfg:            cfg,
		sessionManager: sessionManager,
		sessionStore:   sessionStore,
		userStore:      userStore,
		tournaments:    tournaments,
		users:          service.NewUserService(userStore),
		hub:            live.NewHub(tournaments),
	}
}

// close disconnects spectators and flushes pending autosaves.
func (app *application) close() {
	app.hub.Close()
	app.tournaments.Close()
	app.sessionStore.StopCleanup()
}
