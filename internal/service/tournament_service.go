package service

import (
	"context"
	"sync"
	"time"

	"github.com/AdamBeresnev/toilescoins/internal/bracket"
	"github.com/AdamBeresnev/toilescoins/internal/config"
	users "github.com/AdamBeresnev/toilescoins/internal/user"
)

// TournamentRepository is the persistence the service needs.
type TournamentRepository interface {
	Save(ctx context.Context, t *bracket.Tournament) error
	Get(ctx context.Context, id string) (*bracket.Tournament, error)
	FindByPublicID(ctx context.Context, publicID string) (*bracket.Tournament, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*bracket.Tournament, error)
	WatchPublic(ctx context.Context, publicID string, onChange func(*bracket.Tournament)) (func(), error)
}

type Options struct {
	AutosaveDelay time.Duration
	Rewards       config.Rewards
	// Generate is passed to every bracket generation. Tests set a seeded Rand.
	Generate bracket.GenerateOptions
}

type sessionDeps struct {
	store         tournamentSaver
	users         UserLookup
	ledger        Ledger
	rewards       config.Rewards
	generate      bracket.GenerateOptions
	autosaveDelay time.Duration
}

// TournamentService hands out one session per tournament so that every
// change to a tournament goes through a single writer.
type TournamentService struct {
	repo TournamentRepository
	deps sessionDeps

	mu       sync.Mutex
	sessions map[string]*TournamentSession
}

func NewTournamentService(repo TournamentRepository, lookup UserLookup, ledger Ledger, opts Options) *TournamentService {
	if opts.AutosaveDelay <= 0 {
		opts.AutosaveDelay = time.Second
	}
	return &TournamentService{
		repo: repo,
		deps: sessionDeps{
			store:         repo,
			users:         lookup,
			ledger:        ledger,
			rewards:       opts.Rewards,
			generate:      opts.Generate,
			autosaveDelay: opts.AutosaveDelay,
		},
		sessions: make(map[string]*TournamentSession),
	}
}

// Create saves a new tournament owned by actor right away so it has an id.
func (s *TournamentService) Create(ctx context.Context, actor *users.User, in CreateTournamentInput) (*TournamentSession, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	t := bracket.NewTournament(in.Name, bracket.TournamentFormat(in.Format), actor.ID)
	t.ThirdPlaceMatch = in.ThirdPlaceMatch

	session := newTournamentSession(t, s.deps)
	if err := session.Save(ctx, actor); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	return session, nil
}

// Session returns the live session of tournament id, loading it on first use.
func (s *TournamentService) Session(ctx context.Context, actor *users.User, id string) (*TournamentSession, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if session, ok := s.sessions[id]; ok {
		s.mu.Unlock()
		return session, nil
	}
	s.mu.Unlock()

	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have loaded it meanwhile.
	if session, ok := s.sessions[id]; ok {
		return session, nil
	}
	session := newTournamentSession(t, s.deps)
	s.sessions[id] = session
	return session, nil
}

// List returns the actor's tournaments as last saved.
func (s *TournamentService) List(ctx context.Context, actor *users.User) ([]*bracket.Tournament, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, actor.ID)
}

// PublicView is the read-only projection reachable through a public id.
func (s *TournamentService) PublicView(ctx context.Context, publicID string) (*PublicTournament, error) {
	t, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	return NewPublicTournament(t), nil
}

// WatchPublic pushes the projection on every save. A nil projection means the
// tournament is no longer published.
func (s *TournamentService) WatchPublic(ctx context.Context, publicID string, onChange func(*PublicTournament)) (func(), error) {
	return s.repo.WatchPublic(ctx, publicID, func(t *bracket.Tournament) {
		if t == nil {
			onChange(nil)
			return
		}
		onChange(NewPublicTournament(t))
	})
}

// Close flushes every pending autosave.
func (s *TournamentService) Close() {
	s.mu.Lock()
	sessions := make([]*TournamentSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}
