package service

import (
	"context"
	"sync"
	"time"

	"github.com/AdamBeresnev/toilescoins/internal/bracket"
	"github.com/AdamBeresnev/toilescoins/internal/config"
	"github.com/AdamBeresnev/toilescoins/internal/logging"
	users "github.com/AdamBeresnev/toilescoins/internal/user"
	"github.com/AdamBeresnev/toilescoins/internal/utils"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

type tournamentSaver interface {
	Save(ctx context.Context, t *bracket.Tournament) error
}

type UserLookup interface {
	GetUser(ctx context.Context, id string) (*users.User, error)
}

// TournamentSession is the single writer of one tournament. Every mutation
// runs on a copy of the aggregate, replaces it on success and schedules a
// debounced save. A failed mutation leaves the tournament untouched.
type TournamentSession struct {
	mu         sync.Mutex
	tournament *bracket.Tournament
	lastSave   error

	// Serializes writes so the first save creates exactly one document.
	saveMu sync.Mutex

	store    tournamentSaver
	users    UserLookup
	ledger   Ledger
	rewards  config.Rewards
	generate bracket.GenerateOptions
	autosave *Debouncer
}

func newTournamentSession(t *bracket.Tournament, deps sessionDeps) *TournamentSession {
	s := &TournamentSession{
		tournament: t,
		store:      deps.store,
		users:      deps.users,
		ledger:     deps.ledger,
		rewards:    deps.rewards,
		generate:   deps.generate,
	}
	s.autosave = NewDebouncer(deps.autosaveDelay, s.autosaveNow)
	return s
}

func requireAdmin(actor *users.User) error {
	if actor == nil || !actor.IsAdmin {
		return bracket.ErrForbidden
	}
	return nil
}

// Snapshot returns a copy of the current tournament.
func (s *TournamentSession) Snapshot() *bracket.Tournament {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tournament.Clone()
}

func (s *TournamentSession) logger() *logging.Logger {
	return logging.Default().With("tournament_id", s.ID())
}

func (s *TournamentSession) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tournament.ID
}

// LastSaveError is the outcome of the latest save attempt.
func (s *TournamentSession) LastSaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSave
}

// mutate applies fn to a copy and swaps it in when fn succeeds.
func (s *TournamentSession) mutate(actor *users.User, fn func(t *bracket.Tournament) error) (*bracket.Tournament, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	s.mu.Lock()
	next := s.tournament.Clone()
	if err := fn(next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	next.UpdatedAt = time.Now().UTC()
	s.tournament = next
	out := next.Clone()
	s.mu.Unlock()

	s.autosave.Trigger()
	return out, nil
}

func (s *TournamentSession) UpdateSettings(ctx context.Context, actor *users.User, in UpdateSettingsInput) (*bracket.Tournament, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	return s.mutate(actor, func(t *bracket.Tournament) error {
		if in.Name != nil {
			t.Name = *in.Name
		}
		if in.Format != nil || in.ThirdPlaceMatch != nil {
			if t.Status != bracket.TournamentSetup {
				return errors.Wrap(bracket.ErrRosterLocked, "format and playoff are fixed once started")
			}
		}
		if in.Format != nil {
			t.Format = bracket.TournamentFormat(*in.Format)
		}
		if in.ThirdPlaceMatch != nil {
			t.ThirdPlaceMatch = *in.ThirdPlaceMatch
		}
		return nil
	})
}

// AddPlayer adds a registered user (player id = user id) or a guest with a
// fresh id.
func (s *TournamentSession) AddPlayer(ctx context.Context, actor *users.User, in PlayerInput) (*bracket.Player, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	player := bracket.Player{ID: uuid.NewString(), Name: in.Name}
	if in.UserID != "" {
		u, err := s.users.GetUser(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		player = bracket.Player{
			ID:           u.ID,
			Name:         u.DisplayName,
			IsRegistered: true,
			UserID:       utils.Ptr(u.ID),
		}
	}

	if _, err := s.mutate(actor, func(t *bracket.Tournament) error {
		return t.AddPlayer(player)
	}); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *TournamentSession) RemovePlayer(ctx context.Context, actor *users.User, playerID string) (*bracket.Tournament, error) {
	return s.mutate(actor, func(t *bracket.Tournament) error {
		return t.RemovePlayer(playerID)
	})
}

func (s *TournamentSession) Start(ctx context.Context, actor *users.User) (*bracket.Tournament, error) {
	return s.mutate(actor, func(t *bracket.Tournament) error {
		return bracket.Start(t, s.generate)
	})
}

func (s *TournamentSession) UpdateMatchScore(ctx context.Context, actor *users.User, matchID string, in ScoreInput) (*bracket.Tournament, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	return s.mutate(actor, func(t *bracket.Tournament) error {
		return bracket.UpdateMatchScore(t, matchID, *in.Score1, *in.Score2)
	})
}

func (s *TournamentSession) Recalculate(ctx context.Context, actor *users.User) (*bracket.Tournament, error) {
	return s.mutate(actor, func(t *bracket.Tournament) error {
		if err := bracket.Validate(t); err != nil {
			return err
		}
		return bracket.RecalculateAllScores(t)
	})
}

func (s *TournamentSession) GenerateKnockout(ctx context.Context, actor *users.User) (*bracket.Tournament, error) {
	return s.mutate(actor, func(t *bracket.Tournament) error {
		return bracket.GenerateKnockoutFromGroups(t, s.generate)
	})
}

// Complete closes the tournament and pays the podium. The completion stands
// even when a payment fails; the failure is returned marked ErrRewardsFailed.
func (s *TournamentSession) Complete(ctx context.Context, actor *users.User) (bracket.Podium, error) {
	var podium bracket.Podium
	done, err := s.mutate(actor, func(t *bracket.Tournament) error {
		var err error
		podium, err = bracket.CompleteTournament(t)
		return err
	})
	if err != nil {
		return bracket.Podium{}, err
	}

	if s.ledger == nil {
		return podium, nil
	}
	if err := disburseRewards(ctx, s.ledger, s.rewards, done, podium); err != nil {
		s.logger().Error("reward disbursement failed", "error", err)
		return podium, err
	}
	s.logger().Info("tournament completed", "winner", podium.Winner.Name)
	return podium, nil
}

// Publish gives the tournament a public id, if it has none, and saves now.
func (s *TournamentSession) Publish(ctx context.Context, actor *users.User) (string, error) {
	if err := requireAdmin(actor); err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.tournament.PublicID == nil {
		next := s.tournament.Clone()
		next.PublicID = utils.Ptr(uuid.NewString())
		s.tournament = next
	}
	publicID := *s.tournament.PublicID
	s.mu.Unlock()

	if err := s.Save(ctx, actor); err != nil {
		return "", err
	}
	return publicID, nil
}

// Save writes the current state right away and drops any pending autosave.
func (s *TournamentSession) Save(ctx context.Context, actor *users.User) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	s.autosave.Cancel()
	return s.persist(ctx)
}

// Close flushes a pending autosave and stops scheduling new ones.
func (s *TournamentSession) Close() {
	s.autosave.Stop()
}

func (s *TournamentSession) autosaveNow() {
	if err := s.persist(context.Background()); err != nil {
		s.logger().Error("autosave failed", "error", err)
	}
}

func (s *TournamentSession) persist(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	snapshot := s.tournament.Clone()
	s.mu.Unlock()

	err := s.store.Save(ctx, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSave = err
	if err != nil {
		return err
	}
	if s.tournament.ID == "" {
		s.tournament.ID = snapshot.ID
	}
	return nil
}
