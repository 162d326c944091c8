package bracket

import (
	"time"

	"github.com/cockroachdb/errors"
)

type TournamentStatus string

const (
	TournamentSetup     TournamentStatus = "setup"
	TournamentOngoing   TournamentStatus = "ongoing"
	TournamentCompleted TournamentStatus = "completed"
)

type TournamentFormat string

const (
	EliminationFormat TournamentFormat = "elimination"
	GroupsFormat      TournamentFormat = "groups"
)

func (f TournamentFormat) Valid() bool {
	return f == EliminationFormat || f == GroupsFormat
}

// Tournament is the aggregate root. It owns its players, matches and groups;
// users are referenced by id only.
type Tournament struct {
	// Assigned by the store on first save. Not part of the document body.
	ID string `json:"-"`

	Name            string           `json:"name"`
	Format          TournamentFormat `json:"format"`
	Status          TournamentStatus `json:"status"`
	ThirdPlaceMatch bool             `json:"thirdPlaceMatch"`
	OwnerID         string           `json:"ownerId"`

	Players []Player `json:"players"`
	Matches []Match  `json:"matches"`
	Groups  []Group  `json:"groups"`

	Winner      *Player `json:"winner"`
	SecondPlace *Player `json:"secondPlace"`
	ThirdPlace  *Player `json:"thirdPlace"`
	PublicID    *string `json:"publicId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewTournament(name string, format TournamentFormat, ownerID string) *Tournament {
	now := time.Now().UTC()
	return &Tournament{
		Name:      name,
		Format:    format,
		Status:    TournamentSetup,
		OwnerID:   ownerID,
		Players:   []Player{},
		Matches:   []Match{},
		Groups:    []Group{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Index returns the arena view of the matches: id to a pointer into t.Matches.
// It is invalidated by any append to t.Matches.
func (t *Tournament) Index() map[string]*Match {
	idx := make(map[string]*Match, len(t.Matches))
	for i := range t.Matches {
		idx[t.Matches[i].ID] = &t.Matches[i]
	}
	return idx
}

func (t *Tournament) Match(id string) (*Match, error) {
	for i := range t.Matches {
		if t.Matches[i].ID == id {
			return &t.Matches[i], nil
		}
	}
	return nil, errors.Wrapf(ErrMatchNotFound, "match %q", id)
}

func (t *Tournament) Player(id string) *Player {
	for i := range t.Players {
		if t.Players[i].ID == id {
			return &t.Players[i]
		}
	}
	return nil
}

func (t *Tournament) AddPlayer(p Player) error {
	if t.Status != TournamentSetup {
		return ErrRosterLocked
	}
	if IsReservedName(p.Name) {
		return ErrReservedName
	}
	if t.Player(p.ID) != nil {
		return errors.Wrapf(ErrDuplicatePlayer, "player %q", p.ID)
	}
	t.Players = append(t.Players, p)
	return nil
}

func (t *Tournament) RemovePlayer(id string) error {
	if t.Status != TournamentSetup {
		return ErrRosterLocked
	}
	for i := range t.Players {
		if t.Players[i].ID == id {
			t.Players = append(t.Players[:i], t.Players[i+1:]...)
			return nil
		}
	}
	return errors.Wrapf(ErrPlayerNotFound, "player %q", id)
}

func (t *Tournament) HasKnockout() bool {
	for i := range t.Matches {
		if t.Matches[i].Phase == KnockoutPhase {
			return true
		}
	}
	return false
}

// advance moves the status one step forward. It never goes backward.
func (t *Tournament) advance(to TournamentStatus) error {
	switch {
	case t.Status == TournamentSetup && to == TournamentOngoing:
	case t.Status == TournamentOngoing && to == TournamentCompleted:
	default:
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", t.Status, to)
	}
	t.Status = to
	return nil
}
