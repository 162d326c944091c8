package bracket

import (
	"slices"
	"time"

	"github.com/cockroachdb/errors"
)

// QualifiersPerGroup is how many players each group sends to the knockout.
const QualifiersPerGroup = 2

// Start generates the first stage for the tournament's format and moves it
// from setup to ongoing.
func Start(t *Tournament, opts GenerateOptions) error {
	if t.Status != TournamentSetup {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", t.Status, TournamentOngoing)
	}
	for _, p := range t.Players {
		if IsReservedName(p.Name) {
			return errors.Wrapf(ErrReservedName, "player %q", p.ID)
		}
	}
	opts.ThirdPlaceMatch = t.ThirdPlaceMatch

	switch t.Format {
	case EliminationFormat:
		matches, err := GenerateSingleElimination(t.Players, opts)
		if err != nil {
			return err
		}
		t.Matches = matches
	case GroupsFormat:
		groups, matches, err := GenerateGroups(t.Players, DefaultGroupCount(len(t.Players)), opts)
		if err != nil {
			return err
		}
		t.Groups = groups
		t.Matches = matches
	default:
		return errors.Wrapf(ErrInvalidFormat, "%q", t.Format)
	}

	t.UpdatedAt = time.Now().UTC()
	return t.advance(TournamentOngoing)
}

// GroupStanding is one group's table, best first.
type GroupStanding struct {
	Group   Group    `json:"group"`
	Players []Player `json:"players"`
}

// GroupStandings ranks each group's players by points. Players level on points
// keep their roster order; no further tiebreak is applied.
func GroupStandings(t *Tournament) []GroupStanding {
	standings := make([]GroupStanding, 0, len(t.Groups))
	for _, g := range t.Groups {
		table := make([]Player, 0, len(g.Players))
		for _, member := range g.Players {
			if p := t.Player(member.ID); p != nil {
				table = append(table, *p)
			}
		}
		slices.SortStableFunc(table, func(a, b Player) int {
			return b.GroupPoints - a.GroupPoints
		})
		standings = append(standings, GroupStanding{Group: g, Players: table})
	}
	return standings
}

// GroupStageComplete reports whether every group match has a winner.
func GroupStageComplete(t *Tournament) bool {
	found := false
	for i := range t.Matches {
		if t.Matches[i].Phase != GroupPhase {
			continue
		}
		found = true
		if t.Matches[i].Winner == nil {
			return false
		}
	}
	return found
}

// GenerateKnockoutFromGroups promotes the top two of every group into a new
// single elimination bracket appended after the group matches.
func GenerateKnockoutFromGroups(t *Tournament, opts GenerateOptions) error {
	if t.Status != TournamentOngoing {
		return errors.Wrapf(ErrInvalidTransition, "cannot promote from %s", t.Status)
	}
	if len(t.Groups) == 0 {
		return ErrNoGroupStage
	}
	if t.HasKnockout() {
		return ErrKnockoutExists
	}
	if !GroupStageComplete(t) {
		return ErrGroupStageIncomplete
	}

	var qualified []Player
	for _, s := range GroupStandings(t) {
		n := min(QualifiersPerGroup, len(s.Players))
		qualified = append(qualified, s.Players[:n]...)
	}

	opts.IDOffset = len(t.Matches)
	opts.ThirdPlaceMatch = t.ThirdPlaceMatch
	matches, err := GenerateSingleElimination(qualified, opts)
	if err != nil {
		return err
	}

	// Seeds were assigned on the copies; write them back to the roster.
	for _, q := range qualified {
		if p := t.Player(q.ID); p != nil {
			p.Seed = q.Seed
		}
	}

	t.Matches = append(t.Matches, matches...)
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// FinalMatch returns the knockout match with no forward link that is not the
// third-place playoff, nil when there is none.
func FinalMatch(t *Tournament) *Match {
	var final *Match
	for i := range t.Matches {
		m := &t.Matches[i]
		if m.Phase != KnockoutPhase || m.NextMatchID != nil || m.IsThirdPlace {
			continue
		}
		if final == nil || m.Round > final.Round {
			final = m
		}
	}
	return final
}

func thirdPlaceMatch(t *Tournament) *Match {
	for i := range t.Matches {
		if t.Matches[i].IsThirdPlace {
			return &t.Matches[i]
		}
	}
	return nil
}

// Podium holds the placed players; any of them may be nil.
type Podium struct {
	Winner      *Player `json:"winner"`
	SecondPlace *Player `json:"secondPlace"`
	ThirdPlace  *Player `json:"thirdPlace"`
}

// CompleteTournament derives the podium from the final and marks the
// tournament completed. A decided third-place playoff takes precedence over
// the semifinal losers for third place.
func CompleteTournament(t *Tournament) (Podium, error) {
	if t.Status != TournamentOngoing {
		return Podium{}, errors.Wrapf(ErrInvalidTransition, "%s -> %s", t.Status, TournamentCompleted)
	}
	final := FinalMatch(t)
	if final == nil || final.Winner == nil {
		return Podium{}, ErrFinalUndecided
	}

	podium := Podium{
		Winner:      final.Winner.clone(),
		SecondPlace: final.Loser().clone(),
	}

	if playoff := thirdPlaceMatch(t); playoff != nil && playoff.Winner != nil {
		podium.ThirdPlace = playoff.Winner.clone()
	} else {
		podium.ThirdPlace = semifinalLoser(t, final, podium.SecondPlace)
	}

	if err := t.advance(TournamentCompleted); err != nil {
		return Podium{}, err
	}
	t.Winner = podium.Winner
	t.SecondPlace = podium.SecondPlace
	t.ThirdPlace = podium.ThirdPlace
	t.UpdatedAt = time.Now().UTC()
	return podium, nil
}

// semifinalLoser returns the first loser, in match order, of a match feeding
// the final who is not the runner-up.
func semifinalLoser(t *Tournament, final *Match, second *Player) *Player {
	var semis []*Match
	for i := range t.Matches {
		m := &t.Matches[i]
		if m.NextMatchID != nil && *m.NextMatchID == final.ID {
			semis = append(semis, m)
		}
	}
	slices.SortFunc(semis, func(a, b *Match) int { return a.MatchNumber - b.MatchNumber })

	for _, m := range semis {
		for _, p := range []*Player{m.Player1, m.Player2} {
			if p == nil || p.Is(m.Winner) || p.Is(second) {
				continue
			}
			return p.clone()
		}
	}
	return nil
}
