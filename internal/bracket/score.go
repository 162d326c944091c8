package bracket

import (
	"time"

	"github.com/cockroachdb/errors"
)

const (
	winPoints = 3
	tiePoints = 1
)

// UpdateMatchScore records a score and applies its consequences: group stats
// for a group match, winner propagation for a knockout match. Correcting a
// knockout result invalidates every downstream result built on the old winner.
func UpdateMatchScore(t *Tournament, matchID string, score1, score2 int) error {
	if t.Status == TournamentCompleted {
		return ErrTournamentCompleted
	}
	if score1 < 0 || score2 < 0 {
		return ErrNegativeScore
	}

	m, err := t.Match(matchID)
	if err != nil {
		return err
	}
	if !m.HasBothPlayers() {
		return errors.Wrapf(ErrMatchNotReady, "match %q", matchID)
	}

	if m.Phase == GroupPhase {
		if t.HasKnockout() {
			return errors.Wrapf(ErrGroupStageLocked, "match %q", matchID)
		}
		applyGroupScore(t, m, score1, score2)
	} else {
		if score1 == score2 {
			return errors.Wrapf(ErrKnockoutTie, "match %q", matchID)
		}
		applyKnockoutScore(t.Index(), m, score1, score2)
		resolveByes(t.Matches)
	}

	t.UpdatedAt = time.Now().UTC()
	return nil
}

func applyGroupScore(t *Tournament, m *Match, score1, score2 int) {
	groupResultDelta(t, m, -1)

	m.Score1, m.Score2 = &score1, &score2
	m.Winner = scoreWinner(m)

	groupResultDelta(t, m, 1)
}

// scoreWinner derives the winner from the recorded scores, nil on a tie.
func scoreWinner(m *Match) *Player {
	switch {
	case !m.IsScored() || *m.Score1 == *m.Score2:
		return nil
	case *m.Score1 > *m.Score2:
		return m.Player1.clone()
	default:
		return m.Player2.clone()
	}
}

// groupResultDelta adds (sign=1) or removes (sign=-1) the standing effect of
// the match's current score on the roster players.
func groupResultDelta(t *Tournament, m *Match, sign int) {
	if !m.IsScored() || m.Player1 == nil || m.Player2 == nil {
		return
	}
	p1, p2 := t.Player(m.Player1.ID), t.Player(m.Player2.ID)
	if p1 == nil || p2 == nil {
		return
	}

	if m.IsTie() {
		p1.GroupPoints += tiePoints * sign
		p2.GroupPoints += tiePoints * sign
		return
	}

	winner, loser := p1, p2
	if *m.Score2 > *m.Score1 {
		winner, loser = p2, p1
	}
	winner.GroupPoints += winPoints * sign
	winner.GroupWins += sign
	loser.GroupLosses += sign
}

func applyKnockoutScore(idx map[string]*Match, m *Match, score1, score2 int) {
	prevWinner, prevLoser := m.Winner, m.Loser()

	m.Score1, m.Score2 = &score1, &score2
	m.Winner = scoreWinner(m)
	m.IsBye = false

	if m.NextMatchID != nil {
		forward(idx, *m.NextMatchID, prevWinner, m.Winner)
	}
	if m.LoserNextMatchID != nil {
		forward(idx, *m.LoserNextMatchID, prevLoser, m.Loser())
	}
}

// forward sends cur into the target match, replacing prev when the result
// changed.
func forward(idx map[string]*Match, targetID string, prev, cur *Player) {
	target, ok := idx[targetID]
	if !ok || cur == nil {
		return
	}
	switch {
	case prev == nil:
		target.place(cur)
	case prev.Is(cur):
	default:
		cascadeReset(idx, target, prev, cur)
	}
}

// cascadeReset swaps old for repl in target and clears target's result. If
// target had already produced a result, the players it sent forward are
// removed from their matches in turn.
func cascadeReset(idx map[string]*Match, target *Match, old, repl *Player) {
	staleWinner, staleLoser := target.Winner, target.Loser()
	if !target.replace(old, repl) {
		if repl != nil {
			target.place(repl)
		}
		return
	}
	target.clearResult()

	if staleWinner != nil && target.NextMatchID != nil {
		if next, ok := idx[*target.NextMatchID]; ok {
			cascadeReset(idx, next, staleWinner, nil)
		}
	}
	if staleLoser != nil && target.LoserNextMatchID != nil {
		if next, ok := idx[*target.LoserNextMatchID]; ok {
			cascadeReset(idx, next, staleLoser, nil)
		}
	}
}

// RecalculateAllScores rebuilds every derived value from the recorded scores:
// group stats from zero, then knockout winners pushed forward in round order.
// It is the repair operation and yields the same state as replaying every
// score update from scratch.
func RecalculateAllScores(t *Tournament) error {
	order, err := replayOrder(t.Matches)
	if err != nil {
		return err
	}

	for i := range t.Players {
		t.Players[i].resetGroupStats()
	}
	for i := range t.Matches {
		m := &t.Matches[i]
		if m.Phase != GroupPhase {
			continue
		}
		m.Winner = scoreWinner(m)
		groupResultDelta(t, m, 1)
	}

	idx := t.Index()
	for _, id := range order {
		m := idx[id]
		if m.IsScored() && !m.IsTie() && m.HasBothPlayers() {
			m.Winner = scoreWinner(m)
		}
		if m.Winner == nil {
			continue
		}
		if m.NextMatchID != nil {
			if next, ok := idx[*m.NextMatchID]; ok {
				next.place(m.Winner)
			}
		}
		if loser := m.Loser(); loser != nil && m.LoserNextMatchID != nil {
			if next, ok := idx[*m.LoserNextMatchID]; ok {
				next.place(loser)
			}
		}
	}

	resolveByes(t.Matches)
	t.UpdatedAt = time.Now().UTC()
	return nil
}
