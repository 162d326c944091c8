package bracket

import "fmt"

type Phase string

const (
	GroupPhase    Phase = "group"
	KnockoutPhase Phase = "knockout"
)

type Match struct {
	ID          string `json:"id"`
	Round       int    `json:"round"`
	MatchNumber int    `json:"matchNumber"`

	Player1 *Player `json:"player1"`
	Player2 *Player `json:"player2"`
	Winner  *Player `json:"winner"`

	Score1 *int `json:"score1"`
	Score2 *int `json:"score2"`

	// Forward links. NextMatchID is nil only for the final and the third-place
	// playoff; LoserNextMatchID is set on semifinals when a playoff exists.
	NextMatchID      *string `json:"nextMatchId"`
	LoserNextMatchID *string `json:"loserNextMatchId"`

	Phase        Phase   `json:"phase"`
	GroupID      *string `json:"groupId"`
	IsThirdPlace bool    `json:"isThirdPlace"`
	IsBye        bool    `json:"isBye"`
}

func matchID(seq int) string {
	return fmt.Sprintf("m%d", seq)
}

func (m *Match) HasBothPlayers() bool {
	return !isOpen(m.Player1) && !isOpen(m.Player2)
}

func (m *Match) IsDecided() bool {
	return m.Winner != nil
}

func (m *Match) IsScored() bool {
	return m.Score1 != nil && m.Score2 != nil
}

func (m *Match) IsTie() bool {
	return m.IsScored() && *m.Score1 == *m.Score2
}

// Loser returns the player who did not win, nil while undecided or for a bye.
func (m *Match) Loser() *Player {
	switch {
	case m.Winner == nil:
		return nil
	case m.Winner.Is(m.Player1):
		return m.Player2
	case m.Winner.Is(m.Player2):
		return m.Player1
	}
	return nil
}

func (m *Match) playerCount() int {
	n := 0
	if !isOpen(m.Player1) {
		n++
	}
	if !isOpen(m.Player2) {
		n++
	}
	return n
}

func (m *Match) clearResult() {
	m.Winner = nil
	m.Score1 = nil
	m.Score2 = nil
	m.IsBye = false
}

// place puts p into the first open slot. It reports false when both slots are
// taken or p is already there.
func (m *Match) place(p *Player) bool {
	if p.Is(m.Player1) || p.Is(m.Player2) {
		return false
	}
	if isOpen(m.Player1) {
		m.Player1 = p.clone()
		return true
	}
	if isOpen(m.Player2) {
		m.Player2 = p.clone()
		return true
	}
	return false
}

// replace swaps the slot holding old for repl (which may be nil). It reports
// whether old was found.
func (m *Match) replace(old, repl *Player) bool {
	switch {
	case old.Is(m.Player1):
		m.Player1 = repl.clone()
	case old.Is(m.Player2):
		m.Player2 = repl.clone()
	default:
		return false
	}
	return true
}

// decideBye awards the match to its only player with a 1-0 score.
func (m *Match) decideBye() {
	one, zero := 1, 0
	if isOpen(m.Player2) {
		m.Winner = m.Player1.clone()
		m.Score1, m.Score2 = &one, &zero
	} else {
		m.Winner = m.Player2.clone()
		m.Score1, m.Score2 = &zero, &one
	}
	m.IsBye = true
}
