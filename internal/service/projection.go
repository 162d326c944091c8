package service

import (
	"slices"
	"time"

	"github.com/AdamBeresnev/toilescoins/internal/bracket"
)

// PublicTournament is what spectators see. It leaves out the owner and the
// store id.
type PublicTournament struct {
	PublicID  string                   `json:"publicId"`
	Name      string                   `json:"name"`
	Format    bracket.TournamentFormat `json:"format"`
	Status    bracket.TournamentStatus `json:"status"`
	Players   []bracket.Player         `json:"players"`
	Matches   []bracket.Match          `json:"matches"`
	Groups    []bracket.Group          `json:"groups"`
	Standings []bracket.GroupStanding  `json:"standings"`
	Rounds    []Round                  `json:"rounds"`
	Podium    bracket.Podium           `json:"podium"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// Round is one knockout column of the bracket, in match number order. The
// third-place playoff is not part of any round.
type Round struct {
	Number  int             `json:"number"`
	Matches []bracket.Match `json:"matches"`
}

func NewPublicTournament(t *bracket.Tournament) *PublicTournament {
	p := &PublicTournament{
		Name:      t.Name,
		Format:    t.Format,
		Status:    t.Status,
		Players:   t.Players,
		Matches:   t.Matches,
		Groups:    t.Groups,
		Standings: bracket.GroupStandings(t),
		Rounds:    knockoutRounds(t.Matches),
		Podium: bracket.Podium{
			Winner:      t.Winner,
			SecondPlace: t.SecondPlace,
			ThirdPlace:  t.ThirdPlace,
		},
		UpdatedAt: t.UpdatedAt,
	}
	if t.PublicID != nil {
		p.PublicID = *t.PublicID
	}
	return p
}

func knockoutRounds(matches []bracket.Match) []Round {
	byRound := make(map[int][]bracket.Match)
	var roundNums []int
	for _, m := range matches {
		if m.Phase != bracket.KnockoutPhase || m.IsThirdPlace {
			continue
		}
		if _, exists := byRound[m.Round]; !exists {
			roundNums = append(roundNums, m.Round)
		}
		byRound[m.Round] = append(byRound[m.Round], m)
	}
	slices.Sort(roundNums)

	rounds := make([]Round, 0, len(roundNums))
	for _, n := range roundNums {
		ms := byRound[n]
		slices.SortFunc(ms, func(a, b bracket.Match) int {
			return a.MatchNumber - b.MatchNumber
		})
		rounds = append(rounds, Round{Number: n, Matches: ms})
	}
	return rounds
}
