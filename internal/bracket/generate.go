package bracket

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/AdamBeresnev/toilescoins/internal/utils"
)

// GenerateOptions tunes bracket generation. The zero value is usable.
type GenerateOptions struct {
	// Shuffle source; nil means time seeded.
	Rand *rand.Rand
	// Match ids are numbered from IDOffset+1.
	IDOffset int
	// Adds a playoff for third place fed by the semifinal losers.
	ThirdPlaceMatch bool
}

func (o GenerateOptions) rng() *rand.Rand {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func calcBracketSize(count int) int {
	if count <= 0 {
		return 0
	}

	// Log2 -> Ceil -> 2^^log2 to round up
	log2 := math.Ceil(math.Log2(float64(count)))
	return int(math.Pow(2, log2))
}

// seedPairs returns the round 1 pairings of 1-based seeds for a bracket of
// size players. Seeds 1 and 2 can only meet in the final, seeds 1-4 only from
// the semifinals on, and so on.
func seedPairs(size int) [][2]int {
	if size < 2 {
		return [][2]int{}
	}
	if size == 2 {
		return [][2]int{{1, 2}}
	}

	prev := seedPairs(size / 2)
	pairs := make([][2]int, 0, size/2)
	for _, p := range prev {
		pairs = append(pairs, [2]int{p[0], size + 1 - p[0]})
		pairs = append(pairs, [2]int{p[1], size + 1 - p[1]})
	}
	return pairs
}

// shuffled returns the indexes of n items in random order.
func shuffled(n int, rng *rand.Rand) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	return order
}

// GenerateSingleElimination shuffles the players, assigns seeds 1..N on them
// in place and returns the full match tree with byes already resolved.
func GenerateSingleElimination(players []Player, opts GenerateOptions) ([]Match, error) {
	n := len(players)
	if n < 2 {
		return nil, ErrNotEnoughPlayers
	}

	bracketSize := calcBracketSize(n)
	totalRounds := int(math.Log2(float64(bracketSize)))

	bySeed := make([]*Player, n+1)
	for i, idx := range shuffled(n, opts.rng()) {
		players[idx].Seed = utils.Ptr(i + 1)
		bySeed[i+1] = &players[idx]
	}

	matches := make([]Match, 0, bracketSize)
	seq := opts.IDOffset
	roundStart := make([]int, totalRounds+2)

	for r := 1; r <= totalRounds; r++ {
		roundStart[r] = seq
		matchesInRound := bracketSize >> r
		for i := 1; i <= matchesInRound; i++ {
			seq++
			m := Match{
				ID:          matchID(seq),
				Round:       r,
				MatchNumber: i,
				Phase:       KnockoutPhase,
			}
			if r < totalRounds {
				// Round r+1 starts right after this round's last match.
				parent := roundStart[r] + matchesInRound + (i+1)/2
				m.NextMatchID = utils.Ptr(matchID(parent))
			}
			matches = append(matches, m)
		}
	}

	// A pair where both seeds exceed n cannot occur: the partner of seed
	// s > n is size+1-s, which is at most the number of byes and so below n.
	for i, pair := range seedPairs(bracketSize) {
		m := &matches[i]
		if pair[0] <= n {
			m.Player1 = bySeed[pair[0]].clone()
		}
		if pair[1] <= n {
			m.Player2 = bySeed[pair[1]].clone()
		}
	}

	if opts.ThirdPlaceMatch && totalRounds >= 2 {
		seq++
		playoff := Match{
			ID:           matchID(seq),
			Round:        totalRounds,
			MatchNumber:  2,
			Phase:        KnockoutPhase,
			IsThirdPlace: true,
		}
		for i := range matches {
			if matches[i].Round == totalRounds-1 {
				matches[i].LoserNextMatchID = utils.Ptr(playoff.ID)
			}
		}
		matches = append(matches, playoff)
	}

	resolveByes(matches)
	return matches, nil
}

// resolveByes runs to a fixed point: decided winners are pushed into their
// next match, and a match left with a single player that no pending feeder can
// complete is awarded to that player 1-0.
func resolveByes(matches []Match) {
	idx := make(map[string]*Match, len(matches))
	for i := range matches {
		idx[matches[i].ID] = &matches[i]
	}

	for changed := true; changed; {
		changed = false
		for i := range matches {
			m := &matches[i]
			if m.Winner != nil && m.NextMatchID != nil {
				if next, ok := idx[*m.NextMatchID]; ok && next.place(m.Winner) {
					changed = true
				}
			}
		}
		for i := range matches {
			m := &matches[i]
			if m.Winner != nil || m.Phase == GroupPhase || m.IsThirdPlace || m.playerCount() != 1 {
				continue
			}
			if hasPendingFeeder(matches, m.ID) {
				continue
			}
			m.decideBye()
			changed = true
		}
	}
}

func hasPendingFeeder(matches []Match, id string) bool {
	for i := range matches {
		f := &matches[i]
		if f.NextMatchID != nil && *f.NextMatchID == id && f.Winner == nil {
			return true
		}
	}
	return false
}

// DefaultGroupCount is the number of groups used for n players.
func DefaultGroupCount(n int) int {
	return max(2, n/3)
}

// GenerateGroups shuffles the players into groupCount pools, tags each
// player with its group and resets its group stats, then returns the groups
// and one round robin match per pair within each group.
func GenerateGroups(players []Player, groupCount int, opts GenerateOptions) ([]Group, []Match, error) {
	if len(players) < 4 {
		return nil, nil, ErrNotEnoughGroupPlayers
	}
	if groupCount < 1 {
		groupCount = DefaultGroupCount(len(players))
	}

	groups := make([]Group, groupCount)
	members := make([][]*Player, groupCount)
	for g := range groups {
		groups[g] = Group{
			ID:   fmt.Sprintf("g%d", g+1),
			Name: fmt.Sprintf("Poule %c", 'A'+g),
		}
	}

	for pos, idx := range shuffled(len(players), opts.rng()) {
		g := pos % groupCount
		p := &players[idx]
		p.GroupID = utils.Ptr(groups[g].ID)
		p.resetGroupStats()
		members[g] = append(members[g], p)
	}

	var matches []Match
	seq := opts.IDOffset
	number := 0
	for g := range groups {
		for _, p := range members[g] {
			groups[g].Players = append(groups[g].Players, *p)
		}
		pool := members[g]
		for i := 0; i < len(pool); i++ {
			for j := i + 1; j < len(pool); j++ {
				seq++
				number++
				matches = append(matches, Match{
					ID:          matchID(seq),
					Round:       1,
					MatchNumber: number,
					Player1:     pool[i].clone(),
					Player2:     pool[j].clone(),
					Phase:       GroupPhase,
					GroupID:     utils.Ptr(groups[g].ID),
				})
			}
		}
	}

	return groups, matches, nil
}
