package bracket

import (
	"github.com/cockroachdb/errors"
	"github.com/dominikbraun/graph"
)

// linkGraph builds the forward-linked forest of knockout matches. Edges follow
// nextMatchId and loserNextMatchId; a dangling or cyclic link is an error.
func linkGraph(matches []Match) (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.Acyclic(), graph.PreventCycles())

	for i := range matches {
		if matches[i].Phase != KnockoutPhase {
			continue
		}
		if err := g.AddVertex(matches[i].ID); err != nil {
			return nil, MarkCategory(errors.Wrapf(err, "match %q", matches[i].ID), ErrBrokenLink)
		}
	}

	for i := range matches {
		m := &matches[i]
		if m.Phase != KnockoutPhase {
			continue
		}
		for _, target := range []*string{m.NextMatchID, m.LoserNextMatchID} {
			if target == nil {
				continue
			}
			if err := g.AddEdge(m.ID, *target); err != nil {
				return nil, MarkCategory(errors.Wrapf(err, "link %s -> %s", m.ID, *target), ErrBrokenLink)
			}
		}
	}
	return g, nil
}

// Validate checks that every forward link targets an existing knockout match
// of the next round and that the links are acyclic.
func Validate(t *Tournament) error {
	if _, err := linkGraph(t.Matches); err != nil {
		return err
	}

	idx := t.Index()
	for i := range t.Matches {
		m := &t.Matches[i]
		for _, target := range []*string{m.NextMatchID, m.LoserNextMatchID} {
			if target == nil {
				continue
			}
			next, ok := idx[*target]
			if !ok {
				return errors.Wrapf(ErrBrokenLink, "match %s links to missing %s", m.ID, *target)
			}
			if next.Round != m.Round+1 {
				return errors.Wrapf(ErrBrokenLink, "match %s (round %d) links to %s (round %d)", m.ID, m.Round, next.ID, next.Round)
			}
		}
		if m.Winner != nil && !m.Winner.Is(m.Player1) && !m.Winner.Is(m.Player2) {
			return errors.Wrapf(ErrBrokenLink, "match %s winner %q is not one of its players", m.ID, m.Winner.ID)
		}
	}
	return nil
}

// replayOrder lists knockout match ids so that every match comes after its
// feeders, ties broken by round then match number.
func replayOrder(matches []Match) ([]string, error) {
	g, err := linkGraph(matches)
	if err != nil {
		return nil, err
	}

	pos := make(map[string]*Match, len(matches))
	for i := range matches {
		pos[matches[i].ID] = &matches[i]
	}
	less := func(a, b string) bool {
		ma, mb := pos[a], pos[b]
		if ma.Round != mb.Round {
			return ma.Round < mb.Round
		}
		if ma.MatchNumber != mb.MatchNumber {
			return ma.MatchNumber < mb.MatchNumber
		}
		return a < b
	}

	order, err := graph.StableTopologicalSort(g, less)
	if err != nil {
		return nil, MarkCategory(errors.Wrap(err, "sort matches"), ErrBrokenLink)
	}
	return order, nil
}
