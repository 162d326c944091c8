package bracket

import "github.com/AdamBeresnev/toilescoins/internal/utils"

// Clone returns a deep copy that shares no memory with t.
func (t *Tournament) Clone() *Tournament {
	if t == nil {
		return nil
	}
	c := *t
	c.Players = clonePlayers(t.Players)
	c.Groups = make([]Group, len(t.Groups))
	for i, g := range t.Groups {
		g.Players = clonePlayers(g.Players)
		c.Groups[i] = g
	}
	c.Matches = make([]Match, len(t.Matches))
	for i, m := range t.Matches {
		c.Matches[i] = m.clone()
	}
	c.Winner = t.Winner.clone()
	c.SecondPlace = t.SecondPlace.clone()
	c.ThirdPlace = t.ThirdPlace.clone()
	c.PublicID = utils.CopyPtr(t.PublicID)
	return &c
}

func (p *Player) clone() *Player {
	if p == nil {
		return nil
	}
	c := *p
	c.UserID = utils.CopyPtr(p.UserID)
	c.Seed = utils.CopyPtr(p.Seed)
	c.GroupID = utils.CopyPtr(p.GroupID)
	return &c
}

func clonePlayers(players []Player) []Player {
	if players == nil {
		return nil
	}
	out := make([]Player, len(players))
	for i := range players {
		out[i] = *players[i].clone()
	}
	return out
}

func (m Match) clone() Match {
	m.Player1 = m.Player1.clone()
	m.Player2 = m.Player2.clone()
	m.Winner = m.Winner.clone()
	m.Score1 = utils.CopyPtr(m.Score1)
	m.Score2 = utils.CopyPtr(m.Score2)
	m.NextMatchID = utils.CopyPtr(m.NextMatchID)
	m.LoserNextMatchID = utils.CopyPtr(m.LoserNextMatchID)
	m.GroupID = utils.CopyPtr(m.GroupID)
	return m
}
