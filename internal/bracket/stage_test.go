package bracket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart(t *testing.T) {
	t.Run("elimination", func(t *testing.T) {
		tournament := startedTournament(t, EliminationFormat, 4, 1)
		assert.Equal(t, TournamentOngoing, tournament.Status)
		assert.Len(t, tournament.Matches, 3)
		assert.Empty(t, tournament.Groups)
	})

	t.Run("groups", func(t *testing.T) {
		tournament := startedTournament(t, GroupsFormat, 6, 1)
		assert.Equal(t, TournamentOngoing, tournament.Status)
		assert.Len(t, tournament.Groups, 2)
		for _, p := range tournament.Players {
			assert.NotNil(t, p.GroupID)
		}
	})

	t.Run("not enough players keeps setup", func(t *testing.T) {
		tournament := NewTournament("Solo", EliminationFormat, "owner")
		require.NoError(t, tournament.AddPlayer(Player{ID: "p1", Name: "Alone"}))

		err := Start(tournament, seeded(1))
		assert.ErrorIs(t, err, ErrNotEnoughPlayers)
		assert.Equal(t, TournamentSetup, tournament.Status)
		assert.Empty(t, tournament.Matches)
	})

	t.Run("groups need four", func(t *testing.T) {
		tournament := NewTournament("Small", GroupsFormat, "owner")
		tournament.Players = testPlayers(3)
		assert.ErrorIs(t, Start(tournament, seeded(1)), ErrNotEnoughGroupPlayers)
		assert.Equal(t, TournamentSetup, tournament.Status)
	})

	t.Run("twice", func(t *testing.T) {
		tournament := startedTournament(t, EliminationFormat, 4, 1)
		err := Start(tournament, seeded(1))
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestRosterLockedAfterStart(t *testing.T) {
	tournament := NewTournament("Roster", EliminationFormat, "owner")
	require.NoError(t, tournament.AddPlayer(Player{ID: "a", Name: "A"}))
	assert.ErrorIs(t, tournament.AddPlayer(Player{ID: "a", Name: "A again"}), ErrDuplicatePlayer)
	require.NoError(t, tournament.AddPlayer(Player{ID: "b", Name: "B"}))
	require.NoError(t, tournament.AddPlayer(Player{ID: "c", Name: "C"}))
	require.NoError(t, tournament.RemovePlayer("c"))
	assert.ErrorIs(t, tournament.RemovePlayer("c"), ErrPlayerNotFound)

	require.NoError(t, Start(tournament, seeded(1)))
	assert.ErrorIs(t, tournament.AddPlayer(Player{ID: "d", Name: "D"}), ErrRosterLocked)
	assert.ErrorIs(t, tournament.RemovePlayer("a"), ErrRosterLocked)
}

func TestGroupStandingsKeepsRosterOrderOnTies(t *testing.T) {
	tournament := startedTournament(t, GroupsFormat, 6, 4)
	group := tournament.Groups[0]
	require.Len(t, group.Players, 3)

	// Nothing scored: every player is level, so the table is the roster order.
	standings := GroupStandings(tournament)
	require.Len(t, standings, 2)
	for i, p := range standings[0].Players {
		assert.Equal(t, group.Players[i].ID, p.ID)
	}

	last := group.Players[2].ID
	tournament.Player(last).GroupPoints = 3
	standings = GroupStandings(tournament)
	assert.Equal(t, last, standings[0].Players[0].ID)
	assert.Equal(t, group.Players[0].ID, standings[0].Players[1].ID)
	assert.Equal(t, group.Players[1].ID, standings[0].Players[2].ID)
}

func scoreGroupStage(t *testing.T, tournament *Tournament) {
	t.Helper()
	for _, m := range tournament.Matches {
		if m.Phase == GroupPhase {
			require.NoError(t, UpdateMatchScore(tournament, m.ID, 2, 0))
		}
	}
}

func TestGenerateKnockoutFromGroups(t *testing.T) {
	tournament := startedTournament(t, GroupsFormat, 6, 6)
	require.Len(t, tournament.Matches, 6)

	require.NoError(t, UpdateMatchScore(tournament, "m1", 1, 0))
	err := GenerateKnockoutFromGroups(tournament, seeded(1))
	assert.ErrorIs(t, err, ErrGroupStageIncomplete)

	scoreGroupStage(t, tournament)
	assert.True(t, GroupStageComplete(tournament))

	expected := map[string]bool{}
	for _, s := range GroupStandings(tournament) {
		for _, p := range s.Players[:QualifiersPerGroup] {
			expected[p.ID] = true
		}
		assert.Greater(t, s.Players[1].GroupPoints, s.Players[2].GroupPoints)
	}

	require.NoError(t, GenerateKnockoutFromGroups(tournament, seeded(1)))
	require.Len(t, tournament.Matches, 9)

	knockout := tournament.Matches[6:]
	assert.Equal(t, "m7", knockout[0].ID)
	assert.Equal(t, "m8", knockout[1].ID)
	assert.Equal(t, "m9", knockout[2].ID)

	qualified := map[string]bool{}
	for _, m := range knockout {
		assert.Equal(t, KnockoutPhase, m.Phase)
		for _, p := range []*Player{m.Player1, m.Player2} {
			if m.Round == 1 {
				require.NotNil(t, p)
				qualified[p.ID] = true
			}
		}
	}
	assert.Equal(t, expected, qualified)

	for _, p := range tournament.Players {
		if expected[p.ID] {
			assert.NotNil(t, p.Seed, "qualifier %s has no seed", p.ID)
		} else {
			assert.Nil(t, p.Seed)
		}
	}
	require.NoError(t, Validate(tournament))

	assert.ErrorIs(t, GenerateKnockoutFromGroups(tournament, seeded(1)), ErrKnockoutExists)
}

func TestGenerateKnockoutFromGroupsRequiresGroups(t *testing.T) {
	tournament := startedTournament(t, EliminationFormat, 4, 1)
	assert.ErrorIs(t, GenerateKnockoutFromGroups(tournament, seeded(1)), ErrNoGroupStage)
}

func TestCompleteTournament(t *testing.T) {
	tournament := startedTournament(t, EliminationFormat, 4, 12)
	idx := tournament.Index()
	a, b := idx["m1"].Player1.clone(), idx["m1"].Player2.clone()
	c := idx["m2"].Player1.clone()

	_, err := CompleteTournament(tournament)
	assert.ErrorIs(t, err, ErrFinalUndecided)

	require.NoError(t, UpdateMatchScore(tournament, "m1", 2, 1))
	require.NoError(t, UpdateMatchScore(tournament, "m2", 3, 0))
	final := FinalMatch(tournament)
	require.NotNil(t, final)
	require.Equal(t, "m3", final.ID)
	s1, s2 := scoreFor(final, a)
	require.NoError(t, UpdateMatchScore(tournament, final.ID, s1, s2))

	podium, err := CompleteTournament(tournament)
	require.NoError(t, err)
	assert.True(t, podium.Winner.Is(a))
	assert.True(t, podium.SecondPlace.Is(c))
	assert.True(t, podium.ThirdPlace.Is(b))

	assert.Equal(t, TournamentCompleted, tournament.Status)
	assert.True(t, tournament.Winner.Is(a))
	assert.True(t, tournament.SecondPlace.Is(c))
	assert.True(t, tournament.ThirdPlace.Is(b))

	_, err = CompleteTournament(tournament)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompleteTournamentPrefersThirdPlaceMatch(t *testing.T) {
	tournament := NewTournament("Playoff", EliminationFormat, "owner")
	tournament.ThirdPlaceMatch = true
	tournament.Players = testPlayers(4)
	require.NoError(t, Start(tournament, seeded(12)))
	require.Len(t, tournament.Matches, 4)

	idx := tournament.Index()
	playoff := idx["m4"]
	require.True(t, playoff.IsThirdPlace)
	b, d := idx["m1"].Player2.clone(), idx["m2"].Player2.clone()

	require.NoError(t, UpdateMatchScore(tournament, "m1", 2, 1))
	require.NoError(t, UpdateMatchScore(tournament, "m2", 3, 0))
	assert.True(t, b.Is(playoff.Player1))
	assert.True(t, d.Is(playoff.Player2))

	require.NoError(t, UpdateMatchScore(tournament, "m3", 1, 0))

	// Undecided playoff: fall back to the first semifinal's loser.
	preview := tournament.Clone()
	podium, err := CompleteTournament(preview)
	require.NoError(t, err)
	assert.True(t, podium.ThirdPlace.Is(b))

	s1, s2 := scoreFor(playoff, d)
	require.NoError(t, UpdateMatchScore(tournament, playoff.ID, s1, s2))
	podium, err = CompleteTournament(tournament)
	require.NoError(t, err)
	assert.True(t, podium.ThirdPlace.Is(d))
}

func TestCorrectionMovesLoserInThirdPlaceMatch(t *testing.T) {
	tournament := NewTournament("Playoff", EliminationFormat, "owner")
	tournament.ThirdPlaceMatch = true
	tournament.Players = testPlayers(4)
	require.NoError(t, Start(tournament, seeded(3)))

	idx := tournament.Index()
	a, b := idx["m1"].Player1.clone(), idx["m1"].Player2.clone()
	require.NoError(t, UpdateMatchScore(tournament, "m1", 2, 1))
	require.NoError(t, UpdateMatchScore(tournament, "m2", 2, 1))
	require.NoError(t, UpdateMatchScore(tournament, "m4", 5, 0))
	require.True(t, idx["m4"].Winner.Is(b))

	require.NoError(t, UpdateMatchScore(tournament, "m1", 1, 2))
	playoff := idx["m4"]
	assert.True(t, a.Is(playoff.Player1) || a.Is(playoff.Player2))
	assert.False(t, b.Is(playoff.Player1) || b.Is(playoff.Player2))
	assert.Nil(t, playoff.Winner)
	assert.False(t, playoff.IsScored())
}

func TestValidate(t *testing.T) {
	t.Run("generated bracket", func(t *testing.T) {
		tournament := startedTournament(t, EliminationFormat, 13, 2)
		assert.NoError(t, Validate(tournament))
	})

	t.Run("dangling link", func(t *testing.T) {
		tournament := startedTournament(t, EliminationFormat, 4, 2)
		missing := "m99"
		tournament.Matches[0].NextMatchID = &missing
		assert.ErrorIs(t, Validate(tournament), ErrBrokenLink)
	})

	t.Run("same round link", func(t *testing.T) {
		tournament := startedTournament(t, EliminationFormat, 4, 2)
		tournament.Matches[0].NextMatchID = &tournament.Matches[1].ID
		assert.ErrorIs(t, Validate(tournament), ErrBrokenLink)
	})

	t.Run("foreign winner", func(t *testing.T) {
		tournament := startedTournament(t, EliminationFormat, 4, 2)
		tournament.Matches[0].Winner = &Player{ID: "ghost", Name: "Ghost"}
		assert.ErrorIs(t, Validate(tournament), ErrBrokenLink)
	})
}

func TestCloneIsIndependent(t *testing.T) {
	tournament := startedTournament(t, EliminationFormat, 4, 2)
	require.NoError(t, UpdateMatchScore(tournament, "m1", 2, 1))

	c := tournament.Clone()
	*c.Matches[0].Score1 = 9
	c.Matches[0].Player1.Name = "Changed"
	*c.Players[0].Seed = 99
	c.Matches = append(c.Matches, Match{ID: "extra"})

	assert.Equal(t, 2, *tournament.Matches[0].Score1)
	assert.NotEqual(t, "Changed", tournament.Matches[0].Player1.Name)
	assert.NotEqual(t, 99, *tournament.Players[0].Seed)
	assert.Len(t, tournament.Matches, 3)
}

func TestReservedPlayerName(t *testing.T) {
	tournament := NewTournament("Slots", EliminationFormat, "owner")
	for _, name := range []string{"TBD", " tbd "} {
		err := tournament.AddPlayer(Player{ID: "x", Name: name})
		assert.ErrorIs(t, err, ErrReservedName, "name %q", name)
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Empty(t, tournament.Players)
	assert.NoError(t, tournament.AddPlayer(Player{ID: "y", Name: "TBD Jr"}))
}

func TestStartRejectsReservedName(t *testing.T) {
	tournament := NewTournament("Slots", EliminationFormat, "owner")
	tournament.Players = []Player{{ID: "p1", Name: "Alice"}, {ID: "p2", Name: TBDName}}

	assert.ErrorIs(t, Start(tournament, seeded(1)), ErrReservedName)
	assert.Equal(t, TournamentSetup, tournament.Status)
	assert.Empty(t, tournament.Matches)
}

func TestGroupScoresLockedAfterKnockout(t *testing.T) {
	tournament := startedTournament(t, GroupsFormat, 6, 6)
	scoreGroupStage(t, tournament)
	require.NoError(t, GenerateKnockoutFromGroups(tournament, seeded(1)))
	before := groupStats(tournament)

	err := UpdateMatchScore(tournament, "m1", 1, 1)
	assert.ErrorIs(t, err, ErrGroupStageLocked)
	assert.ErrorIs(t, err, ErrValidation)
	assert.True(t, GroupStageComplete(tournament))
	assert.Equal(t, before, groupStats(tournament))

	require.NoError(t, UpdateMatchScore(tournament, "m7", 2, 0))
}
