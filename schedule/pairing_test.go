package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedList(names ...string) []TeamSeed {
	seeds := make([]TeamSeed, 0, len(names))
	for i, name := range names {
		seeds = append(seeds, TeamSeed{ID: i + 1, Name: name})
	}
	return seeds
}

func TestInitialEliminationPairs(t *testing.T) {
	pairs, err := InitialEliminationPairs(seedList("A", "B", "C", "D"))
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	assert.Equal(t, "A", pairs[0].Home.Name)
	assert.Equal(t, "B", pairs[0].Away.Name)
	assert.Equal(t, 1, pairs[0].Round)
	assert.Equal(t, 1, pairs[0].Order)

	assert.Equal(t, "C", pairs[1].Home.Name)
	assert.Equal(t, "D", pairs[1].Away.Name)
	assert.Equal(t, 1, pairs[1].Round)
	assert.Equal(t, 2, pairs[1].Order)
}

func TestInitialEliminationPairsOddCountDropsLastSeed(t *testing.T) {
	pairs, err := InitialEliminationPairs(seedList("A", "B", "C", "D", "E"))
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	for _, p := range pairs {
		assert.NotEqual(t, "E", p.Home.Name)
		assert.NotEqual(t, "E", p.Away.Name)
	}
}

func TestInitialEliminationPairsTooFewTeams(t *testing.T) {
	_, err := InitialEliminationPairs(seedList("A"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientTeams)

	_, err = InitialEliminationPairs(nil)
	assert.ErrorIs(t, err, ErrInsufficientTeams)
}

func bracketMatch(id, home, away, round int, startsAt time.Time, winner *int) PlayedMatch {
	return PlayedMatch{
		ID:       id,
		HomeID:   home,
		AwayID:   away,
		StartsAt: startsAt,
		Meta: &StageMeta{
			Stage:        StageSingleElim,
			BestOf:       1,
			Bracket:      &BracketMeta{Round: round, Order: 1},
			WinnerTeamID: winner,
		},
	}
}

func TestNextEliminationRoundPairsPendingWinners(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	w1, w3 := 1, 3
	existing := []PlayedMatch{
		bracketMatch(10, 1, 2, 1, base, &w1),
		bracketMatch(11, 3, 4, 1, base.Add(time.Hour), &w3),
	}

	names := map[int]string{1: "A", 3: "C"}
	pairs, round, err := NextEliminationRound(existing, StageSingleElim, names)
	require.NoError(t, err)
	assert.Equal(t, 2, round)
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].Home.ID)
	assert.Equal(t, "A", pairs[0].Home.Name)
	assert.Equal(t, 3, pairs[0].Away.ID)
	assert.Equal(t, "C", pairs[0].Away.Name)
	assert.Equal(t, 2, pairs[0].Round)
}

func TestNextEliminationRoundSkipsAlreadyAdvancedWinners(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	w1, w3, w5, w7 := 1, 3, 5, 7
	existing := []PlayedMatch{
		bracketMatch(10, 1, 2, 1, base, &w1),
		bracketMatch(11, 3, 4, 1, base, &w3),
		bracketMatch(12, 5, 6, 1, base, &w5),
		bracketMatch(13, 7, 8, 1, base, &w7),
		// Teams 1 and 3 already met in round 2; 1 won again.
		bracketMatch(14, 1, 3, 2, base.Add(2*time.Hour), &w1),
	}

	pairs, round, err := NextEliminationRound(existing, StageSingleElim, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, round)
	require.Len(t, pairs, 1)

	// Pending winners ordered by win timestamp: 5 and 7 (round 1) are stale
	// only if they played later, which they did not; 1's round 2 win is the
	// most recent. Winners 5, 7 won at the same time so ties break by ID.
	assert.Equal(t, 5, pairs[0].Home.ID)
	assert.Equal(t, 7, pairs[0].Away.ID)
}

func TestNextEliminationRoundIgnoresOtherStages(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	w1 := 1
	idx := 0
	existing := []PlayedMatch{
		bracketMatch(10, 1, 2, 1, base, &w1),
		{
			ID: 11, HomeID: 3, AwayID: 4, StartsAt: base,
			Meta: &StageMeta{
				Stage:        StageGroups,
				Group:        &GroupMeta{Index: idx, Label: "A"},
				WinnerTeamID: &w1,
			},
		},
	}

	_, _, err := NextEliminationRound(existing, StageSingleElim, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientAdvancement)
}

func TestNextEliminationRoundNoWinners(t *testing.T) {
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	existing := []PlayedMatch{
		bracketMatch(10, 1, 2, 1, base, nil),
		bracketMatch(11, 3, 4, 1, base, nil),
	}

	_, _, err := NextEliminationRound(existing, StageSingleElim, nil)
	assert.ErrorIs(t, err, ErrInsufficientAdvancement)
}

func TestSeedOrderExplicitSeeding(t *testing.T) {
	eligible := seedList("A", "B", "C", "D")
	cfg := &TournamentConfig{Seeding: []int{3, 1, 99, 3}}

	seeds := SeedOrder(cfg, eligible)
	require.Len(t, seeds, 4)
	// Explicit entries first (unknown and duplicate IDs dropped), then the
	// remaining eligible teams in registration order.
	assert.Equal(t, []int{3, 1, 2, 4}, []int{seeds[0].ID, seeds[1].ID, seeds[2].ID, seeds[3].ID})
}

func TestSeedOrderWithoutSeedingKeepsRegistrationOrder(t *testing.T) {
	eligible := seedList("A", "B", "C")
	assert.Equal(t, eligible, SeedOrder(nil, eligible))
	assert.Equal(t, eligible, SeedOrder(&TournamentConfig{}, eligible))
}
