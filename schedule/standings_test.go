package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupMatch(id, home, away, groupIdx int, winner *int) PlayedMatch {
	return PlayedMatch{
		ID:       id,
		HomeID:   home,
		AwayID:   away,
		StartsAt: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		Meta: &StageMeta{
			Stage:        StageGroups,
			Group:        &GroupMeta{Index: groupIdx, Label: GroupLabel(groupIdx)},
			WinnerTeamID: winner,
		},
	}
}

func TestComputeStandings(t *testing.T) {
	groups := []Group{
		{Index: 0, Label: "A", Teams: seedList("A", "B", "C")},
	}
	w1, w2 := 1, 2
	matches := []PlayedMatch{
		groupMatch(10, 1, 2, 0, &w1),
		groupMatch(11, 1, 3, 0, &w1),
		groupMatch(12, 2, 3, 0, &w2),
	}

	standings := ComputeStandings(groups, matches)
	require.Len(t, standings, 1)
	rows := standings[0].Rows
	require.Len(t, rows, 3)

	assert.Equal(t, 1, rows[0].TeamID)
	assert.Equal(t, 6, rows[0].Points)
	assert.Equal(t, 2, rows[1].TeamID)
	assert.Equal(t, 3, rows[1].Points)
	assert.Equal(t, 3, rows[2].TeamID)
	assert.Equal(t, 0, rows[2].Points)
}

func TestComputeStandingsTiesKeepInsertionOrder(t *testing.T) {
	groups := []Group{
		{Index: 0, Label: "A", Teams: seedList("A", "B", "C")},
	}
	standings := ComputeStandings(groups, nil)
	require.Len(t, standings, 1)
	assert.Equal(t, []int{1, 2, 3}, rowTeamIDs(standings[0].Rows))
}

func TestComputeStandingsSkipsUnscoredAndForeignMatches(t *testing.T) {
	groups := []Group{
		{Index: 0, Label: "A", Teams: seedList("A", "B")},
	}
	w1 := 1
	matches := []PlayedMatch{
		groupMatch(10, 1, 2, 0, nil), // no winner recorded
		groupMatch(11, 1, 2, 5, &w1), // unknown group index
		{ID: 12, HomeID: 1, AwayID: 2, Meta: nil}, // undecodable metadata
		{ID: 13, HomeID: 1, AwayID: 2, Meta: &StageMeta{
			Stage:        StageSingleElim,
			Bracket:      &BracketMeta{Round: 1, Order: 1},
			WinnerTeamID: &w1,
		}},
	}

	standings := ComputeStandings(groups, matches)
	require.Len(t, standings, 1)
	for _, row := range standings[0].Rows {
		assert.Equal(t, 0, row.Points)
	}
}

func TestComputeStandingsIsIdempotent(t *testing.T) {
	groups := []Group{
		{Index: 0, Label: "A", Teams: seedList("A", "B")},
	}
	w1 := 1
	matches := []PlayedMatch{groupMatch(10, 1, 2, 0, &w1)}

	first := ComputeStandings(groups, matches)
	second := ComputeStandings(groups, matches)
	assert.Equal(t, first, second)
	assert.Equal(t, 3, first[0].Rows[0].Points)
}

func rowTeamIDs(rows []StandingRow) []int {
	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.TeamID)
	}
	return ids
}
