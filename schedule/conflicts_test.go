package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConflictsFlagsOverlap(t *testing.T) {
	start := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)
	matches := []PlayedMatch{
		{ID: 1, HomeID: 1, AwayID: 2, StartsAt: start},
		{ID: 2, HomeID: 1, AwayID: 3, StartsAt: start.Add(30 * time.Minute)},
	}

	conflicts := FindConflicts(matches)
	require.Len(t, conflicts, 1)

	c := conflicts[0]
	assert.Equal(t, 1, c.TeamID)
	assert.Equal(t, 1, c.FirstMatchID)
	assert.Equal(t, 2, c.NextMatchID)
	assert.Equal(t, start.Add(30*time.Minute), c.OverlapFrom)
	assert.Equal(t, start.Add(time.Hour), c.OverlapTo)
}

func TestFindConflictsBackToBackIsClean(t *testing.T) {
	// A match starting exactly one hour after the previous one does not
	// overlap.
	start := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)
	matches := []PlayedMatch{
		{ID: 1, HomeID: 1, AwayID: 2, StartsAt: start},
		{ID: 2, HomeID: 1, AwayID: 3, StartsAt: start.Add(time.Hour)},
	}

	assert.Empty(t, FindConflicts(matches))
}

func TestFindConflictsBothSidesChecked(t *testing.T) {
	start := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)
	matches := []PlayedMatch{
		{ID: 1, HomeID: 1, AwayID: 2, StartsAt: start},
		{ID: 2, HomeID: 3, AwayID: 2, StartsAt: start.Add(15 * time.Minute)},
	}

	conflicts := FindConflicts(matches)
	require.Len(t, conflicts, 1)
	assert.Equal(t, 2, conflicts[0].TeamID)
}

func TestFindConflictsDeterministicOrder(t *testing.T) {
	start := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)
	matches := []PlayedMatch{
		{ID: 1, HomeID: 5, AwayID: 6, StartsAt: start},
		{ID: 2, HomeID: 5, AwayID: 6, StartsAt: start.Add(10 * time.Minute)},
	}

	first := FindConflicts(matches)
	second := FindConflicts(matches)
	require.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, 5, first[0].TeamID)
	assert.Equal(t, 6, first[1].TeamID)
}

func TestFindConflictsEmpty(t *testing.T) {
	assert.Empty(t, FindConflicts(nil))
}
