package schedule

import (
	"fmt"
	"sort"
	"time"
)

// Pair is one generated pairing before a time slot has been assigned.
type Pair struct {
	Home  TeamSeed
	Away  TeamSeed
	Round int
	Order int

	// Group tagging, set only for groups-stage pairs.
	GroupIndex *int
	GroupLabel string
}

// PlayedMatch is the engine's projection of an already persisted match.
// Meta is nil when the stored metadata bag could not be decoded; such matches
// belong to no recognized stage.
type PlayedMatch struct {
	ID       int
	HomeID   int
	AwayID   int
	StartsAt time.Time
	Meta     *StageMeta
}

func filterStage(existing []PlayedMatch, stage Stage) []PlayedMatch {
	out := make([]PlayedMatch, 0, len(existing))
	for _, m := range existing {
		if m.Meta != nil && m.Meta.Stage == stage {
			out = append(out, m)
		}
	}
	return out
}

// InitialEliminationPairs pairs the seed order consecutively (1v2, 3v4, ...)
// for the first bracket round. An odd team count drops the last seed as a bye;
// the byed team is simply not scheduled this round.
func InitialEliminationPairs(seeds []TeamSeed) ([]Pair, error) {
	if len(seeds) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrInsufficientTeams, len(seeds))
	}
	paired := seeds
	if len(paired)%2 != 0 {
		paired = paired[:len(paired)-1]
	}
	pairs := make([]Pair, 0, len(paired)/2)
	for i := 0; i+1 < len(paired); i += 2 {
		pairs = append(pairs, Pair{
			Home:  paired[i],
			Away:  paired[i+1],
			Round: 1,
			Order: i/2 + 1,
		})
	}
	return pairs, nil
}

// NextEliminationRound derives the next bracket round from the stage's
// existing matches. A team has already advanced if some match of this stage
// involving it starts strictly after its latest win; winners whose latest win
// has produced no later match are pending. Pending winners are ordered by the
// timestamp of the match that produced the win and paired consecutively.
// Returns the pairs and the new round number.
func NextEliminationRound(existing []PlayedMatch, stage Stage, names map[int]string) ([]Pair, int, error) {
	matches := filterStage(existing, stage)

	lastWin := make(map[int]time.Time)
	lastSeen := make(map[int]time.Time)
	maxRound := 0
	for _, m := range matches {
		if m.Meta.Bracket != nil && m.Meta.Bracket.Round > maxRound {
			maxRound = m.Meta.Bracket.Round
		}
		for _, id := range []int{m.HomeID, m.AwayID} {
			if t, ok := lastSeen[id]; !ok || m.StartsAt.After(t) {
				lastSeen[id] = m.StartsAt
			}
		}
		if m.Meta.WinnerTeamID != nil {
			id := *m.Meta.WinnerTeamID
			if t, ok := lastWin[id]; !ok || m.StartsAt.After(t) {
				lastWin[id] = m.StartsAt
			}
		}
	}

	type pendingWinner struct {
		id    int
		wonAt time.Time
	}
	pending := make([]pendingWinner, 0, len(lastWin))
	for id, wonAt := range lastWin {
		if lastSeen[id].After(wonAt) {
			continue // already played again after winning
		}
		pending = append(pending, pendingWinner{id: id, wonAt: wonAt})
	}
	if len(pending) < 2 {
		return nil, 0, fmt.Errorf("%w: %d pending winners", ErrInsufficientAdvancement, len(pending))
	}

	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].wonAt.Equal(pending[j].wonAt) {
			return pending[i].wonAt.Before(pending[j].wonAt)
		}
		return pending[i].id < pending[j].id
	})

	round := maxRound + 1
	pairs := make([]Pair, 0, len(pending)/2)
	for i := 0; i+1 < len(pending); i += 2 {
		pairs = append(pairs, Pair{
			Home:  TeamSeed{ID: pending[i].id, Name: names[pending[i].id]},
			Away:  TeamSeed{ID: pending[i+1].id, Name: names[pending[i+1].id]},
			Round: round,
			Order: i/2 + 1,
		})
	}
	return pairs, round, nil
}
