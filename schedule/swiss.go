package schedule

import (
	"fmt"
	"sort"
)

type teamPair struct{ a, b int }

func normalizedPair(a, b int) teamPair {
	if a > b {
		a, b = b, a
	}
	return teamPair{a: a, b: b}
}

// SwissRound generates pairings for the given swiss round. Round 1 is plain
// seed-order pairing. Later rounds bucket teams by win count (replayed from
// all prior swiss matches), cascade the last team of every odd bucket into the
// next-lower bucket, and pair inside each bucket while avoiding rematches.
// When a team has no rematch-free partner left in its bucket it is paired with
// the next unused team anyway; a rematch beats leaving a team unpaired.
// Ties and byes are resolved by seed order, never randomly.
func SwissRound(seeds []TeamSeed, round int, existing []PlayedMatch) ([]Pair, error) {
	if len(seeds) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrInsufficientTeams, len(seeds))
	}
	if round <= 1 {
		pairs, err := InitialEliminationPairs(seeds)
		if err != nil {
			return nil, err
		}
		return pairs, nil
	}

	prior := filterStage(existing, StageSwiss)

	wins := make(map[int]int, len(seeds))
	played := make(map[teamPair]bool, len(prior))
	for _, m := range prior {
		played[normalizedPair(m.HomeID, m.AwayID)] = true
		if m.Meta.WinnerTeamID != nil {
			wins[*m.Meta.WinnerTeamID]++
		}
	}

	seedPos := make(map[int]int, len(seeds))
	for i, t := range seeds {
		seedPos[t.ID] = i
	}

	// Buckets keyed by win count, visited in descending order.
	buckets := make(map[int][]TeamSeed)
	counts := make([]int, 0)
	for _, t := range seeds {
		w := wins[t.ID]
		if _, ok := buckets[w]; !ok {
			counts = append(counts, w)
		}
		buckets[w] = append(buckets[w], t)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))

	sortBucket := func(b []TeamSeed) {
		sort.SliceStable(b, func(i, j int) bool {
			pi, pj := seedPos[b[i].ID], seedPos[b[j].ID]
			if pi != pj {
				return pi < pj
			}
			return b[i].ID < b[j].ID
		})
	}

	pairs := make([]Pair, 0, len(seeds)/2)
	order := 0
	var carried []TeamSeed

	for ci, w := range counts {
		bucket := append(carried, buckets[w]...)
		carried = nil
		sortBucket(bucket)

		// Odd bucket: the last team drops into the next-lower bucket.
		if len(bucket)%2 != 0 && ci < len(counts)-1 {
			carried = []TeamSeed{bucket[len(bucket)-1]}
			bucket = bucket[:len(bucket)-1]
		}

		used := make([]bool, len(bucket))
		for i := 0; i < len(bucket); i++ {
			if used[i] {
				continue
			}
			partner := -1
			for j := i + 1; j < len(bucket); j++ {
				if !used[j] && !played[normalizedPair(bucket[i].ID, bucket[j].ID)] {
					partner = j
					break
				}
			}
			if partner == -1 {
				// No rematch-free partner left; take the next unused team.
				for j := i + 1; j < len(bucket); j++ {
					if !used[j] {
						partner = j
						break
					}
				}
			}
			if partner == -1 {
				break // final odd team of the lowest bucket sits out
			}
			used[i], used[partner] = true, true
			order++
			pairs = append(pairs, Pair{
				Home:  bucket[i],
				Away:  bucket[partner],
				Round: round,
				Order: order,
			})
		}
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no pairable teams for swiss round %d", ErrInsufficientAdvancement, round)
	}
	return pairs, nil
}

// NextSwissRoundNumber derives the round number a "generate next round" call
// should produce: one past the highest swiss bracket round recorded so far.
func NextSwissRoundNumber(existing []PlayedMatch) int {
	maxRound := 0
	for _, m := range filterStage(existing, StageSwiss) {
		if m.Meta.Bracket != nil && m.Meta.Bracket.Round > maxRound {
			maxRound = m.Meta.Bracket.Round
		}
	}
	return maxRound + 1
}
