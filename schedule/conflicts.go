package schedule

import (
	"sort"
	"time"
)

// matchDuration is the fixed duration assumed when checking overlaps.
const matchDuration = time.Hour

// Conflict reports a team booked into two matches that overlap.
type Conflict struct {
	TeamID       int       `json:"team_id"`
	FirstMatchID int       `json:"first_match_id"`
	NextMatchID  int       `json:"next_match_id"`
	OverlapFrom  time.Time `json:"overlap_from"`
	OverlapTo    time.Time `json:"overlap_to"`
}

// FindConflicts buckets an event's matches by team, sorts each bucket by
// start time and flags every adjacent pair where the earlier match's end
// (start plus one hour) falls after the later match's start. Read-only
// diagnostic; it never reschedules anything.
func FindConflicts(matches []PlayedMatch) []Conflict {
	byTeam := make(map[int][]PlayedMatch)
	for _, m := range matches {
		byTeam[m.HomeID] = append(byTeam[m.HomeID], m)
		byTeam[m.AwayID] = append(byTeam[m.AwayID], m)
	}

	teamIDs := make([]int, 0, len(byTeam))
	for id := range byTeam {
		teamIDs = append(teamIDs, id)
	}
	sort.Ints(teamIDs)

	var conflicts []Conflict
	for _, teamID := range teamIDs {
		bucket := byTeam[teamID]
		sort.Slice(bucket, func(i, j int) bool {
			if !bucket[i].StartsAt.Equal(bucket[j].StartsAt) {
				return bucket[i].StartsAt.Before(bucket[j].StartsAt)
			}
			return bucket[i].ID < bucket[j].ID
		})
		for i := 0; i+1 < len(bucket); i++ {
			end := bucket[i].StartsAt.Add(matchDuration)
			next := bucket[i+1]
			if end.After(next.StartsAt) {
				conflicts = append(conflicts, Conflict{
					TeamID:       teamID,
					FirstMatchID: bucket[i].ID,
					NextMatchID:  next.ID,
					OverlapFrom:  next.StartsAt,
					OverlapTo:    end,
				})
			}
		}
	}
	return conflicts
}
