package schedule

import "sort"

const pointsPerWin = 3

// ComputeStandings replays all group-tagged matches of an event and produces
// per-group point tables: 3 points to the recorded winner of each match,
// nothing otherwise (a match without a recorded winner contributes to
// neither side; draws are not modeled). The computation is a pure function of
// the realized partition and the match set, recomputed from scratch on every
// call so partial updates can never drift. Rows keep group-member insertion
// order among equal scores.
func ComputeStandings(groups []Group, matches []PlayedMatch) []GroupStanding {
	points := make(map[int]map[int]int, len(groups)) // group index -> team id -> points
	for _, g := range groups {
		points[g.Index] = make(map[int]int, len(g.Teams))
	}

	for _, m := range matches {
		if m.Meta == nil || m.Meta.Stage != StageGroups || m.Meta.Group == nil {
			continue
		}
		table, ok := points[m.Meta.Group.Index]
		if !ok || m.Meta.WinnerTeamID == nil {
			continue
		}
		table[*m.Meta.WinnerTeamID] += pointsPerWin
	}

	standings := make([]GroupStanding, 0, len(groups))
	for _, g := range groups {
		rows := make([]StandingRow, 0, len(g.Teams))
		for _, t := range g.Teams {
			rows = append(rows, StandingRow{
				TeamID:   t.ID,
				TeamName: t.Name,
				Points:   points[g.Index][t.ID],
			})
		}
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Points > rows[j].Points
		})
		standings = append(standings, GroupStanding{GroupIndex: g.Index, Rows: rows})
	}
	sort.Slice(standings, func(i, j int) bool {
		return standings[i].GroupIndex < standings[j].GroupIndex
	})
	return standings
}
