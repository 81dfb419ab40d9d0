package schedule

import "fmt"

const defaultGroupSize = 4

// GroupLabel returns the display label for a group index: single letters A..Z,
// then G27, G28, ... for overflow.
func GroupLabel(index int) string {
	if index < 26 {
		return string(rune('A' + index))
	}
	return fmt.Sprintf("G%d", index+1)
}

// BuildGroups realizes the group partition for the groups stage. Explicit
// groups from the tournament config win (filtered to eligible teams, groups
// left with fewer than 2 members are dropped); otherwise the seed order is
// chunked into consecutive groups of the configured size (default 4).
func BuildGroups(cfg *TournamentConfig, seeds []TeamSeed) ([]Group, error) {
	if len(seeds) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrInsufficientTeams, len(seeds))
	}

	var groups []Group
	if cfg != nil && len(cfg.Groups) > 0 {
		byID := make(map[int]TeamSeed, len(seeds))
		for _, t := range seeds {
			byID[t.ID] = t
		}
		for _, ids := range cfg.Groups {
			members := make([]TeamSeed, 0, len(ids))
			for _, id := range ids {
				if t, ok := byID[id]; ok {
					members = append(members, t)
				}
			}
			if len(members) < 2 {
				continue
			}
			idx := len(groups)
			groups = append(groups, Group{Index: idx, Label: GroupLabel(idx), Teams: members})
		}
	} else {
		size := defaultGroupSize
		if cfg != nil && cfg.GroupSize > 1 {
			size = cfg.GroupSize
		}
		for i := 0; i < len(seeds); i += size {
			end := i + size
			if end > len(seeds) {
				end = len(seeds)
			}
			idx := len(groups)
			groups = append(groups, Group{Index: idx, Label: GroupLabel(idx), Teams: seeds[i:end]})
		}
	}

	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no group has 2 or more eligible teams", ErrInsufficientTeams)
	}
	return groups, nil
}

// GroupPairs generates the full round-robin for every group: each unordered
// pair of group members exactly once, tagged with the group's index and label.
func GroupPairs(groups []Group) []Pair {
	pairs := make([]Pair, 0)
	order := 0
	for _, g := range groups {
		idx := g.Index
		for i := 0; i < len(g.Teams); i++ {
			for j := i + 1; j < len(g.Teams); j++ {
				order++
				pairs = append(pairs, Pair{
					Home:       g.Teams[i],
					Away:       g.Teams[j],
					Order:      order,
					GroupIndex: &idx,
					GroupLabel: g.Label,
				})
			}
		}
	}
	return pairs
}

// AdvanceFromGroups derives the knockout bracket's first round from recorded
// group standings: the top perGroup teams of each group (ascending group
// index, standings order within a group) concatenated and paired
// consecutively. Ties inside a group were already broken by the standings
// calculator's stable sort; no secondary tiebreak is applied here.
func AdvanceFromGroups(snapshot *GroupSnapshot, perGroup int) ([]Pair, error) {
	if snapshot == nil || len(snapshot.Standings) == 0 {
		return nil, fmt.Errorf("%w: groups stage has no recorded standings", ErrInsufficientAdvancement)
	}
	if perGroup < 1 {
		perGroup = 2
	}

	advancing := make([]TeamSeed, 0, len(snapshot.Standings)*perGroup)
	for _, gs := range snapshot.Standings {
		for i, row := range gs.Rows {
			if i >= perGroup {
				break
			}
			advancing = append(advancing, TeamSeed{ID: row.TeamID, Name: row.TeamName})
		}
	}
	if len(advancing) < 2 {
		return nil, fmt.Errorf("%w: %d advancing teams", ErrInsufficientAdvancement, len(advancing))
	}

	pairs, err := InitialEliminationPairs(advancing)
	if err != nil {
		return nil, err
	}
	return pairs, nil
}
