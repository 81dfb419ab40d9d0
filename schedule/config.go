package schedule

// TeamSeed is the engine's view of an eligible team: identifier plus display
// name, in seed order.
type TeamSeed struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// TournamentConfig is the tournament-wide configuration bag stored on the
// event row.
type TournamentConfig struct {
	Format          string  `json:"format"`
	Seeding         []int   `json:"seeding,omitempty"`
	Groups          [][]int `json:"groups,omitempty"`
	GroupSize       int     `json:"groupSize,omitempty"`
	AdvancePerGroup int     `json:"advancePerGroup,omitempty"`
}

// Group is one realized group of the groups stage.
type Group struct {
	Index int        `json:"index"`
	Label string     `json:"label"`
	Teams []TeamSeed `json:"teams"`
}

// StandingRow is one team's accumulated points within a group.
type StandingRow struct {
	TeamID   int    `json:"teamId"`
	TeamName string `json:"teamName,omitempty"`
	Points   int    `json:"points"`
}

// GroupStanding is the ordered point table of a single group.
type GroupStanding struct {
	GroupIndex int           `json:"groupIndex"`
	Rows       []StandingRow `json:"rows"`
}

// GroupSnapshot is the durable record of the realized group partition and the
// latest computed standings. It is overwritten wholesale on every standings
// recomputation, never merged.
type GroupSnapshot struct {
	Groups    []Group         `json:"groups"`
	Standings []GroupStanding `json:"standings,omitempty"`
}

// SeedOrder resolves the seed order for a generation call: the explicit
// seeding list from the tournament config when present (filtered to currently
// eligible teams), otherwise the given registration order.
func SeedOrder(cfg *TournamentConfig, eligible []TeamSeed) []TeamSeed {
	if cfg == nil || len(cfg.Seeding) == 0 {
		return eligible
	}
	byID := make(map[int]TeamSeed, len(eligible))
	for _, t := range eligible {
		byID[t.ID] = t
	}
	seeds := make([]TeamSeed, 0, len(eligible))
	seen := make(map[int]bool, len(cfg.Seeding))
	for _, id := range cfg.Seeding {
		if t, ok := byID[id]; ok && !seen[id] {
			seeds = append(seeds, t)
			seen[id] = true
		}
	}
	// Eligible teams missing from the explicit list go last, in registration order.
	for _, t := range eligible {
		if !seen[t.ID] {
			seeds = append(seeds, t)
		}
	}
	return seeds
}
