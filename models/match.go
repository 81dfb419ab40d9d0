package models

import (
	"time"

	"github.com/arenahub/tournament-ops/schedule"
)

// Match is a scheduled pairing of two teams within an event. Meta is the
// decoded stage metadata bag; it is nil when the stored bag was missing or
// unparseable, in which case the match belongs to no recognized stage.
// Invariant: HomeTeamID != AwayTeamID.
type Match struct {
	ID          int                 `json:"id" db:"id"`
	EventID     int                 `json:"event_id" db:"event_id"`
	HomeTeamID  int                 `json:"home_team_id" db:"home_team_id"`
	AwayTeamID  int                 `json:"away_team_id" db:"away_team_id"`
	ScheduledAt time.Time           `json:"scheduled_at" db:"scheduled_at"`
	Meta        *schedule.StageMeta `json:"stage_meta,omitempty" db:"stage_meta"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
}

// Played converts the match to the engine's projection.
func (m *Match) Played() schedule.PlayedMatch {
	return schedule.PlayedMatch{
		ID:       m.ID,
		HomeID:   m.HomeTeamID,
		AwayID:   m.AwayTeamID,
		StartsAt: m.ScheduledAt,
		Meta:     m.Meta,
	}
}
