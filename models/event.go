package models

import (
	"time"

	"github.com/arenahub/tournament-ops/schedule"
)

// EventStatus represents event lifecycle statuses, matching the ENUM in the DB.
type EventStatus string

const (
	EventStatusSoon         EventStatus = "soon"
	EventStatusRegistration EventStatus = "registration"
	EventStatusActive       EventStatus = "active"
	EventStatusCompleted    EventStatus = "completed"
	EventStatusCanceled     EventStatus = "canceled"
)

// Event is a tournament event. StartDate is the default scheduling anchor.
// TournamentConfig and GroupSnapshot are the two JSON bags the scheduling
// engine reads and writes; GroupSnapshot is the only scheduling-derived state
// that outlives a single generation call.
type Event struct {
	ID          int         `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Description *string     `json:"description,omitempty" db:"description"`
	OrganizerID int         `json:"organizer_id" db:"organizer_id"`
	StartDate   time.Time   `json:"start_date" db:"start_date"`
	EndDate     time.Time   `json:"end_date" db:"end_date"`
	Location    *string     `json:"location,omitempty" db:"location"`
	Status      EventStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`

	TournamentConfig *schedule.TournamentConfig `json:"tournament_config,omitempty" db:"tournament_config"`
	GroupSnapshot    *schedule.GroupSnapshot    `json:"group_snapshot,omitempty" db:"group_snapshot"`

	BannerKey *string `json:"-" db:"banner_key"`
	BannerURL *string `json:"banner_url,omitempty" db:"-"`

	// MatchCount is populated on detail reads, not stored.
	MatchCount int `json:"match_count" db:"-"`

	Organizer *User `json:"organizer,omitempty" db:"-"`
}
