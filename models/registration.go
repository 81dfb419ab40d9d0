package models

import "time"

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationApproved  RegistrationStatus = "approved"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationRejected  RegistrationStatus = "rejected"
)

// IsEligible reports whether a registration counts toward scheduling.
func (s RegistrationStatus) IsEligible() bool {
	return s == RegistrationApproved || s == RegistrationConfirmed
}

type Registration struct {
	ID        int                `json:"id" db:"id"`
	EventID   int                `json:"event_id" db:"event_id"`
	TeamID    int                `json:"team_id" db:"team_id"`
	Status    RegistrationStatus `json:"status" db:"status"`
	CreatedAt time.Time          `json:"created_at" db:"created_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}
