package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenahub/tournament-ops/models"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrRegistrationConflict = errors.New("team is already registered for this event")
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id int) (*models.Registration, error)
	ListByEvent(ctx context.Context, eventID int, status *models.RegistrationStatus) ([]*models.Registration, error)
	// ListEligibleByEvent returns approved and confirmed registrations with
	// their teams attached, in registration order.
	ListEligibleByEvent(ctx context.Context, eventID int) ([]*models.Registration, error)
	UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	query := `
		INSERT INTO registrations (event_id, team_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, reg.EventID, reg.TeamID, reg.Status).
		Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		if isPqCode(err, pqUniqueViolation) {
			return ErrRegistrationConflict
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	query := `SELECT id, event_id, team_id, status, created_at FROM registrations WHERE id = $1`

	reg := &models.Registration{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&reg.ID, &reg.EventID, &reg.TeamID, &reg.Status, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to scan registration by id %d: %w", id, err)
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) ListByEvent(ctx context.Context, eventID int, status *models.RegistrationStatus) ([]*models.Registration, error) {
	query := `SELECT id, event_id, team_id, status, created_at FROM registrations WHERE event_id = $1`
	args := []interface{}{eventID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations for event %d: %w", eventID, err)
	}
	defer rows.Close()

	regs := make([]*models.Registration, 0)
	for rows.Next() {
		reg := &models.Registration{}
		if scanErr := rows.Scan(&reg.ID, &reg.EventID, &reg.TeamID, &reg.Status, &reg.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", scanErr)
		}
		regs = append(regs, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during registration rows iteration: %w", err)
	}
	return regs, nil
}

func (r *postgresRegistrationRepository) ListEligibleByEvent(ctx context.Context, eventID int) ([]*models.Registration, error) {
	// Registration order (ascending id) is the default seed order.
	query := `
		SELECT r.id, r.event_id, r.team_id, r.status, r.created_at,
		       t.id, t.name, t.captain_id, t.logo_key, t.created_at
		FROM registrations r
		JOIN teams t ON t.id = r.team_id
		WHERE r.event_id = $1 AND r.status IN ($2, $3)
		ORDER BY r.id ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID,
		models.RegistrationApproved, models.RegistrationConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible registrations for event %d: %w", eventID, err)
	}
	defer rows.Close()

	regs := make([]*models.Registration, 0)
	for rows.Next() {
		reg := &models.Registration{Team: &models.Team{}}
		if scanErr := rows.Scan(
			&reg.ID, &reg.EventID, &reg.TeamID, &reg.Status, &reg.CreatedAt,
			&reg.Team.ID, &reg.Team.Name, &reg.Team.CaptainID, &reg.Team.LogoKey, &reg.Team.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan eligible registration row: %w", scanErr)
		}
		regs = append(regs, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during eligible registration rows iteration: %w", err)
	}
	return regs, nil
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE registrations SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update registration %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}
