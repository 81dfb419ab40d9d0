package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenahub/tournament-ops/models"
	"github.com/arenahub/tournament-ops/schedule"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchEventInvalid  = errors.New("match event conflict or invalid")
	ErrMatchTeamInvalid   = errors.New("match team conflict or invalid")
	ErrMatchSameTeamTwice = errors.New("match home and away teams must differ")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.Match, error)
	CountByEvent(ctx context.Context, eventID int) (int, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	if match.HomeTeamID == match.AwayTeamID {
		return ErrMatchSameTeamTwice
	}
	query := `
		INSERT INTO matches (event_id, home_team_id, away_team_id, scheduled_at, stage_meta)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	metaJSON, err := marshalNullable(match.Meta)
	if err != nil {
		return fmt.Errorf("failed to encode stage metadata: %w", err)
	}

	err = r.getExecutor(exec).QueryRowContext(ctx, query,
		match.EventID,
		match.HomeTeamID,
		match.AwayTeamID,
		match.ScheduledAt,
		metaJSON,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		if isPqCode(err, pqForeignKeyViolation) {
			return ErrMatchEventInvalid
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `
		SELECT id, event_id, home_team_id, away_team_id, scheduled_at, stage_meta, created_at
		FROM matches
		WHERE id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Match, error) {
	query := `
		SELECT id, event_id, home_team_id, away_team_id, scheduled_at, stage_meta, created_at
		FROM matches
		WHERE event_id = $1
		ORDER BY scheduled_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for event %d: %w", eventID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) CountByEvent(ctx context.Context, eventID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches for event %d: %w", eventID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	if match.HomeTeamID == match.AwayTeamID {
		return ErrMatchSameTeamTwice
	}
	query := `
		UPDATE matches
		SET home_team_id = $1, away_team_id = $2, scheduled_at = $3, stage_meta = $4
		WHERE id = $5`

	metaJSON, err := marshalNullable(match.Meta)
	if err != nil {
		return fmt.Errorf("failed to encode stage metadata: %w", err)
	}

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		match.HomeTeamID,
		match.AwayTeamID,
		match.ScheduledAt,
		metaJSON,
		match.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update match %d: %w", match.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	match := &models.Match{}
	var metaJSON []byte
	err := row.Scan(
		&match.ID,
		&match.EventID,
		&match.HomeTeamID,
		&match.AwayTeamID,
		&match.ScheduledAt,
		&metaJSON,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	// An unparseable bag leaves Meta nil: the match belongs to no recognized
	// stage rather than blocking reads.
	match.Meta, _ = schedule.DecodeStageMeta(metaJSON)
	return match, nil
}
