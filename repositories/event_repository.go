package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/arenahub/tournament-ops/models"
	"github.com/arenahub/tournament-ops/schedule"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	UpdateGroupSnapshot(ctx context.Context, exec SQLExecutor, eventID int, snapshot *schedule.GroupSnapshot) error
	UpdateTournamentConfig(ctx context.Context, eventID int, cfg *schedule.TournamentConfig) error
	UpdateBannerKey(ctx context.Context, eventID int, bannerKey *string) error
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

const eventColumns = `id, name, description, organizer_id, start_date, end_date, location, status,
		tournament_config, group_snapshot, banner_key, created_at`

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, description, organizer_id, start_date, end_date, location, status, tournament_config)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	cfgJSON, err := marshalNullable(event.TournamentConfig)
	if err != nil {
		return fmt.Errorf("failed to encode tournament config: %w", err)
	}

	err = r.db.QueryRowContext(ctx, query,
		event.Name,
		event.Description,
		event.OrganizerID,
		event.StartDate,
		event.EndDate,
		event.Location,
		event.Status,
		cfgJSON,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event by id %d: %w", id, err)
	}
	return event, nil
}

func (r *postgresEventRepository) List(ctx context.Context) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY start_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		event, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", scanErr)
		}
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during event rows iteration: %w", err)
	}
	return events, nil
}

func (r *postgresEventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET name = $1, description = $2, start_date = $3, end_date = $4, location = $5,
		    status = $6, tournament_config = $7, group_snapshot = $8
		WHERE id = $9`

	cfgJSON, err := marshalNullable(event.TournamentConfig)
	if err != nil {
		return fmt.Errorf("failed to encode tournament config: %w", err)
	}
	snapJSON, err := marshalNullable(event.GroupSnapshot)
	if err != nil {
		return fmt.Errorf("failed to encode group snapshot: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query,
		event.Name,
		event.Description,
		event.StartDate,
		event.EndDate,
		event.Location,
		event.Status,
		cfgJSON,
		snapJSON,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event %d: %w", event.ID, err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdateGroupSnapshot(ctx context.Context, exec SQLExecutor, eventID int, snapshot *schedule.GroupSnapshot) error {
	executor := exec
	if executor == nil {
		executor = r.db
	}
	snapJSON, err := marshalNullable(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode group snapshot: %w", err)
	}
	result, err := executor.ExecContext(ctx, `UPDATE events SET group_snapshot = $1 WHERE id = $2`, snapJSON, eventID)
	if err != nil {
		return fmt.Errorf("failed to update event %d group snapshot: %w", eventID, err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdateTournamentConfig(ctx context.Context, eventID int, cfg *schedule.TournamentConfig) error {
	cfgJSON, err := marshalNullable(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode tournament config: %w", err)
	}
	result, err := r.db.ExecContext(ctx, `UPDATE events SET tournament_config = $1 WHERE id = $2`, cfgJSON, eventID)
	if err != nil {
		return fmt.Errorf("failed to update event %d tournament config: %w", eventID, err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdateBannerKey(ctx context.Context, eventID int, bannerKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE events SET banner_key = $1 WHERE id = $2`, bannerKey, eventID)
	if err != nil {
		return fmt.Errorf("failed to update event %d banner key: %w", eventID, err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func scanEvent(row interface{ Scan(...interface{}) error }) (*models.Event, error) {
	event := &models.Event{}
	var cfgJSON, snapJSON []byte
	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.OrganizerID,
		&event.StartDate,
		&event.EndDate,
		&event.Location,
		&event.Status,
		&cfgJSON,
		&snapJSON,
		&event.BannerKey,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Corrupt or legacy bags are dropped rather than failing the read.
	if len(cfgJSON) > 0 {
		var cfg schedule.TournamentConfig
		if jsonErr := json.Unmarshal(cfgJSON, &cfg); jsonErr == nil {
			event.TournamentConfig = &cfg
		}
	}
	if len(snapJSON) > 0 {
		var snap schedule.GroupSnapshot
		if jsonErr := json.Unmarshal(snapJSON, &snap); jsonErr == nil {
			event.GroupSnapshot = &snap
		}
	}
	return event, nil
}

// marshalNullable encodes an optional JSON bag, producing SQL NULL for nil.
func marshalNullable[T any](v *T) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
