package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/arenahub/tournament-ops/models"
	"github.com/arenahub/tournament-ops/realtime"
	"github.com/arenahub/tournament-ops/repositories"
	"github.com/arenahub/tournament-ops/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDriver provides transaction begin/commit semantics without a real
// database; the fake repositories below ignore the executor entirely.
type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

var registerStubOnce sync.Once

func stubDB(t *testing.T) *sql.DB {
	t.Helper()
	registerStubOnce.Do(func() {
		sql.Register("schedule_stub", stubDriver{})
	})
	db, err := sql.Open("schedule_stub", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fakeEventRepo struct {
	events map[int]*models.Event
}

func (r *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	event.ID = len(r.events) + 1
	r.events[event.ID] = event
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, id int) (*models.Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	return event, nil
}

func (r *fakeEventRepo) List(ctx context.Context) ([]*models.Event, error) { return nil, nil }

func (r *fakeEventRepo) Update(ctx context.Context, event *models.Event) error { return nil }

func (r *fakeEventRepo) UpdateGroupSnapshot(ctx context.Context, exec repositories.SQLExecutor, eventID int, snapshot *schedule.GroupSnapshot) error {
	event, ok := r.events[eventID]
	if !ok {
		return repositories.ErrEventNotFound
	}
	event.GroupSnapshot = snapshot
	return nil
}

func (r *fakeEventRepo) UpdateTournamentConfig(ctx context.Context, eventID int, cfg *schedule.TournamentConfig) error {
	return nil
}

func (r *fakeEventRepo) UpdateBannerKey(ctx context.Context, eventID int, bannerKey *string) error {
	return nil
}

type fakeRegistrationRepo struct {
	regs []*models.Registration
}

func (r *fakeRegistrationRepo) Create(ctx context.Context, reg *models.Registration) error {
	return nil
}

func (r *fakeRegistrationRepo) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	return nil, repositories.ErrRegistrationNotFound
}

func (r *fakeRegistrationRepo) ListByEvent(ctx context.Context, eventID int, status *models.RegistrationStatus) ([]*models.Registration, error) {
	return r.regs, nil
}

func (r *fakeRegistrationRepo) ListEligibleByEvent(ctx context.Context, eventID int) ([]*models.Registration, error) {
	out := make([]*models.Registration, 0, len(r.regs))
	for _, reg := range r.regs {
		if reg.EventID == eventID && reg.Status.IsEligible() {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (r *fakeRegistrationRepo) UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error {
	return nil
}

type fakeMatchRepo struct {
	matches []*models.Match
	nextID  int
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if match.HomeTeamID == match.AwayTeamID {
		return repositories.ErrMatchSameTeamTwice
	}
	r.nextID++
	match.ID = r.nextID
	match.CreatedAt = time.Now()
	r.matches = append(r.matches, match)
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	for _, m := range r.matches {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListByEvent(ctx context.Context, eventID int) ([]*models.Match, error) {
	out := make([]*models.Match, 0, len(r.matches))
	for _, m := range r.matches {
		if m.EventID == eventID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) CountByEvent(ctx context.Context, eventID int) (int, error) {
	matches, _ := r.ListByEvent(ctx, eventID)
	return len(matches), nil
}

func (r *fakeMatchRepo) Update(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	for i, m := range r.matches {
		if m.ID == match.ID {
			r.matches[i] = match
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

type fakeUserRepo struct {
	users map[int]*models.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error { return nil }

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

type serviceFixture struct {
	svc       ScheduleService
	eventRepo *fakeEventRepo
	matchRepo *fakeMatchRepo
	regRepo   *fakeRegistrationRepo
}

const (
	organizerID = 100
	playerID    = 200
)

func newFixture(t *testing.T, teamCount int) *serviceFixture {
	t.Helper()

	event := &models.Event{
		ID:          1,
		Name:        "Spring Invitational",
		OrganizerID: organizerID,
		StartDate:   time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 6, 7, 22, 0, 0, 0, time.UTC),
		Status:      models.EventStatusActive,
	}
	eventRepo := &fakeEventRepo{events: map[int]*models.Event{1: event}}

	regRepo := &fakeRegistrationRepo{}
	for i := 1; i <= teamCount; i++ {
		regRepo.regs = append(regRepo.regs, &models.Registration{
			ID:      i,
			EventID: 1,
			TeamID:  i,
			Status:  models.RegistrationApproved,
			Team:    &models.Team{ID: i, Name: string(rune('A' + i - 1))},
		})
	}

	matchRepo := &fakeMatchRepo{}
	userRepo := &fakeUserRepo{users: map[int]*models.User{
		organizerID: {ID: organizerID, Role: models.RoleOrganizer},
		playerID:    {ID: playerID, Role: models.RolePlayer},
	}}

	hub := realtime.NewHub()
	go hub.Run()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewScheduleService(stubDB(t), eventRepo, regRepo, matchRepo, userRepo, hub, logger, time.UTC)

	return &serviceFixture{svc: svc, eventRepo: eventRepo, matchRepo: matchRepo, regRepo: regRepo}
}

func TestGenerateScheduleSingleElim(t *testing.T) {
	f := newFixture(t, 4)

	matches, err := f.svc.GenerateSchedule(context.Background(), 1, GenerateScheduleInput{Stage: "single_elim"}, organizerID)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, 1, matches[0].HomeTeamID)
	assert.Equal(t, 2, matches[0].AwayTeamID)
	require.NotNil(t, matches[0].Meta)
	assert.Equal(t, schedule.StageSingleElim, matches[0].Meta.Stage)
	require.NotNil(t, matches[0].Meta.Bracket)
	assert.Equal(t, 1, matches[0].Meta.Bracket.Round)
	assert.Equal(t, 1, matches[0].Meta.BestOf)

	// Second match spaced one interval after the first.
	assert.Equal(t, time.Hour, matches[1].ScheduledAt.Sub(matches[0].ScheduledAt))
}

func TestGenerateScheduleRejectsNonManager(t *testing.T) {
	f := newFixture(t, 4)

	_, err := f.svc.GenerateSchedule(context.Background(), 1, GenerateScheduleInput{Stage: "se"}, playerID)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestGenerateScheduleUnknownStage(t *testing.T) {
	f := newFixture(t, 4)

	_, err := f.svc.GenerateSchedule(context.Background(), 1, GenerateScheduleInput{Stage: "round_robin"}, organizerID)
	assert.ErrorIs(t, err, schedule.ErrUnknownStage)
}

func TestGenerateScheduleGroupsPersistsSnapshot(t *testing.T) {
	f := newFixture(t, 8)
	f.eventRepo.events[1].TournamentConfig = &schedule.TournamentConfig{Format: "groups", GroupSize: 4}

	matches, err := f.svc.GenerateSchedule(context.Background(), 1, GenerateScheduleInput{Stage: "groups"}, organizerID)
	require.NoError(t, err)
	require.Len(t, matches, 12)

	snapshot := f.eventRepo.events[1].GroupSnapshot
	require.NotNil(t, snapshot)
	require.Len(t, snapshot.Groups, 2)
	assert.Equal(t, "A", snapshot.Groups[0].Label)

	for _, m := range matches {
		require.NotNil(t, m.Meta.Group)
		assert.Nil(t, m.Meta.Bracket)
		assert.Equal(t, schedule.StageGroups, m.Meta.Stage)
	}
}

func TestGenerateNextRoundElimination(t *testing.T) {
	f := newFixture(t, 4)

	matches, err := f.svc.GenerateSchedule(context.Background(), 1, GenerateScheduleInput{Stage: "single_elim"}, organizerID)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	for _, m := range matches {
		winner := m.HomeTeamID
		m.Meta.WinnerTeamID = &winner
	}

	next, err := f.svc.GenerateNextRound(context.Background(), 1, GenerateScheduleInput{Stage: "single_elim"}, organizerID)
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, 2, next[0].Meta.Bracket.Round)
	assert.Equal(t, 1, next[0].HomeTeamID)
	assert.Equal(t, 3, next[0].AwayTeamID)
}

func TestGenerateNextRoundSwissHonorsSeeding(t *testing.T) {
	f := newFixture(t, 4)
	f.eventRepo.events[1].TournamentConfig = &schedule.TournamentConfig{
		Format:  "swiss",
		Seeding: []int{4, 3, 2, 1},
	}

	first, err := f.svc.GenerateSchedule(context.Background(), 1, GenerateScheduleInput{Stage: "swiss"}, organizerID)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 4, first[0].HomeTeamID)
	assert.Equal(t, 3, first[0].AwayTeamID)
	assert.Equal(t, 2, first[1].HomeTeamID)
	assert.Equal(t, 1, first[1].AwayTeamID)

	// The next-round path must resolve the same explicit seeding list; with no
	// winners recorded everyone shares one bucket and the rematch-free
	// pairing is fully determined by seed order.
	next, err := f.svc.GenerateNextRound(context.Background(), 1, GenerateScheduleInput{Stage: "swiss"}, organizerID)
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, 2, next[0].Meta.Bracket.Round)
	assert.Equal(t, 4, next[0].HomeTeamID)
	assert.Equal(t, 2, next[0].AwayTeamID)
	assert.Equal(t, 3, next[1].HomeTeamID)
	assert.Equal(t, 1, next[1].AwayTeamID)
}

func TestGenerateNextRoundFromGroupsSeedsKnockout(t *testing.T) {
	f := newFixture(t, 8)
	f.eventRepo.events[1].GroupSnapshot = &schedule.GroupSnapshot{
		Groups: []schedule.Group{
			{Index: 0, Label: "A"},
			{Index: 1, Label: "B"},
		},
		Standings: []schedule.GroupStanding{
			{GroupIndex: 0, Rows: []schedule.StandingRow{
				{TeamID: 1, TeamName: "A", Points: 9},
				{TeamID: 2, TeamName: "B", Points: 6},
				{TeamID: 3, TeamName: "C", Points: 0},
			}},
			{GroupIndex: 1, Rows: []schedule.StandingRow{
				{TeamID: 5, TeamName: "E", Points: 9},
				{TeamID: 6, TeamName: "F", Points: 6},
				{TeamID: 7, TeamName: "G", Points: 0},
			}},
		},
	}

	matches, err := f.svc.GenerateNextRound(context.Background(), 1, GenerateScheduleInput{Stage: "groups"}, organizerID)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	for _, m := range matches {
		require.NotNil(t, m.Meta)
		assert.Equal(t, schedule.StageSingleElim, m.Meta.Stage)
		assert.Equal(t, schedule.StageGroups, m.Meta.FromStage)
	}
	assert.Equal(t, 1, matches[0].HomeTeamID)
	assert.Equal(t, 2, matches[0].AwayTeamID)
	assert.Equal(t, 5, matches[1].HomeTeamID)
	assert.Equal(t, 6, matches[1].AwayTeamID)
}

func TestSubmitScoresRecordsWinner(t *testing.T) {
	f := newFixture(t, 4)

	matches, err := f.svc.GenerateSchedule(context.Background(), 1, GenerateScheduleInput{Stage: "single_elim", BestOf: 3}, organizerID)
	require.NoError(t, err)

	updated, err := f.svc.SubmitScores(context.Background(), matches[0].ID, SubmitScoresInput{
		Games: []schedule.GameScore{{Home: 16, Away: 9}, {Home: 16, Away: 12}},
	}, organizerID)
	require.NoError(t, err)

	require.NotNil(t, updated.Meta.WinnerTeamID)
	assert.Equal(t, updated.HomeTeamID, *updated.Meta.WinnerTeamID)
	require.NotNil(t, updated.Meta.WinnerTeamName)
	assert.Equal(t, "A", *updated.Meta.WinnerTeamName)
}

func TestSubmitScoresUndecidedSeries(t *testing.T) {
	f := newFixture(t, 4)

	matches, err := f.svc.GenerateSchedule(context.Background(), 1, GenerateScheduleInput{Stage: "single_elim", BestOf: 3}, organizerID)
	require.NoError(t, err)

	updated, err := f.svc.SubmitScores(context.Background(), matches[0].ID, SubmitScoresInput{
		Games: []schedule.GameScore{{Home: 16, Away: 9}},
	}, organizerID)
	require.NoError(t, err)
	assert.Nil(t, updated.Meta.WinnerTeamID)
}

func TestSubmitScoresRequiresGames(t *testing.T) {
	f := newFixture(t, 4)
	_, err := f.svc.SubmitScores(context.Background(), 1, SubmitScoresInput{}, organizerID)
	assert.ErrorIs(t, err, ErrScoresRequired)
}

func TestSubmitScoresGroupsUpdatesStandings(t *testing.T) {
	f := newFixture(t, 4)
	f.eventRepo.events[1].TournamentConfig = &schedule.TournamentConfig{Format: "groups", GroupSize: 4}

	matches, err := f.svc.GenerateSchedule(context.Background(), 1, GenerateScheduleInput{Stage: "groups"}, organizerID)
	require.NoError(t, err)
	require.Len(t, matches, 6)

	_, err = f.svc.SubmitScores(context.Background(), matches[0].ID, SubmitScoresInput{
		Games: []schedule.GameScore{{Home: 2, Away: 0}},
	}, organizerID)
	require.NoError(t, err)

	snapshot := f.eventRepo.events[1].GroupSnapshot
	require.NotNil(t, snapshot)
	require.Len(t, snapshot.Standings, 1)

	rows := snapshot.Standings[0].Rows
	require.NotEmpty(t, rows)
	assert.Equal(t, matches[0].HomeTeamID, rows[0].TeamID)
	assert.Equal(t, 3, rows[0].Points)
}

func TestScheduleConflictsReportsOverlaps(t *testing.T) {
	f := newFixture(t, 4)

	start := time.Date(2026, 6, 1, 14, 0, 0, 0, time.UTC)
	f.matchRepo.matches = []*models.Match{
		{ID: 1, EventID: 1, HomeTeamID: 1, AwayTeamID: 2, ScheduledAt: start},
		{ID: 2, EventID: 1, HomeTeamID: 1, AwayTeamID: 3, ScheduledAt: start.Add(30 * time.Minute)},
	}
	f.matchRepo.nextID = 2

	conflicts, err := f.svc.ScheduleConflicts(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, 1, conflicts[0].TeamID)
}

func TestGenerateScheduleEventNotFound(t *testing.T) {
	f := newFixture(t, 4)
	_, err := f.svc.GenerateSchedule(context.Background(), 42, GenerateScheduleInput{Stage: "se"}, organizerID)
	assert.ErrorIs(t, err, ErrEventNotFound)
}
