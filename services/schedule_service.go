package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/arenahub/tournament-ops/models"
	"github.com/arenahub/tournament-ops/realtime"
	"github.com/arenahub/tournament-ops/repositories"
	"github.com/arenahub/tournament-ops/schedule"
	"golang.org/x/sync/errgroup"
)

const defaultAdvancePerGroup = 2

// GenerateScheduleInput carries the per-call scheduling knobs. Unset fields
// fall back to the event's configuration.
type GenerateScheduleInput struct {
	Stage           string     `json:"stage"`
	BestOf          int        `json:"best_of,omitempty"`
	Round           *int       `json:"round,omitempty"` // swiss: explicit round number
	IntervalMinutes *int       `json:"interval_minutes,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	DayStartHour    *int       `json:"day_start_hour,omitempty"`
	DayStartMinute  *int       `json:"day_start_minute,omitempty"`
	MaxPerDay       *int       `json:"max_per_day,omitempty"`
}

// SubmitScoresInput carries recorded per-game scores for a match.
type SubmitScoresInput struct {
	Games  []schedule.GameScore `json:"games"`
	BestOf *int                 `json:"best_of,omitempty"`
}

type ScheduleService interface {
	// GenerateSchedule produces and persists the full batch of matches for a
	// stage: round 1 for elimination and swiss (or an explicit swiss round),
	// the complete round-robin for groups.
	GenerateSchedule(ctx context.Context, eventID int, input GenerateScheduleInput, callerID int) ([]*models.Match, error)
	// GenerateNextRound advances a running stage: the next bracket round from
	// pending winners, the next swiss round by auto-detected number, or the
	// knockout bracket seeded from group standings.
	GenerateNextRound(ctx context.Context, eventID int, input GenerateScheduleInput, callerID int) ([]*models.Match, error)
	// ScheduleConflicts reports teams booked into overlapping matches.
	ScheduleConflicts(ctx context.Context, eventID int) ([]schedule.Conflict, error)
	// SubmitScores records game scores, recomputes the winner, and for
	// groups-stage matches recomputes the standings snapshot in the same
	// transaction.
	SubmitScores(ctx context.Context, matchID int, input SubmitScoresInput, callerID int) (*models.Match, error)
}

type scheduleService struct {
	db        *sql.DB
	eventRepo repositories.EventRepository
	regRepo   repositories.RegistrationRepository
	matchRepo repositories.MatchRepository
	userRepo  repositories.UserRepository
	hub       *realtime.Hub
	logger    *slog.Logger
	tz        *time.Location

	// Per-event mutual exclusion: a concurrent double invocation of a
	// generation call for the same event would duplicate a round.
	locksMu sync.Mutex
	locks   map[int]*sync.Mutex
}

func NewScheduleService(
	db *sql.DB,
	eventRepo repositories.EventRepository,
	regRepo repositories.RegistrationRepository,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	hub *realtime.Hub,
	logger *slog.Logger,
	tz *time.Location,
) ScheduleService {
	return &scheduleService{
		db:        db,
		eventRepo: eventRepo,
		regRepo:   regRepo,
		matchRepo: matchRepo,
		userRepo:  userRepo,
		hub:       hub,
		logger:    logger,
		tz:        tz,
		locks:     make(map[int]*sync.Mutex),
	}
}

func (s *scheduleService) lockEvent(eventID int) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[eventID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[eventID] = mu
	}
	s.locksMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

// canManage reports whether the caller may mutate the event's schedule:
// the event's organizer, or an admin.
func (s *scheduleService) canManage(ctx context.Context, event *models.Event, callerID int) error {
	if event.OrganizerID == callerID {
		return nil
	}
	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrForbiddenOperation
		}
		return fmt.Errorf("failed to load caller %d: %w", callerID, err)
	}
	if caller.Role != models.RoleAdmin {
		return ErrForbiddenOperation
	}
	return nil
}

// loadEventState fetches the eligible registrations and existing matches of
// an event in parallel.
func (s *scheduleService) loadEventState(ctx context.Context, eventID int) ([]*models.Registration, []*models.Match, error) {
	var (
		regs    []*models.Registration
		matches []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		regs, err = s.regRepo.ListEligibleByEvent(gCtx, eventID)
		if err != nil {
			return fmt.Errorf("failed to list eligible registrations for event %d: %w", eventID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByEvent(gCtx, eventID)
		if err != nil {
			return fmt.Errorf("failed to list matches for event %d: %w", eventID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return regs, matches, nil
}

func seedsFromRegistrations(regs []*models.Registration) []schedule.TeamSeed {
	seeds := make([]schedule.TeamSeed, 0, len(regs))
	for _, reg := range regs {
		seed := schedule.TeamSeed{ID: reg.TeamID}
		if reg.Team != nil {
			seed.Name = reg.Team.Name
		}
		seeds = append(seeds, seed)
	}
	return seeds
}

func teamNames(regs []*models.Registration) map[int]string {
	names := make(map[int]string, len(regs))
	for _, reg := range regs {
		if reg.Team != nil {
			names[reg.TeamID] = reg.Team.Name
		}
	}
	return names
}

func playedMatches(matches []*models.Match) []schedule.PlayedMatch {
	played := make([]schedule.PlayedMatch, 0, len(matches))
	for _, m := range matches {
		played = append(played, m.Played())
	}
	return played
}

func (s *scheduleService) GenerateSchedule(ctx context.Context, eventID int, input GenerateScheduleInput, callerID int) ([]*models.Match, error) {
	unlock := s.lockEvent(eventID)
	defer unlock()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d: %w", eventID, err)
	}
	if err := s.canManage(ctx, event, callerID); err != nil {
		return nil, err
	}

	stage, err := schedule.ParseStage(input.Stage)
	if err != nil {
		return nil, err
	}

	regs, existing, err := s.loadEventState(ctx, eventID)
	if err != nil {
		return nil, err
	}
	seeds := schedule.SeedOrder(event.TournamentConfig, seedsFromRegistrations(regs))
	played := playedMatches(existing)

	var pairs []schedule.Pair
	switch stage {
	case schedule.StageSingleElim, schedule.StageDoubleElim:
		pairs, err = schedule.InitialEliminationPairs(seeds)
	case schedule.StageSwiss:
		round := 1
		if input.Round != nil {
			round = *input.Round
		}
		pairs, err = schedule.SwissRound(seeds, round, played)
	case schedule.StageGroups:
		var groups []schedule.Group
		groups, err = schedule.BuildGroups(event.TournamentConfig, seeds)
		if err != nil {
			break
		}
		// The realized partition is persisted before any match exists, so the
		// snapshot is authoritative even if match creation fails midway.
		if err = s.eventRepo.UpdateGroupSnapshot(ctx, nil, eventID, &schedule.GroupSnapshot{Groups: groups}); err != nil {
			return nil, fmt.Errorf("failed to persist group snapshot for event %d: %w", eventID, err)
		}
		pairs = schedule.GroupPairs(groups)
	default:
		return nil, schedule.ErrUnknownStage
	}
	if err != nil {
		return nil, err
	}

	matches, err := s.allocateAndPersist(ctx, event, stage, "", input, pairs, played)
	if err != nil {
		return nil, err
	}

	s.logger.Info("schedule generated",
		slog.Int("event_id", eventID),
		slog.String("stage", string(stage)),
		slog.Int("matches", len(matches)))
	s.hub.BroadcastToRoom(realtime.EventRoom(eventID), realtime.Message{
		Type:    realtime.TypeScheduleGenerated,
		Payload: matches,
	})
	return matches, nil
}

func (s *scheduleService) GenerateNextRound(ctx context.Context, eventID int, input GenerateScheduleInput, callerID int) ([]*models.Match, error) {
	unlock := s.lockEvent(eventID)
	defer unlock()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d: %w", eventID, err)
	}
	if err := s.canManage(ctx, event, callerID); err != nil {
		return nil, err
	}

	stage, err := schedule.ParseStage(input.Stage)
	if err != nil {
		return nil, err
	}

	regs, existing, err := s.loadEventState(ctx, eventID)
	if err != nil {
		return nil, err
	}
	played := playedMatches(existing)

	var (
		pairs     []schedule.Pair
		nextStage = stage
		fromStage schedule.Stage
	)
	switch stage {
	case schedule.StageSingleElim, schedule.StageDoubleElim:
		pairs, _, err = schedule.NextEliminationRound(played, stage, teamNames(regs))
	case schedule.StageSwiss:
		round := schedule.NextSwissRoundNumber(played)
		seeds := schedule.SeedOrder(event.TournamentConfig, seedsFromRegistrations(regs))
		pairs, err = schedule.SwissRound(seeds, round, played)
	case schedule.StageGroups:
		// Group stage complete: seed the knockout bracket from standings.
		perGroup := defaultAdvancePerGroup
		if cfg := event.TournamentConfig; cfg != nil && cfg.AdvancePerGroup > 0 {
			perGroup = cfg.AdvancePerGroup
		}
		pairs, err = schedule.AdvanceFromGroups(event.GroupSnapshot, perGroup)
		nextStage = schedule.StageSingleElim
		fromStage = schedule.StageGroups
	default:
		return nil, schedule.ErrUnknownStage
	}
	if err != nil {
		return nil, err
	}

	matches, err := s.allocateAndPersist(ctx, event, nextStage, fromStage, input, pairs, played)
	if err != nil {
		return nil, err
	}

	s.logger.Info("next round generated",
		slog.Int("event_id", eventID),
		slog.String("stage", string(nextStage)),
		slog.Int("matches", len(matches)))
	s.hub.BroadcastToRoom(realtime.EventRoom(eventID), realtime.Message{
		Type:    realtime.TypeScheduleGenerated,
		Payload: matches,
	})
	return matches, nil
}

// allocateAndPersist assigns time slots to the generated pairs and writes the
// whole batch inside one transaction: either every match of the batch is
// created or none.
func (s *scheduleService) allocateAndPersist(
	ctx context.Context,
	event *models.Event,
	stage schedule.Stage,
	fromStage schedule.Stage,
	input GenerateScheduleInput,
	pairs []schedule.Pair,
	played []schedule.PlayedMatch,
) ([]*models.Match, error) {
	opts := schedule.AllocOptions{
		StartDate: event.StartDate,
		Location:  s.tz,
	}
	if input.IntervalMinutes != nil {
		opts.IntervalMinutes = *input.IntervalMinutes
	}
	if input.StartDate != nil {
		opts.StartDate = *input.StartDate
	}
	if input.DayStartHour != nil {
		minute := 0
		if input.DayStartMinute != nil {
			minute = *input.DayStartMinute
		}
		opts.DayStart = &schedule.DayTime{Hour: *input.DayStartHour, Minute: minute}
	}
	if input.MaxPerDay != nil {
		opts.MaxPerDay = *input.MaxPerDay
	}

	assignments, _, err := schedule.AllocateSlots(pairs, played, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate time slots for event %d: %w", event.ID, err)
	}

	bestOf := input.BestOf
	if bestOf <= 0 {
		bestOf = 1
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	matches := make([]*models.Match, 0, len(assignments))
	for _, a := range assignments {
		meta := &schedule.StageMeta{
			Stage:     stage,
			BestOf:    bestOf,
			FromStage: fromStage,
		}
		if a.Pair.GroupIndex != nil {
			meta.Group = &schedule.GroupMeta{Index: *a.Pair.GroupIndex, Label: a.Pair.GroupLabel}
		} else {
			meta.Bracket = &schedule.BracketMeta{Round: a.Pair.Round, Order: a.Pair.Order}
		}
		match := &models.Match{
			EventID:     event.ID,
			HomeTeamID:  a.Pair.Home.ID,
			AwayTeamID:  a.Pair.Away.ID,
			ScheduledAt: a.StartsAt,
			Meta:        meta,
		}
		if txErr = s.matchRepo.Create(ctx, tx, match); txErr != nil {
			return nil, fmt.Errorf("failed to create match for event %d: %w", event.ID, txErr)
		}
		matches = append(matches, match)
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit schedule for event %d: %w", event.ID, txErr)
	}
	return matches, nil
}

func (s *scheduleService) ScheduleConflicts(ctx context.Context, eventID int) ([]schedule.Conflict, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d: %w", eventID, err)
	}
	matches, err := s.matchRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for event %d: %w", eventID, err)
	}
	return schedule.FindConflicts(playedMatches(matches)), nil
}

func (s *scheduleService) SubmitScores(ctx context.Context, matchID int, input SubmitScoresInput, callerID int) (*models.Match, error) {
	if len(input.Games) == 0 {
		return nil, ErrScoresRequired
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	if match.Meta == nil {
		return nil, ErrMatchStageUnknown
	}

	unlock := s.lockEvent(match.EventID)
	defer unlock()

	event, err := s.eventRepo.GetByID(ctx, match.EventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d: %w", match.EventID, err)
	}
	if err := s.canManage(ctx, event, callerID); err != nil {
		return nil, err
	}

	bestOf := match.Meta.BestOf
	if input.BestOf != nil {
		bestOf = *input.BestOf
	}
	match.Meta.Scores = input.Games
	match.Meta.BestOf = bestOf
	match.Meta.WinnerTeamID = nil
	match.Meta.WinnerTeamName = nil

	winnerID := 0
	switch schedule.ComputeWinner(input.Games, bestOf) {
	case schedule.HomeSide:
		winnerID = match.HomeTeamID
	case schedule.AwaySide:
		winnerID = match.AwayTeamID
	}
	if winnerID != 0 {
		match.Meta.WinnerTeamID = &winnerID
		regs, listErr := s.regRepo.ListEligibleByEvent(ctx, match.EventID)
		if listErr == nil {
			if name, ok := teamNames(regs)[winnerID]; ok {
				match.Meta.WinnerTeamName = &name
			}
		}
	}

	// Groups-stage standings are recomputed from the full match set with the
	// updated match substituted in memory, then written in the same
	// transaction as the score update: the score write is not durable unless
	// the standings write is.
	var snapshot *schedule.GroupSnapshot
	if match.Meta.Stage == schedule.StageGroups && event.GroupSnapshot != nil && len(event.GroupSnapshot.Groups) > 0 {
		all, listErr := s.matchRepo.ListByEvent(ctx, match.EventID)
		if listErr != nil {
			return nil, fmt.Errorf("failed to list matches for standings recompute: %w", listErr)
		}
		played := make([]schedule.PlayedMatch, 0, len(all))
		for _, m := range all {
			if m.ID == match.ID {
				m = match
			}
			played = append(played, m.Played())
		}
		snapshot = &schedule.GroupSnapshot{
			Groups:    event.GroupSnapshot.Groups,
			Standings: schedule.ComputeStandings(event.GroupSnapshot.Groups, played),
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	if txErr = s.matchRepo.Update(ctx, tx, match); txErr != nil {
		return nil, fmt.Errorf("failed to update match %d: %w", matchID, txErr)
	}
	if snapshot != nil {
		if txErr = s.eventRepo.UpdateGroupSnapshot(ctx, tx, match.EventID, snapshot); txErr != nil {
			return nil, fmt.Errorf("failed to update standings for event %d: %w", match.EventID, txErr)
		}
	}
	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit score update for match %d: %w", matchID, txErr)
	}

	s.hub.BroadcastToRoom(realtime.EventRoom(match.EventID), realtime.Message{
		Type:    realtime.TypeMatchUpdated,
		Payload: match,
	})
	if snapshot != nil {
		s.hub.BroadcastToRoom(realtime.EventRoom(match.EventID), realtime.Message{
			Type:    realtime.TypeStandingsUpdated,
			Payload: snapshot.Standings,
		})
	}
	return match, nil
}
