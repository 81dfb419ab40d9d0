package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/arenahub/tournament-ops/models"
	"github.com/arenahub/tournament-ops/repositories"
	"github.com/arenahub/tournament-ops/schedule"
	"github.com/arenahub/tournament-ops/storage"
)

type EventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput, callerID int) (*models.Event, error)
	GetEventByID(ctx context.Context, id int) (*models.Event, error)
	ListEvents(ctx context.Context) ([]*models.Event, error)
	UpdateTournamentConfig(ctx context.Context, eventID int, cfg *schedule.TournamentConfig, callerID int) (*models.Event, error)
	UploadBanner(ctx context.Context, eventID int, contentType string, banner io.Reader, callerID int) (*models.Event, error)
}

type CreateEventInput struct {
	Name        string                     `json:"name"`
	Description *string                    `json:"description,omitempty"`
	StartDate   time.Time                  `json:"start_date"`
	EndDate     time.Time                  `json:"end_date"`
	Location    *string                    `json:"location,omitempty"`
	Config      *schedule.TournamentConfig `json:"tournament_config,omitempty"`
}

type eventService struct {
	eventRepo repositories.EventRepository
	userRepo  repositories.UserRepository
	matchRepo repositories.MatchRepository
	uploader  storage.FileUploader
}

func NewEventService(
	eventRepo repositories.EventRepository,
	userRepo repositories.UserRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
) EventService {
	return &eventService{
		eventRepo: eventRepo,
		userRepo:  userRepo,
		matchRepo: matchRepo,
		uploader:  uploader,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, input CreateEventInput, callerID int) (*models.Event, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEventNameRequired
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, ErrEventDatesRequired
	}
	if !input.StartDate.Before(input.EndDate) {
		return nil, fmt.Errorf("%w: start %s, end %s", ErrEventInvalidDateRange,
			input.StartDate.Format(time.RFC3339), input.EndDate.Format(time.RFC3339))
	}
	if input.Config != nil && input.Config.Format != "" {
		if _, err := schedule.ParseStage(input.Config.Format); err != nil {
			return nil, err
		}
	}

	event := &models.Event{
		Name:             name,
		Description:      input.Description,
		OrganizerID:      callerID,
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
		Location:         input.Location,
		Status:           models.EventStatusSoon,
		TournamentConfig: input.Config,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event by id %d: %w", id, err)
	}
	count, err := s.matchRepo.CountByEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches for event %d: %w", id, err)
	}
	event.MatchCount = count
	s.populateBannerURL(event)
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]*models.Event, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	for _, event := range events {
		s.populateBannerURL(event)
	}
	return events, nil
}

func (s *eventService) UpdateTournamentConfig(ctx context.Context, eventID int, cfg *schedule.TournamentConfig, callerID int) (*models.Event, error) {
	event, err := s.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != callerID {
		if err := s.requireAdmin(ctx, callerID); err != nil {
			return nil, err
		}
	}
	if cfg != nil && cfg.Format != "" {
		if _, err := schedule.ParseStage(cfg.Format); err != nil {
			return nil, err
		}
	}
	if err := s.eventRepo.UpdateTournamentConfig(ctx, eventID, cfg); err != nil {
		return nil, fmt.Errorf("failed to update tournament config for event %d: %w", eventID, err)
	}
	event.TournamentConfig = cfg
	return event, nil
}

func (s *eventService) UploadBanner(ctx context.Context, eventID int, contentType string, banner io.Reader, callerID int) (*models.Event, error) {
	event, err := s.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != callerID {
		if err := s.requireAdmin(ctx, callerID); err != nil {
			return nil, err
		}
	}

	key := fmt.Sprintf("events/%d/banner", eventID)
	result, err := s.uploader.Upload(ctx, key, contentType, banner)
	if err != nil {
		return nil, fmt.Errorf("failed to upload banner for event %d: %w", eventID, err)
	}
	if err := s.eventRepo.UpdateBannerKey(ctx, eventID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store banner key for event %d: %w", eventID, err)
	}
	event.BannerKey = &result.Key
	s.populateBannerURL(event)
	return event, nil
}

func (s *eventService) requireAdmin(ctx context.Context, callerID int) error {
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

func (s *eventService) populateBannerURL(event *models.Event) {
	if event.BannerKey == nil || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*event.BannerKey)
	if url != "" {
		event.BannerURL = &url
	}
}
