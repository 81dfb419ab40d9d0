package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/arenahub/tournament-ops/models"
	"github.com/arenahub/tournament-ops/repositories"
)

type RegistrationService interface {
	RegisterTeam(ctx context.Context, eventID, teamID, callerID int) (*models.Registration, error)
	ListByEvent(ctx context.Context, eventID int, status *models.RegistrationStatus) ([]*models.Registration, error)
	SetStatus(ctx context.Context, registrationID int, status models.RegistrationStatus, callerID int) (*models.Registration, error)
}

type registrationService struct {
	regRepo   repositories.RegistrationRepository
	eventRepo repositories.EventRepository
	teamRepo  repositories.TeamRepository
	userRepo  repositories.UserRepository
}

func NewRegistrationService(
	regRepo repositories.RegistrationRepository,
	eventRepo repositories.EventRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
) RegistrationService {
	return &registrationService{
		regRepo:   regRepo,
		eventRepo: eventRepo,
		teamRepo:  teamRepo,
		userRepo:  userRepo,
	}
}

func (s *registrationService) RegisterTeam(ctx context.Context, eventID, teamID, callerID int) (*models.Registration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d: %w", eventID, err)
	}
	if event.Status != models.EventStatusRegistration && event.Status != models.EventStatusSoon {
		return nil, ErrRegistrationNotOpen
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	if team.CaptainID != callerID {
		return nil, ErrForbiddenOperation
	}

	reg := &models.Registration{
		EventID: eventID,
		TeamID:  teamID,
		Status:  models.RegistrationPending,
	}
	if err := s.regRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, repositories.ErrRegistrationConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, fmt.Errorf("failed to register team %d for event %d: %w", teamID, eventID, err)
	}
	return reg, nil
}

func (s *registrationService) ListByEvent(ctx context.Context, eventID int, status *models.RegistrationStatus) ([]*models.Registration, error) {
	regs, err := s.regRepo.ListByEvent(ctx, eventID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for event %d: %w", eventID, err)
	}
	return regs, nil
}

func (s *registrationService) SetStatus(ctx context.Context, registrationID int, status models.RegistrationStatus, callerID int) (*models.Registration, error) {
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to load registration %d: %w", registrationID, err)
	}

	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %d: %w", reg.EventID, err)
	}
	if event.OrganizerID != callerID {
		caller, userErr := s.userRepo.GetByID(ctx, callerID)
		if userErr != nil || caller.Role != models.RoleAdmin {
			return nil, ErrForbiddenOperation
		}
	}

	if err := s.regRepo.UpdateStatus(ctx, registrationID, status); err != nil {
		return nil, fmt.Errorf("failed to update registration %d status: %w", registrationID, err)
	}
	reg.Status = status
	return reg, nil
}
