package services

import (
	"context"
	"testing"
	"time"

	"github.com/arenahub/tournament-ops/models"
	"github.com/arenahub/tournament-ops/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEventByIDIncludesMatchCount(t *testing.T) {
	f := newFixture(t, 4)

	generated, err := f.svc.GenerateSchedule(context.Background(), 1, GenerateScheduleInput{Stage: "single_elim"}, organizerID)
	require.NoError(t, err)
	require.Len(t, generated, 2)

	evSvc := NewEventService(f.eventRepo, &fakeUserRepo{users: map[int]*models.User{}}, f.matchRepo, nil)

	event, err := evSvc.GetEventByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, event.MatchCount)
}

func TestGetEventByIDNotFound(t *testing.T) {
	f := newFixture(t, 0)
	evSvc := NewEventService(f.eventRepo, &fakeUserRepo{users: map[int]*models.User{}}, f.matchRepo, nil)

	_, err := evSvc.GetEventByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestCreateEventValidation(t *testing.T) {
	f := newFixture(t, 0)
	evSvc := NewEventService(f.eventRepo, &fakeUserRepo{users: map[int]*models.User{}}, f.matchRepo, nil)

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	_, err := evSvc.CreateEvent(context.Background(), CreateEventInput{StartDate: start, EndDate: end}, organizerID)
	assert.ErrorIs(t, err, ErrEventNameRequired)

	_, err = evSvc.CreateEvent(context.Background(), CreateEventInput{Name: "Cup"}, organizerID)
	assert.ErrorIs(t, err, ErrEventDatesRequired)

	_, err = evSvc.CreateEvent(context.Background(), CreateEventInput{Name: "Cup", StartDate: end, EndDate: start}, organizerID)
	assert.ErrorIs(t, err, ErrEventInvalidDateRange)

	_, err = evSvc.CreateEvent(context.Background(), CreateEventInput{
		Name:      "Cup",
		StartDate: start,
		EndDate:   end,
		Config:    &schedule.TournamentConfig{Format: "round_robin"},
	}, organizerID)
	assert.ErrorIs(t, err, schedule.ErrUnknownStage)

	event, err := evSvc.CreateEvent(context.Background(), CreateEventInput{
		Name:      "Cup",
		StartDate: start,
		EndDate:   end,
		Config:    &schedule.TournamentConfig{Format: "se"},
	}, organizerID)
	require.NoError(t, err)
	assert.Equal(t, organizerID, event.OrganizerID)
	assert.Equal(t, models.EventStatusSoon, event.Status)
}
