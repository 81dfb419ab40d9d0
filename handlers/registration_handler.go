package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/arenahub/tournament-ops/middleware"
	"github.com/arenahub/tournament-ops/models"
	"github.com/arenahub/tournament-ops/services"
	"github.com/go-chi/chi/v5"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
}

func NewRegistrationHandler(registrationService services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

func (h *RegistrationHandler) RegisterTeam(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	eventID, err := strconv.Atoi(chi.URLParam(r, "eventID"))
	if err != nil || eventID <= 0 {
		badRequestResponse(w, r, errors.New("invalid event ID"))
		return
	}

	var input struct {
		TeamID int `json:"team_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.TeamID <= 0 {
		badRequestResponse(w, r, errors.New("team_id is required"))
		return
	}

	reg, err := h.registrationService.RegisterTeam(r.Context(), eventID, input.TeamID, callerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"registration": reg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RegistrationHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.Atoi(chi.URLParam(r, "eventID"))
	if err != nil || eventID <= 0 {
		badRequestResponse(w, r, errors.New("invalid event ID"))
		return
	}

	var status *models.RegistrationStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed := models.RegistrationStatus(raw)
		switch parsed {
		case models.RegistrationPending, models.RegistrationApproved,
			models.RegistrationConfirmed, models.RegistrationRejected:
			status = &parsed
		default:
			badRequestResponse(w, r, fmt.Errorf("invalid registration status: %q", raw))
			return
		}
	}

	regs, err := h.registrationService.ListByEvent(r.Context(), eventID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"registrations": regs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RegistrationHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	registrationID, err := strconv.Atoi(chi.URLParam(r, "registrationID"))
	if err != nil || registrationID <= 0 {
		badRequestResponse(w, r, errors.New("invalid registration ID"))
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	status := models.RegistrationStatus(input.Status)
	switch status {
	case models.RegistrationApproved, models.RegistrationConfirmed, models.RegistrationRejected:
	default:
		badRequestResponse(w, r, fmt.Errorf("invalid registration status: %q", input.Status))
		return
	}

	reg, err := h.registrationService.SetStatus(r.Context(), registrationID, status, callerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"registration": reg}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
