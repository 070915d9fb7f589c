package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"eventplatform/internal/delivery/http/helpers"
	"eventplatform/internal/delivery/http/middleware"
	"eventplatform/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{
		Logger:  logger,
		Service: svc,
	}
}

// EventDetailsSuccessResponse is the success envelope carrying a populated event.
type EventDetailsSuccessResponse struct {
	Data  *domain.EventDetails `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// RSVPStatusSuccessResponse is the success envelope for GET /api/rsvp/{eventID}/status.
type RSVPStatusSuccessResponse struct {
	Data  *domain.RSVPStatus `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// Join godoc
// @Summary RSVP to an event
// @Description Adds the authenticated user to the event's attendee set. Rejected with a distinct error code when the event is missing, already past, already joined, or at capacity. Not idempotent: joining twice returns already_joined.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventDetailsSuccessResponse "Updated event with attendees"
// @Failure 400 {object} helpers.APIResponse "error.code: already_joined | event_full | event_closed | bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/rsvp/{eventID}/join [post]
func (c *RSVPController) Join(w http.ResponseWriter, r *http.Request) {
	eventID, userID, ok := c.eventAndUser(w, r)
	if !ok {
		return
	}

	details, err := c.Service.Join(r.Context(), eventID, userID)
	if err != nil {
		c.writeRSVPError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, details)
}

// Leave godoc
// @Summary Withdraw an RSVP
// @Description Removes the authenticated user from the event's attendee set.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventDetailsSuccessResponse "Updated event with attendees"
// @Failure 400 {object} helpers.APIResponse "error.code: not_joined | bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/rsvp/{eventID}/leave [post]
func (c *RSVPController) Leave(w http.ResponseWriter, r *http.Request) {
	eventID, userID, ok := c.eventAndUser(w, r)
	if !ok {
		return
	}

	details, err := c.Service.Leave(r.Context(), eventID, userID)
	if err != nil {
		c.writeRSVPError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, details)
}

// Status godoc
// @Summary Get RSVP status for an event
// @Description Returns whether the authenticated user is attending, the attendee count, spots remaining, and whether the event is full. Read-only.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.RSVPStatusSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/rsvp/{eventID}/status [get]
func (c *RSVPController) Status(w http.ResponseWriter, r *http.Request) {
	eventID, userID, ok := c.eventAndUser(w, r)
	if !ok {
		return
	}

	status, err := c.Service.Status(r.Context(), eventID, userID)
	if err != nil {
		c.writeRSVPError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, status)
}

func (c *RSVPController) eventAndUser(w http.ResponseWriter, r *http.Request) (eventID, userID string, ok bool) {
	eventID = r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return "", "", false
	}
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return "", "", false
	}
	userID, authed := middleware.UserIDFromContext(r.Context())
	if !authed {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", "", false
	}
	return eventID, userID, true
}

func (c *RSVPController) writeRSVPError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrEventClosed):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeEventClosed, "cannot RSVP to past events")
	case errors.Is(err, domain.ErrEventFull):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeEventFull, "event is at full capacity")
	case errors.Is(err, domain.ErrAlreadyJoined):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeAlreadyJoined, "you have already RSVPed to this event")
	case errors.Is(err, domain.ErrNotJoined):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeNotJoined, "you are not RSVPed to this event")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
