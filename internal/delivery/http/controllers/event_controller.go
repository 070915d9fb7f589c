package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eventplatform/internal/delivery/http/helpers"
	"eventplatform/internal/delivery/http/middleware"
	"eventplatform/internal/domain"
)

// maxmultipartMemory bounds the in-memory portion of multipart parsing;
// larger uploads spill to temp files.
const maxMultipartMemory = 12 << 20

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// EventListSuccessResponse is the success envelope carrying a list of populated events.
type EventListSuccessResponse struct {
	Data  []*domain.EventDetails `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// Search godoc
// @Summary List upcoming events
// @Description Lists upcoming events, optionally filtered by free-text search (title, description, location) and a date range, sorted by date (default), newest, or popularity.
// @Tags events
// @Produce json
// @Param search query string false "Free-text filter"
// @Param start_date query string false "Earliest event date (RFC 3339 or YYYY-MM-DD)"
// @Param end_date query string false "Latest event date (RFC 3339 or YYYY-MM-DD, inclusive of the whole day)"
// @Param sort_by query string false "Sort order: date | newest | popular"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events [get]
func (c *EventController) Search(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}

	events, err := c.Service.Search(r.Context(), filter)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// Get godoc
// @Summary Get one event
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventDetailsSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{eventID} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	details, err := c.Service.Get(r.Context(), eventID)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, details)
}

// Create godoc
// @Summary Create an event
// @Description Creates an event owned by the authenticated user. Accepts multipart/form-data with fields title, description, location, date_time (RFC 3339), capacity, and an optional image file.
// @Tags events
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} controllers.EventDetailsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	in, image, cleanup, err := parseEventForm(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	defer cleanup()

	details, err := c.Service.Create(r.Context(), userID, in, image)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, details)
}

// Update godoc
// @Summary Update an event
// @Description Replaces the writable fields of an event. Only the creator may update. Uploading a new image deletes the previously stored one.
// @Tags events
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventDetailsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{eventID} [put]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	in, image, cleanup, err := parseEventForm(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	defer cleanup()

	details, err := c.Service.Update(r.Context(), eventID, userID, in, image)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, details)
}

// Delete godoc
// @Summary Delete an event
// @Description Deletes an event and its stored image. Only the creator may delete. Attendee records are removed with the event.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{eventID} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.Delete(r.Context(), eventID, userID); err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "event deleted successfully"})
}

// MyEvents godoc
// @Summary List events created by the current user
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/my-events [get]
func (c *EventController) MyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	events, err := c.Service.ListByCreator(r.Context(), userID)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// MyRSVPs godoc
// @Summary List events the current user has RSVPed to
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/my-rsvps [get]
func (c *EventController) MyRSVPs(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	events, err := c.Service.ListByAttendee(r.Context(), userID)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

func (c *EventController) writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not authorized to modify this event")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

func parseEventFilter(r *http.Request) (domain.EventFilter, error) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Text: strings.TrimSpace(q.Get("search")),
		Sort: domain.SortByDate,
	}

	switch sortBy := q.Get("sort_by"); sortBy {
	case "", "date":
	case "newest":
		filter.Sort = domain.SortByNewest
	case "popular":
		filter.Sort = domain.SortByPopularity
	default:
		return filter, fmt.Errorf("sort_by must be one of date, newest, popular")
	}

	if s := q.Get("start_date"); s != "" {
		from, err := parseDateParam(s)
		if err != nil {
			return filter, fmt.Errorf("invalid start_date: %v", err)
		}
		filter.DateFrom = &from
	}
	if s := q.Get("end_date"); s != "" {
		to, err := parseDateParam(s)
		if err != nil {
			return filter, fmt.Errorf("invalid end_date: %v", err)
		}
		// Make the end date inclusive of the whole day.
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &to
	}
	return filter, nil
}

func parseDateParam(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// parseEventForm reads the multipart form of a create/update request. The
// returned cleanup func releases multipart temp files and must always be called.
func parseEventForm(r *http.Request) (domain.EventInput, *domain.ImageUpload, func(), error) {
	var in domain.EventInput
	cleanup := func() {}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return in, nil, cleanup, fmt.Errorf("invalid multipart form: %v", err)
	}
	cleanup = func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	in.Title = r.FormValue("title")
	in.Description = r.FormValue("description")
	in.Location = r.FormValue("location")

	if s := r.FormValue("date_time"); s != "" {
		dt, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return in, nil, cleanup, fmt.Errorf("date_time must be RFC 3339")
		}
		in.DateTime = dt
	}
	if s := r.FormValue("capacity"); s != "" {
		capacity, err := strconv.Atoi(s)
		if err != nil {
			return in, nil, cleanup, fmt.Errorf("capacity must be an integer")
		}
		in.Capacity = capacity
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return in, nil, cleanup, nil
		}
		return in, nil, cleanup, fmt.Errorf("invalid image upload: %v", err)
	}
	image := &domain.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
	}
	prev := cleanup
	cleanup = func() {
		_ = file.Close()
		prev()
	}
	return in, image, cleanup, nil
}
