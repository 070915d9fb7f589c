package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventplatform/internal/delivery/http/controllers"
	"eventplatform/internal/delivery/http/middleware"
	"eventplatform/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	rsvpController *controllers.RSVPController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /api/auth/signup", authController.SignUp)
	mux.HandleFunc("POST /api/auth/login", authController.Login)
	mux.HandleFunc("GET /api/auth/me", auth(authController.Me))

	// Events. The literal my-events/my-rsvps patterns take precedence over
	// the {eventID} wildcard.
	mux.HandleFunc("GET /api/events", eventController.Search)
	mux.HandleFunc("GET /api/events/my-events", auth(eventController.MyEvents))
	mux.HandleFunc("GET /api/events/my-rsvps", auth(eventController.MyRSVPs))
	mux.HandleFunc("GET /api/events/{eventID}", eventController.Get)
	mux.HandleFunc("POST /api/events", auth(eventController.Create))
	mux.HandleFunc("PUT /api/events/{eventID}", auth(eventController.Update))
	mux.HandleFunc("DELETE /api/events/{eventID}", auth(eventController.Delete))

	// RSVP
	mux.HandleFunc("POST /api/rsvp/{eventID}/join", auth(rsvpController.Join))
	mux.HandleFunc("POST /api/rsvp/{eventID}/leave", auth(rsvpController.Leave))
	mux.HandleFunc("GET /api/rsvp/{eventID}/status", auth(rsvpController.Status))

	// Health
	mux.HandleFunc("GET /api/health", controllers.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
