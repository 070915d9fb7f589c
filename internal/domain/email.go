package domain

import (
	"context"
	"time"
)

// Mailer sends a single email message.
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders a named template into subject, html, and text bodies.
type EmailTemplateRenderer interface {
	Render(templateName string, data interface{}) (subject, htmlBody, textBody string, err error)
}

// RSVPConfirmationEmailData is the data for the rsvp_confirmation template.
type RSVPConfirmationEmailData struct {
	Email         string
	Name          string
	EventTitle    string
	EventLocation string
	EventTime     time.Time
	SpotsLeft     int
}

// EmailService defines the transactional emails the platform sends.
type EmailService interface {
	SendRSVPConfirmation(ctx context.Context, data *RSVPConfirmationEmailData) error
}
