// Package email sends the mail service's notifications via the Resend API.
package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/mail"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/photo-prestiges/server/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// Service handles email sending.
type Service struct {
	config       config.EmailConfig
	templates    *template.Template
	resendClient *resend.Client
	logger       zerolog.Logger
}

// RegistrationData holds data for rendering the registration confirmation email.
type RegistrationData struct {
	Username    string
	CurrentYear int
}

// ScoreData holds data for rendering the contest score email.
type ScoreData struct {
	Username     string
	ContestPlace string
	Score        float64
	CurrentYear  int
}

// NewService creates a new email service instance.
func NewService(cfg config.EmailConfig, logger zerolog.Logger) (*Service, error) {
	if cfg.Enabled {
		if err := validateEmailAddress(cfg.From); err != nil {
			return nil, fmt.Errorf("invalid sender email in config: %w", err)
		}
	}

	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	svc := &Service{
		config:    cfg,
		templates: templates,
		logger:    logger.With().Str("component", "email").Logger(),
	}
	if cfg.Enabled {
		svc.resendClient = resend.NewClient(cfg.ResendAPIKey)
	}
	return svc, nil
}

// SendRegistrationConfirmation welcomes a newly registered user.
func (s *Service) SendRegistrationConfirmation(ctx context.Context, to, username string) error {
	if err := validateEmailAddress(to); err != nil {
		return fmt.Errorf("invalid recipient email: %w", err)
	}

	if !s.config.Enabled {
		s.logger.Info().
			Str("to", to).
			Str("username", username).
			Msg("email service disabled, skipping registration email")
		return nil
	}

	data := RegistrationData{
		Username:    username,
		CurrentYear: time.Now().Year(),
	}
	htmlBody, err := s.renderTemplate("registration.html", data)
	if err != nil {
		return fmt.Errorf("failed to render registration template: %w", err)
	}

	subject := "Welcome to Photo Prestiges"
	if err := s.sendViaResend(ctx, to, subject, htmlBody); err != nil {
		return fmt.Errorf("failed to send registration email: %w", err)
	}

	s.logger.Info().
		Str("to", to).
		Str("username", username).
		Msg("registration email sent")
	return nil
}

// SendScoreNotification tells a participant the score their submission earned.
func (s *Service) SendScoreNotification(ctx context.Context, to, username, contestPlace string, score float64) error {
	if err := validateEmailAddress(to); err != nil {
		return fmt.Errorf("invalid recipient email: %w", err)
	}

	if !s.config.Enabled {
		s.logger.Info().
			Str("to", to).
			Str("contest_place", contestPlace).
			Float64("score", score).
			Msg("email service disabled, skipping score email")
		return nil
	}

	data := ScoreData{
		Username:     username,
		ContestPlace: contestPlace,
		Score:        score,
		CurrentYear:  time.Now().Year(),
	}
	htmlBody, err := s.renderTemplate("score.html", data)
	if err != nil {
		return fmt.Errorf("failed to render score template: %w", err)
	}

	subject := fmt.Sprintf("Your score for the contest at %s", contestPlace)
	if err := s.sendViaResend(ctx, to, subject, htmlBody); err != nil {
		return fmt.Errorf("failed to send score email: %w", err)
	}

	s.logger.Info().
		Str("to", to).
		Str("contest_place", contestPlace).
		Msg("score email sent")
	return nil
}

// validateEmailAddress validates an email address for format and header injection attempts.
func validateEmailAddress(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	if strings.ContainsAny(addr.Address, "\r\n") {
		return fmt.Errorf("invalid email address: contains newline characters")
	}
	return nil
}

// renderTemplate renders an email template with the given data.
func (s *Service) renderTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
