// Package email sends transactional mail through Resend. Sending is best
// effort: callers treat failures as log-and-continue, never as request
// failures.
package email

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/mail"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/movigoo/host-server/internal/config"
)

type Service struct {
	config config.EmailConfig
	client *resend.Client
	logger zerolog.Logger
}

func NewService(cfg config.EmailConfig, logger zerolog.Logger) (*Service, error) {
	if cfg.Enabled {
		if err := validateAddress(cfg.From); err != nil {
			return nil, fmt.Errorf("invalid sender address: %w", err)
		}
	}

	s := &Service{
		config: cfg,
		logger: logger.With().Str("component", "email").Logger(),
	}
	if cfg.Enabled {
		s.client = resend.NewClient(cfg.ResendAPIKey)
	}
	return s, nil
}

var kycSubmittedTmpl = template.Must(template.New("kyc_submitted").Parse(`<p>Hi {{.Name}},</p>
<p>We received your identity verification documents. Our team reviews
submissions within two business days; you will hear from us once the
review is complete.</p>
<p>Until verification finishes you can keep editing your events as
drafts.</p>
<p>— The Movigoo team</p>`))

// KycSubmitted acknowledges a KYC submission. When the service is
// disabled it logs and reports success so domain flows never block on
// mail configuration.
func (s *Service) KycSubmitted(ctx context.Context, name, email string) error {
	if err := validateAddress(email); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}

	if !s.config.Enabled {
		s.logger.Info().
			Str("to", email).
			Msg("email service disabled, skipping kyc acknowledgement")
		return nil
	}

	var body strings.Builder
	if err := kycSubmittedTmpl.Execute(&body, struct{ Name string }{Name: name}); err != nil {
		return fmt.Errorf("render kyc acknowledgement: %w", err)
	}

	return s.send(ctx, email, "We received your verification documents", body.String())
}

func (s *Service) send(ctx context.Context, to, subject, htmlBody string) error {
	if s.client == nil {
		return fmt.Errorf("resend client not initialized")
	}

	params := &resend.SendEmailRequest{
		From:    s.config.From,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			s.logger.Warn().
				Str("limit", rateLimitErr.Limit).
				Str("reset", rateLimitErr.Reset).
				Msg("resend rate limit exceeded")
			return fmt.Errorf("email rate limit exceeded: %w", err)
		}
		return fmt.Errorf("resend API error: %w", err)
	}

	s.logger.Info().
		Str("email_id", sent.Id).
		Str("to", to).
		Msg("email sent")
	return nil
}

func validateAddress(address string) error {
	if strings.TrimSpace(address) == "" {
		return fmt.Errorf("address is empty")
	}
	if _, err := mail.ParseAddress(address); err != nil {
		return fmt.Errorf("malformed address %q: %w", address, err)
	}
	return nil
}
