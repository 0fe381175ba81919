package notification

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/pkg/metrics"
)

// Service delivers best-effort emails to doctors on verification outcomes.
// Delivery failures are the caller's to log; they never propagate into the
// state transitions that triggered them.
type Service interface {
	SendVerificationResult(ctx context.Context, event *model.DoctorVerificationEvent) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type service struct {
	dialer  *gomail.Dialer
	from    string
	metrics *metrics.Metrics
}

func NewService(cfg SMTPConfig, m *metrics.Metrics) Service {
	return &service{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		metrics: m,
	}
}

func (s *service) SendVerificationResult(ctx context.Context, event *model.DoctorVerificationEvent) error {
	subject, body := renderVerificationEmail(event)

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", event.Email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	kind := string(event.Status)
	if err := s.dialer.DialAndSend(msg); err != nil {
		if s.metrics != nil {
			s.metrics.NotificationsFailed.WithLabelValues(kind).Inc()
		}
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	if s.metrics != nil {
		s.metrics.NotificationsSent.WithLabelValues(kind).Inc()
	}
	return nil
}

func renderVerificationEmail(event *model.DoctorVerificationEvent) (subject, body string) {
	switch event.Status {
	case model.VerificationApproved:
		subject = "Your profile has been approved"
		body = fmt.Sprintf(
			"Dear Dr. %s,\n\nYour profile has been verified and is now visible in the public directory.\n",
			event.DoctorName,
		)
	case model.VerificationRejected:
		subject = "Your profile verification was unsuccessful"
		body = fmt.Sprintf(
			"Dear Dr. %s,\n\nYour profile could not be verified.\n\nReason: %s\n\nYou may update your details and request a re-review.\n",
			event.DoctorName,
			event.Reason,
		)
	default:
		subject = "Profile verification update"
		body = fmt.Sprintf("Dear Dr. %s,\n\nYour verification status is now %s.\n", event.DoctorName, event.Status)
	}
	return subject, body
}
