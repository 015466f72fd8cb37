package services

import (
	"context"
	"fmt"
	"net/smtp"

	"bidquotes/internal/config"
	"bidquotes/pkg/logger"
)

// EmailService sends transactional notifications. Every send is best effort:
// callers log failures and carry on, a lost email never fails the operation
// that triggered it.
type EmailService interface {
	SendBidReceived(ctx context.Context, to, jobTitle string) error
	SendBidSelected(ctx context.Context, to, jobTitle string) error
	SendBidConfirmed(ctx context.Context, to, jobTitle string) error
	SendBidDeclined(ctx context.Context, to, jobTitle string) error
	SendCreditsPurchased(ctx context.Context, to string, credits, balance int) error
}

type smtpEmailService struct {
	config *config.SMTPConfig
	logger *logger.Logger
}

func NewSMTPEmailService(config *config.SMTPConfig, logger *logger.Logger) EmailService {
	return &smtpEmailService{
		config: config,
		logger: logger,
	}
}

func (s *smtpEmailService) SendBidReceived(ctx context.Context, to, jobTitle string) error {
	subject := fmt.Sprintf("New bid on your job: %s", jobTitle)
	body := fmt.Sprintf("<p>Your job <strong>%s</strong> received a new bid. Sign in to review it.</p>", jobTitle)
	return s.send(to, subject, body)
}

func (s *smtpEmailService) SendBidSelected(ctx context.Context, to, jobTitle string) error {
	subject := fmt.Sprintf("Your bid was selected: %s", jobTitle)
	body := fmt.Sprintf("<p>The buyer selected your bid on <strong>%s</strong>. Sign in to confirm or decline.</p>", jobTitle)
	return s.send(to, subject, body)
}

func (s *smtpEmailService) SendBidConfirmed(ctx context.Context, to, jobTitle string) error {
	subject := fmt.Sprintf("Bid confirmed: %s", jobTitle)
	body := fmt.Sprintf("<p>The contractor confirmed the selected bid on <strong>%s</strong>. Contact details are now shared.</p>", jobTitle)
	return s.send(to, subject, body)
}

func (s *smtpEmailService) SendBidDeclined(ctx context.Context, to, jobTitle string) error {
	subject := fmt.Sprintf("Bid declined: %s", jobTitle)
	body := fmt.Sprintf("<p>The contractor declined the selected bid on <strong>%s</strong>. You can select another bid.</p>", jobTitle)
	return s.send(to, subject, body)
}

func (s *smtpEmailService) SendCreditsPurchased(ctx context.Context, to string, credits, balance int) error {
	subject := "Bid credits added to your account"
	body := fmt.Sprintf("<p>%d bid credits were added to your account. Your balance is now %d.</p>", credits, balance)
	return s.send(to, subject, body)
}

func (s *smtpEmailService) send(to, subject, body string) error {
	if !s.config.Enabled {
		s.logger.WithField("to", to).Debug("Email sending disabled, skipping")
		return nil
	}
	if to == "" {
		return fmt.Errorf("empty recipient")
	}

	var auth smtp.Auth
	if s.config.Username != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	from := fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", from, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.WithField("to", to).WithField("subject", subject).Debug("Email sent")
	return nil
}
