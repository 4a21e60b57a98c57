package service

import (
	"context"
	"fmt"
	"html"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"

	"rentshare-backend/internal/booking"
	"rentshare-backend/internal/config"
	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/pricing"
)

// mailSender delivers one message with a plain text and an HTML part.
type mailSender interface {
	Send(ctx context.Context, to, toName, subject, plainText, htmlContent string) error
}

type sendGridSender struct {
	apiKey    string
	fromEmail string
	fromName  string
	baseURL   string
}

func (s *sendGridSender) Send(ctx context.Context, to, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail(toName, to), plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	if s.baseURL != "" {
		client.BaseURL = s.baseURL
	}

	logger.ExternalServiceCall("sendgrid", "send", "to", to, "subject", subject)
	response, err := client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type smtpSender struct {
	dialer    *gomail.Dialer
	fromEmail string
	fromName  string
}

func (s *smtpSender) message(to, toName, subject, plainText, htmlContent string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.fromEmail, s.fromName)
	m.SetAddressHeader("To", to, toName)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainText)
	m.AddAlternative("text/html", htmlContent)
	return m
}

func (s *smtpSender) Send(ctx context.Context, to, toName, subject, plainText, htmlContent string) error {
	logger.ExternalServiceCall("smtp", "send", "to", to, "subject", subject)
	err := s.dialer.DialAndSend(s.message(to, toName, subject, plainText, htmlContent))
	logger.ExternalServiceResult("smtp", "send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

type emailService struct {
	sender mailSender
}

// NewEmailService picks the delivery provider from cfg.
func NewEmailService(cfg config.EmailConfig) EmailService {
	if cfg.Provider == "smtp" {
		return &emailService{sender: &smtpSender{
			dialer:    gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
			fromEmail: cfg.FromEmail,
			fromName:  cfg.FromName,
		}}
	}
	return &emailService{sender: &sendGridSender{
		apiKey:    cfg.SendGridAPIKey,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}}
}

func (s *emailService) SendBookingRequestNotification(ctx context.Context, ownerEmail, ownerName, renterName, listingTitle string, b *domain.Booking) error {
	subject := fmt.Sprintf("New booking: %s", listingTitle)
	plain := fmt.Sprintf("Hello %s,\n\n%s booked your %s from %s to %s.\nYou will receive %s once the rental is paid.\n\nThe RentShare Team",
		ownerName, renterName, listingTitle, booking.FormatLongDate(b.StartDate), booking.FormatLongDate(b.EndDate), pricing.FormatAmount(b.OwnerReceives))
	body := fmt.Sprintf("<p><strong>%s</strong> booked your <strong>%s</strong> from %s to %s.</p><p>You will receive %s once the rental is paid.</p>",
		html.EscapeString(renterName), html.EscapeString(listingTitle), booking.FormatLongDate(b.StartDate), booking.FormatLongDate(b.EndDate), pricing.FormatAmount(b.OwnerReceives))
	return s.sender.Send(ctx, ownerEmail, ownerName, subject, plain, htmlPage("New Booking", body))
}

func (s *emailService) SendPickupReminder(ctx context.Context, renterEmail, renterName, listingTitle string, b *domain.Booking) error {
	subject := fmt.Sprintf("Pickup tomorrow: %s", listingTitle)
	plain := fmt.Sprintf("Hello %s,\n\nYour pickup window for %s opens on %s.\n\nThe RentShare Team",
		renterName, listingTitle, booking.FormatLongDate(b.StartDate))
	body := fmt.Sprintf("<p>Your pickup window for <strong>%s</strong> opens on %s.</p>",
		html.EscapeString(listingTitle), booking.FormatLongDate(b.StartDate))
	return s.sender.Send(ctx, renterEmail, renterName, subject, plain, htmlPage("Pickup Reminder", body))
}

func (s *emailService) SendReturnReminder(ctx context.Context, renterEmail, renterName, listingTitle string, b *domain.Booking) error {
	subject := fmt.Sprintf("Return due: %s", listingTitle)
	plain := fmt.Sprintf("Hello %s,\n\nPlease return %s by %s.\n\nThe RentShare Team",
		renterName, listingTitle, booking.FormatLongDate(b.EndDate))
	body := fmt.Sprintf("<p>Please return <strong>%s</strong> by %s.</p>",
		html.EscapeString(listingTitle), booking.FormatLongDate(b.EndDate))
	return s.sender.Send(ctx, renterEmail, renterName, subject, plain, htmlPage("Return Reminder", body))
}

func (s *emailService) SendBookingCancelledNotification(ctx context.Context, email, name, listingTitle, reason string, b *domain.Booking) error {
	subject := fmt.Sprintf("Booking cancelled: %s", listingTitle)
	plain := fmt.Sprintf("Hello %s,\n\nThe booking #%d for %s was cancelled because %s.", name, b.ID, listingTitle, reason)
	if b.PointsRedeemed > 0 {
		plain += fmt.Sprintf("\n%d redeemed points were returned to the renter.", b.PointsRedeemed)
	}
	plain += "\n\nThe RentShare Team"
	body := fmt.Sprintf("<p>The booking #%d for <strong>%s</strong> was cancelled because %s.</p>",
		b.ID, html.EscapeString(listingTitle), html.EscapeString(reason))
	return s.sender.Send(ctx, email, name, subject, plain, htmlPage("Booking Cancelled", body))
}

func htmlPage(heading, body string) string {
	return fmt.Sprintf("<html><body><h2>%s</h2>%s<p>The RentShare Team</p></body></html>", heading, body)
}
