package mail

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"os"
	"strconv"

	gomail "gopkg.in/gomail.v2"

	"github.com/courtbook/courtbook/logger"
	"github.com/courtbook/courtbook/models/booking_models"
)

// Mailer sends transactional email over SMTP. A nil Mailer disables email
// sending, which is the local-development default.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewMailerFromEnv builds a Mailer from SMTP_* env vars. Returns nil when
// SMTP_HOST is unset so callers can treat email as optional.
func NewMailerFromEnv() *Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		logger.InfoLogger.Info("SMTP_HOST not set, email sending disabled")
		return nil
	}

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		logger.ErrorLogger.Errorf("Invalid SMTP port, email sending disabled: %v", err)
		return nil
	}

	return &Mailer{
		host:     host,
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("FROM_EMAIL"),
	}
}

var confirmationTemplate = template.Must(template.New("booking_confirmation").Parse(`
<html>
<body>
  <h2>Booking Confirmed</h2>
  <p>Hi {{.UserName}},</p>
  <p>Your booking at <strong>{{.VenueName}}</strong> ({{.CourtName}}) is confirmed.</p>
  <ul>
    <li>Date: {{.StartTime.Format "Monday, 02 Jan 2006"}}</li>
    <li>Time: {{.StartTime.Format "15:04"}} - {{.EndTime.Format "15:04"}}</li>
    <li>Amount paid: {{printf "%.2f" .TotalPrice}}</li>
    {{if .InvoiceNumber}}<li>Invoice: {{.InvoiceNumber}}</li>{{end}}
  </ul>
  <p>See you on court!</p>
</body>
</html>`))

// SendBookingConfirmation emails the customer their confirmed booking.
// Callers invoke this after commit; a send failure never rolls anything back.
func (m *Mailer) SendBookingConfirmation(d *booking_models.BookingDetail) error {
	if m == nil {
		return nil
	}

	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, d); err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", d.UserEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Booking confirmed: %s on %s",
		d.CourtName, d.StartTime.Format("02 Jan 2006")))
	msg.SetBody("text/html", body.String())

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	dialer.TLSConfig = &tls.Config{ServerName: m.host}

	if err := dialer.DialAndSend(msg); err != nil {
		logger.ErrorLogger.Errorf("Failed to send confirmation email to %s: %v", d.UserEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.InfoLogger.Infof("Confirmation email sent to %s for booking %s", d.UserEmail, d.ID)
	return nil
}
