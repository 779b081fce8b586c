package mailer

import (
	"fmt"
	"html"
	"time"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendReminder(toEmail, title string, dueAt time.Time) error
	Enabled() bool
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer      sender
	senderEmail string
	senderName  string
}

// NewEmailService returns a gomail backed sender. An empty host yields a
// disabled service whose SendReminder is a no-op.
func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	s := &emailService{
		senderEmail: senderEmail,
		senderName:  senderName,
	}
	if host != "" {
		s.dialer = gomail.NewDialer(host, port, username, password)
	}
	return s
}

func (s *emailService) Enabled() bool {
	return s.dialer != nil
}

func (s *emailService) SendReminder(toEmail, title string, dueAt time.Time) error {
	if !s.Enabled() {
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Reminder: "+title)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s</h2>
			<p>This is your reminder, due %s.</p>
		</div>
	`, html.EscapeString(title), dueAt.UTC().Format("Monday, January 2 at 3:04 PM MST"))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send reminder to %s: %w", toEmail, err)
	}
	return nil
}
