// Package notify sends the library's outbound email: reservation-ready
// notices and overdue reminders. Callers treat sends as fire-and-forget.
package notify

import (
	"errors"
	"fmt"
	"net/smtp"
	"time"
)

// ErrNoCredentials is returned when the mailer has no account configured.
// The caller logs it and moves on; mail is never allowed to block a workflow.
var ErrNoCredentials = errors.New("smtp credentials not configured")

// Config holds the SMTP account. Empty From or Password disables sending.
type Config struct {
	Host     string
	Port     int
	From     string
	Password string
}

// Mailer sends plain-text mail over SMTP with STARTTLS-capable auth.
type Mailer struct {
	cfg Config
}

func NewMailer(cfg Config) *Mailer {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Mailer{cfg: cfg}
}

// Enabled reports whether the mailer has an account to send from.
func (m *Mailer) Enabled() bool {
	return m.cfg.From != "" && m.cfg.Password != ""
}

// ReservationReady tells a student their reserved book is waiting at the
// front desk.
func (m *Mailer) ReservationReady(email, studentName, bookTitle string) error {
	subject := "Your Reserved Book is Ready for Pickup"
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"The book you reserved is now available:\n"+
			"%s\n\n"+
			"Please claim it at the library front desk within %d days.\n\n"+
			"Thank you!",
		studentName, bookTitle, 7)
	return m.send(email, subject, body)
}

// OverdueReminder nudges a student about a loan past its due date.
func (m *Mailer) OverdueReminder(email, studentName, bookTitle string, dueDate time.Time) error {
	subject := "Book Return Reminder"
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"This is a reminder that the book:\n"+
			"%s\n\n"+
			"was due on: %s\n\n"+
			"Please return it as soon as possible to avoid further penalties.\n\n"+
			"Thank you!",
		studentName, bookTitle, dueDate.Format("2006-01-02"))
	return m.send(email, subject, body)
}

func (m *Mailer) send(to, subject, body string) error {
	if !m.Enabled() {
		return ErrNoCredentials
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		m.cfg.From, to, subject, body))

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
