package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"propostas/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending emails with PDF attachments.
// Every send goes through the circuit breaker so a dead relay fails fast.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	cb       *CircuitBreaker
	send     func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewMailer(cfg *config.Config, cb *CircuitBreaker) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		cb:       cb,
		send:     func(e *email.Email, addr string, auth smtp.Auth) error { return e.Send(addr, auth) },
	}
}

// Configurado reports whether an SMTP host is set.
func (m *Mailer) Configurado() bool { return m.host != "" }

// SendProposta mails a rendered proposal as attachment.
func (m *Mailer) SendProposta(to, subject, body, nomeArquivo string, pdf []byte) error {
	if !m.Configurado() {
		return fmt.Errorf("mailer: SMTP_HOST not configured")
	}
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)
	if len(pdf) > 0 {
		if _, err := e.Attach(bytes.NewReader(pdf), nomeArquivo, "application/pdf"); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return m.cb.Execute(func() error { return m.send(e, m.addr, auth) })
}
