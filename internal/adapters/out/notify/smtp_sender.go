package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// SMTPConfig holds the mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether enough is configured to send real mail.
func (c SMTPConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != "" && strings.TrimSpace(c.From) != ""
}

// Validate checks the settings required to dial the server.
func (c SMTPConfig) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if strings.ContainsAny(c.Host, "\r\n\t") {
		return fmt.Errorf("invalid SMTP host")
	}
	if c.Port <= 0 {
		return fmt.Errorf("SMTP port is required")
	}
	if strings.TrimSpace(c.From) == "" {
		return fmt.Errorf("SMTP from address is required")
	}
	return nil
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers e-mail through an SMTP server. STARTTLS is negotiated when the
// server offers it.
type SMTPSender struct {
	config   SMTPConfig
	auth     smtp.Auth
	sendMail sendMailFunc
}

// NewSMTPSender creates a sender for config.
func NewSMTPSender(config SMTPConfig) (*SMTPSender, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	return &SMTPSender{
		config:   config,
		auth:     auth,
		sendMail: smtp.SendMail,
	}, nil
}

// Send writes msg as a plain-text e-mail.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return ErrRecipientRequired
	}
	if strings.ContainsAny(to, "\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidRecipient, to)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	if err := s.sendMail(addr, s.auth, s.config.From, []string{to}, s.render(to, msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func (s *SMTPSender) render(to string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + s.config.From + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}
