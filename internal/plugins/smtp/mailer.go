package smtp

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/tanushree1025/DESIGN-THEETA/internal/config"
)

type Mailer struct {
	addr string
	from string
	auth smtp.Auth
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &Mailer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from: from,
		auth: smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host),
	}
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Password Reset\r\n")
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&b, "You requested a password reset. Open the link below within 15 minutes:\r\n\r\n%s\r\n\r\nIf you did not request this, ignore this email.\r\n", link)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}
