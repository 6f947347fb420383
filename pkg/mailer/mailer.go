package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/sanadchat/sanad/pkg/config"
	"gopkg.in/gomail.v2"
)

// Mailer sends HTML email over SMTP. Sends are bounded by a timeout so a
// slow mail server cannot stall the calling request.
type Mailer struct {
	dialer      *gomail.Dialer
	senderName  string
	senderEmail string
	timeout     time.Duration
}

func New(cfg *config.SMTPConfig) *Mailer {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Mailer{
		dialer:      gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		senderName:  cfg.SenderName,
		senderEmail: cfg.SenderEmail,
		timeout:     timeout,
	}
}

// Send delivers a single HTML message. A timeout or cancellation counts as
// a delivery failure; the message may still arrive if the dial already
// succeeded, which is acceptable for best-effort notification mail.
func (m *Mailer) Send(ctx context.Context, toAddress, toName, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.senderEmail, m.senderName)
	msg.SetAddressHeader("To", toAddress, toName)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("sending mail to %s: %w", toAddress, err)
		}
		return nil
	case <-time.After(m.timeout):
		return fmt.Errorf("sending mail to %s: timed out after %s", toAddress, m.timeout)
	case <-ctx.Done():
		return fmt.Errorf("sending mail to %s: %w", toAddress, ctx.Err())
	}
}
