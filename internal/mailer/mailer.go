package mailer

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/farhanmaulana/eventnest/config"
)

// Mailer delivers a single message to a single recipient. Implementations
// must be safe for concurrent use.
type Mailer interface {
	Send(to, subject, body string) error
}

const sendTimeout = 10 * time.Second

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg *config.SMTPConfig) (*SMTPMailer, error) {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP port %q: %v", cfg.Port, err)
	}

	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}, nil
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	// gomail has no deadline support, so bound the dial-and-send ourselves.
	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(sendTimeout):
		return fmt.Errorf("timed out sending mail to %s after %s", to, sendTimeout)
	}
}
