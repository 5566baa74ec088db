package forwarders

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/inconshreveable/log15"

	"github.com/stephane-martin/mailsink/models"
	"github.com/stephane-martin/mailsink/utils"
)

type SMTPForwarder struct {
	Scheme   string
	Host     string
	Port     string
	Username string
	Password string
	Logger   log15.Logger
}

func NewSMTPForwarder(scheme, host, port, username, password string, logger log15.Logger) *SMTPForwarder {
	return &SMTPForwarder{
		Scheme:   scheme,
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		Logger:   logger,
	}
}

// Forward performs one full SMTP transaction with the relay for one
// destination. Each call dials a fresh connection: attempts stay
// independent, a broken session never poisons the next recipient.
func (f *SMTPForwarder) Forward(ctx context.Context, rcpt string, mail *models.IncomingMail) (err error) {
	addr := net.JoinHostPort(f.Host, f.Port)

	var client *smtp.Client
	if f.Scheme == "smtps" {
		client, err = smtp.DialTLS(addr, &tls.Config{ServerName: f.Host})
	} else {
		client, err = smtp.Dial(addr)
	}
	if err != nil {
		return fmt.Errorf("failed to dial the relay: %w", err)
	}
	defer func() {
		if err == nil {
			err = client.Quit()
			if err != nil {
				err = fmt.Errorf("error while quitting the relay session: %w", err)
				return
			}
			f.Logger.Debug("Message has been forwarded", "rcpt", rcpt)
		} else {
			_ = client.Close()
		}
	}()

	err = client.Hello(utils.IfEmpty(mail.Helo, "localhost"))
	if err != nil {
		return fmt.Errorf("error at HELO: %w", err)
	}
	if supportStartTLS, _ := client.Extension("STARTTLS"); supportStartTLS && f.Scheme == "smtp" {
		err = client.StartTLS(&tls.Config{ServerName: f.Host})
		if err != nil {
			return fmt.Errorf("error while doing STARTTLS: %w", err)
		}
	}
	if supportAuth, _ := client.Extension("AUTH"); supportAuth && len(f.Username) > 0 {
		err = client.Auth(sasl.NewPlainClient("", f.Username, f.Password))
		if err != nil {
			return fmt.Errorf("error performing AUTH with the relay: %w", err)
		}
	}
	err = client.Mail(mail.MailFrom, nil)
	if err != nil {
		return fmt.Errorf("error at MAIL FROM: %w", err)
	}
	err = client.Rcpt(rcpt, nil)
	if err != nil {
		return fmt.Errorf("error at RCPT TO: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("error at DATA: %w", err)
	}
	_, err = w.Write(mail.Data)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("error writing DATA: %w", err)
	}
	return nil
}
