package mailer

import (
	"bytes"
	"context"
	"html/template"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Config struct {
	Host     string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USER"`
	Password string `envconfig:"SMTP_PASS" json:"-"`
	From     string `envconfig:"SMTP_FROM"`
}

func (c Config) Enabled() bool {
	return c.Host != "" && c.Username != ""
}

func (c Config) sender() string {
	if c.From != "" {
		return c.From
	}
	return c.Username
}

var otpTemplate = template.Must(template.New("otp").Parse(`<div style="font-family:sans-serif">
<h2>Naratama Library</h2>
<p>Your verification code is</p>
<p style="font-size:28px;letter-spacing:6px"><b>{{.Code}}</b></p>
<p>The code expires in {{.Minutes}} minutes. Ignore this email if you did not request it.</p>
</div>`))

// Sender hides the SMTP dialer so messages can be checked in tests.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	from   string
	sender Sender
	log    *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Mailer {
	return NewWithSender(cfg.sender(), gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), log)
}

func NewWithSender(from string, sender Sender, log *zap.Logger) *Mailer {
	return &Mailer{from: from, sender: sender, log: log.Named("mailer")}
}

func (m *Mailer) SendOTP(ctx context.Context, to, code string) error {
	var body bytes.Buffer
	if err := otpTemplate.Execute(&body, struct {
		Code    string
		Minutes int
	}{code, 10}); err != nil {
		return errors.Wrap(err, "render otp")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your verification code")
	msg.SetBody("text/plain", "Your verification code is "+code+". It expires in 10 minutes.")
	msg.AddAlternative("text/html", body.String())

	done := make(chan error, 1)
	go func() {
		done <- m.sender.DialAndSend(msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return errors.Wrap(err, "smtp send")
		}
		m.log.Debug("otp sent", zap.String("to", to))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
