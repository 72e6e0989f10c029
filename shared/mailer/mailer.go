package mailer

import (
	"errors"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Sender delivers a composed Email.
type Sender interface {
	Send(email Email) error
}

// Email is a message ready to send. Body is the plain-text part; HTMLBody,
// when set, becomes the primary part with Body as its alternative.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

var ErrNoRecipients = errors.New("no recipients specified")

// Config holds the SMTP relay settings. SMTP_USER and SMTP_PASS may both be
// empty for unauthenticated relays.
type Config struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"EMAIL_FROM"`
	FromName string `env:"EMAIL_FROM_NAME" envDefault:"PitchIt"`
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Host == "" {
		errs = append(errs, errors.New("missing SMTP_HOST environment variable"))
	}
	if c.Port <= 0 {
		errs = append(errs, errors.New("missing SMTP_PORT environment variable"))
	}
	if c.From == "" {
		errs = append(errs, errors.New("missing EMAIL_FROM environment variable"))
	}
	if (c.Username == "") != (c.Password == "") {
		errs = append(errs, errors.New("SMTP_USER and SMTP_PASS must be set together"))
	}

	return errors.Join(errs...)
}

// SMTPSender sends each Email over a fresh SMTP connection.
type SMTPSender struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg Config) *SMTPSender {
	s := &SMTPSender{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
	if cfg.FromName != "" {
		s.from = gomail.NewMessage().FormatAddress(cfg.From, cfg.FromName)
	}

	return s
}

// NewSMTPSenderFromEnv reads Config from the environment and exits the
// process if it is incomplete.
func NewSMTPSenderFromEnv(logger *zerolog.Logger) *SMTPSender {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse mailer environment variables")
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid mailer configuration")
	}

	logger.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("smtp sender configured")
	return NewSMTPSender(cfg)
}

func (s *SMTPSender) Send(email Email) error {
	if len(email.To) == 0 {
		return ErrNoRecipients
	}

	return s.dialer.DialAndSend(s.compose(email))
}

func (s *SMTPSender) compose(email Email) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeaders(map[string][]string{
		"From":    {s.from},
		"To":      email.To,
		"Subject": {email.Subject},
	})

	if email.HTMLBody == "" {
		msg.SetBody("text/plain", email.Body)
		return msg
	}

	msg.SetBody("text/html", email.HTMLBody)
	if email.Body != "" {
		msg.AddAlternative("text/plain", email.Body)
	}

	return msg
}
