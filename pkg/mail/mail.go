package mail

import (
	"context"
	"time"

	"github.com/pkg/errors"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	cb "github.com/Astemirdum/library-lending/pkg/circuit_breaker"
)

type Config struct {
	Host     string `yaml:"host" envconfig:"MAIL_SERVER" default:"smtp.gmail.com"`
	Port     int    `yaml:"port" envconfig:"MAIL_PORT" default:"587"`
	Username string `yaml:"username" envconfig:"MAIL_USERNAME"`
	Password string `yaml:"password" envconfig:"MAIL_PASSWORD"`
	From     string `yaml:"from" envconfig:"MAIL_DEFAULT_SENDER"`
	UseTLS   bool   `yaml:"useTLS" envconfig:"MAIL_USE_TLS" default:"true"`
	Enable   bool   `yaml:"enable" envconfig:"MAIL_ENABLE" default:"false"`
}

func (c Config) sender() string {
	if c.From != "" {
		return c.From
	}
	return c.Username
}

// Sender is the outbound mail transport.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

type SMTPSender struct {
	cfg    Config
	client *gomail.Client
	cb     cb.CircuitBreaker
	log    *zap.Logger
}

func NewSMTPSender(cfg Config, log *zap.Logger) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTimeout(15 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	if cfg.UseTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "mail.NewClient")
	}
	return &SMTPSender{
		cfg:    cfg,
		client: client,
		cb: cb.New(cb.Settings{
			Window:        20,
			OpenTimeout:   time.Minute,
			FailureRatio:  0.5,
			RecoveryCalls: 2,
		}),
		log: log.Named("mail"),
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, recipient, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.sender()); err != nil {
		return errors.Wrap(err, "from")
	}
	if err := msg.To(recipient); err != nil {
		return errors.Wrap(err, "to")
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	return s.cb.Call(func() error {
		return s.client.DialAndSendWithContext(ctx, msg)
	})
}

// LogSender writes messages to the log instead of sending them. Used when
// mail delivery is disabled.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.Named("mail")}
}

func (s *LogSender) Send(_ context.Context, recipient, subject, body string) error {
	s.log.Info("mail disabled, message dropped",
		zap.String("to", recipient),
		zap.String("subject", subject),
		zap.Int("bodyLen", len(body)))
	return nil
}
