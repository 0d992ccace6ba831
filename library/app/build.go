package app

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-lending/library/config"
	"github.com/Astemirdum/library-lending/library/internal/notify"
	"github.com/Astemirdum/library-lending/library/internal/queue"
	"github.com/Astemirdum/library-lending/library/internal/repository"
	"github.com/Astemirdum/library-lending/library/internal/service"
	"github.com/Astemirdum/library-lending/library/migrations"
	"github.com/Astemirdum/library-lending/pkg/auth"
	"github.com/Astemirdum/library-lending/pkg/kafka"
	"github.com/Astemirdum/library-lending/pkg/mail"
	"github.com/Astemirdum/library-lending/pkg/postgres"
)

// Components are the long-lived dependencies shared by the server and the
// admin CLI.
type Components struct {
	DB       *pgxpool.Pool
	Service  *service.Service
	Notifier *notify.Notifier
	Locker   notify.Locker
	Issuer   *auth.Issuer

	closers []func()
}

func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (_ *Components, err error) {
	c := &Components{}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return nil, errors.Wrap(err, "db init")
	}
	c.DB = db
	c.closers = append(c.closers, db.Close)

	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return nil, errors.Wrap(err, "repo")
	}
	stats, err := repository.NewStatsRepository(db, log)
	if err != nil {
		return nil, errors.Wrap(err, "stats repo")
	}

	var enq queue.Enqueuer = queue.Noop{}
	if cfg.Kafka.Enable {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return nil, errors.Wrap(err, "kafka.NewProducer")
		}
		c.closers = append(c.closers, func() {
			if err := producer.Close(); err != nil {
				log.Warn("kafka producer close", zap.Error(err))
			}
		})
		enq = queue.NewEnqueuer(producer)
	}

	c.Issuer = auth.NewIssuer(cfg.Auth)
	c.Service = service.NewService(cfg.Lending, repo, stats, enq, c.Issuer, log)

	var mailer mail.Sender = mail.NewLogSender(log)
	if cfg.Mail.Enable {
		smtp, err := mail.NewSMTPSender(cfg.Mail, log)
		if err != nil {
			return nil, err
		}
		mailer = smtp
	}
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, err
	}
	c.Notifier = notify.NewNotifier(repo, mailer, cfg.Lending, loc, log)

	c.Locker = notify.NoLock{}
	if cfg.Redis.Enable {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		c.closers = append(c.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, errors.Wrap(err, "redis ping")
		}
		host, _ := os.Hostname() //nolint:errcheck
		c.Locker = notify.NewRedisLocker(client, host)
	}
	return c, nil
}

// Close releases resources in reverse order of acquisition.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
