package notify

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-lending/library/config"
)

const (
	JobDueReminders = "due-reminders"
	JobOverdue      = "overdue"
)

type JobFunc func(ctx context.Context) (int, error)

// Scheduler triggers the notification jobs on their cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	locker  Locker
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time
}

func NewScheduler(cfg config.Schedule, n *Notifier, locker Locker, log *zap.Logger) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if locker == nil {
		locker = NoLock{}
	}
	log = log.Named("scheduler")
	cl := cronLogger{log.Sugar()}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		locker:  locker,
		timeout: cfg.RunTimeout,
		log:     log,
		now:     func() time.Time { return time.Now().In(loc) },
	}

	jobs := []struct {
		name string
		spec string
		fn   JobFunc
	}{
		{JobDueReminders, cfg.ReminderCron, n.SendDueReminders},
		{JobOverdue, cfg.OverdueCron, n.SendOverdueNotifications},
	}
	for _, j := range jobs {
		name, fn := j.name, j.fn
		if _, err := s.cron.AddFunc(j.spec, func() { s.Run(context.Background(), name, fn) }); err != nil {
			return nil, errors.Wrapf(err, "schedule %s %q", name, j.spec)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.log.Info("job scheduled", zap.Time("next", e.Next))
	}
}

// Stop prevents new runs and waits for running ones until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes one job under the run lock and timeout. It reports whether
// the job ran.
func (s *Scheduler) Run(ctx context.Context, name string, fn JobFunc) bool {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	key := lockKey(name, s.now())
	ok, err := s.locker.Acquire(ctx, key, lockTTL)
	if err != nil {
		s.log.Error("acquire job lock", zap.String("job", name), zap.Error(err))
		return false
	}
	if !ok {
		s.log.Info("job already ran elsewhere", zap.String("job", name), zap.String("key", key))
		return false
	}

	start := time.Now()
	sent, err := fn(ctx)
	if err != nil {
		s.log.Error("job failed", zap.String("job", name), zap.Error(err))
		return true
	}
	s.log.Info("job finished",
		zap.String("job", name),
		zap.Int("sent", sent),
		zap.Duration("took", time.Since(start)))
	return true
}

type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
