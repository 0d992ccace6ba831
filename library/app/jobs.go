package app

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-lending/library/config"
	"github.com/Astemirdum/library-lending/library/internal/notify"
)

const (
	JobDueReminders = notify.JobDueReminders
	JobOverdue      = notify.JobOverdue
)

// Jobs lists the notification jobs RunJob accepts.
var Jobs = []string{JobDueReminders, JobOverdue}

var ErrUnknownJob = errors.New("unknown job")

func jobFunc(n *notify.Notifier, name string) (notify.JobFunc, error) {
	switch name {
	case JobDueReminders:
		return n.SendDueReminders, nil
	case JobOverdue:
		return n.SendOverdueNotifications, nil
	}
	return nil, errors.Wrap(ErrUnknownJob, name)
}

// RunJob runs one notification job now, under the same run lock the
// scheduler takes.
func RunJob(ctx context.Context, cfg *config.Config, log *zap.Logger, name string) error {
	if _, err := jobFunc(&notify.Notifier{}, name); err != nil {
		return err
	}

	comps, err := Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer comps.Close()

	s, err := notify.NewScheduler(cfg.Schedule, comps.Notifier, comps.Locker, log)
	if err != nil {
		return err
	}
	fn, err := jobFunc(comps.Notifier, name)
	if err != nil {
		return err
	}
	if !s.Run(ctx, name, fn) {
		return errors.Errorf("job %s did not run", name)
	}
	return nil
}
