package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Astemirdum/library-lending/library/config"
	"github.com/Astemirdum/library-lending/library/internal/errs"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/pkg/mail"
)

// LoanReader selects the unreturned loans a notification run covers.
type LoanReader interface {
	LoansDueOn(ctx context.Context, date time.Time) ([]model.LoanNotice, error)
	LoansOverdue(ctx context.Context, today time.Time) ([]model.LoanNotice, error)
}

// Notifier mails borrowers about upcoming and missed due dates. It never
// writes to the store.
type Notifier struct {
	reader LoanReader
	mailer mail.Sender
	cfg    config.Lending
	loc    *time.Location
	log    *zap.Logger
	now    func() time.Time
}

// NewNotifier takes the zone the jobs run in; "today" is the calendar date
// there, whatever the process zone is.
func NewNotifier(reader LoanReader, mailer mail.Sender, cfg config.Lending, loc *time.Location, log *zap.Logger) *Notifier {
	if loc == nil {
		loc = time.Local
	}
	return &Notifier{
		reader: reader,
		mailer: mailer,
		cfg:    cfg,
		loc:    loc,
		log:    log.Named("notify"),
		now:    time.Now,
	}
}

func (n *Notifier) clock() time.Time {
	return n.now().In(n.loc)
}

// SendDueReminders mails one reminder per loan due in ReminderDaysBefore days.
// It returns the number of messages sent.
func (n *Notifier) SendDueReminders(ctx context.Context) (int, error) {
	due := model.DateOf(n.clock()).AddDate(0, 0, n.cfg.ReminderDaysBefore)
	notices, err := n.reader.LoansDueOn(ctx, due)
	if err != nil {
		return 0, err
	}

	sent := n.fanOut(ctx, notices, func(l model.LoanNotice) (string, string) {
		return reminderMessage(l, n.cfg.ReminderDaysBefore)
	})
	n.log.Info("due reminders sent",
		zap.Int("sent", sent),
		zap.Int("selected", len(notices)),
		zap.Time("dueDate", due))
	return sent, nil
}

// SendOverdueNotifications mails every borrower of an overdue loan the days
// overdue and the fine accrued so far.
func (n *Notifier) SendOverdueNotifications(ctx context.Context) (int, error) {
	now := n.clock()
	notices, err := n.reader.LoansOverdue(ctx, model.DateOf(now))
	if err != nil {
		return 0, err
	}

	sent := n.fanOut(ctx, notices, func(l model.LoanNotice) (string, string) {
		rec := model.BorrowRecord{DueDate: l.DueDate}
		return overdueMessage(l, model.DaysOverdue(rec, now), model.CalculateFine(rec, n.cfg.FinePerDay, now))
	})
	n.log.Info("overdue notifications sent",
		zap.Int("sent", sent),
		zap.Int("selected", len(notices)))
	return sent, nil
}

// fanOut sends one message per notice. A failed send is logged and skipped.
func (n *Notifier) fanOut(ctx context.Context, notices []model.LoanNotice, compose func(model.LoanNotice) (string, string)) int {
	var sent int
	for _, l := range notices {
		if ctx.Err() != nil {
			n.log.Warn("notification run interrupted", zap.Int("sent", sent), zap.Error(ctx.Err()))
			break
		}
		subject, body := compose(l)
		if err := n.mailer.Send(ctx, l.UserEmail, subject, body); err != nil {
			n.log.Error("send notification",
				zap.Int64("userID", l.UserID),
				zap.Int64("recordID", l.RecordID),
				zap.Error(errs.External(err)))
			continue
		}
		sent++
	}
	return sent
}

func greeting(l model.LoanNotice) string {
	if l.UserName != "" {
		return l.UserName
	}
	return l.UserEmail
}

func reminderMessage(l model.LoanNotice, days int) (subject, body string) {
	subject = fmt.Sprintf("Reminder: %q is due in %d days", l.BookTitle, days)
	body = fmt.Sprintf(`Hello %s,

This is a reminder that the book %q by %s is due on %s.
Please return it on time to avoid a fine.

Library`, greeting(l), l.BookTitle, l.BookAuthor, l.DueDate.Format("2006-01-02"))
	return subject, body
}

func overdueMessage(l model.LoanNotice, days int, fine float64) (subject, body string) {
	subject = fmt.Sprintf("Overdue: %q", l.BookTitle)
	body = fmt.Sprintf(`Hello %s,

The book %q by %s was due on %s and is %d days overdue.
The current fine is %.2f. It grows every day until the book is returned.

Library`, greeting(l), l.BookTitle, l.BookAuthor, l.DueDate.Format("2006-01-02"), days, fine)
	return subject, body
}
