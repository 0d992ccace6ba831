package service

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Astemirdum/library-lending/library/config"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/library/internal/queue"
	"github.com/Astemirdum/library-lending/library/internal/repository"
	"github.com/Astemirdum/library-lending/pkg/kafka"
)

type TokenIssuer interface {
	Issue(userID int64, isAdmin bool) (string, time.Time, error)
}

type Service struct {
	log    *zap.Logger
	cfg    config.Lending
	repo   repository.Repository
	stats  repository.StatsRepository
	queue  queue.Enqueuer
	tokens TokenIssuer
	now    func() time.Time
}

func NewService(
	cfg config.Lending,
	repo repository.Repository,
	stats repository.StatsRepository,
	enq queue.Enqueuer,
	tokens TokenIssuer,
	log *zap.Logger,
) *Service {
	if enq == nil {
		enq = queue.Noop{}
	}
	return &Service{
		log:    log.Named("service"),
		cfg:    cfg,
		repo:   repo,
		stats:  stats,
		queue:  enq,
		tokens: tokens,
		now:    time.Now,
	}
}

func (s *Service) today() time.Time {
	return model.DateOf(s.now())
}

// publish never fails the caller; a lost event is only logged.
func (s *Service) publish(ev model.LendingEvent) {
	key := strconv.FormatInt(ev.UserID, 10)
	if err := s.queue.Enqueue(kafka.LendingTopic, key, ev); err != nil {
		s.log.Warn("enqueue lending event",
			zap.String("type", string(ev.Type)),
			zap.Int64("recordID", ev.RecordID),
			zap.Error(err))
	}
}

func (s *Service) withStatus(records []model.BorrowRecord) []model.BorrowRecord {
	today := s.today()
	for i := range records {
		records[i].Status = model.EffectiveStatus(records[i], today)
	}
	return records
}
