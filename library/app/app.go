package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/library-lending/library/config"
	"github.com/Astemirdum/library-lending/library/internal/handler"
	"github.com/Astemirdum/library-lending/library/internal/notify"
	"github.com/Astemirdum/library-lending/library/internal/server"
	"github.com/Astemirdum/library-lending/pkg/logger"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "library")
	defer log.Sync() //nolint:errcheck

	comps, err := Build(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("build", zap.Error(err))
	}

	var scheduler *notify.Scheduler
	if cfg.Schedule.Enable {
		scheduler, err = notify.NewScheduler(cfg.Schedule, comps.Notifier, comps.Locker, log)
		if err != nil {
			log.Fatal("scheduler", zap.Error(err))
		}
		scheduler.Start()
	}

	h := handler.New(comps.Service, comps.Issuer, cfg.Server.RateLimit, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	g, gctx := errgroup.WithContext(closeCtx)
	g.Go(func() error {
		return srv.Stop(gctx)
	})
	if scheduler != nil {
		g.Go(func() error {
			return scheduler.Stop(gctx)
		})
	}
	if err = g.Wait(); err != nil {
		log.DPanic("shutdown", zap.Error(err))
	}
	comps.Close()
	log.Info("Graceful shutdown finished")
}
