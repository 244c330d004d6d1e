package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banibsnetworks-source/banibs-production-sub001/internal/config"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/infra/database"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/infra/gateway"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/infra/repository"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/service"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/usecase"
)

func main() {
	configPath := flag.String("config", "/etc/banibs/config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisDB)

	domainConf := conf.Domain()

	envelopeRepo := repository.NewEnvelopeRepository(db)
	deliveryGateway := gateway.NewDeliveryGateway(conf.Server.DeliveryEndpoint)
	signalService := service.NewSignalService(rdb)

	scheduler := usecase.NewSchedulerUsecase(
		envelopeRepo,
		deliveryGateway,
		signalService,
		domainConf,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		slog.Info("shutting down drain worker")
		cancel()
	}()

	ticker := time.NewTicker(domainConf.DrainInterval)
	defer ticker.Stop()

	slog.Info("drain worker started", slog.String("interval", domainConf.DrainInterval.String()))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := scheduler.Drain(ctx, time.Now().UTC())
			if err != nil {
				slog.ErrorContext(ctx, "drain pass failed", slog.String("error", err.Error()))
				continue
			}
			if report.Claimed > 0 {
				slog.InfoContext(ctx, "drain pass",
					slog.Int("claimed", report.Claimed),
					slog.Int("delivered", report.Delivered),
					slog.Int("released", report.Released),
				)
			}
		}
	}
}
