package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airline/config"
	"github.com/Domenick1991/airline/internal/email"
	"github.com/Domenick1991/airline/internal/kafka"
	"github.com/Domenick1991/airline/internal/logger"
	"github.com/Domenick1991/airline/internal/repository"
	"github.com/Domenick1991/airline/internal/service/reports"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		logger.Fatal("load config", "error", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", "error", err)
	}
	defer pool.Close()

	reportService := reports.NewReportService(repository.NewReportRepository(repository.NewGateway(pool)))

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Worker.ReportSchedule, func() {
		if _, err := reportService.Snapshot(ctx); err != nil {
			slog.Error("report snapshot failed", "error", err)
		}
	})
	if err != nil {
		logger.Fatal("schedule reports", "schedule", cfg.Worker.ReportSchedule, "error", err)
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := email.NewSender(logger.Get())

	slog.Info("worker started", "topic", cfg.Kafka.NotificationsTopic, "report_schedule", cfg.Worker.ReportSchedule)
	if err := consumer.Consume(ctx, kafka.EventHandler(sender.Send)); err != nil {
		slog.Error("consumer stopped", "error", err)
	}
	slog.Info("worker stopped")
}
