package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airline/config"
	"github.com/Domenick1991/airline/internal/bootstrap"
	"github.com/Domenick1991/airline/internal/cache"
	"github.com/Domenick1991/airline/internal/domain"
	"github.com/Domenick1991/airline/internal/kafka"
	"github.com/Domenick1991/airline/internal/logger"
	"github.com/Domenick1991/airline/internal/metrics"
	"github.com/Domenick1991/airline/internal/repository"
	"github.com/Domenick1991/airline/internal/service/accounts"
	"github.com/Domenick1991/airline/internal/service/booking"
	"github.com/Domenick1991/airline/internal/service/fleet"
	"github.com/Domenick1991/airline/internal/service/flights"
	"github.com/Domenick1991/airline/internal/service/reports"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		logger.Fatal("load config", "error", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		logger.Fatal("parse database config", "error", err)
	}
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Database.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Fatal("connect postgres", "error", err)
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			logger.Fatal("migrate", "error", err)
		}
	}

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.FlightsCacheDuration())
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	m := metrics.New()

	gw := repository.NewGateway(pool)
	flightRepo := repository.NewFlightRepository(gw)
	reservationRepo := repository.NewReservationRepository(gw)
	fleetRepo := repository.NewFleetRepository(gw)

	flightService := flights.NewFlightService(
		flightRepo,
		repository.NewResourceRepository(gw),
		fleetRepo,
		flights.WithCache(redisCache),
		flights.WithEvents(producer, cfg.Kafka.ReservationsTopic, cfg.Kafka.NotificationsTopic),
		flights.WithMetrics(m),
	)
	bookingService := booking.NewBookingService(
		reservationRepo,
		flightRepo,
		redisCache,
		cfg.Booking.DraftTTL(),
		booking.WithEvents(producer, cfg.Kafka.ReservationsTopic, cfg.Kafka.NotificationsTopic),
		booking.WithFlightCache(redisCache),
		booking.WithMetrics(m),
	)
	accountService := accounts.NewAccountService(repository.NewAccountRepository(gw), redisCache, cfg.Booking.SessionTTL())
	fleetService := fleet.NewFleetService(fleetRepo)
	reportService := reports.NewReportService(repository.NewReportRepository(gw))

	if cfg.Manager.ID != 0 {
		err := accountService.SeedManager(ctx, domain.Manager{
			ID:        cfg.Manager.ID,
			FirstName: cfg.Manager.FirstName,
			LastName:  cfg.Manager.LastName,
		}, cfg.Manager.Password)
		if err != nil {
			logger.Fatal("seed manager", "error", err)
		}
	}

	err = bootstrap.Run(ctx, cfg, bootstrap.Services{
		Flights:  flightService,
		Bookings: bookingService,
		Accounts: accountService,
		Fleet:    fleetService,
		Reports:  reportService,
		Metrics:  m,
		Checks: map[string]bootstrap.HealthCheck{
			"postgres": pool.Ping,
			"redis":    redisCache.Ping,
			"kafka":    producer.CheckConnection,
		},
	})
	if err != nil {
		logger.Fatal("server error", "error", err)
	}
}
