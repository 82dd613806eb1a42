package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Domenick1991/airline/api"
	"github.com/Domenick1991/airline/config"
	"github.com/Domenick1991/airline/internal/domain"
	"github.com/Domenick1991/airline/internal/metrics"
	"github.com/Domenick1991/airline/internal/middleware"
	"github.com/Domenick1991/airline/internal/service/accounts"
	"github.com/Domenick1991/airline/internal/service/booking"
	"github.com/Domenick1991/airline/internal/service/fleet"
	"github.com/Domenick1991/airline/internal/service/flights"
	"github.com/Domenick1991/airline/internal/service/reports"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Services groups everything the HTTP server exposes.
type Services struct {
	Flights  flights.FlightUseCase
	Bookings booking.BookingUseCase
	Accounts accounts.AccountUseCase
	Fleet    fleet.FleetUseCase
	Reports  reports.ReportUseCase
	Metrics  *metrics.Metrics
	Checks   map[string]HealthCheck
}

// Run starts the HTTP server and blocks until context is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, svc Services) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewRouter(cfg, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "address", cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSeconds)*time.Second)
		defer cancel()
		slog.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter builds the gin engine with middleware, API routes, metrics and docs.
func NewRouter(cfg *config.Config, svc Services) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())
	if len(cfg.HTTP.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.HTTP.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if svc.Metrics != nil {
		router.Use(svc.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(svc.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	router.GET("/healthz", healthz(svc.Checks))

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/openapi.json"))))
	}

	public := router.Group("/api")
	public.Use(middleware.Session(svc.Accounts))
	api.NewFlightHandler(svc.Flights).Register(public)
	api.NewReservationHandler(svc.Bookings).Register(public)
	api.NewOrderHandler(svc.Bookings).Register(public)
	api.NewAuthHandler(svc.Accounts).Register(public)

	me := public.Group("/me", middleware.Require(domain.SessionCustomer))
	api.NewMeHandler(svc.Accounts, svc.Bookings).Register(me)

	manager := public.Group("/manager", middleware.Require(domain.SessionManager))
	api.NewManagerHandler(svc.Flights, svc.Fleet, svc.Reports).Register(manager)

	return router
}

func healthz(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				slog.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				result[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			result[name] = "ok"
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": result})
	}
}
