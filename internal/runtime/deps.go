package runtime

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/geofleet/svc-location-tracker/internal/adapters"
	"github.com/geofleet/svc-location-tracker/internal/adapters/middleware"
	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/geofleet/svc-location-tracker/internal/ports"
	"github.com/geofleet/svc-location-tracker/internal/service"
	"github.com/geofleet/svc-location-tracker/internal/usecases"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/vault/api"
)

type (
	Applications struct {
		Tracker    *usecases.TrackerApplication
		Dispatcher *usecases.DispatcherApplication
	}

	ApplicationWorkers struct {
		DeliveryProcessor ports.BackgroundProcessor
	}

	TracerShutdownFunc func(ctx context.Context) error

	InfrastructureDeps struct {
		HTTPServer          *http.Server
		SecretStorageClient *api.Client
		StorageClient       *infrastructure.Storage
		CacheClient         *infrastructure.KeydbClient
		Metrics             infrastructure.Metrics
	}

	DomainServices struct {
		LocationProvider ports.LocationProvider
		UplinkSelector   ports.UplinkSelector
		Collector        *service.CollectorService
		Tracker          service.TrackerService
	}

	Repos struct {
		SecretStorageRepo ports.SecretsRepository
		SessionRepo       ports.SessionRepository
		DeliveryRepo      ports.DeliveryRepository
		CacheRepo         ports.CacheRepository
	}

	Dependencies struct {
		Apps    Applications
		Workers ApplicationWorkers

		cfg          *config.ServiceConfig
		configLoader *config.Loader

		logger infrastructure.Logger

		Infra          InfrastructureDeps
		DomainServices DomainServices
		Repos          Repos

		tracerShutdownFunc TracerShutdownFunc
		secretVersion      uint
	}
)

func initializeDependencies(ctx context.Context, opts ...DependencyOption) (*Dependencies, error) {
	cfg, err := config.Init()
	if err != nil {
		return nil, fmt.Errorf("unable to load service configuration: %w", err)
	}

	appLogger := infrastructure.New(config.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	appLogger.Info().Msg("initializing dependencies...")

	deps := &Dependencies{
		cfg:    cfg,
		logger: appLogger,
	}

	// Start with default options and append any additional options.
	options := append(defaultOptions(ctx), opts...)

	for _, opt := range options {
		if err := opt(deps); err != nil {
			return nil, fmt.Errorf("failed to apply dependency option: %w", err)
		}
	}

	deps.logger.Info().Msg("dependencies initialized successfully")

	return deps, nil
}

func initHTTPServer(
	cfg *config.ServiceConfig,
	logger infrastructure.Logger,
	metrics infrastructure.Metrics,
	trackerHandler *adapters.TrackerHandler,
	keyService *infrastructure.PasetoKeyService,
) *http.Server {
	logger.Info().Msg("creating HTTP server...")

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(cfg.HTTPServer.WriteTimeout))
	router.Use(middleware.NewAPIVersionMiddleware(cfg.AppConfig.APIVersion).Middleware)

	if cfg.Telemetry.Metrics.Enabled {
		router.Use(middleware.NewMetricsMiddleware(metrics).Middleware)
		logger.Info().Msg("HTTP metrics collection enabled")
	}

	if cfg.Logging.AccessLog.Enabled {
		healthFilter := middleware.NewHealthCheckFilter(cfg.Logging.AccessLog.LogHealthChecks)
		accessLogger := middleware.NewAccessLogger(*logger.Logger)

		router.Use(healthFilter.Middleware, accessLogger.Middleware)
		logger.Info().
			Bool("log_health_checks", cfg.Logging.AccessLog.LogHealthChecks).
			Msg("structured access logging enabled")
	}

	router.Use(middleware.NewPasetoAuthMiddleware(cfg.Auth, logger, keyService).Middleware)

	if cfg.Auth.Enabled {
		logger.Info().Msg("authentication is enabled")
	}

	router.Route("/v1", func(r chi.Router) {
		r.Post("/tracking", trackerHandler.StartTracking)
		r.Delete("/tracking", trackerHandler.StopTracking)
		r.Get("/tracking", trackerHandler.GetTrackingStatus)
	})

	router.Get("/health", trackerHandler.HealthCheck)
	router.Get("/ready", trackerHandler.ReadinessCheck)
	router.Get("/live", trackerHandler.LivenessCheck)

	if cfg.Telemetry.Metrics.Enabled {
		router.Handle("/metrics", metrics.Handler())
	}

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.HTTPServer.Host, fmt.Sprintf("%d", cfg.HTTPServer.Port)),
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	logger.Info().Str("addr", server.Addr).Msg("HTTP server created")

	return server
}
