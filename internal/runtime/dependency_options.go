package runtime

import (
	"context"
	"fmt"

	"github.com/geofleet/svc-location-tracker/internal/adapters"
	"github.com/geofleet/svc-location-tracker/internal/adapters/dispatch"
	"github.com/geofleet/svc-location-tracker/internal/adapters/repos"
	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/geofleet/svc-location-tracker/internal/service"
	"github.com/geofleet/svc-location-tracker/internal/shared/backoff"
	"github.com/geofleet/svc-location-tracker/internal/usecases"
	"github.com/hashicorp/vault/api"
	"go.opentelemetry.io/otel"
)

type (
	DependencyOption func(*Dependencies) error
)

func defaultOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithSecretStorage(),
		WithSecretStorageRepo(),
		WithConfigLoader(ctx),
		WithStorage(),
		WithCache(ctx),
		WithDataRepos(),
		WithMetrics(ctx),
		WithTracing(ctx),
		WithLocationProvider(),
		WithUplinks(),
		WithTracker(),
	}
}

// WithSecretStorage initializes the Vault client using ENV config.
func WithSecretStorage() DependencyOption {
	return func(d *Dependencies) error {
		cfg := d.cfg.SecretStorage

		vaultConfig := api.DefaultConfig()
		vaultConfig.Address = cfg.Address
		vaultConfig.Timeout = cfg.Timeout

		if cfg.TLSSkipVerify {
			tlsConfig := &api.TLSConfig{
				Insecure: true,
			}
			if err := vaultConfig.ConfigureTLS(tlsConfig); err != nil {
				return fmt.Errorf("failed to configure TLS: %w", err)
			}
		}

		client, err := api.NewClient(vaultConfig)
		if err != nil {
			return fmt.Errorf("failed to create Vault client: %w", err)
		}

		// Skip namespace configuration for dev mode vault
		if cfg.Namespace != "" {
			client.SetNamespace(cfg.Namespace)
		}

		d.Infra.SecretStorageClient = client

		return nil
	}
}

func WithSecretStorageRepo() DependencyOption {
	return func(d *Dependencies) error {
		d.Repos.SecretStorageRepo = repos.NewVaultRepository(d.Infra.SecretStorageClient)

		return nil
	}
}

func WithConfigLoader(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		d.configLoader = config.NewLoader(d.cfg, d.Repos.SecretStorageRepo, d.secretVersion)

		if !d.cfg.SecretStorage.Enabled {
			d.logger.Info().Msg("secret storage is disabled, skipping vault configuration loading")

			return nil
		}

		version, err := d.configLoader.Load(ctx, d.Repos.SecretStorageRepo, d.cfg)
		if err != nil {
			return fmt.Errorf("unable to load service configuration: %w", err)
		}

		d.secretVersion = version

		return nil
	}
}

func WithStorage() DependencyOption {
	return func(d *Dependencies) error {
		storage, err := infrastructure.NewStorage(d.cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}

		if _, err := storage.GetDB(); err != nil {
			return fmt.Errorf("failed to get database connection: %w", err)
		}

		d.Infra.StorageClient = storage

		return nil
	}
}

func WithCache(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		if !d.cfg.Cache.Enabled {
			d.logger.Info().Msg("cache is disabled, using in-process last-fix cache")
			d.Infra.CacheClient = nil

			return nil
		}

		cacheClient := infrastructure.NewKeydbClient(d.cfg.Cache, d.logger)

		cacheCtx, cancel := context.WithTimeout(ctx, d.cfg.Cache.DialTimeout)
		defer cancel()

		if err := cacheClient.Ping(cacheCtx); err != nil {
			d.logger.Error().Err(err).Msg("failed to connect to cache, continuing without cache")
			d.Infra.CacheClient = nil

			return nil
		}

		d.logger.Info().Msg("cache connection established")
		d.Infra.CacheClient = cacheClient

		return nil
	}
}

func WithDataRepos() DependencyOption {
	return func(d *Dependencies) error {
		db, err := d.Infra.StorageClient.GetDB()
		if err != nil {
			return fmt.Errorf("failed to get database connection: %w", err)
		}

		d.Repos.SessionRepo = repos.NewSessionRepository(db)
		d.Repos.DeliveryRepo = repos.NewDeliveryRepository(db)

		if d.Infra.CacheClient != nil {
			d.Repos.CacheRepo = repos.NewCacheRepository(
				d.Infra.CacheClient.Client(),
				d.cfg.Cache.DefaultExpiry,
			)
		} else {
			d.Repos.CacheRepo = repos.NewMemoryCacheRepository()
		}

		return nil
	}
}

func WithMetrics(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		metrics, err := infrastructure.NewMetrics(ctx, *d.cfg, d.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}

		d.Infra.Metrics = metrics

		return nil
	}
}

func WithTracing(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		if !d.cfg.Telemetry.Traces.Enabled {
			d.tracerShutdownFunc = func(_ context.Context) error {
				return nil
			}

			return nil
		}

		tracerShutdownFunc, err := infrastructure.InitGlobalTracer(ctx, d.cfg.Telemetry, d.cfg.AppConfig)
		if err != nil {
			d.logger.Error().Err(err).Msg("failed to initialize global tracer")

			return err
		}

		d.tracerShutdownFunc = tracerShutdownFunc

		return nil
	}
}

func WithLocationProvider() DependencyOption {
	return func(d *Dependencies) error {
		switch d.cfg.Tracking.Provider {
		case "static":
			d.DomainServices.LocationProvider = adapters.NewStaticProvider(d.cfg.Tracking)
		case "gpsd":
			d.DomainServices.LocationProvider = adapters.NewGpsdProvider(
				d.cfg.Tracking,
				backoff.NewExponentialStrategy(d.cfg.Backoff),
				d.logger,
			)
		default:
			return fmt.Errorf("unknown location provider: %s", d.cfg.Tracking.Provider)
		}

		d.logger.Info().Str("provider", d.cfg.Tracking.Provider).Msg("location provider initialized")

		return nil
	}
}

func WithUplinks() DependencyOption {
	return func(d *Dependencies) error {
		httpUplink := adapters.NewHTTPUplink(d.cfg.Uplink, d.logger)
		amqpUplink := adapters.NewAMQPUplink(d.cfg.Broker, d.logger)

		d.DomainServices.UplinkSelector = adapters.NewTransportSelector(httpUplink, amqpUplink)

		return nil
	}
}

// WithTracker wires the collector loop and the tracking facade.
func WithTracker() DependencyOption {
	return func(d *Dependencies) error {
		gate, err := adapters.NewGCRAReportGate(d.cfg.Tracking.MinReportSpacing)
		if err != nil {
			return fmt.Errorf("failed to initialize report gate: %w", err)
		}

		d.DomainServices.Collector = service.NewCollectorService(
			d.DomainServices.LocationProvider,
			d.Repos.DeliveryRepo,
			d.Repos.CacheRepo,
			gate,
			d.cfg.Tracking,
			d.cfg.Delivery,
			d.logger,
			d.Infra.Metrics,
		)

		d.DomainServices.Tracker = service.NewTrackerService(
			d.Repos.SessionRepo,
			d.Repos.DeliveryRepo,
			d.Repos.CacheRepo,
			adapters.NewHealthChecker(
				d.storagePing(),
				d.cachePing(),
				nil,
			),
			d.DomainServices.Collector,
			d.cfg.Tracking,
			d.logger,
			d.Infra.Metrics,
		)

		d.Apps.Tracker = usecases.NewTrackerApplication(
			d.DomainServices.Tracker,
			d.logger,
			otel.GetTracerProvider(),
			adapters.NewMetricsAdapter(d.Infra.Metrics),
		)

		return nil
	}
}

func WithHTTPServer() DependencyOption {
	return func(d *Dependencies) error {
		// Create PASETO key service for authentication
		pasetoKeyService := infrastructure.NewPasetoKeyService(
			d.cfg.Auth,
			d.Repos.SecretStorageRepo,
			d.logger,
		)

		trackerHandler := adapters.NewTrackerHandler(d.Apps.Tracker, d.logger)
		httpServer := initHTTPServer(d.cfg, d.logger, d.Infra.Metrics, trackerHandler, pasetoKeyService)

		d.Infra.HTTPServer = httpServer

		return nil
	}
}

// WithDispatcher wires the delivery queue drain loop.
func WithDispatcher() DependencyOption {
	return func(d *Dependencies) error {
		dispatcherService := service.NewDispatcherService(
			d.Repos.DeliveryRepo,
			d.Repos.SessionRepo,
			d.DomainServices.UplinkSelector,
			backoff.NewExponentialStrategy(d.cfg.Backoff),
			d.logger,
			d.Infra.Metrics,
		)

		d.Apps.Dispatcher = usecases.NewDispatcherApplication(
			dispatcherService,
			d.logger,
			otel.GetTracerProvider(),
			adapters.NewMetricsAdapter(d.Infra.Metrics),
		)

		d.Workers.DeliveryProcessor = dispatch.NewProcessor(
			d.Apps.Dispatcher,
			d.Repos.DeliveryRepo,
			d.cfg.Delivery,
			d.cfg.Storage.RetentionPeriod,
			d.logger,
			d.Infra.Metrics,
		)

		return nil
	}
}

func (d *Dependencies) storagePing() adapters.PingFunc {
	return func(ctx context.Context) error {
		db, err := d.Infra.StorageClient.GetDB()
		if err != nil {
			return err
		}

		return db.PingContext(ctx)
	}
}

func (d *Dependencies) cachePing() adapters.PingFunc {
	if d.Infra.CacheClient == nil {
		return nil
	}

	return d.Infra.CacheClient.Ping
}
