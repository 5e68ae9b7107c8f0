package config

import (
	"time"
)

// Compile time variables are set by -ldflags.
var (
	ServiceVersion string
	CommitSHA      string
	APIVersion     string
)

const (
	Development = 1 << iota
	Sandbox
	Staging
	Production
)

type (
	ServiceConfig struct {
		AppConfig     AppConfig           `json:"app_config"`
		Logging       LoggingConfig       `json:"logging"`
		Telemetry     Telemetry           `json:"telemetry"`
		SecretStorage SecretStorageConfig `json:"secret_storage"`
		HTTPServer    HTTPServerConfig    `json:"http_server"`
		Storage       StorageConfig       `json:"storage"`
		Cache         CacheConfig         `json:"cache"`
		Tracking      TrackingConfig      `json:"tracking"`
		Uplink        UplinkConfig        `json:"uplink"`
		Broker        BrokerConfig        `json:"broker"`
		Delivery      DeliveryConfig      `json:"delivery"`
		Backoff       BackoffConfig       `json:"backoff"`
		Auth          AuthConfig          `json:"auth"`
	}

	AppConfig struct {
		ServiceName    string `envconfig:"APP_SERVICE_NAME" default:"svc-location-tracker" json:"service_name"`
		ServiceVersion string `envconfig:"APP_SERVICE_VERSION" default:"0.0.0" json:"service_version"`
		CommitSHA      string `envconfig:"APP_COMMIT_SHA" default:"unknown" json:"commit_sha"`
		APIVersion     string `envconfig:"APP_API_VERSION" default:"v1" json:"api_version"`
		Env            string `envconfig:"APP_ENVIRONMENT" default:"unknown" json:"env"`
	}

	LoggingConfig struct {
		Level     string          `envconfig:"LOGGING_LEVEL" default:"info" json:"level"`
		Format    string          `envconfig:"LOGGING_FORMAT" default:"json" json:"format"`
		AccessLog AccessLogConfig `json:"access_log"`
	}

	AccessLogConfig struct {
		Enabled            bool `envconfig:"ACCESS_LOG_ENABLED" default:"true" json:"enabled"`
		LogHealthChecks    bool `envconfig:"ACCESS_LOG_HEALTH_CHECKS" default:"false" json:"log_health_checks"`
		IncludeQueryParams bool `envconfig:"ACCESS_LOG_INCLUDE_QUERY_PARAMS" default:"true" json:"include_query_params"`
	}

	Telemetry struct {
		ExporterType string `envconfig:"OTEL_EXPORTER" default:"grpc" json:"exporter_type"`

		OtelGRPCHost       string `envconfig:"OTEL_HOST" json:"otel_grpc_host"`
		OtelGRPCPort       string `envconfig:"OTEL_PORT" default:"4317" json:"otel_grpc_port"`
		OtelProductCluster string `envconfig:"OTEL_PRODUCT_CLUSTER" json:"otel_product_cluster"`

		Metrics Metrics `json:"metrics"`
		Traces  Traces  `json:"traces"`
	}

	Metrics struct {
		Enabled bool `envconfig:"METRICS_ENABLED" default:"false" json:"enabled"`
	}

	Traces struct {
		Enabled      bool    `envconfig:"TRACES_ENABLED" default:"false" json:"enabled"`
		SamplerRatio float64 `envconfig:"TRACES_SAMPLER_RATIO" default:"1" json:"sampler_ratio"`
	}

	SecretStorageConfig struct {
		Enabled       bool          `envconfig:"VAULT_ENABLED" default:"false" json:"enabled"`
		Address       string        `envconfig:"VAULT_ADDRESS" default:"http://vault:8200" json:"address"`
		Token         string        `envconfig:"VAULT_TOKEN" default:"" json:"token,omitempty"`
		RoleID        string        `envconfig:"VAULT_ROLE_ID" default:"" json:"role_id,omitempty"`
		SecretID      string        `envconfig:"VAULT_SECRET_ID" default:"" json:"secret_id,omitempty"`
		AuthMethod    string        `envconfig:"VAULT_AUTH_METHOD" default:"token" json:"auth_method"`
		MountPath     string        `envconfig:"VAULT_MOUNT_PATH" default:"svc-location-tracker" json:"mount_path"`
		Namespace     string        `envconfig:"VAULT_NAMESPACE" default:"" json:"namespace,omitempty"`
		Timeout       time.Duration `envconfig:"VAULT_TIMEOUT" default:"30s" json:"timeout"`
		MaxRetries    int           `envconfig:"VAULT_MAX_RETRIES" default:"3" json:"max_retries"`
		TLSSkipVerify bool          `envconfig:"VAULT_TLS_SKIP_VERIFY" default:"false" json:"tls_skip_verify"`
		PollInterval  time.Duration `envconfig:"VAULT_POLL_INTERVAL" default:"24h" json:"poll_interval"`
	}

	HTTPServerConfig struct {
		Port            int           `envconfig:"HTTP_SERVER_PORT" default:"8090" json:"port"`
		Host            string        `envconfig:"HTTP_SERVER_HOST" default:"127.0.0.1" json:"host"`
		ReadTimeout     time.Duration `envconfig:"HTTP_SERVER_READ_TIMEOUT" default:"30s" json:"read_timeout"`
		WriteTimeout    time.Duration `envconfig:"HTTP_SERVER_WRITE_TIMEOUT" default:"30s" json:"write_timeout"`
		IdleTimeout     time.Duration `envconfig:"HTTP_SERVER_IDLE_TIMEOUT" default:"120s" json:"idle_timeout"`
		ShutdownTimeout time.Duration `envconfig:"HTTP_SERVER_SHUTDOWN_TIMEOUT" default:"30s" json:"shutdown_timeout"`
	}

	StorageConfig struct {
		Path            string        `envconfig:"SQLITE_PATH" default:"/var/lib/svc-location-tracker/tracker.db" json:"path"`
		BusyTimeout     time.Duration `envconfig:"SQLITE_BUSY_TIMEOUT" default:"5s" json:"busy_timeout"`
		MaxOpenConns    int           `envconfig:"SQLITE_MAX_OPEN_CONNS" default:"1" json:"max_open_conns"`
		QueryTimeout    time.Duration `envconfig:"SQLITE_QUERY_TIMEOUT" default:"30s" json:"query_timeout"`
		RetentionPeriod time.Duration `envconfig:"SQLITE_DELIVERED_RETENTION" default:"24h" json:"retention_period"`
	}

	CacheConfig struct {
		Enabled       bool          `envconfig:"KEYDB_ENABLED" default:"false" json:"enabled"`
		Addr          string        `envconfig:"KEYDB_ADDR" default:"keydb:6379" json:"addr"`
		Password      string        `envconfig:"KEYDB_PASSWORD" default:"" json:"password,omitempty"`
		DB            int           `envconfig:"KEYDB_DB" default:"0" json:"db"`
		PoolSize      int           `envconfig:"KEYDB_POOL_SIZE" default:"10" json:"pool_size"`
		MinIdleConns  int           `envconfig:"KEYDB_MIN_IDLE_CONNS" default:"3" json:"min_idle_conns"`
		DialTimeout   time.Duration `envconfig:"KEYDB_DIAL_TIMEOUT" default:"5s" json:"dial_timeout"`
		ReadTimeout   time.Duration `envconfig:"KEYDB_READ_TIMEOUT" default:"3s" json:"read_timeout"`
		WriteTimeout  time.Duration `envconfig:"KEYDB_WRITE_TIMEOUT" default:"3s" json:"write_timeout"`
		MaxRetries    int           `envconfig:"KEYDB_MAX_RETRIES" default:"3" json:"max_retries"`
		DefaultExpiry time.Duration `envconfig:"KEYDB_DEFAULT_EXPIRY" default:"24h" json:"default_expiry"`
	}

	TrackingConfig struct {
		DeviceID         string        `envconfig:"TRACKING_DEVICE_ID" default:"" json:"device_id"`
		Provider         string        `envconfig:"TRACKING_PROVIDER" default:"gpsd" json:"provider"`
		GpsdAddr         string        `envconfig:"TRACKING_GPSD_ADDR" default:"localhost:2947" json:"gpsd_addr"`
		GpsdDialTimeout  time.Duration `envconfig:"TRACKING_GPSD_DIAL_TIMEOUT" default:"5s" json:"gpsd_dial_timeout"`
		StaticLatitude   float64       `envconfig:"TRACKING_STATIC_LATITUDE" default:"0" json:"static_latitude"`
		StaticLongitude  float64       `envconfig:"TRACKING_STATIC_LONGITUDE" default:"0" json:"static_longitude"`
		MinReportSpacing time.Duration `envconfig:"TRACKING_MIN_REPORT_SPACING" default:"1s" json:"min_report_spacing"`
	}

	UplinkConfig struct {
		Timeout          time.Duration        `envconfig:"UPLINK_TIMEOUT" default:"30s" json:"timeout"`
		MaxRetries       int                  `envconfig:"UPLINK_MAX_RETRIES" default:"3" json:"max_retries"`
		RetryWaitTime    time.Duration        `envconfig:"UPLINK_RETRY_WAIT_TIME" default:"1s" json:"retry_wait_time"`
		MaxRetryWaitTime time.Duration        `envconfig:"UPLINK_MAX_RETRY_WAIT_TIME" default:"5s" json:"max_retry_wait_time"`
		UserAgent        string               `envconfig:"UPLINK_USER_AGENT" default:"LocationTracker/1.0" json:"user_agent"`
		CircuitBreaker   CircuitBreakerConfig `envconfig:"UPLINK_CIRCUIT_BREAKER" json:"circuit_breaker"`
	}

	BrokerConfig struct {
		Host           string        `envconfig:"RABBITMQ_HOST" default:"rabbitmq" json:"host"`
		Port           int           `envconfig:"RABBITMQ_PORT" default:"5672" json:"port"`
		Username       string        `envconfig:"RABBITMQ_USERNAME" default:"guest" json:"username"`
		Password       string        `envconfig:"RABBITMQ_PASSWORD" default:"" json:"password,omitempty"`
		VirtualHost    string        `envconfig:"RABBITMQ_VIRTUAL_HOST" default:"/" json:"virtual_host"`
		ExchangeName   string        `envconfig:"RABBITMQ_EXCHANGE_NAME" default:"location-tracker" json:"exchange_name"`
		RoutingKey     string        `envconfig:"RABBITMQ_ROUTING_KEY" default:"fix.recorded" json:"routing_key"`
		ConnectTimeout time.Duration `envconfig:"RABBITMQ_CONNECT_TIMEOUT" default:"10s" json:"connect_timeout"`
		Heartbeat      time.Duration `envconfig:"RABBITMQ_HEARTBEAT" default:"10s" json:"heartbeat"`
		Durable        bool          `envconfig:"RABBITMQ_DURABLE" default:"true" json:"durable"`
	}

	DeliveryConfig struct {
		DispatchInterval time.Duration `envconfig:"DELIVERY_DISPATCH_INTERVAL" default:"5s" json:"dispatch_interval"`
		BatchSize        int           `envconfig:"DELIVERY_BATCH_SIZE" default:"10" json:"batch_size"`
		MaxRetries       int           `envconfig:"DELIVERY_MAX_RETRIES" default:"5" json:"max_retries"`
	}

	BackoffConfig struct {
		// BaseDelay is the amount of time to backoff after the first failure.
		BaseDelay time.Duration `envconfig:"BACKOFF_BASE_DELAY" default:"1s" json:"base_delay"`
		// Multiplier is the factor with which to multiply backoffs after a
		// failed retry. Should ideally be greater than 1.
		Multiplier float64 `envconfig:"BACKOFF_MULTIPLIER" default:"1.6" json:"multiplier"`
		// Jitter is the factor with which backoffs are randomized.
		Jitter float64 `envconfig:"BACKOFF_JITTER" default:"0.2" json:"jitter"`
		// MaxDelay is the upper bound of backoff delay.
		MaxDelay time.Duration `envconfig:"BACKOFF_MAX_DELAY" default:"10s" json:"max_delay"`
	}

	CircuitBreakerConfig struct {
		MaxRequests uint32        `envconfig:"MAX_REQUESTS" default:"3" json:"max_requests"`
		Interval    time.Duration `envconfig:"INTERVAL" default:"10s" json:"interval"`
		Timeout     time.Duration `envconfig:"TIMEOUT" default:"60s" json:"timeout"`
	}

	AuthConfig struct {
		Enabled        bool          `envconfig:"AUTH_ENABLED" default:"false" json:"enabled"`
		SkipPaths      []string      `envconfig:"AUTH_SKIP_PATHS" default:"/health,/live,/ready,/metrics" json:"skip_paths"`
		ValidIssuers   []string      `envconfig:"AUTH_VALID_ISSUERS" default:"location-tracker,fleet-control" json:"valid_issuers"`
		TokenExpiry    time.Duration `envconfig:"AUTH_TOKEN_EXPIRY" default:"1h" json:"token_expiry"`
		PasetoKeyPath  string        `envconfig:"AUTH_PASETO_KEY_PATH" default:"secret/data/paseto/public-key" json:"paseto_key_path"`
		UseVaultKeys   bool          `envconfig:"AUTH_USE_VAULT_KEYS" default:"false" json:"use_vault_keys"`
		KeyCacheTTL    time.Duration `envconfig:"AUTH_KEY_CACHE_TTL" default:"1h" json:"key_cache_ttl"`
		FallbackKeyHex string        `envconfig:"AUTH_FALLBACK_KEY_HEX" default:"" json:"fallback_key_hex,omitempty"`
	}
)
