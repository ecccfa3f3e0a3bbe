// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import "time"

// GatewayConfig tunes the serialized, rate-limited, retrying mediator over
// the spreadsheet backend (spec §4.1).
type GatewayConfig struct {
	// BaseInterval is the minimum spacing enforced between consecutive
	// backend calls. Default: 1s.
	BaseInterval time.Duration `koanf:"base_interval" validate:"required,gt=0"`

	// JitterCapMax bounds the worker-count-scaled jitter added on top of
	// BaseInterval, regardless of how large the active worker population
	// gets. Default: 2s.
	JitterCapMax time.Duration `koanf:"jitter_cap_max" validate:"required,gt=0"`

	// RetryMaxAttempts bounds retries of transient backend errors.
	// Default: 5.
	RetryMaxAttempts int `koanf:"retry_max_attempts" validate:"required,gt=0"`

	// RetryBaseInterval is the first backoff delay, doubling each attempt.
	// Default: 1s.
	RetryBaseInterval time.Duration `koanf:"retry_base_interval" validate:"required,gt=0"`

	// RetryMaxInterval caps the exponential backoff delay. Default: 32s.
	RetryMaxInterval time.Duration `koanf:"retry_max_interval" validate:"required,gt=0"`

	// ActiveWorkerRefresh is the minimum spacing between opportunistic
	// refreshes of the active-worker count used to size jitter.
	// Default: 60s.
	ActiveWorkerRefresh time.Duration `koanf:"active_worker_refresh" validate:"required,gt=0"`

	// CircuitBreakerMinRequests is the minimum sample size before the
	// circuit breaker will consider tripping. Default: 10.
	CircuitBreakerMinRequests uint32 `koanf:"circuit_breaker_min_requests" validate:"required,gt=0"`

	// CircuitBreakerFailureRatio is the failure ratio, in [0,1], above
	// which the circuit opens. Default: 0.6.
	CircuitBreakerFailureRatio float64 `koanf:"circuit_breaker_failure_ratio" validate:"required,gt=0,lte=1"`

	// CircuitBreakerOpenTimeout is how long the breaker stays open before
	// allowing a probe request through. Default: 2m.
	CircuitBreakerOpenTimeout time.Duration `koanf:"circuit_breaker_open_timeout" validate:"required,gt=0"`
}

// RegistryConfig tunes the Worker Registry (spec §4.3).
type RegistryConfig struct {
	// ActiveWindow is how recent last_heartbeat must be for a worker to
	// count as active. Default: 120s.
	ActiveWindow time.Duration `koanf:"active_window" validate:"required,gt=0"`
}

// ElectionConfig tunes Leader Election (spec §4.4).
type ElectionConfig struct {
	// Name is the election_name this worker contends for. Default:
	// "source_processor".
	Name string `koanf:"name" validate:"required"`

	// TTL is the lease lifetime. Default: 300s.
	TTL time.Duration `koanf:"ttl" validate:"required,gt=0"`

	// RenewInterval is how often the current holder renews. Default: 60s.
	RenewInterval time.Duration `koanf:"renew_interval" validate:"required,gt=0"`

	// ReadBackBase is the midpoint of the jittered read-back delay
	// (actual delay is uniform in [0.5, 1.5] x ReadBackBase). Default: 2s.
	ReadBackBase time.Duration `koanf:"read_back_base" validate:"required,gt=0"`

	// ClockSkewWarnThreshold logs a warning when the wall-clock time that
	// elapses during the read-back wait differs from the requested delay
	// by more than this (a clock warp). Default: 5s.
	ClockSkewWarnThreshold time.Duration `koanf:"clock_skew_warn_threshold" validate:"required,gt=0"`
}

// OrchestratorConfig tunes the Pipeline Orchestrator (spec §4.5).
type OrchestratorConfig struct {
	// PollInterval is the sleep between main-loop iterations when there
	// is no task to claim and no lease to acquire. Default: 5s.
	PollInterval time.Duration `koanf:"poll_interval" validate:"required,gt=0"`

	// ClaimTTL is how long a CLAIMED row may sit unsettled before the
	// claim scan treats it as abandoned and reclaims it. Default: 15m.
	ClaimTTL time.Duration `koanf:"claim_ttl" validate:"required,gt=0"`

	// ClaimReadBackBase is the midpoint of the jittered read-back delay
	// used to confirm a claim write (same [0.5, 1.5] scaling as
	// ElectionConfig.ReadBackBase). Default: 1s.
	ClaimReadBackBase time.Duration `koanf:"claim_read_back_base" validate:"required,gt=0"`

	// ShutdownTimeout bounds how long graceful shutdown waits for an
	// in-flight callback to finish. Default: 60s.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,gt=0"`
}

// RateCacheConfig tunes the local Badger-backed active-worker-count cache.
type RateCacheConfig struct {
	// Dir is the Badger data directory. Default: "./data/ratecache".
	Dir string `koanf:"dir" validate:"required"`
}

// HTTPConfig tunes the operator introspection surface.
type HTTPConfig struct {
	// Enabled controls whether the introspection HTTP server starts.
	// Default: true.
	Enabled bool `koanf:"enabled"`

	// Addr is the listen address. Default: ":9090".
	Addr string `koanf:"addr" validate:"required"`

	// RequestsPerMinute rate-limits the introspection endpoints.
	// Default: 120.
	RequestsPerMinute int `koanf:"requests_per_minute" validate:"required,gt=0"`
}

// LoggingConfig tunes internal/logging.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"required,oneof=trace debug info warn error fatal panic"`
	Format string `koanf:"format" validate:"required,oneof=json console"`
}

// Config holds all worker configuration loaded from environment variables
// and an optional config file.
type Config struct {
	// WorkerName is the required, deployment-unique human identifier for
	// this process (spec §6). Located at startup to recover an existing
	// Workers row, or to create one.
	WorkerName string `koanf:"worker_name" validate:"required"`

	// SpreadsheetID is the opaque handle identifying the backend
	// spreadsheet (spec §6).
	SpreadsheetID string `koanf:"spreadsheet_id" validate:"required"`

	// ServiceAccountFile is the path to the credentials used to
	// authenticate against the backend (spec §6).
	ServiceAccountFile string `koanf:"service_account_file" validate:"required"`

	Gateway      GatewayConfig      `koanf:"gateway"`
	Registry     RegistryConfig     `koanf:"registry"`
	Election     ElectionConfig     `koanf:"election"`
	Orchestrator OrchestratorConfig `koanf:"orchestrator"`
	RateCache    RateCacheConfig    `koanf:"rate_cache"`
	HTTP         HTTPConfig         `koanf:"http"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// defaultConfig returns a Config with every tunable at its spec-mandated or
// documented default. Env vars and an optional config file override these.
func defaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			BaseInterval:               1 * time.Second,
			JitterCapMax:               2 * time.Second,
			RetryMaxAttempts:           5,
			RetryBaseInterval:          1 * time.Second,
			RetryMaxInterval:           32 * time.Second,
			ActiveWorkerRefresh:        60 * time.Second,
			CircuitBreakerMinRequests:  10,
			CircuitBreakerFailureRatio: 0.6,
			CircuitBreakerOpenTimeout:  2 * time.Minute,
		},
		Registry: RegistryConfig{
			ActiveWindow: 120 * time.Second,
		},
		Election: ElectionConfig{
			Name:                   "source_processor",
			TTL:                    300 * time.Second,
			RenewInterval:          60 * time.Second,
			ReadBackBase:           2 * time.Second,
			ClockSkewWarnThreshold: 5 * time.Second,
		},
		Orchestrator: OrchestratorConfig{
			PollInterval:      5 * time.Second,
			ClaimTTL:          15 * time.Minute,
			ClaimReadBackBase: 1 * time.Second,
			ShutdownTimeout:   60 * time.Second,
		},
		RateCache: RateCacheConfig{
			Dir: "./data/ratecache",
		},
		HTTP: HTTPConfig{
			Enabled:           true,
			Addr:              ":9090",
			RequestsPerMinute: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
