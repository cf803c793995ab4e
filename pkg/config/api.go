package config

import "time"

// API holds the settings shared by every component that talks to the
// Infrasync backend.
type API struct {
	// BaseURL is prepended to every endpoint path, e.g. "https://api.infrasync.dev".
	// Empty means same-origin relative requests, which only makes sense in tests.
	BaseURL string `env:"INFRASYNC_API_BASE_URL" envDefault:""`

	// RequestTimeout bounds a single request attempt, not the whole retry cycle.
	RequestTimeout time.Duration `env:"INFRASYNC_REQUEST_TIMEOUT" envDefault:"10s"`

	// Retries is the total number of attempts for retryable failures.
	Retries int `env:"INFRASYNC_RETRIES" envDefault:"3"`

	// RetryDelay is the base delay for linear backoff between attempts.
	RetryDelay time.Duration `env:"INFRASYNC_RETRY_DELAY" envDefault:"1s"`
}

// Signals configures the cross-process session signal bus.
type Signals struct {
	// RedisURL enables the Redis-backed bus when set, e.g. "redis://localhost:6379/0".
	// Empty falls back to the in-process bus.
	RedisURL string `env:"INFRASYNC_SIGNALS_REDIS_URL" envDefault:""`

	// Channel is the pub/sub channel shared by all clients of one user.
	Channel string `env:"INFRASYNC_SIGNALS_CHANNEL" envDefault:"infrasync:session"`
}

// Log configures the client logger.
type Log struct {
	Level  string `env:"INFRASYNC_LOG_LEVEL" envDefault:"info"`
	Format string `env:"INFRASYNC_LOG_FORMAT" envDefault:"text"`
}
