package httpapi

import (
	"errors"
	"fmt"
	"time"
)

const (
	defaultHost              = "0.0.0.0"
	defaultPort              = 8080
	defaultReadTimeout       = 10 * time.Second
	defaultWriteTimeout      = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxBatch          = 10_000
)

var (
	ErrEmptyHost       = errors.New("httpapi: host cannot be empty")
	ErrZeroPort        = errors.New("httpapi: port cannot be zero")
	ErrInvalidMaxBatch = errors.New("httpapi: max batch size must be positive")
)

// Config defines the API server configuration.
type Config struct {
	address           string
	host              string
	port              int
	readTimeout       time.Duration
	writeTimeout      time.Duration
	readHeaderTimeout time.Duration
	maxBatch          int
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.port == 0 {
		return ErrZeroPort
	}
	if c.host == "" {
		return ErrEmptyHost
	}
	if c.maxBatch <= 0 {
		return ErrInvalidMaxBatch
	}
	return nil
}

// Addr returns the host:port the server will bind.
func (c *Config) Addr() string {
	return c.address
}

// Option configures the Config.
type Option func(*Config)

// WithHost sets the server host (default: "0.0.0.0").
func WithHost(host string) Option {
	return func(c *Config) {
		c.host = host
	}
}

// WithPort sets the server port (default: 8080).
func WithPort(port int) Option {
	return func(c *Config) {
		c.port = port
	}
}

// WithReadTimeout sets the read timeout (default: 10s).
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.readTimeout = timeout
	}
}

// WithWriteTimeout sets the write timeout (default: 10s).
func WithWriteTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.writeTimeout = timeout
	}
}

// WithReadHeaderTimeout sets the read header timeout (default: 5s).
func WithReadHeaderTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.readHeaderTimeout = timeout
	}
}

// WithMaxBatch caps how many identifiers a single batch request may ask
// for (default: 10000).
func WithMaxBatch(n int) Option {
	return func(c *Config) {
		c.maxBatch = n
	}
}

// NewConfig creates a new Config with defaults and applies options.
func NewConfig(opts ...Option) *Config {
	config := &Config{
		host:              defaultHost,
		port:              defaultPort,
		readTimeout:       defaultReadTimeout,
		writeTimeout:      defaultWriteTimeout,
		readHeaderTimeout: defaultReadHeaderTimeout,
		maxBatch:          defaultMaxBatch,
	}

	for _, opt := range opts {
		opt(config)
	}

	config.address = fmt.Sprintf("%s:%d", config.host, config.port)
	return config
}
