package tracing

import "errors"

const (
	defaultHost = "localhost"
	defaultPort = "4318"
)

var (
	ErrEmptyHost = errors.New("tracing: collector host cannot be empty")
	ErrEmptyPort = errors.New("tracing: collector port cannot be empty")
)

// config holds the OTLP exporter endpoint and the service identity
// reported with every span.
type config struct {
	host           string
	port           string
	serviceID      string
	serviceName    string
	serviceVersion string
	envName        string
}

// Validate checks required fields.
func (c *config) Validate() error {
	if c.host == "" {
		return ErrEmptyHost
	}
	if c.port == "" {
		return ErrEmptyPort
	}
	return nil
}

// Option configures the tracing setup.
type Option func(*config)

// WithHost sets the OTLP collector host (default: "localhost").
func WithHost(host string) Option {
	return func(c *config) { c.host = host }
}

// WithPort sets the OTLP collector port (default: "4318").
func WithPort(port string) Option {
	return func(c *config) { c.port = port }
}

// WithServiceID sets the service instance ID.
func WithServiceID(id string) Option {
	return func(c *config) { c.serviceID = id }
}

// WithServiceName sets the service name.
func WithServiceName(name string) Option {
	return func(c *config) { c.serviceName = name }
}

// WithServiceVersion sets the service version.
func WithServiceVersion(version string) Option {
	return func(c *config) { c.serviceVersion = version }
}

// WithEnvName sets the deployment environment.
func WithEnvName(env string) Option {
	return func(c *config) { c.envName = env }
}
