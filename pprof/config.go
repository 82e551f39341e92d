package pprof

import (
	"time"
)

const defaultReadHeaderTimeout = 5 * time.Second

type Config struct {
	Host              string
	Port              int
	ReadHeaderTimeout time.Duration
}

func NewConfig(host string, port int, readHeaderTimeout time.Duration) Config {
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = defaultReadHeaderTimeout
	}
	return Config{Host: host, Port: port, ReadHeaderTimeout: readHeaderTimeout}
}
