package server

import (
	"net"
	"strconv"
	"time"
)

// Mode selects the front end policy.
type Mode string

const (
	// ModeAsync processes the turn inline and reports turn failures to the error hook only.
	ModeAsync Mode = "async"
	// ModePooled runs turns on a bounded worker pool and answers turn failures with 500.
	ModePooled Mode = "pooled"
)

type Config struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" default:"3978"`
	WorkerPoolSize  int           `envconfig:"WORKER_POOL_SIZE" default:"8"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	MaxBodyBytes    int64         `envconfig:"MAX_BODY_BYTES" default:"1048576"`
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
