package bridge

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/simbridge/simbridge-go/pkg/connection"
	"github.com/simbridge/simbridge-go/pkg/log"
	"github.com/simbridge/simbridge-go/pkg/poll"
)

// Bridge errors.
var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrDuplicateField = errors.New("duplicate field id")
	ErrDuplicateGroup = errors.New("duplicate group id")
	ErrUnknownField   = errors.New("field not owned by any group")
	ErrAlreadyStarted = errors.New("bridge already started")
)

// DefaultIdentity is the client name presented to the peer.
const DefaultIdentity = "simbridge"

// Config configures a Bridge.
type Config struct {
	// Identity is the client name passed to the native open call.
	Identity string

	// PollInterval is the scheduler cadence.
	PollInterval time.Duration

	// PumpInterval is the message pump cadence used by Start. Zero disables
	// the pump; the host then calls Drain itself.
	PumpInterval time.Duration

	// OpenTimeout bounds the native open call. Zero means no timeout.
	OpenTimeout time.Duration

	// AutoConnect opens a session whenever the peer is running and the
	// bridge is disconnected, paced by Backoff.
	AutoConnect bool

	// Backoff paces auto-connect attempts.
	Backoff connection.BackoffConfig

	// Logger is the operational logger. Nil disables logging.
	Logger *slog.Logger

	// Trace receives the structured bridge trace. Nil disables tracing.
	Trace log.Logger
}

// DefaultConfig returns a Config with the standard 250 ms cadence.
func DefaultConfig() Config {
	return Config{
		Identity:     DefaultIdentity,
		PollInterval: poll.DefaultInterval,
		PumpInterval: 50 * time.Millisecond,
		OpenTimeout:  5 * time.Second,
		Backoff: connection.BackoffConfig{
			Initial:    connection.InitialBackoff,
			Max:        connection.MaxBackoff,
			Multiplier: connection.BackoffMultiplier,
			Jitter:     connection.JitterFactor,
		},
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Identity == "" {
		return fmt.Errorf("%w: identity is empty", ErrInvalidConfig)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidConfig)
	}
	if c.PumpInterval < 0 || c.OpenTimeout < 0 {
		return fmt.Errorf("%w: negative interval", ErrInvalidConfig)
	}
	return nil
}
