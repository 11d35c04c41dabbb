// Package breaker builds the circuit breakers guarding optional network
// dependencies (redis revocation store, AMQP publisher).
package breaker

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// Settings tunes a breaker. Zero values pick the defaults.
type Settings struct {
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// Failures is the number of consecutive failures that opens the breaker.
	Failures uint32
}

// New returns a breaker that opens after consecutive failures and logs
// every state change.
func New(name string, s Settings, logger zerolog.Logger) *gobreaker.CircuitBreaker {
	if s.Timeout <= 0 {
		s.Timeout = 10 * time.Second
	}
	if s.Failures == 0 {
		s.Failures = 3
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.Failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})
}
