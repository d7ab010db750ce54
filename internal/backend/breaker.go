package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/whatif-engine/internal/candidate"
	"github.com/danielpatrickdp/whatif-engine/internal/params"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// #region generator-interface
// Generator is the capability the guard wraps.
type Generator interface {
	Generate(ctx context.Context, p params.SimulatorParameters, n int) ([]candidate.Draft, error)
}
// #endregion generator-interface

// #region settings
// GuardSettings bounds calls to a backend.
type GuardSettings struct {
	Timeout     time.Duration // per call
	MaxFailures uint32        // consecutive failures before the breaker opens
	Cooldown    time.Duration // how long the breaker stays open
}

// DefaultGuardSettings returns the defaults used by the engine.
func DefaultGuardSettings() GuardSettings {
	return GuardSettings{
		Timeout:     10 * time.Second,
		MaxFailures: 3,
		Cooldown:    30 * time.Second,
	}
}
// #endregion settings

// #region guarded
// Guarded wraps a Generator with a timeout and a circuit breaker. While the
// breaker is open calls fail fast with ErrUnavailable.
type Guarded struct {
	next    Generator
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// NewGuarded wraps next.
func NewGuarded(next Generator, s GuardSettings, log *zap.Logger) *Guarded {
	if log == nil {
		log = zap.NewNop()
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = DefaultGuardSettings().MaxFailures
	}
	g := &Guarded{next: next, timeout: s.Timeout, log: log}
	g.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "generation-backend",
		MaxRequests: 1,
		Timeout:     s.Cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= s.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("backend breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return g
}

// Generate calls the wrapped backend under the timeout and breaker.
func (g *Guarded) Generate(ctx context.Context, p params.SimulatorParameters, n int) ([]candidate.Draft, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.next.Generate(ctx, p, n)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	drafts, _ := out.([]candidate.Draft)
	return drafts, nil
}

// State reports the breaker state ("closed", "half-open", "open").
func (g *Guarded) State() string {
	return g.cb.State().String()
}
// #endregion guarded
