// Package breaker guards a categorization delegate with a circuit breaker so a
// failing service is skipped instead of slowing down every message.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/core"
)

// Settings configures the breaker
type Settings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
	// CallTimeout bounds each delegate call; zero leaves the caller's deadline
	CallTimeout time.Duration
}

// Categorizer decorates a core.Categorizer with a circuit breaker. Only
// service failures count toward tripping; malformed responses do not.
type Categorizer struct {
	next        core.Categorizer
	cb          *gobreaker.CircuitBreaker
	callTimeout time.Duration
	logger      *zap.Logger
}

// New wraps next
func New(next core.Categorizer, s Settings, logger *zap.Logger) *Categorizer {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	threshold := s.FailureThreshold

	return &Categorizer{
		next:        next,
		callTimeout: s.CallTimeout,
		logger:      logger,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        next.Model(),
			MaxRequests: s.MaxRequests,
			Interval:    s.Interval,
			Timeout:     s.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Circuit breaker state changed",
					zap.String("delegate", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, core.ErrMalformedResponse) || errors.Is(err, context.Canceled)
			},
		}),
	}
}

// Model returns the wrapped delegate's model
func (c *Categorizer) Model() string {
	return c.next.Model()
}

// State reports the current breaker state
func (c *Categorizer) State() gobreaker.State {
	return c.cb.State()
}

// Categorize calls the delegate unless the breaker is open
func (c *Categorizer) Categorize(ctx context.Context, email *core.Email) (*core.ClassificationResult, error) {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}
	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.next.Categorize(ctx, email)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %w", core.ErrServiceUnavailable, c.next.Model(), err)
		}
		return nil, err
	}
	return out.(*core.ClassificationResult), nil
}

// Close releases the wrapped delegate when it holds resources
func (c *Categorizer) Close() error {
	if closer, ok := c.next.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
