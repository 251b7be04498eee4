package destination

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wisata/internal/domain"
	domdest "github.com/kailas-cloud/wisata/internal/domain/destination"
)

// Reader is the read side of a destination store.
type Reader interface {
	List(ctx context.Context) ([]domdest.Destination, error)
	Get(ctx context.Context, id string) (domdest.Destination, error)
}

// BreakerSettings configures the lookup circuit breaker.
type BreakerSettings struct {
	Name         string
	MaxRequests  uint32        // probes allowed while half-open
	Interval     time.Duration // closed-state count reset period
	Timeout      time.Duration // open-state duration before half-open
	MinRequests  uint32
	FailureRatio float64
}

// BreakerMetrics are optional; nil vectors are skipped.
type BreakerMetrics struct {
	State    *prometheus.GaugeVec   // label: name
	Requests *prometheus.CounterVec // labels: name, result
}

// BreakerReader protects Get with a circuit breaker. List is not wrapped:
// the batch build should fail loudly instead of tripping serving lookups.
type BreakerReader struct {
	inner   Reader
	cb      *gobreaker.CircuitBreaker[domdest.Destination]
	name    string
	metrics BreakerMetrics
	logger  *zap.Logger
}

// NewBreaker wraps inner. A not-found lookup counts as success.
func NewBreaker(inner Reader, s BreakerSettings, m BreakerMetrics, logger *zap.Logger) *BreakerReader {
	if s.Name == "" {
		s.Name = "destination-store"
	}
	b := &BreakerReader{inner: inner, name: s.Name, metrics: m, logger: logger}
	b.setState(gobreaker.StateClosed)

	b.cb = gobreaker.NewCircuitBreaker[domdest.Destination](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			if c.Requests < s.MinRequests {
				return false
			}
			ratio := float64(c.TotalFailures) / float64(c.Requests)
			return ratio >= s.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			b.setState(to)
		},
	})
	return b
}

// List passes through.
func (b *BreakerReader) List(ctx context.Context) ([]domdest.Destination, error) {
	return b.inner.List(ctx)
}

// Get looks up a destination; it fails fast while the breaker is open.
func (b *BreakerReader) Get(ctx context.Context, id string) (domdest.Destination, error) {
	d, err := b.cb.Execute(func() (domdest.Destination, error) {
		return b.inner.Get(ctx, id)
	})
	switch {
	case err == nil, errors.Is(err, domain.ErrNotFound):
		b.incRequests("success")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		b.incRequests("rejected")
	default:
		b.incRequests("failure")
	}
	return d, err
}

// State returns the current breaker state.
func (b *BreakerReader) State() gobreaker.State { return b.cb.State() }

func (b *BreakerReader) incRequests(result string) {
	if b.metrics.Requests != nil {
		b.metrics.Requests.WithLabelValues(b.name, result).Inc()
	}
}

func (b *BreakerReader) setState(s gobreaker.State) {
	if b.metrics.State != nil {
		b.metrics.State.WithLabelValues(b.name).Set(stateValue(s))
	}
}

// stateValue maps a state to a gauge value: closed 0, half-open 1, open 2.
func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
