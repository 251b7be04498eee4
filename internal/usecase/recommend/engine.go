package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wisata/internal/domain"
	"github.com/kailas-cloud/wisata/internal/model"
)

// EngineMetrics are the collectors the engine reports to. Nil fields are skipped.
type EngineMetrics struct {
	Loads      *prometheus.CounterVec // label "result": success / failure
	Documents  prometheus.Gauge
	Vocabulary prometheus.Gauge
	BuiltAt    prometheus.Gauge
}

// DefaultRetryBackoff is how long a failed lazy load is remembered.
const DefaultRetryBackoff = 5 * time.Second

// Engine owns the served model generation.
// The first query loads it lazily; Reload swaps in a new one. Reads are lock-free.
type Engine struct {
	loader     Loader
	metrics    EngineMetrics
	logger     *zap.Logger
	retryAfter time.Duration
	now        func() time.Time

	mu      sync.Mutex // serializes loads
	current atomic.Pointer[model.Generation]
	failed  atomic.Pointer[loadFailure]
}

type loadFailure struct {
	at  time.Time
	err error
}

// NewEngine creates an engine with nothing loaded.
func NewEngine(loader Loader, m EngineMetrics, logger *zap.Logger) *Engine {
	return &Engine{
		loader:     loader,
		metrics:    m,
		logger:     logger,
		retryAfter: DefaultRetryBackoff,
		now:        time.Now,
	}
}

// WithRetryBackoff sets how long lazy loads answer from the last failure
// before touching the artifact store again. Zero retries on every call.
func (e *Engine) WithRetryBackoff(d time.Duration) *Engine {
	e.retryAfter = d
	return e
}

// WithClock overrides the time source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Generation returns the served generation, loading it on first use.
// Failures are reported as domain.ErrNotReady wrapping the load error; for the
// retry backoff after a failure that error is returned without a new load.
func (e *Engine) Generation(ctx context.Context) (*model.Generation, error) {
	if g := e.current.Load(); g != nil {
		return g, nil
	}
	if err := e.recentFailure(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if g := e.current.Load(); g != nil {
		return g, nil
	}
	if err := e.recentFailure(); err != nil {
		return nil, err
	}
	g, err := e.load(ctx)
	if err != nil {
		e.failed.Store(&loadFailure{at: e.now(), err: err})
		return nil, domain.NewNotReady(err)
	}
	e.publish(g)
	return g, nil
}

func (e *Engine) recentFailure() error {
	f := e.failed.Load()
	if f == nil || e.now().Sub(f.at) >= e.retryAfter {
		return nil
	}
	return domain.NewNotReady(f.err)
}

// Reload loads the current artifacts and swaps them in.
// On failure the previous generation keeps serving.
func (e *Engine) Reload(ctx context.Context) (model.Meta, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, err := e.load(ctx)
	if err != nil {
		return model.Meta{}, fmt.Errorf("reload model: %w", err)
	}
	prev := e.current.Load()
	e.publish(g)
	if prev != nil {
		e.logger.Info("model generation swapped",
			zap.String("from", prev.Meta().Version),
			zap.String("to", g.Meta().Version),
		)
	}
	return g.Meta(), nil
}

// Ready reports whether a generation is being served.
func (e *Engine) Ready() bool { return e.current.Load() != nil }

// Meta returns the served generation's metadata.
func (e *Engine) Meta() (model.Meta, bool) {
	g := e.current.Load()
	if g == nil {
		return model.Meta{}, false
	}
	return g.Meta(), true
}

func (e *Engine) load(ctx context.Context) (*model.Generation, error) {
	g, err := e.loader.Load(ctx)
	if err != nil {
		e.incLoads("failure")
		e.logger.Warn("model load failed", zap.Error(err))
		return nil, err
	}
	e.incLoads("success")
	return g, nil
}

func (e *Engine) publish(g *model.Generation) {
	e.current.Store(g)
	e.failed.Store(nil)
	meta := g.Meta()
	if e.metrics.Documents != nil {
		e.metrics.Documents.Set(float64(meta.Documents))
	}
	if e.metrics.Vocabulary != nil {
		e.metrics.Vocabulary.Set(float64(meta.Vocabulary))
	}
	if e.metrics.BuiltAt != nil {
		e.metrics.BuiltAt.Set(float64(meta.BuiltAt.Unix()))
	}
	e.logger.Info("model generation loaded",
		zap.String("version", meta.Version),
		zap.Int("documents", meta.Documents),
		zap.Int("vocabulary", meta.Vocabulary),
	)
}

func (e *Engine) incLoads(result string) {
	if e.metrics.Loads != nil {
		e.metrics.Loads.WithLabelValues(result).Inc()
	}
}

// HealthCheck loads the model if needed and reports whether it can be served.
func (e *Engine) HealthCheck(ctx context.Context) error {
	_, err := e.Generation(ctx)
	return err
}
