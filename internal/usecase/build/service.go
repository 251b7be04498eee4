// Package build runs the offline batch that turns destination records into a model generation.
package build

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wisata/internal/corpus"
	"github.com/kailas-cloud/wisata/internal/model"
)

// Result summarizes a finished build.
type Result struct {
	Meta     model.Meta
	Pruned   []string
	Duration time.Duration
}

// Service fits and publishes model generations.
type Service struct {
	src    DestinationLister
	store  GenerationStore
	keep   int
	now    func() time.Time
	logger *zap.Logger
}

// New creates a build service. keep is the number of generations retained after a build.
func New(src DestinationLister, store GenerationStore, keep int, logger *zap.Logger) *Service {
	return &Service{src: src, store: store, keep: keep, now: time.Now, logger: logger}
}

// WithClock overrides the build timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Run lists all records, fits a generation and publishes it.
// A failed prune is logged; the new generation is already live.
func (s *Service) Run(ctx context.Context) (Result, error) {
	start := s.now()

	records, err := s.src.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list destinations: %w", err)
	}
	c := corpus.Build(records)
	s.logger.Info("corpus built",
		zap.Int("records", c.Len()),
		zap.Int("categories", len(c.Categories())),
	)

	g, err := model.FitAt(c, start.UTC())
	if err != nil {
		return Result{}, fmt.Errorf("fit model: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := s.store.Save(ctx, g); err != nil {
		return Result{}, fmt.Errorf("save generation: %w", err)
	}

	res := Result{Meta: g.Meta()}
	if s.keep > 0 {
		pruned, err := s.store.Prune(s.keep)
		if err != nil {
			s.logger.Warn("prune generations failed", zap.Error(err))
		}
		res.Pruned = pruned
	}
	res.Duration = s.now().Sub(start)

	s.logger.Info("model generation built",
		zap.String("version", res.Meta.Version),
		zap.Int("documents", res.Meta.Documents),
		zap.Int("vocabulary", res.Meta.Vocabulary),
		zap.Int("non_zeros", res.Meta.NonZeros),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}
