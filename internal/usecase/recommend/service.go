package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wisata/internal/domain"
	domdest "github.com/kailas-cloud/wisata/internal/domain/destination"
	"github.com/kailas-cloud/wisata/internal/domain/geo"
	"github.com/kailas-cloud/wisata/internal/domain/recommendation"
	"github.com/kailas-cloud/wisata/internal/domain/search/mode"
	"github.com/kailas-cloud/wisata/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/wisata/internal/logger"
	"github.com/kailas-cloud/wisata/internal/model"
	"github.com/kailas-cloud/wisata/internal/textnorm"
)

// Settings tune ranking and presentation.
type Settings struct {
	SimilarityFloor         float64
	CandidateCap            int
	SimilarK                int
	SearchDescriptionLimit  int
	SimilarDescriptionLimit int
}

// DefaultSettings returns the production ranking parameters.
func DefaultSettings() Settings {
	return Settings{
		SimilarityFloor:         0.05,
		CandidateCap:            30,
		SimilarK:                request.DefaultK,
		SearchDescriptionLimit:  recommendation.SearchDescriptionLimit,
		SimilarDescriptionLimit: recommendation.SimilarDescriptionLimit,
	}
}

// QueryMetrics are the per-query collectors. Nil fields are skipped.
type QueryMetrics struct {
	Queries  *prometheus.CounterVec   // labels: mode, outcome
	Duration *prometheus.HistogramVec // label: mode
}

// Detail is a destination with its item-to-item recommendations.
type Detail struct {
	Destination domdest.Destination
	Similar     []recommendation.Item
	// ModelReady is false when the similar list could not be computed.
	ModelReady bool
}

// Service answers free-text and item-to-item recommendation queries.
type Service struct {
	models   Models
	dest     DestinationReader
	settings Settings
	metrics  QueryMetrics
	logger   *zap.Logger
}

// New creates a recommendation service.
func New(models Models, dest DestinationReader, s Settings, m QueryMetrics, logger *zap.Logger) *Service {
	return &Service{models: models, dest: dest, settings: s, metrics: m, logger: logger}
}

// Search ranks destinations against free text.
// A query that normalizes to nothing returns no results without touching the model.
func (s *Service) Search(ctx context.Context, req *request.Request) (items []recommendation.Item, err error) {
	defer s.observe(mode.Text, time.Now(), &items, &err)

	q := textnorm.Normalize(req.Query())
	if q == "" {
		return nil, nil
	}
	g, err := s.models.Generation(ctx)
	if err != nil {
		return nil, err
	}

	hits := s.guard(ctx, mode.Text, func() []model.Hit {
		return g.Rank(q, s.settings.SimilarityFloor, s.settings.CandidateCap)
	})
	items = s.resolve(ctx, g, hits, s.settings.SearchDescriptionLimit)

	req.Sort().Apply(items)
	if req.Limit() > 0 && len(items) > req.Limit() {
		items = items[:req.Limit()]
	}
	return items, nil
}

// Similar returns the destinations most similar to the given one.
// An id the model does not know yields no results.
func (s *Service) Similar(ctx context.Context, req *request.SimilarRequest) (items []recommendation.Item, err error) {
	defer s.observe(mode.Similar, time.Now(), &items, &err)

	g, err := s.models.Generation(ctx)
	if err != nil {
		return nil, err
	}
	return s.similar(ctx, g, req.ID(), req.K(), nil), nil
}

// Detail returns a destination record and its similar list.
// The record is returned even when the model is not ready.
func (s *Service) Detail(ctx context.Context, id string) (d Detail, err error) {
	var items []recommendation.Item
	defer s.observe(mode.Detail, time.Now(), &items, &err)

	if err = domdest.ValidateID(id); err != nil {
		return Detail{}, errors.Join(domain.ErrInvalidRequest, err)
	}
	rec, err := s.dest.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	d = Detail{Destination: rec}

	g, gerr := s.models.Generation(ctx)
	if gerr != nil {
		logpkg.FromContextOr(ctx, s.logger).Warn("detail without similar list", zap.Error(gerr))
		items = []recommendation.Item{}
		d.Similar = items
		return d, nil
	}
	items = s.similar(ctx, g, id, s.settings.SimilarK, &rec)
	d.Similar = items
	d.ModelReady = true
	return d, nil
}

// similar ranks neighbors of id. src, when known, adds distances from it.
func (s *Service) similar(
	ctx context.Context, g *model.Generation, id string, k int, src *domdest.Destination,
) []recommendation.Item {
	row, ok := g.RowOf(id)
	if !ok {
		return []recommendation.Item{}
	}
	hits := s.guard(ctx, mode.Similar, func() []model.Hit {
		return g.Similar(row, k, s.settings.SimilarityFloor)
	})
	items, recs := s.resolveRecords(ctx, g, hits, s.settings.SimilarDescriptionLimit)

	if src == nil && len(items) > 0 {
		if rec, err := s.dest.Get(ctx, id); err == nil {
			src = &rec
		}
	}
	if src != nil {
		if lat, lon, ok := src.LatLong(); ok {
			for i := range items {
				if lat2, lon2, ok := recs[i].LatLong(); ok {
					dist := geo.Haversine(lat, lon, lat2, lon2)
					items[i].DistanceMeters = &dist
				}
			}
		}
	}
	return items
}

// guard runs a ranking step; a panic is logged and turned into no hits.
func (s *Service) guard(ctx context.Context, m mode.Mode, rank func() []model.Hit) (hits []model.Hit) {
	defer func() {
		if r := recover(); r != nil {
			logpkg.FromContextOr(ctx, s.logger).Error("ranking failed",
				zap.String("mode", string(m)),
				zap.Any("panic", r),
				zap.Stack("stacktrace"),
			)
			hits = nil
		}
	}()
	return rank()
}

func (s *Service) resolve(
	ctx context.Context, g *model.Generation, hits []model.Hit, descLimit int,
) []recommendation.Item {
	items, _ := s.resolveRecords(ctx, g, hits, descLimit)
	return items
}

// resolveRecords looks up every hit. Missing records are skipped silently,
// other lookup failures are logged and skipped.
func (s *Service) resolveRecords(
	ctx context.Context, g *model.Generation, hits []model.Hit, descLimit int,
) ([]recommendation.Item, []domdest.Destination) {
	items := make([]recommendation.Item, 0, len(hits))
	recs := make([]domdest.Destination, 0, len(hits))
	for _, h := range hits {
		id := g.Row(h.Row).ID
		rec, err := s.dest.Get(ctx, id)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logpkg.FromContextOr(ctx, s.logger).Warn("destination lookup failed",
					zap.String("id", id), zap.Error(err))
			}
			continue
		}
		items = append(items, toItem(&rec, h.Score, descLimit))
		recs = append(recs, rec)
	}
	return items, recs
}

func toItem(d *domdest.Destination, score float64, descLimit int) recommendation.Item {
	return recommendation.Item{
		ID:          d.ID(),
		Name:        d.Name(),
		Category:    d.Category(),
		Description: recommendation.Truncate(d.Description(), descLimit),
		Score:       score,
		Rating:      d.Rating(),
		ReviewCount: d.ReviewCount(),
		Image:       d.Image(),
	}
}

func (s *Service) observe(m mode.Mode, start time.Time, items *[]recommendation.Item, err *error) {
	outcome := "ok"
	switch {
	case *err != nil && errors.Is(*err, domain.ErrNotReady):
		outcome = "not_ready"
	case *err != nil && errors.Is(*err, domain.ErrNotFound):
		outcome = "not_found"
	case *err != nil:
		outcome = "error"
	case len(*items) == 0:
		outcome = "empty"
	}
	if s.metrics.Queries != nil {
		s.metrics.Queries.WithLabelValues(string(m), outcome).Inc()
	}
	if s.metrics.Duration != nil {
		s.metrics.Duration.WithLabelValues(string(m)).Observe(time.Since(start).Seconds())
	}
}
