package chi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wisata/internal/domain"
	domdest "github.com/kailas-cloud/wisata/internal/domain/destination"
	"github.com/kailas-cloud/wisata/internal/domain/recommendation"
	"github.com/kailas-cloud/wisata/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/wisata/internal/logger"
	"github.com/kailas-cloud/wisata/internal/model"
	"github.com/kailas-cloud/wisata/internal/version"
	healthuc "github.com/kailas-cloud/wisata/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/wisata/internal/usecase/recommend"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// ModelAdmin reloads and describes the served model.
type ModelAdmin interface {
	Reload(ctx context.Context) (model.Meta, error)
	Meta() (model.Meta, bool)
}

// Server is the HTTP API over the recommendation services.
type Server struct {
	recommend     *recommenduc.Service
	models        ModelAdmin
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	recommend *recommenduc.Service,
	models ModelAdmin,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recommend: recommend,
		models:    models,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeDestinationNotFound),
		// ErrNotReady wraps ErrArtifactMissing; it must be matched first.
		sentinelHandler(domain.ErrNotReady, http.StatusServiceUnavailable, CodeModelNotReady),
		sentinelHandler(domain.ErrArtifactMissing, http.StatusServiceUnavailable, CodeArtifactsMissing),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/recommendations", s.SearchRecommendations)
		r.Post("/recommendations", s.PostRecommendations)
		r.Get("/destinations/{id}", s.GetDestination)
		r.Get("/destinations/{id}/similar", s.SimilarDestinations)
		r.Post("/admin/reload", s.ReloadModel)
	})
}

// SearchRecommendations handles GET /api/v1/recommendations?q=&sort=&limit=.
func (s *Server) SearchRecommendations(w http.ResponseWriter, r *http.Request) {
	var (
		q, sort *string
		limit   *int
	)
	query := r.URL.Query()
	for name, dest := range map[string]any{"q": &q, "sort": &sort, "limit": &limit} {
		if err := runtime.BindQueryParameter("form", true, false, name, query, dest); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid query parameter "+name)
			return
		}
	}
	s.search(w, r, RecommendRequest{Query: deref(q), Sort: deref(sort), Limit: deref(limit)})
}

// PostRecommendations handles POST /api/v1/recommendations.
func (s *Server) PostRecommendations(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	s.search(w, r, req)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, in RecommendRequest) {
	req, err := request.New(in.Query, in.Sort, in.Limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	items, err := s.recommend.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RecommendResponse{
		Query: in.Query,
		Sort:  string(req.Sort()),
		Items: itemsToAPI(items),
		Count: len(items),
	})
}

// SimilarDestinations handles GET /api/v1/destinations/{id}/similar?k=.
func (s *Server) SimilarDestinations(w http.ResponseWriter, r *http.Request) {
	var k *int
	if err := runtime.BindQueryParameter("form", true, false, "k", r.URL.Query(), &k); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid query parameter k")
		return
	}

	req, err := request.NewSimilar(chi.URLParam(r, "id"), deref(k))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	items, err := s.recommend.Similar(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SimilarResponse{
		ID:    req.ID(),
		Items: itemsToAPI(items),
		Count: len(items),
	})
}

// GetDestination handles GET /api/v1/destinations/{id}.
func (s *Server) GetDestination(w http.ResponseWriter, r *http.Request) {
	d, err := s.recommend.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, DetailResponse{
		Destination: destinationToAPI(&d.Destination),
		Similar:     itemsToAPI(d.Similar),
		ModelReady:  d.ModelReady,
	})
}

// ReloadModel handles POST /api/v1/admin/reload.
func (s *Server) ReloadModel(w http.ResponseWriter, r *http.Request) {
	meta, err := s.models.Reload(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, modelInfo(meta))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	resp := HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
	}
	if meta, ok := s.models.Meta(); ok {
		info := modelInfo(meta)
		resp.Model = &info
	}

	// degraded keeps the instance in rotation; only a total failure is 503
	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, resp)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrNotFound,
		domain.ErrNotReady,
		domain.ErrArtifactMissing,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func itemsToAPI(items []recommendation.Item) []RecommendationItem {
	out := make([]RecommendationItem, len(items))
	for i, it := range items {
		out[i] = RecommendationItem{
			ID:             it.ID,
			Name:           it.Name,
			Category:       it.Category,
			Description:    it.Description,
			Score:          it.Score,
			Rating:         it.Rating,
			ReviewCount:    it.ReviewCount,
			Image:          it.Image,
			DistanceMeters: it.DistanceMeters,
		}
	}
	return out
}

func destinationToAPI(d *domdest.Destination) Destination {
	a := d.Attributes()
	return Destination{
		ID:           d.ID(),
		Name:         a.Name,
		Category:     a.Category,
		Description:  a.Description,
		Facilities:   a.Facilities,
		Rating:       a.Rating,
		ReviewCount:  a.ReviewCount,
		Image:        a.Image,
		Address:      a.Address,
		Coordinates:  a.Coordinates,
		OpeningHours: a.OpeningHours,
		TicketInfo:   a.TicketInfo,
	}
}

func modelInfo(m model.Meta) ModelInfo {
	return ModelInfo{
		Version:    m.Version,
		BuiltAt:    m.BuiltAt,
		Documents:  m.Documents,
		Vocabulary: m.Vocabulary,
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
