package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wisata/internal/domain"
	"github.com/kailas-cloud/wisata/internal/domain/recommendation"
	"github.com/kailas-cloud/wisata/internal/domain/search/request"
)

func newQueryMetrics() QueryMetrics {
	return QueryMetrics{
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "test_queries_total"}, []string{"mode", "outcome"}),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "test_query_duration_seconds"}, []string{"mode"}),
	}
}

func mustRequest(t *testing.T, query, sort string, limit int) *request.Request {
	t.Helper()
	r, err := request.New(query, sort, limit)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &r
}

func ids(items []recommendation.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestSearch_EmptyQueryDoesNotLoadModel(t *testing.T) {
	m := newQueryMetrics()
	svc, loader := newService(t, newFakeDest(), m)

	for _, q := range []string{"", "   ", "dan yang di 2024 !!"} {
		items, err := svc.Search(context.Background(), mustRequest(t, q, "", 0))
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", q, err)
		}
		if len(items) != 0 {
			t.Errorf("%q: expected no results, got %v", q, ids(items))
		}
	}
	if loader.callCount() != 0 {
		t.Errorf("model loaded %d times for empty queries", loader.callCount())
	}
	if got := testutil.ToFloat64(m.Queries.WithLabelValues("text", "empty")); got != 3 {
		t.Errorf("expected 3 empty outcomes, got %v", got)
	}
}

func TestSearch_RanksMatchingDestinations(t *testing.T) {
	svc, _ := newService(t, newFakeDest(), QueryMetrics{})

	items, err := svc.Search(context.Background(), mustRequest(t, "Pantai pasir putih", "", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 results, got %v", ids(items))
	}
	for _, it := range items {
		if it.ID != idKuta && it.ID != idSanur {
			t.Errorf("unexpected result %s", it.ID)
		}
		if it.Score < 0.05 || it.Score > 1+1e-9 {
			t.Errorf("score out of range: %v", it.Score)
		}
	}
	if items[0].Score < items[1].Score {
		t.Errorf("results not sorted by score: %v, %v", items[0].Score, items[1].Score)
	}
	for _, it := range items {
		if it.ID == idSanur {
			if !strings.HasSuffix(it.Description, "...") {
				t.Errorf("long description not truncated: %q", it.Description)
			}
			if n := len([]rune(it.Description)); n != 153 {
				t.Errorf("truncated description has %d runes, want 153", n)
			}
		}
		if it.ID == idKuta && it.Description != "pasir putih laut biru" {
			t.Errorf("short description changed: %q", it.Description)
		}
	}
}

func TestSearch_SortByRating(t *testing.T) {
	svc, _ := newService(t, newFakeDest(), QueryMetrics{})

	items, err := svc.Search(context.Background(), mustRequest(t, "pantai pasir putih", "rating", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0].ID != idSanur || items[1].ID != idKuta {
		t.Errorf("expected Sanur (4.5) before Kuta (4.2), got %v", ids(items))
	}
}

func TestSearch_Limit(t *testing.T) {
	svc, _ := newService(t, newFakeDest(), QueryMetrics{})

	items, err := svc.Search(context.Background(), mustRequest(t, "pantai pasir putih", "", 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 result, got %d", len(items))
	}
}

func TestSearch_CandidateCap(t *testing.T) {
	loader := &fakeLoader{gen: fitted(t)}
	settings := DefaultSettings()
	settings.CandidateCap = 1
	svc := New(NewEngine(loader, EngineMetrics{}, zap.NewNop()), newFakeDest(), settings, QueryMetrics{}, zap.NewNop())

	items, err := svc.Search(context.Background(), mustRequest(t, "pantai pasir putih", "", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected cap of 1, got %d", len(items))
	}
}

func TestSearch_NoMatch(t *testing.T) {
	svc, _ := newService(t, newFakeDest(), QueryMetrics{})

	items, err := svc.Search(context.Background(), mustRequest(t, "museum sejarah kota", "", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no results, got %v", ids(items))
	}
}

func TestSearch_NotReady(t *testing.T) {
	m := newQueryMetrics()
	loader := &fakeLoader{err: domain.ErrArtifactMissing}
	svc := New(NewEngine(loader, EngineMetrics{}, zap.NewNop()), newFakeDest(), DefaultSettings(), m, zap.NewNop())

	_, err := svc.Search(context.Background(), mustRequest(t, "pantai", "", 0))
	if !errors.Is(err, domain.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if !errors.Is(err, domain.ErrArtifactMissing) {
		t.Errorf("expected ErrArtifactMissing cause, got %v", err)
	}
	if got := testutil.ToFloat64(m.Queries.WithLabelValues("text", "not_ready")); got != 1 {
		t.Errorf("expected 1 not_ready outcome, got %v", got)
	}
}

func TestSearch_SkipsFailedLookups(t *testing.T) {
	dest := newFakeDest()
	delete(dest.records, idSanur)
	svc, _ := newService(t, dest, QueryMetrics{})

	items, err := svc.Search(context.Background(), mustRequest(t, "pantai pasir putih", "", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != idKuta {
		t.Errorf("expected only Kuta, got %v", ids(items))
	}

	dest.errs[idKuta] = errors.New("connection reset")
	items, err = svc.Search(context.Background(), mustRequest(t, "pantai pasir putih", "", 0))
	if err != nil {
		t.Fatalf("lookup failures must not fail the query: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no results, got %v", ids(items))
	}
}

func TestSearch_RecoversRankingPanic(t *testing.T) {
	svc := New(panicModels{}, newFakeDest(), DefaultSettings(), QueryMetrics{}, zap.NewNop())

	items, err := svc.Search(context.Background(), mustRequest(t, "pantai", "", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty result after panic, got %v", ids(items))
	}
}

func TestSimilar_ExcludesSource(t *testing.T) {
	svc, _ := newService(t, newFakeDest(), QueryMetrics{})

	req, err := request.NewSimilar(idBromo, 5)
	if err != nil {
		t.Fatal(err)
	}
	items, err := svc.Similar(context.Background(), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("expected similar destinations")
	}
	for _, it := range items {
		if it.ID == idBromo {
			t.Error("source destination returned as its own neighbor")
		}
	}
	if items[0].ID != idIjen {
		t.Errorf("expected Ijen first, got %v", ids(items))
	}
	if items[0].DistanceMeters == nil || *items[0].DistanceMeters <= 0 {
		t.Errorf("expected a distance from Bromo to Ijen, got %v", items[0].DistanceMeters)
	}
}

func TestSimilar_NoDistanceWithoutCoordinates(t *testing.T) {
	svc, _ := newService(t, newFakeDest(), QueryMetrics{})

	req, _ := request.NewSimilar(idKuta, 5)
	items, err := svc.Similar(context.Background(), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, it := range items {
		if it.ID == idSanur && it.DistanceMeters != nil {
			t.Errorf("Sanur has no coordinates, got distance %v", *it.DistanceMeters)
		}
		if len([]rune(it.Description)) > recommendation.SimilarDescriptionLimit+3 {
			t.Errorf("description not truncated to similar limit: %d runes", len([]rune(it.Description)))
		}
	}
}

func TestSimilar_UnknownID(t *testing.T) {
	svc, _ := newService(t, newFakeDest(), QueryMetrics{})

	req, _ := request.NewSimilar(idGhost, 5)
	items, err := svc.Similar(context.Background(), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no results, got %v", ids(items))
	}
}

func TestDetail(t *testing.T) {
	svc, _ := newService(t, newFakeDest(), QueryMetrics{})

	d, err := svc.Detail(context.Background(), idBromo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Destination.ID() != idBromo || !d.ModelReady {
		t.Errorf("unexpected detail %+v", d)
	}
	for _, it := range d.Similar {
		if it.ID == idBromo {
			t.Error("detail lists the destination as similar to itself")
		}
	}
}

func TestDetail_ModelNotReady(t *testing.T) {
	loader := &fakeLoader{err: domain.ErrArtifactMissing}
	svc := New(NewEngine(loader, EngineMetrics{}, zap.NewNop()), newFakeDest(), DefaultSettings(), QueryMetrics{}, zap.NewNop())

	d, err := svc.Detail(context.Background(), idKuta)
	if err != nil {
		t.Fatalf("detail must not fail when the model is missing: %v", err)
	}
	if d.ModelReady {
		t.Error("expected ModelReady=false")
	}
	if d.Similar == nil || len(d.Similar) != 0 {
		t.Errorf("expected empty similar list, got %v", d.Similar)
	}
	if d.Destination.Name() != "Pantai Kuta" {
		t.Errorf("unexpected destination %q", d.Destination.Name())
	}
}

func TestDetail_Errors(t *testing.T) {
	m := newQueryMetrics()
	svc, _ := newService(t, newFakeDest(), m)

	if _, err := svc.Detail(context.Background(), idGhost); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Detail(context.Background(), "not-a-uuid"); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
	if got := testutil.ToFloat64(m.Queries.WithLabelValues("detail", "not_found")); got != 1 {
		t.Errorf("expected 1 not_found outcome, got %v", got)
	}
}
