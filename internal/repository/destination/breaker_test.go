package destination

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wisata/internal/domain"
	domdest "github.com/kailas-cloud/wisata/internal/domain/destination"
)

func newTestBreaker(inner Reader) (*BreakerReader, BreakerMetrics) {
	m := BreakerMetrics{
		State:    prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "test_breaker_state"}, []string{"name"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_breaker_requests"}, []string{"name", "result"}),
	}
	b := NewBreaker(inner, BreakerSettings{
		Name:         "test",
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  3,
		FailureRatio: 0.6,
	}, m, zap.NewNop())
	return b, m
}

func TestBreaker_PassesThrough(t *testing.T) {
	inner := &fakeReader{items: map[string]domdest.Destination{idBromo: bromo()}}
	b, m := newTestBreaker(inner)

	d, err := b.Get(context.Background(), idBromo)
	if err != nil || d.ID() != idBromo {
		t.Fatalf("Get = %v, %v", d.ID(), err)
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("test", "success")); got != 1 {
		t.Errorf("success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.State.WithLabelValues("test")); got != 0 {
		t.Errorf("state = %v, want 0 (closed)", got)
	}
}

func TestBreaker_NotFoundDoesNotTrip(t *testing.T) {
	inner := &fakeReader{items: map[string]domdest.Destination{}}
	b, _ := newTestBreaker(inner)
	for i := 0; i < 10; i++ {
		if _, err := b.Get(context.Background(), idKuta); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed", b.State())
	}
}

func TestBreaker_OpensAndFailsFast(t *testing.T) {
	inner := &fakeReader{getErr: errors.New("connection refused")}
	b, m := newTestBreaker(inner)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = b.Get(ctx, idBromo)
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}
	calls := inner.calls

	_, err := b.Get(ctx, idBromo)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("err = %v, want ErrOpenState", err)
	}
	if inner.calls != calls {
		t.Error("inner reader called while open")
	}
	if got := testutil.ToFloat64(m.Requests.WithLabelValues("test", "rejected")); got != 1 {
		t.Errorf("rejected = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.State.WithLabelValues("test")); got != 2 {
		t.Errorf("state gauge = %v, want 2", got)
	}
}

func TestBreaker_ListNotWrapped(t *testing.T) {
	inner := &fakeReader{items: map[string]domdest.Destination{idBromo: bromo()}}
	b, _ := newTestBreaker(inner)
	list, err := b.List(context.Background())
	if err != nil || len(list) != 1 {
		t.Errorf("List = %d, %v", len(list), err)
	}
}
