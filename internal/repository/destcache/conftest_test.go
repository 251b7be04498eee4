package destcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wisata/internal/db"
	"github.com/kailas-cloud/wisata/internal/domain"
	domdest "github.com/kailas-cloud/wisata/internal/domain/destination"
)

const testID = "0b8f4c1e-7d59-4a7e-9a43-5f1c2a9d6e10"

type mockReader struct {
	items map[string]domdest.Destination
	calls int
}

func (m *mockReader) List(_ context.Context) ([]domdest.Destination, error) { return nil, nil }

func (m *mockReader) Get(_ context.Context, id string) (domdest.Destination, error) {
	m.calls++
	d, ok := m.items[id]
	if !ok {
		return domdest.Destination{}, domain.ErrNotFound
	}
	return d, nil
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func bromo() domdest.Destination {
	return domdest.Reconstruct(testID, domdest.Attributes{
		Name: "Gunung Bromo", Category: "Alam", Rating: 4.7, ReviewCount: 1200,
	})
}

func newTestCachedReader(t *testing.T, inner *mockReader) (*CachedReader, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	cr := New(inner, ms, "wisata:", time.Minute, nil, zap.NewNop())
	return cr, ms
}
