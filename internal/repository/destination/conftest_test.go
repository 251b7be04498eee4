package destination

import (
	"context"
	"sort"
	"strings"

	"github.com/kailas-cloud/wisata/internal/db"
	"github.com/kailas-cloud/wisata/internal/domain"
	domdest "github.com/kailas-cloud/wisata/internal/domain/destination"
)

const (
	idBromo = "0b8f4c1e-7d59-4a7e-9a43-5f1c2a9d6e10"
	idKuta  = "6c2d9a5b-1f3e-4b7a-8d2c-9e0f1a2b3c4d"
)

// memHashStore is an in-memory hashStore.
type memHashStore struct {
	hashes  map[string]map[string]string
	scanErr error
}

func newMemHashStore() *memHashStore {
	return &memHashStore{hashes: make(map[string]map[string]string)}
}

func (m *memHashStore) HSet(_ context.Context, key string, fields map[string]string) error {
	h := m.hashes[key]
	if h == nil {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *memHashStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	for _, it := range items {
		_ = m.HSet(ctx, it.Key, it.Fields)
	}
	return nil
}

func (m *memHashStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	return m.hashes[key], nil
}

func (m *memHashStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i] = m.hashes[k]
	}
	return out, nil
}

func (m *memHashStore) Scan(_ context.Context, pattern string) ([]string, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	// reverse order so List has to sort
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

// fakeReader is a scripted Reader.
type fakeReader struct {
	items  map[string]domdest.Destination
	getErr error
	calls  int
}

func (f *fakeReader) List(_ context.Context) ([]domdest.Destination, error) {
	out := make([]domdest.Destination, 0, len(f.items))
	for _, d := range f.items {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeReader) Get(_ context.Context, id string) (domdest.Destination, error) {
	f.calls++
	if f.getErr != nil {
		return domdest.Destination{}, f.getErr
	}
	d, ok := f.items[id]
	if !ok {
		return domdest.Destination{}, domain.ErrNotFound
	}
	return d, nil
}

func bromo() domdest.Destination {
	return domdest.Reconstruct(idBromo, domdest.Attributes{
		Name: "Gunung Bromo", Category: "Alam", Description: "wisata alam pegunungan sejuk",
		Rating: 4.7, ReviewCount: 1200, Coordinates: "-7.9425,112.9530",
	})
}

func kuta() domdest.Destination {
	return domdest.Reconstruct(idKuta, domdest.Attributes{
		Name: "Pantai Kuta", Category: "Pantai", Description: "pasir putih laut biru",
		Facilities: "toilet parkir", Rating: 4.5, ReviewCount: 800,
	})
}
