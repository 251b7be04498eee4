package destination

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/wisata/internal/db"
	"github.com/kailas-cloud/wisata/internal/domain"
	domdest "github.com/kailas-cloud/wisata/internal/domain/destination"
)

// hashStore is the consumer interface for hash-backed destinations (ISP).
type hashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// ValkeyRepo stores destinations as hashes under <prefix>place:<id>.
type ValkeyRepo struct {
	store  hashStore
	prefix string
}

// NewValkey creates a hash-backed destination repository.
func NewValkey(s hashStore, keyPrefix string) *ValkeyRepo {
	return &ValkeyRepo{store: s, prefix: keyPrefix + "place:"}
}

func (r *ValkeyRepo) key(id string) string { return r.prefix + id }

// List returns every destination ordered by key, so the corpus order is stable across builds.
func (r *ValkeyRepo) List(ctx context.Context) ([]domdest.Destination, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan destinations: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load destinations: %w", err)
	}
	out := make([]domdest.Destination, 0, len(keys))
	for i, m := range hashes {
		if len(m) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		out = append(out, parseHashFields(strings.TrimPrefix(keys[i], r.prefix), m))
	}
	return out, nil
}

// Get returns one destination or domain.ErrNotFound.
func (r *ValkeyRepo) Get(ctx context.Context, id string) (domdest.Destination, error) {
	m, err := r.store.HGetAll(ctx, r.key(id))
	if err != nil {
		return domdest.Destination{}, fmt.Errorf("get destination %s: %w", id, err)
	}
	if len(m) == 0 {
		return domdest.Destination{}, fmt.Errorf("destination %s: %w", id, domain.ErrNotFound)
	}
	return parseHashFields(id, m), nil
}

// Put stores one destination.
func (r *ValkeyRepo) Put(ctx context.Context, d *domdest.Destination) error {
	if err := r.store.HSet(ctx, r.key(d.ID()), buildHashFields(d)); err != nil {
		return fmt.Errorf("put destination %s: %w", d.ID(), err)
	}
	return nil
}

// PutMany stores destinations in one round-trip.
func (r *ValkeyRepo) PutMany(ctx context.Context, ds []domdest.Destination) error {
	items := make([]db.HashSetItem, len(ds))
	for i := range ds {
		items[i] = db.HashSetItem{Key: r.key(ds[i].ID()), Fields: buildHashFields(&ds[i])}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("put destinations: %w", err)
	}
	return nil
}
