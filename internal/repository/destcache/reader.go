// Package destcache is a read-through cache for destination lookups.
package destcache

import (
	"context"
	"errors"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wisata/internal/db"
	domdest "github.com/kailas-cloud/wisata/internal/domain/destination"
)

// store is the consumer interface for the lookup cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// reader is the wrapped destination source.
type reader interface {
	List(ctx context.Context) ([]domdest.Destination, error)
	Get(ctx context.Context, id string) (domdest.Destination, error)
}

// entry is the cached JSON form.
type entry struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category,omitempty"`
	Description  string  `json:"description,omitempty"`
	Facilities   string  `json:"facilities,omitempty"`
	Rating       float64 `json:"rating"`
	ReviewCount  int     `json:"review_count"`
	Image        string  `json:"image,omitempty"`
	Address      string  `json:"address,omitempty"`
	Coordinates  string  `json:"coordinates,omitempty"`
	OpeningHours string  `json:"opening_hours,omitempty"`
	TicketInfo   string  `json:"ticket_info,omitempty"`
}

// CachedReader caches Get results in a key-value store. Cache failures never
// fail a lookup; they are logged and the inner reader answers.
type CachedReader struct {
	inner      reader
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner reader,
	s store,
	keyPrefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedReader {
	return &CachedReader{
		inner:      inner,
		store:      s,
		prefix:     keyPrefix + "cache:place:",
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// List is never cached.
func (c *CachedReader) List(ctx context.Context) ([]domdest.Destination, error) {
	return c.inner.List(ctx)
}

// Get returns a cached destination or reads through.
func (c *CachedReader) Get(ctx context.Context, id string) (domdest.Destination, error) {
	key := c.prefix + id

	if d, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return d, nil
	}

	c.incCache("miss")

	d, err := c.inner.Get(ctx, id)
	if err != nil {
		return domdest.Destination{}, err
	}

	c.putToCache(ctx, key, &d)
	return d, nil
}

func (c *CachedReader) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedReader) getFromCache(ctx context.Context, key string) (domdest.Destination, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached destination", zap.String("key", key), zap.Error(err))
		}
		return domdest.Destination{}, false
	}
	if len(data) == 0 {
		return domdest.Destination{}, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("Failed to parse cached destination", zap.String("key", key), zap.Error(err))
		return domdest.Destination{}, false
	}
	return fromEntry(&e), true
}

func (c *CachedReader) putToCache(ctx context.Context, key string, d *domdest.Destination) {
	data, err := json.Marshal(toEntry(d))
	if err != nil {
		c.logger.Warn("Failed to encode destination", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache destination", zap.String("key", key), zap.Error(err))
	}
}

func toEntry(d *domdest.Destination) entry {
	a := d.Attributes()
	return entry{
		ID: d.ID(), Name: a.Name, Category: a.Category, Description: a.Description,
		Facilities: a.Facilities, Rating: a.Rating, ReviewCount: a.ReviewCount,
		Image: a.Image, Address: a.Address, Coordinates: a.Coordinates,
		OpeningHours: a.OpeningHours, TicketInfo: a.TicketInfo,
	}
}

func fromEntry(e *entry) domdest.Destination {
	return domdest.Reconstruct(e.ID, domdest.Attributes{
		Name: e.Name, Category: e.Category, Description: e.Description,
		Facilities: e.Facilities, Rating: e.Rating, ReviewCount: e.ReviewCount,
		Image: e.Image, Address: e.Address, Coordinates: e.Coordinates,
		OpeningHours: e.OpeningHours, TicketInfo: e.TicketInfo,
	})
}
