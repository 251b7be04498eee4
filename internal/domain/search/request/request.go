package request

import (
	"fmt"

	"github.com/kailas-cloud/wisata/internal/domain/recommendation"
)

// Request parameter limits.
const (
	// MaxQueryLength is the maximum allowed query length in bytes.
	MaxQueryLength = 4096
	// MaxLimit bounds the caller-supplied result limit. The engine cap still applies.
	MaxLimit = 100
)

// Request is a validated free-text recommendation query.
// An empty query is valid and yields no results.
type Request struct {
	query string
	sort  recommendation.SortOrder
	limit int
}

// New validates free-text parameters. limit <= 0 means "no extra limit".
func New(query, sort string, limit int) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	order, err := recommendation.ParseSortOrder(sort)
	if err != nil {
		return Request{}, err
	}
	if limit < 0 {
		limit = 0
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Request{query: query, sort: order, limit: limit}, nil
}

// Query returns the raw query text.
func (r *Request) Query() string { return r.query }

// Sort returns the presentation order.
func (r *Request) Sort() recommendation.SortOrder { return r.sort }

// Limit returns the result limit, 0 when unset.
func (r *Request) Limit() int { return r.limit }
