package request

import (
	"fmt"

	"github.com/kailas-cloud/wisata/internal/domain/destination"
)

// Neighbor count limits.
const (
	DefaultK = 5
	MaxK     = 50
)

// SimilarRequest is a validated item-to-item query.
type SimilarRequest struct {
	id string
	k  int
}

// NewSimilar validates the source id and normalizes k (default 5, clamped to MaxK).
func NewSimilar(id string, k int) (SimilarRequest, error) {
	if err := destination.ValidateID(id); err != nil {
		return SimilarRequest{}, fmt.Errorf("invalid id: %w", err)
	}
	if k <= 0 {
		k = DefaultK
	}
	if k > MaxK {
		k = MaxK
	}
	return SimilarRequest{id: id, k: k}, nil
}

// ID returns the source destination id.
func (r *SimilarRequest) ID() string { return r.id }

// K returns the number of neighbors wanted, self excluded.
func (r *SimilarRequest) K() int { return r.k }
