package recommendation

import (
	"fmt"
	"sort"
)

// Display limits for truncated descriptions.
const (
	SearchDescriptionLimit  = 150
	SimilarDescriptionLimit = 120
)

// Item is one ranked recommendation ready for presentation.
type Item struct {
	ID          string
	Name        string
	Category    string
	Description string // truncated
	Score       float64
	Rating      float64
	ReviewCount int
	Image       string
	// DistanceMeters is set for item-to-item results when both records carry coordinates.
	DistanceMeters *float64
}

// SortOrder is the presentation reordering requested by the caller.
type SortOrder string

const (
	// SortNone keeps relevance order.
	SortNone SortOrder = ""
	// SortRating orders by rating, highest first.
	SortRating SortOrder = "rating"
	// SortScore orders by similarity, highest first.
	SortScore SortOrder = "score"
	// SortPrice is the historical "harga" option. It orders by similarity, not by any price field.
	SortPrice SortOrder = "price"
)

// ParseSortOrder validates a sort option. "harga" is accepted as an alias of price.
func ParseSortOrder(s string) (SortOrder, error) {
	switch s {
	case "":
		return SortNone, nil
	case "rating":
		return SortRating, nil
	case "score":
		return SortScore, nil
	case "price", "harga":
		return SortPrice, nil
	default:
		return SortNone, fmt.Errorf("unknown sort order %q", s)
	}
}

// Apply reorders items in place. The sort is stable, so equal keys keep relevance order.
func (o SortOrder) Apply(items []Item) {
	switch o {
	case SortRating:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Rating > items[j].Rating })
	case SortScore, SortPrice:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	}
}

// Truncate cuts s to limit runes and appends "..." when anything was cut.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
