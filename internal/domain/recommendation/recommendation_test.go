package recommendation

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short", "pantai", 10, "pantai"},
		{"exact", "pantai", 6, "pantai"},
		{"cut", "pantai kuta", 6, "pantai..."},
		{"runes not bytes", "ñññññ", 3, "ñññ..."},
		{"no limit", "pantai", 0, "pantai"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Truncate(tc.in, tc.limit); got != tc.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
			}
		})
	}
}

func TestTruncate_SearchLimit(t *testing.T) {
	got := Truncate(strings.Repeat("a", 200), SearchDescriptionLimit)
	if len(got) != SearchDescriptionLimit+3 {
		t.Errorf("len = %d, want %d", len(got), SearchDescriptionLimit+3)
	}
}

func TestParseSortOrder(t *testing.T) {
	for in, want := range map[string]SortOrder{
		"": SortNone, "rating": SortRating, "score": SortScore, "price": SortPrice, "harga": SortPrice,
	} {
		got, err := ParseSortOrder(in)
		if err != nil || got != want {
			t.Errorf("ParseSortOrder(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseSortOrder("popularity"); err == nil {
		t.Error("expected error")
	}
}

func ids(items []Item) string {
	s := make([]string, len(items))
	for i, it := range items {
		s[i] = it.ID
	}
	return strings.Join(s, ",")
}

func TestApply(t *testing.T) {
	base := func() []Item {
		return []Item{
			{ID: "a", Score: 0.9, Rating: 4.1},
			{ID: "b", Score: 0.5, Rating: 4.8},
			{ID: "c", Score: 0.7, Rating: 4.8},
		}
	}
	tests := []struct {
		order SortOrder
		want  string
	}{
		{SortNone, "a,b,c"},
		{SortRating, "b,c,a"},
		{SortScore, "a,c,b"},
		{SortPrice, "a,c,b"},
	}
	for _, tc := range tests {
		items := base()
		tc.order.Apply(items)
		if got := ids(items); got != tc.want {
			t.Errorf("%q: order = %s, want %s", tc.order, got, tc.want)
		}
	}
}
