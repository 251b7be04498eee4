package model

import (
	"fmt"
	"sort"
)

// Neighbor is one row returned by a neighbor query.
type Neighbor struct {
	Row      int
	Distance float64 // cosine distance, 1 - similarity
}

// Posting is one (row, weight) entry of a term's posting list.
type Posting struct {
	Row    int32
	Weight float64
}

// Index answers cosine top-k queries over a fixed set of row vectors.
// It is an inverted index from feature to postings; rows sharing no feature
// with the query are never touched.
type Index struct {
	rows     []Vector
	norms    []float64
	postings map[int32][]Posting
}

// IndexState is the serializable form of an Index. Rows are persisted separately.
type IndexState struct {
	Rows     int
	Features []int32
	Postings [][]Posting
}

// FitIndex builds the inverted index over rows. The slice is retained, not copied.
func FitIndex(rows []Vector) *Index {
	postings := make(map[int32][]Posting)
	for r, v := range rows {
		for i, ix := range v.Indices {
			if v.Values[i] == 0 {
				continue
			}
			postings[ix] = append(postings[ix], Posting{Row: int32(r), Weight: v.Values[i]})
		}
	}
	return newIndex(rows, postings)
}

// RestoreIndex rebuilds an Index from persisted state and the matrix rows it was fitted on.
func RestoreIndex(rows []Vector, s IndexState) (*Index, error) {
	if s.Rows != len(rows) {
		return nil, fmt.Errorf("index state: %d rows, matrix has %d", s.Rows, len(rows))
	}
	if len(s.Features) != len(s.Postings) {
		return nil, fmt.Errorf("index state: %d features, %d posting lists", len(s.Features), len(s.Postings))
	}
	postings := make(map[int32][]Posting, len(s.Features))
	for i, f := range s.Features {
		for _, p := range s.Postings[i] {
			if p.Row < 0 || int(p.Row) >= len(rows) {
				return nil, fmt.Errorf("index state: posting row %d out of range", p.Row)
			}
		}
		postings[f] = s.Postings[i]
	}
	return newIndex(rows, postings), nil
}

func newIndex(rows []Vector, postings map[int32][]Posting) *Index {
	norms := make([]float64, len(rows))
	for i, v := range rows {
		norms[i] = v.Norm()
	}
	return &Index{rows: rows, norms: norms, postings: postings}
}

// State returns the serializable form, features ascending.
func (x *Index) State() IndexState {
	features := make([]int32, 0, len(x.postings))
	for f := range x.postings {
		features = append(features, f)
	}
	sort.Slice(features, func(i, j int) bool { return features[i] < features[j] })
	lists := make([][]Posting, len(features))
	for i, f := range features {
		lists[i] = append([]Posting(nil), x.postings[f]...)
	}
	return IndexState{Rows: len(x.rows), Features: features, Postings: lists}
}

// Len returns the number of indexed rows.
func (x *Index) Len() int { return len(x.rows) }

// NNZ returns the total number of postings.
func (x *Index) NNZ() int {
	n := 0
	for _, p := range x.postings {
		n += len(p)
	}
	return n
}

// Similarities returns the cosine similarity of v against every row.
func (x *Index) Similarities(v Vector) []float64 {
	sims := make([]float64, len(x.rows))
	vn := v.Norm()
	if vn == 0 {
		return sims
	}
	for i, ix := range v.Indices {
		w := v.Values[i]
		for _, p := range x.postings[ix] {
			sims[p.Row] += w * p.Weight
		}
	}
	for r := range sims {
		if sims[r] == 0 || x.norms[r] == 0 {
			continue
		}
		sims[r] /= vn * x.norms[r]
	}
	return sims
}

// Query returns the min(k, n) rows nearest to v, ascending by distance, ties by row.
func (x *Index) Query(v Vector, k int) []Neighbor {
	return topK(x.Similarities(v), k, -1)
}

// QueryRow returns the min(k, n) rows nearest to row i. Row i itself is always
// first with distance 0; callers wanting only neighbors drop it.
func (x *Index) QueryRow(i, k int) []Neighbor {
	if i < 0 || i >= len(x.rows) || k <= 0 {
		return nil
	}
	sims := x.Similarities(x.rows[i])
	rest := topK(sims, k-1, i)
	return append([]Neighbor{{Row: i, Distance: 0}}, rest...)
}

// topK ranks every row except skip by ascending distance.
func topK(sims []float64, k, skip int) []Neighbor {
	if k <= 0 {
		return nil
	}
	all := make([]Neighbor, 0, len(sims))
	for r, s := range sims {
		if r == skip {
			continue
		}
		all = append(all, Neighbor{Row: r, Distance: distance(s)})
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].Distance < all[b].Distance })
	if k < len(all) {
		all = all[:k]
	}
	return all
}

func distance(sim float64) float64 {
	d := 1 - sim
	if d < 0 {
		return 0
	}
	return d
}
