package model

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kailas-cloud/wisata/internal/corpus"
)

// AnyPositive is a similarity floor that keeps every row sharing at least one term with the query.
const AnyPositive = math.SmallestNonzeroFloat64

// versionLayout names generations by build time.
const versionLayout = "20060102T150405.000000000Z"

// Row is one document of a generation with its weighted vector.
type Row struct {
	ID       string
	Category string
	Document string
	Vector   Vector
}

// Meta describes a generation.
type Meta struct {
	Version    string    `json:"version"`
	BuiltAt    time.Time `json:"built_at"`
	Documents  int       `json:"documents"`
	Vocabulary int       `json:"vocabulary"`
	NonZeros   int       `json:"non_zeros"`
}

// Hit is a ranked row with its cosine similarity.
type Hit struct {
	Row   int
	Score float64
}

// Generation is an immutable fitted model: documents, vectorizer and neighbor index together.
type Generation struct {
	rows       []Row
	byID       map[string]int
	vectorizer *Vectorizer
	index      *Index
	meta       Meta
}

// Fit builds a generation from a corpus.
func Fit(c corpus.Corpus) (*Generation, error) {
	return FitAt(c, time.Now().UTC())
}

// FitAt is Fit with an explicit build time.
func FitAt(c corpus.Corpus, builtAt time.Time) (*Generation, error) {
	vz, err := FitVectorizer(c.Documents())
	if err != nil {
		return nil, err
	}
	rows := make([]Row, c.Len())
	vecs := make([]Vector, c.Len())
	for i := 0; i < c.Len(); i++ {
		e := c.Entry(i)
		vecs[i] = vz.Transform(e.Document)
		rows[i] = Row{ID: e.ID, Category: e.Category, Document: e.Document, Vector: vecs[i]}
	}
	meta := Meta{
		Version: builtAt.UTC().Format(versionLayout),
		BuiltAt: builtAt.UTC(),
	}
	return Assemble(meta, rows, vz, FitIndex(vecs))
}

// Assemble validates and combines persisted parts into a generation.
// Counts in meta are recomputed from the parts.
func Assemble(meta Meta, rows []Row, vz *Vectorizer, idx *Index) (*Generation, error) {
	if vz == nil || idx == nil {
		return nil, fmt.Errorf("assemble generation: missing vectorizer or index")
	}
	if idx.Len() != len(rows) {
		return nil, fmt.Errorf("assemble generation: index has %d rows, %d documents", idx.Len(), len(rows))
	}
	byID := make(map[string]int, len(rows))
	nnz := 0
	for i, r := range rows {
		if !r.Vector.valid(vz.Dim()) {
			return nil, fmt.Errorf("assemble generation: row %d has invalid vector", i)
		}
		if _, dup := byID[r.ID]; !dup {
			byID[r.ID] = i
		}
		nnz += r.Vector.NNZ()
	}
	meta.Documents = len(rows)
	meta.Vocabulary = vz.Dim()
	meta.NonZeros = nnz
	return &Generation{rows: rows, byID: byID, vectorizer: vz, index: idx, meta: meta}, nil
}

// Meta returns the generation metadata.
func (g *Generation) Meta() Meta { return g.meta }

// Len returns the number of documents.
func (g *Generation) Len() int { return len(g.rows) }

// Row returns the i-th row.
func (g *Generation) Row(i int) Row { return g.rows[i] }

// Rows returns the rows. Callers must not modify them.
func (g *Generation) Rows() []Row { return g.rows }

// RowOf returns the first row with the given id.
func (g *Generation) RowOf(id string) (int, bool) {
	i, ok := g.byID[id]
	return i, ok
}

// Vectorizer returns the fitted vectorizer.
func (g *Generation) Vectorizer() *Vectorizer { return g.vectorizer }

// Index returns the neighbor index.
func (g *Generation) Index() *Index { return g.index }

// Rank scores every row against normalized query text and keeps rows with
// similarity >= floor, descending by score, ties by row. limit <= 0 keeps all.
func (g *Generation) Rank(text string, floor float64, limit int) []Hit {
	v := g.vectorizer.Transform(text)
	if v.IsZero() {
		return nil
	}
	return RankSimilarities(g.index.Similarities(v), floor, limit)
}

// RankSimilarities filters and orders a dense similarity slice.
func RankSimilarities(sims []float64, floor float64, limit int) []Hit {
	var hits []Hit
	for r, s := range sims {
		if s >= floor {
			hits = append(hits, Hit{Row: r, Score: s})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// Similar returns up to k neighbors of row i, excluding the row itself and any row
// sharing its id, keeping similarity >= floor.
func (g *Generation) Similar(i, k int, floor float64) []Hit {
	if i < 0 || i >= len(g.rows) || k <= 0 {
		return nil
	}
	src := g.rows[i].ID
	var hits []Hit
	for _, n := range g.index.QueryRow(i, k+1)[1:] {
		if g.rows[n.Row].ID == src {
			continue
		}
		s := 1 - n.Distance
		if s < floor {
			continue
		}
		hits = append(hits, Hit{Row: n.Row, Score: s})
	}
	return hits
}
