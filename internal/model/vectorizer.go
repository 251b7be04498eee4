// Package model fits the TF-IDF feature model and the cosine neighbor index over a corpus.
package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/wisata/internal/domain"
)

// minTermRunes is the shortest token the analyzer keeps, matching a \w\w+ token pattern.
const minTermRunes = 2

// Vectorizer maps text to L2-normalised TF-IDF vectors over unigrams and bigrams.
// It is immutable after fitting.
type Vectorizer struct {
	terms []string // sorted; position is the feature index
	vocab map[string]int32
	idf   []float64
}

// VectorizerState is the serializable form of a fitted Vectorizer.
type VectorizerState struct {
	Terms []string
	IDF   []float64
}

// FitVectorizer learns the vocabulary and smoothed IDF weights of docs.
// Every term with document frequency >= 1 is kept.
func FitVectorizer(docs []string) (*Vectorizer, error) {
	if len(docs) == 0 {
		return nil, domain.ErrFitEmptyCorpus
	}
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, t := range analyze(doc) {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}
	if len(df) == 0 {
		return nil, domain.ErrFitEmptyVocabulary
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for i, t := range terms {
		idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return newVectorizer(terms, idf), nil
}

// RestoreVectorizer rebuilds a Vectorizer from its persisted state.
func RestoreVectorizer(s VectorizerState) (*Vectorizer, error) {
	if len(s.Terms) == 0 {
		return nil, domain.ErrFitEmptyVocabulary
	}
	if len(s.Terms) != len(s.IDF) {
		return nil, fmt.Errorf("vectorizer state: %d terms, %d idf weights", len(s.Terms), len(s.IDF))
	}
	if !sort.StringsAreSorted(s.Terms) {
		return nil, fmt.Errorf("vectorizer state: vocabulary not sorted")
	}
	return newVectorizer(append([]string(nil), s.Terms...), append([]float64(nil), s.IDF...)), nil
}

func newVectorizer(terms []string, idf []float64) *Vectorizer {
	vocab := make(map[string]int32, len(terms))
	for i, t := range terms {
		vocab[t] = int32(i)
	}
	return &Vectorizer{terms: terms, vocab: vocab, idf: idf}
}

// State returns the serializable form.
func (v *Vectorizer) State() VectorizerState {
	return VectorizerState{
		Terms: append([]string(nil), v.terms...),
		IDF:   append([]float64(nil), v.idf...),
	}
}

// Dim returns the vocabulary size.
func (v *Vectorizer) Dim() int { return len(v.terms) }

// Term returns the term at feature index i.
func (v *Vectorizer) Term(i int) string { return v.terms[i] }

// Lookup returns the feature index of term.
func (v *Vectorizer) Lookup(term string) (int, bool) {
	i, ok := v.vocab[term]
	return int(i), ok
}

// Transform maps text to its weighted vector. Terms outside the vocabulary are ignored.
func (v *Vectorizer) Transform(text string) Vector {
	counts := make(map[int32]float64)
	for _, t := range analyze(text) {
		if ix, ok := v.vocab[t]; ok {
			counts[ix]++
		}
	}
	if len(counts) == 0 {
		return Vector{}
	}

	out := Vector{
		Indices: make([]int32, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for ix := range counts {
		out.Indices = append(out.Indices, ix)
	}
	sort.Slice(out.Indices, func(i, j int) bool { return out.Indices[i] < out.Indices[j] })

	var sq float64
	for _, ix := range out.Indices {
		w := counts[ix] * v.idf[ix]
		out.Values = append(out.Values, w)
		sq += w * w
	}
	norm := math.Sqrt(sq)
	for i := range out.Values {
		out.Values[i] /= norm
	}
	return out
}

// analyze splits on whitespace and emits unigrams followed by bigrams of adjacent tokens.
func analyze(doc string) []string {
	fields := strings.Fields(doc)
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTermRunes {
			tokens = append(tokens, f)
		}
	}
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, 2*len(tokens)-1)
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}
