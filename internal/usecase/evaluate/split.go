package evaluate

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/kailas-cloud/wisata/internal/corpus"
	"github.com/kailas-cloud/wisata/internal/model"
)

// ErrEmptyPartition signals a split that leaves no test or no training documents.
var ErrEmptyPartition = errors.New("split produced an empty partition")

// SplitConfig controls the category-held-out evaluation.
type SplitConfig struct {
	Runs     int
	TopK     int
	TestSize float64 // fraction held out, in (0,1)
	Seed     uint64  // run i uses Seed+i
}

// DefaultSplitConfig returns runs=5, top_k=5, test_size=0.2, seed=42.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{Runs: 5, TopK: 5, TestSize: 0.2, Seed: 42}
}

// SplitRun is the result of one seeded split.
type SplitRun struct {
	Seed  uint64
	Train int
	Test  int
	Metrics
}

// SplitReport holds every run and the mean across runs.
type SplitReport struct {
	Runs    []SplitRun
	Average Metrics
}

// CategorySplit repeatedly holds out a stratified sample, fits a fresh model on the
// rest, and checks whether each held-out document's neighbors share its category.
func CategorySplit(c corpus.Corpus, cfg SplitConfig) (SplitReport, error) {
	if cfg.Runs <= 0 || cfg.TopK <= 0 {
		return SplitReport{}, fmt.Errorf("runs and top_k must be positive")
	}
	if cfg.TestSize <= 0 || cfg.TestSize >= 1 {
		return SplitReport{}, fmt.Errorf("test_size must be in (0,1), got %v", cfg.TestSize)
	}

	var rep SplitReport
	ms := make([]Metrics, 0, cfg.Runs)
	for i := 0; i < cfg.Runs; i++ {
		seed := cfg.Seed + uint64(i)
		run, err := evaluateSplit(c, cfg, seed)
		if err != nil {
			return SplitReport{}, fmt.Errorf("run %d (seed %d): %w", i+1, seed, err)
		}
		rep.Runs = append(rep.Runs, run)
		ms = append(ms, run.Metrics)
	}
	rep.Average = meanMetrics(ms)
	return rep, nil
}

func evaluateSplit(c corpus.Corpus, cfg SplitConfig, seed uint64) (SplitRun, error) {
	train, test := stratifiedSplit(c, cfg.TestSize, seed)
	if len(train) == 0 || len(test) == 0 {
		return SplitRun{}, ErrEmptyPartition
	}

	g, err := model.FitAt(corpus.FromEntries(train), time.Time{})
	if err != nil {
		return SplitRun{}, fmt.Errorf("fit training partition: %w", err)
	}

	perCategory := make(map[string]int)
	for _, e := range train {
		perCategory[e.Category]++
	}

	ms := make([]Metrics, len(test))
	for i, e := range test {
		neighbors := g.Index().Query(g.Vectorizer().Transform(e.Document), cfg.TopK)
		relevant := 0
		for _, n := range neighbors {
			if train[n.Row].Category == e.Category {
				relevant++
			}
		}
		var m Metrics
		m.Precision = float64(relevant) / float64(cfg.TopK) * 100
		if total := perCategory[e.Category]; total > 0 {
			m.Recall = float64(relevant) / float64(total) * 100
		}
		m.F1 = harmonic(m.Precision, m.Recall)
		ms[i] = m
	}
	return SplitRun{Seed: seed, Train: len(train), Test: len(test), Metrics: meanMetrics(ms)}, nil
}

// stratifiedSplit holds out about testSize of every category. Categories with a single
// document stay in training; every category keeps at least one training document.
// Both partitions keep corpus order.
func stratifiedSplit(c corpus.Corpus, testSize float64, seed uint64) (train, test []corpus.Entry) {
	byCategory := make(map[string][]int)
	for i := 0; i < c.Len(); i++ {
		cat := c.Entry(i).Category
		byCategory[cat] = append(byCategory[cat], i)
	}
	cats := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	rng := rand.New(rand.NewPCG(seed, seed))
	held := make(map[int]bool)
	for _, cat := range cats {
		rows := byCategory[cat]
		n := int(math.Round(testSize * float64(len(rows))))
		if n >= len(rows) {
			n = len(rows) - 1
		}
		if n <= 0 {
			continue
		}
		rng.Shuffle(len(rows), func(a, b int) { rows[a], rows[b] = rows[b], rows[a] })
		for _, r := range rows[:n] {
			held[r] = true
		}
	}

	for i := 0; i < c.Len(); i++ {
		if held[i] {
			test = append(test, c.Entry(i))
		} else {
			train = append(train, c.Entry(i))
		}
	}
	return train, test
}
