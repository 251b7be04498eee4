package evaluate

import (
	"github.com/kailas-cloud/wisata/internal/model"
	"github.com/kailas-cloud/wisata/internal/textnorm"
)

// ScenarioResult is one scored scenario.
type ScenarioResult struct {
	Query         string
	Returned      int
	TruePositives int
	GroundTruth   int
	Metrics
}

// KeywordReport holds per-scenario rows and their mean.
type KeywordReport struct {
	Scenarios []ScenarioResult
	// Skipped lists queries with no relevant document in the corpus.
	Skipped []string
	// Mean returned, true positives and metrics across scored scenarios.
	MeanReturned      float64
	MeanTruePositives float64
	Average           Metrics
}

// KeywordProxy scores each scenario against g. Every row with positive similarity
// counts as returned; no candidate cap applies. Ground truth is the number of
// normalized documents containing any of the scenario's keywords.
func KeywordProxy(g *model.Generation, scenarios []Scenario) KeywordReport {
	var rep KeywordReport
	for _, sc := range scenarios {
		truth := 0
		for _, row := range g.Rows() {
			if sc.relevant(row.Document) {
				truth++
			}
		}
		if truth == 0 {
			rep.Skipped = append(rep.Skipped, sc.Query)
			continue
		}

		hits := g.Rank(textnorm.Normalize(sc.Query), model.AnyPositive, 0)
		tp := 0
		for _, h := range hits {
			if sc.relevant(g.Row(h.Row).Document) {
				tp++
			}
		}
		rep.Scenarios = append(rep.Scenarios, ScenarioResult{
			Query:         sc.Query,
			Returned:      len(hits),
			TruePositives: tp,
			GroundTruth:   truth,
			Metrics:       PRF(tp, len(hits), truth),
		})
	}

	returned := make([]float64, len(rep.Scenarios))
	tps := make([]float64, len(rep.Scenarios))
	ms := make([]Metrics, len(rep.Scenarios))
	for i, r := range rep.Scenarios {
		returned[i] = float64(r.Returned)
		tps[i] = float64(r.TruePositives)
		ms[i] = r.Metrics
	}
	rep.MeanReturned = mean(returned)
	rep.MeanTruePositives = mean(tps)
	rep.Average = meanMetrics(ms)
	return rep
}
