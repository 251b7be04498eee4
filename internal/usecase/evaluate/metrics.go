// Package evaluate measures offline ranking quality with two proxies:
// keyword relevance over free-text scenarios and category agreement on held-out splits.
package evaluate

import "math"

// Metrics are precision, recall and F1 as percentages.
type Metrics struct {
	Precision float64
	Recall    float64
	F1        float64
}

// PRF computes metrics from counts. Recall is capped at 100.
// A zero denominator gives 0 for that metric.
func PRF(tp, returned, truth int) Metrics {
	var m Metrics
	if returned > 0 {
		m.Precision = float64(tp) / float64(returned) * 100
	}
	if truth > 0 {
		m.Recall = math.Min(float64(tp)/float64(truth)*100, 100)
	}
	m.F1 = harmonic(m.Precision, m.Recall)
	return m
}

// Rounded returns m rounded to one decimal.
func (m Metrics) Rounded() Metrics {
	return Metrics{Precision: Round1(m.Precision), Recall: Round1(m.Recall), F1: Round1(m.F1)}
}

// Round1 rounds half away from zero to one decimal.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func harmonic(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func meanMetrics(ms []Metrics) Metrics {
	p := make([]float64, len(ms))
	r := make([]float64, len(ms))
	f := make([]float64, len(ms))
	for i, m := range ms {
		p[i], r[i], f[i] = m.Precision, m.Recall, m.F1
	}
	return Metrics{Precision: mean(p), Recall: mean(r), F1: mean(f)}
}
