package evaluate

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// AverageLabel names the summary row of a keyword report.
const AverageLabel = "AVERAGE"

var keywordHeader = []string{
	"query", "items_returned", "true_positives", "ground_truth_positives",
	"precision_pct", "recall_pct", "f1_pct",
}

var splitHeader = []string{"run", "seed", "train", "test", "precision_pct", "recall_pct", "f1_pct"}

// WriteReport writes one CSV row per scenario and a trailing average row.
func WriteReport(w io.Writer, rep KeywordReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(keywordHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rep.Scenarios {
		row := append([]string{
			r.Query,
			strconv.Itoa(r.Returned),
			strconv.Itoa(r.TruePositives),
			strconv.Itoa(r.GroundTruth),
		}, metricCells(r.Metrics)...)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	avg := append([]string{
		AverageLabel,
		decimal(rep.MeanReturned),
		decimal(rep.MeanTruePositives),
		"-",
	}, metricCells(rep.Average)...)
	if err := cw.Write(avg); err != nil {
		return fmt.Errorf("write average: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// WriteSplitReport writes one CSV row per run and a trailing average row.
func WriteSplitReport(w io.Writer, rep SplitReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(splitHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rep.Runs {
		row := append([]string{
			strconv.Itoa(i + 1),
			strconv.FormatUint(r.Seed, 10),
			strconv.Itoa(r.Train),
			strconv.Itoa(r.Test),
		}, metricCells(r.Metrics)...)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	avg := append([]string{AverageLabel, "-", "-", "-"}, metricCells(rep.Average)...)
	if err := cw.Write(avg); err != nil {
		return fmt.Errorf("write average: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates path (and its directory) and writes a report into it.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report: %w", cerr)
		}
	}()
	return write(f)
}

func metricCells(m Metrics) []string {
	return []string{decimal(m.Precision), decimal(m.Recall), decimal(m.F1)}
}

func decimal(v float64) string {
	return strconv.FormatFloat(Round1(v), 'f', 1, 64)
}
