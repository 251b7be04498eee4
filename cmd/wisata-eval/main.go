// wisata-eval scores the published model generation.
//
// Usage:
//
//	wisata-eval [-split] [-report out.csv] [-split-report split.csv]
//
// The keyword-proxy report runs against the current generation. With -split the
// category held-out evaluation fits fresh models on the destination store.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wisata/internal/app"
	"github.com/kailas-cloud/wisata/internal/config"
	"github.com/kailas-cloud/wisata/internal/corpus"
	logpkg "github.com/kailas-cloud/wisata/internal/logger"
	"github.com/kailas-cloud/wisata/internal/repository/artifact"
	"github.com/kailas-cloud/wisata/internal/usecase/evaluate"
)

type flags struct {
	split           bool
	reportPath      string
	splitReportPath string
}

func parseFlags() flags {
	f := flags{}
	flag.BoolVar(&f.split, "split", false, "also run the category held-out evaluation")
	flag.StringVar(&f.reportPath, "report", "", "keyword-proxy CSV path (default: evaluation.report_path)")
	flag.StringVar(&f.splitReportPath, "split-report", "", "split CSV path (default: evaluation.split_report_path)")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()
	_ = godotenv.Load()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger, err := logpkg.ForCommand(env, cfg.Logging.Level, "eval")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(
		context.Background(), syscall.SIGTERM, syscall.SIGINT,
	)
	defer cancel()

	if err := run(ctx, &cfg, f, logger); err != nil {
		cancel()
		logger.Fatal("evaluation failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, f flags, logger *zap.Logger) error {
	if f.reportPath != "" {
		cfg.Evaluation.ReportPath = f.reportPath
	}
	if f.splitReportPath != "" {
		cfg.Evaluation.SplitReportPath = f.splitReportPath
	}

	if err := keywordProxy(ctx, cfg, logger); err != nil {
		return err
	}
	if !f.split {
		return nil
	}
	return categorySplit(ctx, cfg, logger)
}

func keywordProxy(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	artifacts, err := artifact.NewStore(cfg.Artifacts.Dir, logger)
	if err != nil {
		return err
	}
	g, err := artifacts.Load(ctx)
	if err != nil {
		return fmt.Errorf("load generation: %w", err)
	}

	scenarios := evaluate.DefaultScenarios()
	if cfg.Evaluation.ScenariosFile != "" {
		scenarios, err = evaluate.LoadScenarios(cfg.Evaluation.ScenariosFile)
		if err != nil {
			return err
		}
	}

	rep := evaluate.KeywordProxy(g, scenarios)
	for _, q := range rep.Skipped {
		logger.Warn("scenario has no relevant documents, skipped", zap.String("query", q))
	}
	for i := range rep.Scenarios {
		s := &rep.Scenarios[i]
		logger.Info("scenario",
			zap.String("query", s.Query),
			zap.Int("returned", s.Returned),
			zap.Int("true_positives", s.TruePositives),
			zap.Int("ground_truth", s.GroundTruth),
			zap.Float64("precision_pct", evaluate.Round1(s.Precision)),
			zap.Float64("recall_pct", evaluate.Round1(s.Recall)),
			zap.Float64("f1_pct", evaluate.Round1(s.F1)),
		)
	}
	logger.Info("keyword proxy average",
		zap.String("generation", g.Meta().Version),
		zap.Float64("precision_pct", evaluate.Round1(rep.Average.Precision)),
		zap.Float64("recall_pct", evaluate.Round1(rep.Average.Recall)),
		zap.Float64("f1_pct", evaluate.Round1(rep.Average.F1)),
	)

	if cfg.Evaluation.ReportPath == "" {
		return nil
	}
	err = evaluate.WriteFile(cfg.Evaluation.ReportPath, func(w io.Writer) error {
		return evaluate.WriteReport(w, rep)
	})
	if err != nil {
		return err
	}
	logger.Info("report written", zap.String("path", cfg.Evaluation.ReportPath))
	return nil
}

func categorySplit(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	records, err := stores.Destinations.List(ctx)
	if err != nil {
		return fmt.Errorf("list destinations: %w", err)
	}

	rep, err := evaluate.CategorySplit(corpus.BuildContent(records), evaluate.SplitConfig{
		Runs:     cfg.Evaluation.Runs,
		TopK:     cfg.Evaluation.TopK,
		TestSize: cfg.Evaluation.TestSize,
		Seed:     cfg.Evaluation.Seed,
	})
	if err != nil {
		return err
	}
	for _, r := range rep.Runs {
		logger.Info("split run",
			zap.Uint64("seed", r.Seed),
			zap.Int("train", r.Train),
			zap.Int("test", r.Test),
			zap.Float64("precision_pct", evaluate.Round1(r.Precision)),
			zap.Float64("recall_pct", evaluate.Round1(r.Recall)),
			zap.Float64("f1_pct", evaluate.Round1(r.F1)),
		)
	}
	logger.Info("split average",
		zap.Float64("precision_pct", evaluate.Round1(rep.Average.Precision)),
		zap.Float64("recall_pct", evaluate.Round1(rep.Average.Recall)),
		zap.Float64("f1_pct", evaluate.Round1(rep.Average.F1)),
	)

	if cfg.Evaluation.SplitReportPath == "" {
		return nil
	}
	err = evaluate.WriteFile(cfg.Evaluation.SplitReportPath, func(w io.Writer) error {
		return evaluate.WriteSplitReport(w, rep)
	})
	if err != nil {
		return err
	}
	logger.Info("split report written", zap.String("path", cfg.Evaluation.SplitReportPath))
	return nil
}
