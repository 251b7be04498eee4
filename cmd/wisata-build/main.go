// wisata-build fits a model generation from the destination store and
// publishes it to the artifact directory.
//
// Usage:
//
//	wisata-build [-seed places.json] [-keep 3]
//
// The seed file is a JSON array of destination records imported into
// Valkey before the build (valkey/redis drivers only).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wisata/internal/app"
	"github.com/kailas-cloud/wisata/internal/config"
	domdest "github.com/kailas-cloud/wisata/internal/domain/destination"
	logpkg "github.com/kailas-cloud/wisata/internal/logger"
	"github.com/kailas-cloud/wisata/internal/model"
	"github.com/kailas-cloud/wisata/internal/repository/artifact"
	buildmod "github.com/kailas-cloud/wisata/internal/usecase/build"
)

type flags struct {
	seed string
	keep int
}

func parseFlags() flags {
	f := flags{}
	flag.StringVar(&f.seed, "seed", "", "JSON file of destination records to import before building")
	flag.IntVar(&f.keep, "keep", 0, "generations to keep after publishing (0=artifacts.keep from config)")
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

	logger, err := logpkg.ForCommand(env, cfg.Logging.Level, "build")
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
		logger.Fatal("build failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, f flags, logger *zap.Logger) error {
	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	if f.seed != "" {
		if stores.Valkey == nil {
			return fmt.Errorf("-seed requires the valkey or redis driver, got %q", cfg.Database.Driver)
		}
		records, err := readSeed(f.seed)
		if err != nil {
			return err
		}
		if err := stores.Valkey.PutMany(ctx, records); err != nil {
			return fmt.Errorf("import seed: %w", err)
		}
		logger.Info("seed imported", zap.String("file", f.seed), zap.Int("records", len(records)))
	}

	artifacts, err := artifact.NewStore(cfg.Artifacts.Dir, logger)
	if err != nil {
		return err
	}

	keep := cfg.Artifacts.Keep
	if f.keep > 0 {
		keep = f.keep
	}

	res, err := buildmod.New(stores.Destinations, publisher{artifacts}, keep, logger).Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("generation published",
		zap.String("version", res.Meta.Version),
		zap.Int("documents", res.Meta.Documents),
		zap.Int("vocabulary", res.Meta.Vocabulary),
		zap.Int("non_zeros", res.Meta.NonZeros),
		zap.Strings("pruned", res.Pruned),
		zap.Duration("duration", res.Duration),
	)
	return nil
}

// publisher drops the manifest from artifact.Store.Save.
type publisher struct {
	*artifact.Store
}

func (p publisher) Save(ctx context.Context, g *model.Generation) error {
	_, err := p.Store.Save(ctx, g)
	return err
}

type seedRecord struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	Facilities   string  `json:"facilities"`
	Rating       float64 `json:"rating"`
	ReviewCount  int     `json:"review_count"`
	Image        string  `json:"image"`
	Address      string  `json:"address"`
	Coordinates  string  `json:"coordinates"`
	OpeningHours string  `json:"opening_hours"`
	TicketInfo   string  `json:"ticket_info"`
}

func readSeed(path string) ([]domdest.Destination, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var raw []seedRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	out := make([]domdest.Destination, 0, len(raw))
	for i := range raw {
		r := &raw[i]
		d, err := domdest.New(r.ID, domdest.Attributes{
			Name:         r.Name,
			Category:     r.Category,
			Description:  r.Description,
			Facilities:   r.Facilities,
			Rating:       r.Rating,
			ReviewCount:  r.ReviewCount,
			Image:        r.Image,
			Address:      r.Address,
			Coordinates:  r.Coordinates,
			OpeningHours: r.OpeningHours,
			TicketInfo:   r.TicketInfo,
		})
		if err != nil {
			return nil, fmt.Errorf("seed record %d: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}
