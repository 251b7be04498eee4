package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wisata/internal/app"
	"github.com/kailas-cloud/wisata/internal/config"
	logpkg "github.com/kailas-cloud/wisata/internal/logger"
	"github.com/kailas-cloud/wisata/internal/metrics"
	"github.com/kailas-cloud/wisata/internal/repository/artifact"
	"github.com/kailas-cloud/wisata/internal/repository/destcache"
	destrepo "github.com/kailas-cloud/wisata/internal/repository/destination"
	chiTransport "github.com/kailas-cloud/wisata/internal/transport/chi"
	healthuc "github.com/kailas-cloud/wisata/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/wisata/internal/usecase/recommend"
	"github.com/kailas-cloud/wisata/internal/version"
)

func main() {
	_ = godotenv.Load()

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting wisata API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("artifacts_dir", cfg.Artifacts.Dir),
	)

	ctx := context.Background()
	stores, err := app.OpenStores(ctx, &cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open stores", zap.Error(err))
	}
	defer stores.Close()

	// Register recommender metrics explicitly (no init())
	metrics.RegisterRecommendMetrics()

	// Lookup chain: store -> breaker -> cache
	var lookups destrepo.Reader = destrepo.NewBreaker(stores.Destinations, destrepo.BreakerSettings{
		Name:         "destination-store",
		MaxRequests:  cfg.Breaker.MaxRequests,
		Interval:     time.Duration(cfg.Breaker.IntervalSec) * time.Second,
		Timeout:      time.Duration(cfg.Breaker.TimeoutSec) * time.Second,
		MinRequests:  cfg.Breaker.MinRequests,
		FailureRatio: cfg.Breaker.FailureRatio,
	}, destrepo.BreakerMetrics{
		State:    metrics.BreakerState,
		Requests: metrics.BreakerRequestsTotal,
	}, logger)
	if stores.Cache != nil {
		lookups = destcache.New(lookups, stores.Cache, cfg.Storage.KeyPrefix,
			time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.DestinationCacheTotal, logger)
	}

	artifacts, err := artifact.NewStore(cfg.Artifacts.Dir, logger)
	if err != nil {
		logger.Fatal("Failed to open artifact store", zap.Error(err))
	}
	engine := recommenduc.NewEngine(artifacts, recommenduc.EngineMetrics{
		Loads:      metrics.ModelLoadsTotal,
		Documents:  metrics.ModelDocuments,
		Vocabulary: metrics.ModelVocabulary,
		BuiltAt:    metrics.ModelBuiltTimestamp,
	}, logger).WithRetryBackoff(time.Duration(cfg.Recommend.LoadRetrySec) * time.Second)
	if cfg.Recommend.LoadOnStart {
		if _, err := engine.Generation(ctx); err != nil {
			// Not fatal: queries answer model_not_ready until a build is published and reloaded.
			logger.Warn("Model not loaded at startup", zap.Error(err))
		}
	}

	recommendSvc := recommenduc.New(engine, lookups, recommenduc.Settings{
		SimilarityFloor:         cfg.Recommend.Floor(),
		CandidateCap:            cfg.Recommend.CandidateCap,
		SimilarK:                cfg.Recommend.SimilarK,
		SearchDescriptionLimit:  cfg.Recommend.SearchDescriptionLimit,
		SimilarDescriptionLimit: cfg.Recommend.SimilarDescriptionLimit,
	}, recommenduc.QueryMetrics{
		Queries:  metrics.RecommendQueriesTotal,
		Duration: metrics.RecommendQueryDuration,
	}, logger)

	healthSvc := healthuc.New(stores.Pinger, engine)

	server := chiTransport.NewServer(recommendSvc, engine, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found", "route not found")
	})
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					writeJSONError(w, http.StatusInternalServerError, "internal_error", "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line: one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.Query().Get("q")),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
