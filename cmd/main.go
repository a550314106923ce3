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

	"github.com/okian/mentor/internal/adapters/http/api"
	"github.com/okian/mentor/internal/adapters/http/swagger"
	app "github.com/okian/mentor/internal/app"
	"github.com/okian/mentor/internal/config"
	"github.com/okian/mentor/internal/domain/expert"
	"github.com/okian/mentor/internal/domain/skill"
	"github.com/okian/mentor/pkg/logger"
	"github.com/okian/mentor/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// Use stderr since the logger may not be available yet
		os.Stderr.WriteString("mentor: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop(context.WithoutCancel(ctx))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(gctx, "server shutdown failed", logger.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})

	err = g.Wait()
	log.Info(ctx, "server stopped")
	return err
}

// newService builds the service from configuration, loading the expert
// corpus and skill table overrides from disk when configured.
func newService(cfg *config.Config, log logger.Logger) (*app.Service, error) {
	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithTopN(cfg.TopN),
		app.WithMaxTopN(cfg.MaxTopN),
		app.WithMaxRecommendations(cfg.MaxRecommendations),
		app.WithRenormalize(cfg.NormalizeOverall),
		app.WithDefaultMetricWeight(cfg.DefaultMetricWeight),
		app.WithSkillWeights(cfg.SkillWeights),
		app.WithWeeklyPracticeHours(cfg.WeeklyPracticeHours),
		app.WithTrending(cfg.TrendingWindow, cfg.TrendingDivisor),
		app.WithHistoryLimit(cfg.HistoryLimit),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithSessions(cfg.SessionQueueSize, cfg.SessionIdleTimeout, cfg.RetainedSessions),
	}
	if cfg.CorpusPath != "" {
		corpus, err := expert.LoadFile(cfg.CorpusPath)
		if err != nil {
			return nil, fmt.Errorf("load corpus %s: %w", cfg.CorpusPath, err)
		}
		opts = append(opts, app.WithCorpus(corpus))
	}
	if cfg.SkillsPath != "" {
		builtin, err := skill.Builtin()
		if err != nil {
			return nil, fmt.Errorf("load skill table: %w", err)
		}
		extra, err := skill.LoadFile(cfg.SkillsPath)
		if err != nil {
			return nil, fmt.Errorf("load skills %s: %w", cfg.SkillsPath, err)
		}
		opts = append(opts, app.WithSkills(builtin.Merge(extra)))
	}
	return app.New(opts...), nil
}

// newHandler registers the docs and business API routes.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc,
		api.WithRateLimit(cfg.RateLimit, cfg.RateLimitBurst),
		api.WithAllowedOrigins(cfg.AllowedOrigins...),
		api.WithServerLogger(log.Named("api")),
	).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater samples runtime metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateSystemMetrics()
		}
	}
}
