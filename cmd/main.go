package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/repboard/repboard/internal/adapters/http/api"
	"github.com/repboard/repboard/internal/app"
	"github.com/repboard/repboard/internal/config"
	"github.com/repboard/repboard/internal/domain/reputation"
	"github.com/repboard/repboard/pkg/logger"
	"github.com/repboard/repboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	manager := metrics.NewManager()

	svc := app.New(
		app.WithLogger(log),
		app.WithMetrics(manager),
		app.WithSystemID(cfg.SystemID),
		app.WithMaxPageSize(cfg.MaxPageSize),
	)

	// Seed the ledger config record so the service accepts traffic without a
	// manual init call. The store starts empty on every boot.
	if cfg.Bootstrap.Enabled {
		if err := bootstrap(ctx, svc, cfg.Bootstrap); err != nil {
			log.Error(ctx, "bootstrap failed", logger.Error(err))
			return
		}
		log.Info(ctx, "ledger initialized from bootstrap config",
			logger.String("admin", cfg.Bootstrap.Admin))
	}

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, manager)
	apiServer.Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// bootstrap initializes the ledger config record from process configuration.
func bootstrap(ctx context.Context, svc *app.Service, b config.Bootstrap) error {
	params := app.InitParams{
		VotingCooldown:      b.VotingCooldown,
		MinAccountAge:       b.MinAccountAge,
		DailyVoteLimit:      b.DailyVoteLimit,
		MinReputationToVote: b.MinReputationToVote,
		RoleThresholds:      b.RoleThresholds,
		DecayRate:           b.DecayRate,
	}
	copy(params.CategoryWeights[:], b.CategoryWeights)
	return svc.InitializeSystem(ctx, params, reputation.MemberID(b.Admin))
}
