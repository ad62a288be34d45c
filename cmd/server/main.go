package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	cardhandler "cartoes/internal/cardapplication/handler"
	cardmetrics "cartoes/internal/cardapplication/metrics"
	"cartoes/internal/cardapplication/ports"
	"cartoes/internal/cardapplication/service"
	"cartoes/internal/eligibility"
	"cartoes/internal/health"
	"cartoes/internal/platform/config"
	"cartoes/internal/platform/httpserver"
	"cartoes/internal/platform/logger"
	"cartoes/internal/platform/metrics"
	"cartoes/internal/platform/redis"
	ratelimitmetrics "cartoes/internal/ratelimit/metrics"
	ratelimitmw "cartoes/internal/ratelimit/middleware"
	"cartoes/internal/ratelimit/store/bucket"
	"cartoes/internal/registration"
	registrationmetrics "cartoes/internal/registration/metrics"
	httptransport "cartoes/internal/transport/http"
	"cartoes/pkg/platform/circuit"
)

const shutdownTimeout = 10 * time.Second

// main wires dependencies and runs the HTTP server until SIGINT or SIGTERM.
// Business logic lives in internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return err
	}
	chain := eligibility.NewStandardChain(policy)
	evaluator := eligibility.NewEvaluator(chain, policy.MinimumAge)
	log.Info("eligibility policy loaded",
		"policy_file", cfg.PolicyFile,
		"rules", chain.RuleNames(),
	)

	reg := metrics.NewRegistry()

	registrar, err := newRegistrar(cfg.Registration, log, registrationmetrics.New(reg))
	if err != nil {
		return err
	}
	checkers := []health.Checker{registrar}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		checkers = append(checkers, redisClient)
	}

	svc := service.New(evaluator, registrar,
		service.WithLogger(log),
		service.WithMetrics(cardmetrics.New(reg)),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:     log,
		Registry:   reg,
		Cards:      cardhandler.New(svc, log),
		Health:     health.New(log, checkers...),
		RateLimit:  newRateLimiter(ctx, cfg.RateLimit, redisClient, log, ratelimitmetrics.New(reg)),
		TrustProxy: cfg.TrustProxy,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting cartoes-api", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type registrationBackend interface {
	ports.Registrar
	health.Checker
}

// newRegistrar returns the remote client when a URL is configured, the
// simulated registrar otherwise.
func newRegistrar(cfg config.Registration, log *slog.Logger, m *registrationmetrics.Metrics) (registrationBackend, error) {
	opts := []registration.Option{registration.WithLogger(log), registration.WithMetrics(m)}
	if cfg.URL == "" {
		log.Info("registration running in simulated mode")
		return registration.NewSimulated(opts...), nil
	}

	client, err := registration.NewClient(registration.Config{
		URL:              cfg.URL,
		ConnectTimeout:   cfg.ConnectTimeout,
		ReadTimeout:      cfg.ReadTimeout,
		MaxRetries:       cfg.MaxRetries,
		InitialBackoff:   cfg.InitialBackoff,
		BreakerFailures:  cfg.BreakerFailures,
		BreakerSuccesses: cfg.BreakerSuccesses,
		BreakerCooldown:  cfg.BreakerCooldown,
	}, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// newRateLimiter prefers Redis, falling back to per-instance buckets while
// Redis is unreachable.
func newRateLimiter(ctx context.Context, cfg config.RateLimit, rc *redis.Client, log *slog.Logger, m *ratelimitmetrics.Metrics) *ratelimitmw.Middleware {
	opts := []ratelimitmw.Option{ratelimitmw.WithDisabled(!cfg.Enabled), ratelimitmw.WithMetrics(m)}

	memory := bucket.New(cfg.RPS, cfg.Burst)
	memory.StartJanitor(ctx)

	if rc == nil {
		return ratelimitmw.New(memory, log, opts...)
	}

	primary := bucket.NewRedis(rc.Client, cfg.Burst, bucket.WindowFor(cfg.RPS, cfg.Burst))
	opts = append(opts, ratelimitmw.WithFallback(memory, circuit.New("ratelimit")))
	return ratelimitmw.New(primary, log, opts...)
}
