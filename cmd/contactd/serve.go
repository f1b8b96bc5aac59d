package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/vortex-fintech/contactform/config"
	"github.com/vortex-fintech/contactform/graceful/shutdown"
	"github.com/vortex-fintech/contactform/graceful/shutdown/adapters"
	"github.com/vortex-fintech/contactform/httpapi"
	"github.com/vortex-fintech/contactform/logger"
	"github.com/vortex-fintech/contactform/metrics"
	"github.com/vortex-fintech/contactform/retry"
	"github.com/vortex-fintech/contactform/submit"
)

const (
	sweepEvery = time.Minute
	visitorTTL = 10 * time.Minute
)

// ServeCmd runs the API until SIGINT/SIGTERM.
type ServeCmd struct{}

func (s *ServeCmd) Run(cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		return err
	}
	defer log.SafeSync()

	return serve(context.Background(), cfg, log)
}

func serve(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) error {
	col := metrics.NewCollector("contactd")

	guard, closeGuard, err := buildGuard(ctx, cfg, log)
	if err != nil {
		return err
	}

	ctrl, err := submit.NewController(buildSubmitter(cfg), cfg.Limits,
		submit.WithGuard(guard),
		submit.WithLogger(log, cfg.Env),
		submit.WithRecorder(col),
	)
	if err != nil {
		closeGuard()
		return err
	}

	limiter := httpapi.NewVisitorLimiter(cfg.HTTP.RatePerSecond, cfg.HTTP.Burst)
	api, err := httpapi.New(httpapi.Deps{
		Controller:     ctrl,
		Limiter:        limiter,
		OnRateLimited:  col.IncRateLimited,
		Log:            log,
		SubmitTimeout:  cfg.Submit.Timeout,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})
	if err != nil {
		closeGuard()
		return err
	}

	mgr := shutdown.New(shutdown.Config{
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		HandleSignals:   true,
		Logger:          log,
		Metrics:         col,
		OnStopped:       []func(){closeGuard},
	})
	mgr.Add(adapters.NewHTTP("api", cfg.HTTP.Addr, api))

	if cfg.Metrics.Enabled {
		h, _, err := metrics.New(metrics.Options{
			MetricsPath: cfg.Metrics.Path,
			Register:    func(reg prometheus.Registerer) error { return col.Register(reg) },
		})
		if err != nil {
			closeGuard()
			return fmt.Errorf("metrics: %w", err)
		}
		mgr.Add(adapters.NewHTTP("metrics", cfg.Metrics.Addr, h))
	}

	log.Infow("contactd starting",
		"env", cfg.Env,
		"http_addr", cfg.HTTP.Addr,
		"transport", cfg.Submit.Transport,
		"guard", cfg.Submit.Guard,
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer cancel()
		return mgr.Run(gctx)
	})
	g.Go(func() error {
		sweepVisitors(gctx, limiter, log)
		return nil
	})
	return g.Wait()
}

func sweepVisitors(ctx context.Context, l *httpapi.VisitorLimiter, log logger.LoggerInterface) {
	t := time.NewTicker(sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := l.Sweep(visitorTTL); n > 0 {
				log.Debugw("rate limiter swept", "removed", n, "tracked", l.Len())
			}
		}
	}
}

func buildSubmitter(cfg *config.Config) submit.Submitter {
	if cfg.Submit.Transport == config.TransportSMTP {
		d := submit.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass)
		return submit.NewMailer(d, cfg.SMTP.From, cfg.SMTP.To)
	}
	return submit.NewSimulated(cfg.Submit.Delay, cfg.Submit.SuccessRate)
}

// buildGuard returns the in-flight guard and a func releasing its
// resources. The Redis guard waits for the server with the default retry
// policy before giving up.
func buildGuard(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (submit.Guard, func(), error) {
	if cfg.Submit.Guard != config.GuardRedis {
		return submit.NewMemoryGuard(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: cfg.Redis.DialTimeout,
	})

	err := retry.Init(ctx, retry.DefaultPolicy(), func(ctx context.Context) error {
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warnw("redis not ready", "addr", cfg.Redis.Addr, "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
	}

	closeFn := func() {
		if err := rdb.Close(); err != nil {
			log.Warnw("redis close failed", "error", err)
		}
	}
	return submit.NewRedisGuard(rdb, submit.RedisGuardOptions{TTL: cfg.Submit.GuardTTL}), closeFn, nil
}
