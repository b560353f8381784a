package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/slammedialab/vercel-siteid/internal/audit"
	"github.com/slammedialab/vercel-siteid/internal/directory"
	"github.com/slammedialab/vercel-siteid/internal/platform/config"
	"github.com/slammedialab/vercel-siteid/internal/platform/httpserver"
	"github.com/slammedialab/vercel-siteid/internal/platform/kafka"
	"github.com/slammedialab/vercel-siteid/internal/platform/logger"
	"github.com/slammedialab/vercel-siteid/internal/platform/metrics"
	"github.com/slammedialab/vercel-siteid/internal/platform/postgres"
	platformredis "github.com/slammedialab/vercel-siteid/internal/platform/redis"
	"github.com/slammedialab/vercel-siteid/internal/registration"
	"github.com/slammedialab/vercel-siteid/internal/registration/handler"
	"github.com/slammedialab/vercel-siteid/internal/shopify"
	"github.com/slammedialab/vercel-siteid/internal/siteid"
	httptransport "github.com/slammedialab/vercel-siteid/internal/transport/http"
)

const (
	shutdownTimeout = 10 * time.Second
	auditBufferSize = 256
	startupDeadline = 15 * time.Second
)

// main wires dependencies and runs the HTTP server until SIGINT/SIGTERM.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Server.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

type infra struct {
	redis *goredis.Client
	close []func()
}

func (i *infra) shutdown() {
	for n := len(i.close) - 1; n >= 0; n-- {
		i.close[n]()
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	deps := &infra{}
	defer deps.shutdown()

	startCtx, cancel := context.WithTimeout(ctx, startupDeadline)
	auditStore, err := openAuditStore(startCtx, cfg, log, deps)
	if err == nil {
		deps.redis, err = platformredis.Open(startCtx, cfg.Redis)
	}
	cancel()
	if err != nil {
		return err
	}
	if deps.redis != nil {
		deps.close = append(deps.close, func() { _ = deps.redis.Close() })
	}

	publisher := audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(auditBufferSize),
		audit.WithLogger(log),
		audit.WithMetrics(m),
	)
	deps.close = append(deps.close, publisher.Close)

	cache := newDirectory(cfg, log, m, deps)
	sites := siteid.New(cache)

	if missing := cfg.Store.Missing(); len(missing) > 0 {
		log.Warn("store configuration incomplete, registrations will be refused", "missing", missing)
	}
	client := shopify.NewClient(shopify.Config{
		Domain:        cfg.Store.Domain,
		AccessToken:   cfg.Store.AccessToken,
		APIVersion:    cfg.Store.APIVersion,
		BaseDelay:     cfg.Store.RetryBase,
		ExtraAttempts: cfg.Store.ExtraAttempts,
	}, shopify.WithLogger(log), shopify.WithMetrics(m))

	svc, err := registration.NewService(shopify.NewCustomers(client), sites,
		registration.WithLogger(log),
		registration.WithMetrics(m),
		registration.WithAudit(publisher),
		registration.WithPasswordPolicy(cfg.Registration.ReturnPassword, cfg.Registration.GeneratePassword),
	)
	if err != nil {
		return err
	}

	registerHandler := handler.New(svc, sites, log,
		handler.WithMissingConfig(cfg.Store.Missing()),
		handler.WithRequestTimeout(cfg.Registration.RequestTimeout),
	)
	router := httptransport.NewRouter(log, registerHandler)
	srv := httpserver.New(cfg.Server.Addr, router, cfg.Registration.RequestTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, srv, log, shutdownTimeout)
	})
	g.Go(func() error {
		if _, err := cache.Refresh(gctx); err != nil {
			log.Warn("directory warm-up failed, will retry on first lookup", "error", err)
		}
		return nil
	})
	return g.Wait()
}

// openAuditStore fans audit events out to every configured backend and falls
// back to memory when none is configured.
func openAuditStore(ctx context.Context, cfg config.Config, log *slog.Logger, deps *infra) (audit.Store, error) {
	var stores audit.MultiStore

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	if db != nil {
		deps.close = append(deps.close, func() { _ = db.Close() })
		pg := audit.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		stores = append(stores, pg)
		log.Info("audit trail persisted to postgres")
	}

	producer, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		return nil, err
	}
	if producer != nil {
		deps.close = append(deps.close, producer.Close)
		stores = append(stores, audit.NewKafkaSink(producer, cfg.Kafka.AuditTopic))
		log.Info("audit trail streamed to kafka", "topic", cfg.Kafka.AuditTopic)
	}

	switch len(stores) {
	case 0:
		log.Info("audit trail kept in memory", "capacity", audit.DefaultMemoryCapacity)
		return audit.NewMemoryStore(audit.WithCapacity(audit.DefaultMemoryCapacity)), nil
	case 1:
		return stores[0], nil
	}
	return stores, nil
}

func newDirectory(cfg config.Config, log *slog.Logger, m *metrics.Metrics, deps *infra) *directory.Cache {
	opts := []directory.Option{
		directory.WithFetchTimeout(cfg.Directory.FetchTimeout),
		directory.WithLogger(log),
		directory.WithMetrics(m),
	}
	if deps.redis != nil {
		opts = append(opts, directory.WithSnapshots(directory.NewRedisSnapshots(deps.redis)))
	}

	var source directory.Source
	if cfg.Directory.SourceURL != "" {
		source = directory.NewHTTPSource(cfg.Directory.SourceURL)
	} else {
		log.Warn("SITE_DIRECTORY_CSV_URL not set, serving the embedded directory")
	}
	return directory.NewCache(source, cfg.Directory.TTL, opts...)
}
