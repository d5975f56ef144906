package main

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/computeplane/computeplane/master/internal/authz"
	"github.com/computeplane/computeplane/master/internal/config"
	"github.com/computeplane/computeplane/master/internal/configstore"
	"github.com/computeplane/computeplane/master/internal/db"
	"github.com/computeplane/computeplane/master/internal/jobtemplate"
	"github.com/computeplane/computeplane/master/internal/lifecycle"
	"github.com/computeplane/computeplane/master/internal/scope"
)

// app holds the backends selected by the master configuration.
type app struct {
	config    *config.Config
	pg        *db.PgDB
	redis     redis.UniversalClient
	catalog   *configstore.Catalog
	templates *jobtemplate.Service
	tracker   *lifecycle.Tracker
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{config: cfg}
	if err := a.open(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) open(ctx context.Context) (err error) {
	cfg := a.config
	if cfg.UsesPostgres() {
		if a.pg, err = db.Setup(ctx, &cfg.DB); err != nil {
			return errors.Wrap(err, "connecting to postgres")
		}
	}

	var membership authz.MembershipSource
	if a.pg != nil {
		membership = a.pg
	}
	oracle, err := authz.Build(cfg.AuthZ, membership)
	if err != nil {
		return err
	}
	resolver := scope.NewResolver(oracle)

	switch cfg.Store.Type {
	case config.PostgresStore:
		a.catalog = configstore.NewPostgresCatalog(a.pg, resolver)
	default:
		a.catalog = configstore.NewMemoryCatalog(resolver)
	}
	if cfg.Store.SeedFile != "" {
		if err = a.seed(ctx); err != nil {
			return err
		}
	}
	a.templates = jobtemplate.FromCatalog(a.catalog, resolver)

	var store lifecycle.Store
	switch cfg.Lifecycle.Store {
	case config.PostgresStore:
		store = lifecycle.NewPostgresStore(a.pg)
	case config.RedisStore:
		if a.redis, err = lifecycle.NewRedisClient(ctx, cfg.Redis); err != nil {
			return err
		}
		store = lifecycle.NewRedisStore(a.redis, cfg.Redis.KeyPrefix)
	default:
		store = lifecycle.NewMemoryStore()
	}
	a.tracker = lifecycle.NewTracker(store)

	log.WithFields(log.Fields{
		"store":        cfg.Store.Type,
		"lifecycle":    cfg.Lifecycle.Store,
		"authz":        cfg.AuthZ.Type,
		"orchestrator": cfg.Orchestrator.Type,
	}).Debug("backends ready")
	return nil
}

// seed loads the seed file into an empty catalog. A populated postgres catalog is left alone
// so that restarts do not duplicate entries.
func (a *app) seed(ctx context.Context) error {
	specs, err := a.catalog.ComputeSpecs.List(ctx)
	if err != nil {
		return err
	}
	hardware, err := a.catalog.Hardware.List(ctx)
	if err != nil {
		return err
	}
	constraints, err := a.catalog.Constraints.List(ctx)
	if err != nil {
		return err
	}
	if len(specs)+len(hardware)+len(constraints) > 0 {
		log.WithField("seed-file", a.config.Store.SeedFile).
			Info("catalog already populated, skipping seed file")
		return nil
	}
	return configstore.LoadCatalogFile(ctx, a.config.Store.SeedFile, a.catalog)
}

// Close releases the database and redis connections.
func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.WithError(err).Warn("failed to close redis client")
		}
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			log.WithError(err).Warn("failed to close database")
		}
	}
}

// withApp initializes the configuration and backends, runs fn and releases the backends.
func withApp(ctx context.Context, fn func(context.Context, *app) error) error {
	cfg, err := initializeConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
