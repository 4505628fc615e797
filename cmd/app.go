package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"channel-manager/core/channel"
	"channel-manager/core/config"
	"channel-manager/core/database"
	"channel-manager/core/events"
	"channel-manager/core/lock"
	"channel-manager/core/logger"
	"channel-manager/core/queue"
	"channel-manager/core/reconcile"
	"channel-manager/core/storage"
	"channel-manager/feature/channels"
	"channel-manager/feature/channels/providers"
	"channel-manager/feature/pms"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const drainLockKey = "channel-manager:queue:drain"

// app holds the wired components shared by the commands.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *gorm.DB
	registry  *channel.Registry
	engine    *reconcile.Engine
	channels  *channels.Service
	queue     *queue.Queue
	processor *queue.Processor
	publisher *events.Publisher
	locker    *lock.Locker
}

// newApp loads the configuration and wires every component. Optional
// integrations (archive, redis lease, events) are only connected when
// configured; a failure to reach one of them is logged and the integration
// stays off.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connection required: %w", err)
	}

	a := &app{cfg: cfg, logger: logg, db: db, registry: providers.NewRegistry()}

	if cfg.Events.Enabled() {
		if pub, err := events.Dial(cfg.Events, logg); err != nil {
			logg.Warn("Event publishing disabled", zap.Error(err))
		} else {
			a.publisher = pub
		}
	}

	var engineOpts []reconcile.Option
	if a.publisher != nil {
		engineOpts = append(engineOpts, reconcile.WithObserver(a.publisher))
	}
	a.engine = reconcile.NewEngine(reconcile.NewGormStore(db), logg, engineOpts...)

	var svcOpts []channels.ServiceOption
	if cfg.Storage.Enabled {
		if archive, err := newArchive(ctx, cfg.Storage, logg); err != nil {
			logg.Warn("Payload archive disabled", zap.Error(err))
		} else {
			svcOpts = append(svcOpts, channels.WithArchive(archive))
		}
	}
	a.channels = channels.NewService(a.registry, a.engine, channels.NewGormRepository(db), cfg.Channels, logg, svcOpts...)

	if cfg.Redis.Enabled() {
		if l, err := lock.New(ctx, cfg.Redis, drainLockKey); err != nil {
			logg.Warn("Distributed drain lease disabled", zap.Error(err))
		} else {
			a.locker = l
		}
	}

	store := queue.NewGormStore(db)
	var procOpts []queue.ProcessorOption
	if a.locker != nil {
		procOpts = append(procOpts, queue.WithLease(a.locker))
	}
	if a.publisher != nil {
		procOpts = append(procOpts, queue.WithFailureObserver(a.publisher))
	}
	a.queue = queue.New(store)
	a.processor = queue.NewProcessor(store, cfg.Queue, logg, procOpts...)
	pms.NewHandlers(pms.NewGormStore(db), a.engine, a.channels, a.registry, logg).Register(a.processor)

	return a, nil
}

func newArchive(ctx context.Context, cfg storage.Config, logg *zap.Logger) (*channels.Archive, error) {
	client, err := storage.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if err := storage.EnsureBucket(ctx, client, cfg.Bucket, cfg.Region); err != nil {
		return nil, err
	}
	return channels.NewArchive(client, cfg.Bucket, logg), nil
}

// models lists every table of the module.
func models() []any {
	var out []any
	out = append(out, reconcile.Models()...)
	out = append(out, queue.Models()...)
	out = append(out, channels.Models()...)
	out = append(out, pms.Models()...)
	return out
}

// requiredColumns merges the columns the sync core depends on.
func requiredColumns() map[string][]string {
	out := reconcile.RequiredColumns()
	for table, cols := range queue.RequiredColumns() {
		out[table] = cols
	}
	return out
}

// migrate creates or updates the schema and verifies the sync tables.
func (a *app) migrate() error {
	if err := database.Migrate(a.db, models()...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	mismatches, err := database.VerifySchema(a.db, requiredColumns())
	if err != nil {
		return fmt.Errorf("schema verification failed: %w", err)
	}
	for _, m := range mismatches {
		a.logger.Error("Table is missing required columns", zap.String("table", m.Table), zap.Strings("missing", m.Missing))
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("%d tables do not match the expected schema", len(mismatches))
	}
	return nil
}

func (a *app) Close() {
	if a.publisher != nil {
		_ = a.publisher.Close()
	}
	if a.locker != nil {
		_ = a.locker.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}

// printJSON writes v to stdout, indented.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
