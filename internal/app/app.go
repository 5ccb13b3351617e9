// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/autoimport/internal/config"
	"github.com/javajoker/autoimport/internal/database"
	"github.com/javajoker/autoimport/internal/i18n"
	"github.com/javajoker/autoimport/internal/source"
	"github.com/javajoker/autoimport/internal/services"
)

// App holds the process-wide collaborators shared by the API server and the
// importer commands.
type App struct {
	Config    *config.Config
	Admin     *services.AdminService
	DB        *gorm.DB
	Source    *source.Client
	Cache     *services.CacheService
	Events    *services.EventService
	Snapshots *services.SnapshotService
	Importer  *services.ImportService
	Syncer    *services.SyncService
	Cars      *services.CarService
	Repair    *services.RepairService
}

// New connects the database, runs migrations and builds every service.
// Optional backends that fail to start are logged and disabled.
func New(cfg *config.Config) (*App, error) {
	config.SetupLogging(cfg.Logging, cfg.Environment)

	if err := i18n.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize i18n: %w", err)
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.RunMigrations(db); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cache := services.NewCacheService(cfg.Redis)
	if cache.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := cache.Ping(ctx); err != nil {
			logrus.WithError(err).Warn("Redis unreachable, page cache disabled")
			cache.Close()
			cache = services.NewCacheService(config.RedisConfig{})
		}
		cancel()
	}

	events, err := services.NewEventService(cfg.Kafka)
	if err != nil {
		logrus.WithError(err).Warn("Kafka unavailable, car events disabled")
		events, _ = services.NewEventService(config.KafkaConfig{})
	}

	snapshots, err := services.NewSnapshotService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("Snapshot storage unavailable, snapshots disabled")
		snapshots = nil
	}

	client := source.NewClient(cfg.Source, source.WithPageCache(cache))
	importer := services.NewImportService(db, client, cfg.Source, events, snapshots)

	return &App{
		Config:    cfg,
		Admin:     services.NewAdminService(db, cfg.Source),
		DB:        db,
		Source:    client,
		Cache:     cache,
		Events:    events,
		Snapshots: snapshots,
		Importer:  importer,
		Syncer:    services.NewSyncService(db, client, importer, events, cfg.Source),
		Cars:      services.NewCarService(db),
		Repair:    services.NewRepairService(db, cfg.Source),
	}, nil
}

func (a *App) Close() {
	if err := a.Events.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close event producer")
	}
	if err := a.Cache.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close page cache")
	}
	database.Close(a.DB)
}
