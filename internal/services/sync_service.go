// internal/services/sync_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/autoimport/internal/config"
	"github.com/javajoker/autoimport/internal/models"
	"github.com/javajoker/autoimport/internal/source"
)

var ErrSyncInProgress = errors.New("sync already in progress")

type SyncOptions struct {
	PageSize int  `json:"page_size" validate:"omitempty,min=1,max=100"`
	MaxItems int  `json:"max_items" validate:"omitempty,min=1"`
	Archive  bool `json:"with_archive"`
}

type SyncResult struct {
	Imported   int       `json:"imported"`
	Archived   int64     `json:"archived"`
	ActiveSeen int       `json:"active_seen"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

type SyncStatus struct {
	Running   bool         `json:"running"`
	StartedAt *time.Time   `json:"started_at,omitempty"`
	Options   *SyncOptions `json:"options,omitempty"`
	Last      *SyncResult  `json:"last,omitempty"`
	LastError string       `json:"last_error,omitempty"`
}

// SyncService walks the listing feed and imports every car advert in it.
// One run at a time per process.
type SyncService struct {
	db       *gorm.DB
	source   AdvertSource
	importer *ImportService
	events   *EventService
	config   config.SourceConfig
	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time

	mu     sync.Mutex
	status SyncStatus
}

func NewSyncService(db *gorm.DB, src AdvertSource, importer *ImportService, events *EventService, cfg config.SourceConfig) *SyncService {
	return &SyncService{
		db:       db,
		source:   src,
		importer: importer,
		events:   events,
		config:   cfg,
		sleep:    source.Sleep,
		now:      time.Now,
	}
}

// Sync imports the whole feed without archiving and returns the number of
// adverts imported.
func (s *SyncService) Sync(ctx context.Context, opts SyncOptions) (int, error) {
	opts.Archive = false
	res, err := s.Run(ctx, opts)
	if res == nil {
		return 0, err
	}
	return res.Imported, err
}

// SyncWithArchive imports the whole feed, then archives every active car of
// this source that the run did not see.
func (s *SyncService) SyncWithArchive(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	opts.Archive = true
	return s.Run(ctx, opts)
}

// Run performs one sync in the calling goroutine. A partial result is
// returned together with the error that stopped the run.
func (s *SyncService) Run(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	if !s.begin(opts) {
		return nil, ErrSyncInProgress
	}
	res, err := s.run(ctx, opts)
	s.finish(res, err)
	return res, err
}

// Start launches a run in the background.
func (s *SyncService) Start(opts SyncOptions) error {
	if !s.begin(opts) {
		return ErrSyncInProgress
	}
	go func() {
		res, err := s.run(context.Background(), opts)
		s.finish(res, err)
	}()
	return nil
}

func (s *SyncService) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *SyncService) begin(opts SyncOptions) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Running {
		return false
	}
	started := s.now()
	s.status.Running = true
	s.status.StartedAt = &started
	s.status.Options = &opts
	return true
}

func (s *SyncService) finish(res *SyncResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Running = false
	s.status.Last = res
	s.status.LastError = ""
	if err != nil {
		s.status.LastError = err.Error()
	}
}

func (s *SyncService) run(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = s.config.PageSize
	}

	// one timestamp for every car seen in this run
	seenAt := s.now()
	res := &SyncResult{StartedAt: seenAt}
	seen := make(map[string]struct{})

	logger := logrus.WithFields(logrus.Fields{
		"source":       s.config.Name,
		"page_size":    pageSize,
		"max_items":    opts.MaxItems,
		"with_archive": opts.Archive,
	})
	logger.Info("Sync started")

	capped := false
	for page := 1; !capped; page++ {
		list, err := s.source.ListAdverts(ctx, source.ListParams{Page: page, PageSize: pageSize})
		if err != nil {
			return res, fmt.Errorf("failed to list adverts: %w", err)
		}
		if len(list.Adverts) == 0 {
			break
		}

		for _, advert := range list.Adverts {
			if advert.ID == "" || advert.SubcategoryID != s.config.SubcategoryID {
				continue
			}
			if _, err := s.importer.Upsert(ctx, advert.ID, seenAt); err != nil {
				return res, err
			}
			res.Imported++
			seen[advert.ID] = struct{}{}

			if opts.MaxItems > 0 && res.Imported >= opts.MaxItems {
				capped = true
				break
			}
		}
		if capped {
			break
		}

		logger.WithFields(logrus.Fields{"page": page, "imported": res.Imported}).Debug("Page processed")
		if err := s.sleep(ctx, s.config.PerPageSleep); err != nil {
			return res, err
		}

		current := list.PageSize
		if current <= 0 {
			current = pageSize
		}
		if page*current >= list.Subtotal {
			break
		}
	}
	res.ActiveSeen = len(seen)

	if opts.Archive {
		if capped {
			logger.Warn("Item cap reached, cars past the cap will be archived")
		}
		ids := make([]string, 0, len(seen))
		for id := range seen {
			ids = append(ids, id)
		}
		archived, err := s.Archive(ctx, ids, s.now())
		if err != nil {
			return res, err
		}
		res.Archived = archived
	}

	res.FinishedAt = s.now()
	logger.WithFields(logrus.Fields{
		"imported":    res.Imported,
		"archived":    res.Archived,
		"active_seen": res.ActiveSeen,
		"duration":    res.FinishedAt.Sub(res.StartedAt).String(),
	}).Info("Sync finished")
	return res, nil
}

// seenAdvert rows stage the ids a sync saw in a temporary table, so the
// archive UPDATE binds no id list.
type seenAdvert struct {
	ExternalID string `gorm:"primaryKey;size:64"`
}

func (seenAdvert) TableName() string { return "seen_adverts" }

const seenBatchSize = 500

// Archive retires every active car of this source whose external id is not
// in seen, in a single UPDATE. An empty seen set archives all of them.
func (s *SyncService) Archive(ctx context.Context, seen []string, now time.Time) (int64, error) {
	var archived int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Session(&gorm.Session{SkipHooks: true}).
			Model(&models.Car{}).
			Where("source = ? AND active = ?", s.config.Name, true)

		if len(seen) > 0 {
			if err := stageSeen(tx, seen); err != nil {
				return err
			}
			defer tx.Exec("DROP TABLE IF EXISTS seen_adverts")
			query = query.Where("NOT EXISTS (SELECT 1 FROM seen_adverts WHERE seen_adverts.external_id = cars.external_id)")
		}

		result := query.Updates(map[string]interface{}{
			"active":     false,
			"status":     models.CarStatusArchived,
			"sold_at":    now,
			"updated_at": now,
		})
		if result.Error != nil {
			return result.Error
		}
		archived = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to archive cars: %w", err)
	}

	if archived > 0 {
		if err := s.events.CarsArchived(s.config.Name, archived, now); err != nil {
			logrus.WithError(err).Warn("Failed to publish archive event")
		}
	}
	return archived, nil
}

func stageSeen(tx *gorm.DB, seen []string) error {
	if err := tx.Exec("DROP TABLE IF EXISTS seen_adverts").Error; err != nil {
		return fmt.Errorf("failed to reset seen table: %w", err)
	}
	if err := tx.Exec("CREATE TEMPORARY TABLE seen_adverts (external_id VARCHAR(64) PRIMARY KEY)").Error; err != nil {
		return fmt.Errorf("failed to create seen table: %w", err)
	}

	rows := make([]seenAdvert, 0, len(seen))
	for _, id := range seen {
		rows = append(rows, seenAdvert{ExternalID: id})
	}
	if err := tx.CreateInBatches(&rows, seenBatchSize).Error; err != nil {
		return fmt.Errorf("failed to stage seen ids: %w", err)
	}
	return nil
}
