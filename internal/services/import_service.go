// internal/services/import_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/autoimport/internal/config"
	"github.com/javajoker/autoimport/internal/extract"
	"github.com/javajoker/autoimport/internal/models"
	"github.com/javajoker/autoimport/internal/source"
	"github.com/javajoker/autoimport/internal/utils"
)

// AdvertSource is the upstream marketplace as seen by the importer.
// *source.Client implements it.
type AdvertSource interface {
	ListAdverts(ctx context.Context, p source.ListParams) (*source.AdvertList, error)
	GetAdvert(ctx context.Context, id string) (*source.Advert, error)
	GetAdvertFeatures(ctx context.Context, id string) (*source.FeatureSet, error)
	FetchPage(ctx context.Context, id string) source.PageResult
}

type ImportService struct {
	db        *gorm.DB
	source    AdvertSource
	config    config.SourceConfig
	synonyms  *extract.Synonyms
	events    *EventService
	snapshots *SnapshotService
	sleep     func(ctx context.Context, d time.Duration) error
}

// Fetched is everything read upstream for one advert plus the draft built
// from it.
type Fetched struct {
	Advert   *source.Advert
	Features *source.FeatureSet
	Page     source.PageResult
	Draft    Draft
}

func NewImportService(db *gorm.DB, src AdvertSource, cfg config.SourceConfig, events *EventService, snapshots *SnapshotService) *ImportService {
	return &ImportService{
		db:        db,
		source:    src,
		config:    cfg,
		synonyms:  extract.DefaultSynonyms(),
		events:    events,
		snapshots: snapshots,
		sleep:     source.Sleep,
	}
}

// Fetch reads the advert, its features and its public page, and builds the
// draft. Advert and features are required; a page failure degrades to API
// data only.
func (s *ImportService) Fetch(ctx context.Context, externalID string) (*Fetched, error) {
	advert, err := s.source.GetAdvert(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch advert %s: %w", externalID, err)
	}

	features, err := s.source.GetAdvertFeatures(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch features of advert %s: %w", externalID, err)
	}

	page := s.source.FetchPage(ctx, externalID)
	if !page.Available() {
		logrus.WithError(page.Err).WithField("external_id", externalID).Warn("Advert page unavailable, using API data only")
	}

	return &Fetched{
		Advert:   advert,
		Features: features,
		Page:     page,
		Draft:    BuildDraft(s.config, s.synonyms, externalID, *advert, features.Features, page),
	}, nil
}

// Upsert imports one advert: the car row is created or updated by
// (source, external_id), marked seen at seenAt, and its photo set replaced,
// all in one transaction. Any fetch error aborts before the write.
func (s *ImportService) Upsert(ctx context.Context, externalID string, seenAt time.Time) (*models.Car, error) {
	fetched, err := s.Fetch(ctx, externalID)
	if err != nil {
		return nil, err
	}

	car, err := s.save(ctx, fetched.Draft, seenAt)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"external_id":  car.ExternalID,
		"car_id":       car.ID,
		"fuel":         car.FuelTypeCode,
		"transmission": car.TransmissionCode,
		"photos":       len(car.Photos),
	}).Info("Advert imported")

	if err := s.events.CarUpserted(car); err != nil {
		logrus.WithError(err).WithField("external_id", externalID).Warn("Failed to publish car event")
	}
	s.saveSnapshot(ctx, fetched)

	if err := s.sleep(ctx, s.config.PerAdvertSleep); err != nil {
		return car, err
	}
	return car, nil
}

func (s *ImportService) save(ctx context.Context, draft Draft, seenAt time.Time) (*models.Car, error) {
	car := draft.Car
	car.Publish(seenAt)

	if err := utils.ValidateStruct(&car); err != nil {
		return nil, fmt.Errorf("advert %s failed validation: %w", car.ExternalID, err)
	}

	var photos []models.Photo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Car
		err := tx.Where("source = ? AND external_id = ?", car.Source, car.ExternalID).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&car).Error; err != nil {
				return fmt.Errorf("failed to create car: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to look up car: %w", err)
		default:
			car.ID = existing.ID
			car.CreatedAt = existing.CreatedAt
			// the canonical fuel is derived once per row
			car.FuelTypeCanonical = existing.FuelTypeCanonical
			if err := tx.Save(&car).Error; err != nil {
				return fmt.Errorf("failed to update car: %w", err)
			}
		}

		if err := tx.Where("car_id = ?", car.ID).Delete(&models.Photo{}).Error; err != nil {
			return fmt.Errorf("failed to delete photos: %w", err)
		}

		draft.Car.ID = car.ID
		photos = draft.Photos()
		if len(photos) > 0 {
			if err := tx.Create(&photos).Error; err != nil {
				return fmt.Errorf("failed to create photos: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save advert %s: %w", car.ExternalID, err)
	}

	car.Photos = photos
	return &car, nil
}

func (s *ImportService) saveSnapshot(ctx context.Context, fetched *Fetched) {
	if !s.snapshots.Enabled() {
		return
	}

	_, err := s.snapshots.Save(ctx, Snapshot{
		Source:     s.config.Name,
		ExternalID: fetched.Draft.Car.ExternalID,
		Advert:     fetched.Advert.Raw,
		Features:   fetched.Features.Raw,
		HTML:       fetched.Page.HTML,
		TakenAt:    time.Now(),
	})
	if err != nil {
		logrus.WithError(err).WithField("external_id", fetched.Draft.Car.ExternalID).Warn("Failed to store advert snapshot")
	}
}
