// internal/services/admin_service.go
package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/javajoker/autoimport/internal/config"
	"github.com/javajoker/autoimport/internal/models"
)

type AdminService struct {
	db     *gorm.DB
	config config.SourceConfig
	now    func() time.Time
}

// AdminDashboardStats summarizes the catalogue of one source.
type AdminDashboardStats struct {
	TotalCars          int64      `json:"total_cars"`
	ListedCars         int64      `json:"listed_cars"`
	ArchivedCars       int64      `json:"archived_cars"`
	SeenLast24h        int64      `json:"seen_last_24h"`
	ArchivedThisMonth  int64      `json:"archived_this_month"`
	MissingYear        int64      `json:"missing_year"`
	UnknownFuel        int64      `json:"unknown_fuel"`
	ElectrifiedManual  int64      `json:"electrified_manual"`
	AveragePriceEUR    float64    `json:"average_price_eur"`
	LastSeenAt         *time.Time `json:"last_seen_at,omitempty"`
	ArchivedGrowthRate float64    `json:"archived_growth_rate"`
}

var electrifiedCodes = []models.FuelCode{
	models.FuelHybrid, models.FuelElectric, models.FuelPHEVPetrol,
	models.FuelPHEVDiesel, models.FuelMHEVPetrol, models.FuelMHEVDiesel,
}

func NewAdminService(db *gorm.DB, cfg config.SourceConfig) *AdminService {
	return &AdminService{db: db, config: cfg, now: time.Now}
}

func (s *AdminService) GetDashboardStats() (*AdminDashboardStats, error) {
	stats := &AdminDashboardStats{}
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	cars := func() *gorm.DB {
		return s.db.Model(&models.Car{}).Where("source = ?", s.config.Name)
	}
	listed := func() *gorm.DB {
		return cars().Where("status = ? AND active = ?", models.CarStatusPublished, true)
	}

	counts := []struct {
		query  *gorm.DB
		target *int64
	}{
		{cars(), &stats.TotalCars},
		{listed(), &stats.ListedCars},
		{cars().Where("status = ?", models.CarStatusArchived), &stats.ArchivedCars},
		{cars().Where("last_seen_at >= ?", now.Add(-24*time.Hour)), &stats.SeenLast24h},
		{cars().Where("status = ? AND sold_at >= ?", models.CarStatusArchived, monthStart), &stats.ArchivedThisMonth},
		// Data quality
		{listed().Where("year IS NULL"), &stats.MissingYear},
		{listed().Where("fuel_type_code IN ?", []models.FuelCode{"", models.FuelOther}), &stats.UnknownFuel},
		{listed().Where("fuel_type_code IN ? AND transmission_code = ?", electrifiedCodes, models.TransmissionManual), &stats.ElectrifiedManual},
	}
	for _, c := range counts {
		if err := c.query.Count(c.target).Error; err != nil {
			return nil, fmt.Errorf("failed to count cars: %w", err)
		}
	}

	if err := listed().Select("COALESCE(AVG(price_eur), 0)").Scan(&stats.AveragePriceEUR).Error; err != nil {
		return nil, fmt.Errorf("failed to average prices: %w", err)
	}

	var last models.Car
	err := cars().Where("last_seen_at IS NOT NULL").Order("last_seen_at DESC").Limit(1).Find(&last).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read last seen car: %w", err)
	}
	stats.LastSeenAt = last.LastSeenAt

	// Growth calculations
	var archivedLastMonth int64
	cars().Where("status = ? AND sold_at >= ? AND sold_at < ?", models.CarStatusArchived, lastMonthStart, monthStart).
		Count(&archivedLastMonth)
	if archivedLastMonth > 0 {
		stats.ArchivedGrowthRate = float64(stats.ArchivedThisMonth-archivedLastMonth) / float64(archivedLastMonth) * 100
	}

	return stats, nil
}
