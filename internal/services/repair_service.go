// internal/services/repair_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/autoimport/internal/config"
	"github.com/javajoker/autoimport/internal/extract"
	"github.com/javajoker/autoimport/internal/models"
	"github.com/javajoker/autoimport/internal/normalize"
	"github.com/javajoker/autoimport/internal/reconcile"
)

// RepairService re-applies the reconciliation rules to stored cars without
// touching the network, and reports rows whose codes disagree with their raw
// strings.
type RepairService struct {
	db     *gorm.DB
	config config.SourceConfig
}

type FixReport struct {
	Scanned int `json:"scanned"`
	Fixed   int `json:"fixed"`
}

type Mismatch struct {
	CarID      uuid.UUID `json:"car_id"`
	ExternalID string    `json:"external_id"`
	Title      string    `json:"title"`
	Make       string    `json:"make"`
	Model      string    `json:"model"`
	Year       *int      `json:"year,omitempty"`

	TransmissionCode    models.TransmissionCode `json:"transmission_code"`
	TransmissionLabel   string                  `json:"transmission_label"`
	TransmissionRaw     string                  `json:"transmission_raw"`
	TransmissionReasons []string                `json:"transmission_reasons,omitempty"`

	FuelCode    models.FuelCode `json:"fuel_type_code"`
	FuelLabel   string          `json:"fuel_type_label"`
	FuelRaw     string          `json:"fuel_type_raw"`
	FuelGuess   models.FuelCode `json:"fuel_guess,omitempty"`
	FuelReasons []string        `json:"fuel_reasons,omitempty"`
}

const repairBatchSize = 200

func NewRepairService(db *gorm.DB, cfg config.SourceConfig) *RepairService {
	return &RepairService{db: db, config: cfg}
}

// FixSpecs repairs fuel, gearbox and year of the given cars, or of every car
// of this source when ids is empty.
func (s *RepairService) FixSpecs(ctx context.Context, ids []uuid.UUID) (*FixReport, error) {
	query := s.db.WithContext(ctx).Model(&models.Car{})
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	} else {
		query = query.Where("source = ?", s.config.Name)
	}

	report := &FixReport{}
	var cars []models.Car
	err := query.FindInBatches(&cars, repairBatchSize, func(tx *gorm.DB, batch int) error {
		for i := range cars {
			report.Scanned++
			updates, changed := s.repair(&cars[i])
			if !changed {
				continue
			}
			if err := s.db.WithContext(ctx).Model(&cars[i]).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update car %s: %w", cars[i].ID, err)
			}
			report.Fixed++
		}
		return nil
	}).Error
	if err != nil {
		return report, fmt.Errorf("failed to fix specs: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"scanned": report.Scanned,
		"fixed":   report.Fixed,
	}).Info("Stored specs repaired")
	return report, nil
}

// repair computes the column updates for one car.
func (s *RepairService) repair(car *models.Car) (map[string]interface{}, bool) {
	text := car.Title + " " + car.Description
	fuel := car.FuelTypeCode

	if (fuel == "" || fuel == models.FuelOther) && reconcile.HybridByModel(car.Make, car.Model, text) {
		fuel = models.FuelHybrid
	}

	rec := reconcile.Reconcile(reconcile.Input{
		Fuel:         fuel,
		Transmission: car.TransmissionCode,
		Year:         car.Year,
		FuelFromHTML: fuelOrigin(car.RawSpecs) == string(extract.OriginHTML),
		Title:        car.Title,
		Body:         car.Description,
		Make:         car.Make,
		Model:        car.Model,
	})

	updates := map[string]interface{}{}
	if rec.Fuel != car.FuelTypeCode {
		updates["fuel_type_code"] = rec.Fuel
		updates["fuel_type_label"] = normalize.FuelLabel(rec.Fuel, s.config.Lang)
		// the stored canonical fuel belongs to the old code
		canon, _ := models.DeriveFuelCanonical(car.FuelTypeRaw, "", string(rec.Fuel))
		updates["fuel_type_canonical"] = canon
	}
	if rec.Transmission != car.TransmissionCode {
		updates["transmission_code"] = rec.Transmission
		updates["transmission_label"] = normalize.TransmissionLabel(rec.Transmission, s.config.Lang)
	}
	if !sameYear(rec.Year, car.Year) {
		updates["year"] = rec.Year
	}
	return updates, len(updates) > 0
}

// ScanMismatches lists cars whose stored fuel or gearbox code disagrees with
// what the raw upstream strings read as today.
func (s *RepairService) ScanMismatches(ctx context.Context) ([]Mismatch, error) {
	var (
		cars       []models.Car
		mismatches []Mismatch
	)
	err := s.db.WithContext(ctx).Model(&models.Car{}).
		FindInBatches(&cars, repairBatchSize, func(tx *gorm.DB, batch int) error {
			for i := range cars {
				if m, ok := inspect(&cars[i]); ok {
					mismatches = append(mismatches, m)
				}
			}
			return nil
		}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan cars: %w", err)
	}
	return mismatches, nil
}

func inspect(car *models.Car) (Mismatch, bool) {
	m := Mismatch{
		CarID:             car.ID,
		ExternalID:        car.ExternalID,
		Title:             car.Title,
		Make:              car.Make,
		Model:             car.Model,
		Year:              car.YearDisplay(),
		TransmissionCode:  car.TransmissionCode,
		TransmissionLabel: car.TransmissionLabel,
		TransmissionRaw:   strings.TrimSpace(car.TransmissionRaw),
		FuelCode:          car.FuelTypeCode,
		FuelLabel:         car.FuelTypeLabel,
		FuelRaw:           strings.TrimSpace(car.FuelTypeRaw),
	}
	electrified := car.FuelTypeCode.Electrified()

	if m.TransmissionRaw != "" {
		guess := normalize.Transmission(m.TransmissionRaw)
		forced := electrified && car.TransmissionCode == models.TransmissionAutomatic
		if guess != models.TransmissionOther && guess != car.TransmissionCode && !forced {
			m.TransmissionReasons = append(m.TransmissionReasons,
				fmt.Sprintf("raw gearbox reads as %s, stored %s", guess, orEmpty(string(car.TransmissionCode))))
		}
	}
	if electrified && (car.TransmissionCode == models.TransmissionManual || car.TransmissionCode == models.TransmissionOther) {
		m.TransmissionReasons = append(m.TransmissionReasons,
			fmt.Sprintf("%s car stored with %s gearbox", car.FuelTypeCode, car.TransmissionCode))
	}

	if m.FuelRaw != "" {
		if car.FuelTypeCode == "" {
			m.FuelReasons = append(m.FuelReasons, "fuel code empty while raw fuel is present")
		}
		guess := normalize.Fuel(m.FuelRaw)
		if guess != models.FuelOther && guess != car.FuelTypeCode && !refines(guess, car.FuelTypeCode) {
			m.FuelGuess = guess
			m.FuelReasons = append(m.FuelReasons,
				fmt.Sprintf("raw fuel reads as %s, stored %s", guess, orEmpty(string(car.FuelTypeCode))))
		}
	}

	return m, len(m.TransmissionReasons) > 0 || len(m.FuelReasons) > 0
}

// refines reports whether stored is a text-refined variant of guess, such as
// a plug-in hybrid found in the title of a car listed as petrol.
func refines(guess, stored models.FuelCode) bool {
	if !stored.Electrified() {
		return false
	}
	switch guess {
	case models.FuelPetrol, models.FuelDiesel, models.FuelHybrid:
		return true
	}
	return false
}

func fuelOrigin(specs models.JSONB) string {
	entry, ok := specs[extract.FieldFuel.String()].(map[string]interface{})
	if !ok {
		return ""
	}
	origin, _ := entry["origin"].(string)
	return origin
}

func sameYear(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func orEmpty(s string) string {
	if s == "" {
		return "empty"
	}
	return s
}
