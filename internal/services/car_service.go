// internal/services/car_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/autoimport/internal/i18n"
	"github.com/javajoker/autoimport/internal/models"
	"github.com/javajoker/autoimport/internal/utils"
)

var ErrCarNotFound = errors.New("car not found")

const defaultCarOrdering = "-updated"

// public ordering names and their columns
var carOrderings = map[string]string{
	"price":   "price_eur",
	"year":    "year",
	"mileage": "mileage_km",
	"updated": "updated_at",
}

type CarService struct {
	db *gorm.DB
}

type CarSearchParams struct {
	utils.PaginationParams
	Make              string   `form:"make" validate:"omitempty,max=128"`
	FuelTypeCode      string   `form:"fuel_type_code" validate:"omitempty,oneof=petrol diesel lpg_propane cng_methane hybrid electric phev_petrol phev_diesel mhev_petrol mhev_diesel other"`
	FuelTypeCanonical string   `form:"fuel_type_canonical" validate:"omitempty,oneof=petrol diesel hybrid_petrol hybrid_diesel phev_petrol phev_diesel electric lpg cng hydrogen"`
	TransmissionCode  string   `form:"transmission_code" validate:"omitempty,oneof=automatic manual robot cvt other"`
	BodyType          string   `form:"body_type_code" validate:"omitempty,oneof=sedan hatchback wagon suv coupe cabrio minivan pickup van other"`
	YearMin           *int     `form:"year_min" validate:"omitempty,min=1900"`
	YearMax           *int     `form:"year_max" validate:"omitempty,min=1900"`
	PriceMin          *float64 `form:"price_min" validate:"omitempty,min=0"`
	PriceMax          *float64 `form:"price_max" validate:"omitempty,min=0"`
	MileageMax        *int     `form:"mileage_max" validate:"omitempty,min=0"`
}

type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type Range struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type CarFilters struct {
	Makes         []FilterOption `json:"makes"`
	FuelTypes     []FilterOption `json:"fuel_types"`
	FuelCanonical []FilterOption `json:"fuel_canonical"`
	Transmissions []FilterOption `json:"transmissions"`
	BodyTypes     []FilterOption `json:"body_types"`
	Year          Range          `json:"year"`
	Price         Range          `json:"price"`
}

func NewCarService(db *gorm.DB) *CarService {
	return &CarService{db: db}
}

// listed scopes a query to cars the public API may show.
func (s *CarService) listed() *gorm.DB {
	return s.db.Model(&models.Car{}).Where("status = ? AND active = ?", models.CarStatusPublished, true)
}

func (s *CarService) SearchCars(params CarSearchParams) ([]models.Car, int64, error) {
	query := s.listed()

	// Apply filters
	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(make) LIKE ? OR LOWER(model) LIKE ?", searchTerm, searchTerm, searchTerm)
	}

	if params.Make != "" {
		query = query.Where("LOWER(make) = ?", strings.ToLower(params.Make))
	}

	if params.FuelTypeCode != "" {
		query = query.Where("fuel_type_code = ?", params.FuelTypeCode)
	}

	if params.FuelTypeCanonical != "" {
		query = query.Where("fuel_type_canonical = ?", params.FuelTypeCanonical)
	}

	if params.TransmissionCode != "" {
		query = query.Where("transmission_code = ?", params.TransmissionCode)
	}

	if params.BodyType != "" {
		query = query.Where("body_type = ?", params.BodyType)
	}

	if params.YearMin != nil {
		query = query.Where("year >= ?", *params.YearMin)
	}

	if params.YearMax != nil {
		query = query.Where("year <= ?", *params.YearMax)
	}

	if params.PriceMin != nil {
		query = query.Where("price_eur >= ?", *params.PriceMin)
	}

	if params.PriceMax != nil {
		query = query.Where("price_eur <= ?", *params.PriceMax)
	}

	if params.MileageMax != nil {
		query = query.Where("mileage_km <= ?", *params.MileageMax)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count cars: %w", err)
	}

	query = utils.ApplyOrdering(query, params.Ordering, carOrderings, defaultCarOrdering)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var cars []models.Car
	if err := query.Preload("Photos", orderedPhotos).Find(&cars).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch cars: %w", err)
	}

	return cars, total, nil
}

// GetCar returns a listed car. Archived and inactive cars are not found.
func (s *CarService) GetCar(id uuid.UUID) (*models.Car, error) {
	var car models.Car
	if err := s.db.Preload("Photos", orderedPhotos).First(&car, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCarNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !car.Listed() {
		return nil, ErrCarNotFound
	}
	return &car, nil
}

// GetFilters collects the facet values of the listed cars, labelled in lang.
func (s *CarService) GetFilters(lang string) (*CarFilters, error) {
	filters := &CarFilters{}

	facets := []struct {
		column string
		label  func(string) string
		target *[]FilterOption
	}{
		{"make", func(v string) string { return v }, &filters.Makes},
		{"fuel_type_code", func(v string) string { return i18n.T(lang, i18n.FuelKey(v)) }, &filters.FuelTypes},
		{"transmission_code", func(v string) string { return i18n.T(lang, i18n.TransmissionKey(v)) }, &filters.Transmissions},
		{"body_type", func(v string) string { return i18n.T(lang, i18n.BodyKey(v)) }, &filters.BodyTypes},
	}
	for _, facet := range facets {
		counts, err := s.groupCounts(facet.column)
		if err != nil {
			return nil, err
		}
		options := make([]FilterOption, 0, len(counts))
		for _, c := range counts {
			options = append(options, FilterOption{Value: c.Value, Label: facet.label(c.Value), Count: c.Count})
		}
		*facet.target = options
	}

	canonical, err := s.groupCounts("fuel_type_canonical")
	if err != nil {
		return nil, err
	}
	byValue := make(map[string]int64, len(canonical))
	for _, c := range canonical {
		byValue[c.Value] = c.Count
	}
	for _, canon := range models.FuelCanonicals {
		filters.FuelCanonical = append(filters.FuelCanonical, FilterOption{
			Value: string(canon),
			Label: i18n.T(lang, i18n.CanonicalFuelKey(string(canon))),
			Count: byValue[string(canon)],
		})
	}

	if filters.Year, err = s.columnRange("year"); err != nil {
		return nil, err
	}
	if filters.Price, err = s.columnRange("price_eur"); err != nil {
		return nil, err
	}

	return filters, nil
}

type valueCount struct {
	Value string
	Count int64
}

// groupCounts is only called with fixed column names.
func (s *CarService) groupCounts(column string) ([]valueCount, error) {
	var counts []valueCount
	err := s.listed().
		Select(column+" AS value, COUNT(*) AS count").
		Where(column+" IS NOT NULL AND "+column+" <> ''").
		Group(column).
		Order(column).
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count cars by %s: %w", column, err)
	}
	return counts, nil
}

func (s *CarService) columnRange(column string) (Range, error) {
	var r Range
	err := s.listed().
		Select("MIN(" + column + ") AS min, MAX(" + column + ") AS max").
		Where(column + " IS NOT NULL").
		Scan(&r).Error
	if err != nil {
		return Range{}, fmt.Errorf("failed to read %s range: %w", column, err)
	}
	return r, nil
}

func orderedPhotos(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}
