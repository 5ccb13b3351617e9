// internal/models/car.go
package models

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Car struct {
	BaseModel
	Source     string     `json:"source" gorm:"size:32;not null;uniqueIndex:idx_cars_source_external"`
	ExternalID string     `json:"external_id" gorm:"size:64;not null;uniqueIndex:idx_cars_source_external"`
	Status     CarStatus  `json:"status" gorm:"size:32;default:'draft';index"`
	Active     bool       `json:"active" gorm:"not null;index"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
	SoldAt     *time.Time `json:"sold_at,omitempty"`

	Make              string          `json:"make" gorm:"size:128;index"`
	Model             string          `json:"model" gorm:"size:128"`
	Generation        string          `json:"generation" gorm:"size:128"`
	Year              *int            `json:"year,omitempty" gorm:"index"`
	FirstRegistration *datatypes.Date `json:"first_registration,omitempty"`
	Seats             *int            `json:"seats,omitempty"`
	BodyType          BodyType        `json:"body_type" gorm:"size:64;index" validate:"omitempty,oneof=sedan hatchback wagon suv coupe cabrio minivan pickup van other"`
	MileageKm         int             `json:"mileage_km" gorm:"not null;default:0" validate:"min=0"`
	EngineCC          *int            `json:"engine_cc,omitempty"`
	PowerHP           *int            `json:"power_hp,omitempty"`
	Drive             DriveType       `json:"drive" gorm:"size:32" validate:"omitempty,oneof=fwd rwd awd"`

	FuelTypeRaw       string        `json:"fuel_type_raw" gorm:"type:text"`
	FuelTypeCode      FuelCode      `json:"fuel_type_code" gorm:"size:32;index" validate:"omitempty,oneof=petrol diesel lpg_propane cng_methane hybrid electric phev_petrol phev_diesel mhev_petrol mhev_diesel other"`
	FuelTypeLabel     string        `json:"fuel_type_label" gorm:"size:255"`
	FuelTypeCanonical FuelCanonical `json:"fuel_type_canonical" gorm:"size:32;index"`

	TransmissionRaw   string           `json:"transmission_raw" gorm:"type:text"`
	TransmissionCode  TransmissionCode `json:"transmission_code" gorm:"size:32;index" validate:"omitempty,oneof=automatic manual robot cvt other"`
	TransmissionLabel string           `json:"transmission_label" gorm:"size:255"`

	RegistrationCountry string       `json:"registration_country" gorm:"size:128"`
	OriginCountry       string       `json:"origin_country" gorm:"size:128"`
	Condition           Condition    `json:"condition" gorm:"size:64" validate:"omitempty,oneof=new used after_accident for_parts"`
	Availability        Availability `json:"availability" gorm:"size:64" validate:"omitempty,oneof=in_stock on_order reserved sold"`
	LocationCity        string       `json:"location_city" gorm:"size:128"`

	PriceEUR float64 `json:"price_eur" gorm:"type:decimal(12,2)" validate:"min=0"`
	Currency string  `json:"currency" gorm:"size:8" validate:"omitempty,oneof=EUR USD MDL"`

	Title        string `json:"title" gorm:"size:255"`
	Description  string `json:"description" gorm:"type:text"`
	Color        string `json:"color" gorm:"size:64"`
	MainPhotoURL string `json:"main_photo_url" gorm:"type:text"`

	// Raw per-field strings and the probe that produced them
	RawSpecs JSONB `json:"raw_specs,omitempty" gorm:"type:jsonb"`

	// Relationships
	Photos []Photo `json:"photos,omitempty" gorm:"foreignKey:CarID;constraint:OnDelete:CASCADE"`
}

type Photo struct {
	BaseModel
	CarID     uuid.UUID `json:"car_id" gorm:"type:uuid;not null;index"`
	ImageURL  string    `json:"image_url" gorm:"type:text;not null"`
	SortOrder int       `json:"sort_order" gorm:"not null;default:0"`
	IsPrimary bool      `json:"is_primary" gorm:"default:false"`
}

// column limits for string fields the pipeline writes
const (
	LenSource     = 32
	LenExternalID = 64
	LenStatus     = 32
	LenName       = 128 // make, model, generation
	LenBodyType   = 64
	LenCode       = 32 // fuel/transmission codes, drive
	LenLabel      = 255
	LenCountry    = 128
	LenCondition  = 64 // condition, availability
	LenCity       = 128
	LenCurrency   = 8
	LenTitle      = 255
	LenColor      = 64
	LenCanonical  = 32
)

// BeforeSave derives the canonical fuel once. A derivation miss leaves the
// column empty and never blocks the write.
func (c *Car) BeforeSave(tx *gorm.DB) error {
	if c.FuelTypeCanonical == "" {
		if canon, ok := DeriveFuelCanonical(c.FuelTypeRaw, c.FuelTypeLabel, string(c.FuelTypeCode)); ok {
			c.FuelTypeCanonical = canon
		}
	}
	c.Truncate()
	return nil
}

// Truncate cuts every bounded string column to its declared length.
func (c *Car) Truncate() {
	c.Source = truncate(c.Source, LenSource)
	c.ExternalID = truncate(c.ExternalID, LenExternalID)
	c.Status = CarStatus(truncate(string(c.Status), LenStatus))
	c.Make = truncate(c.Make, LenName)
	c.Model = truncate(c.Model, LenName)
	c.Generation = truncate(c.Generation, LenName)
	c.BodyType = BodyType(truncate(string(c.BodyType), LenBodyType))
	c.Drive = DriveType(truncate(string(c.Drive), LenCode))
	c.FuelTypeCode = FuelCode(truncate(string(c.FuelTypeCode), LenCode))
	c.FuelTypeLabel = truncate(c.FuelTypeLabel, LenLabel)
	c.FuelTypeCanonical = FuelCanonical(truncate(string(c.FuelTypeCanonical), LenCanonical))
	c.TransmissionCode = TransmissionCode(truncate(string(c.TransmissionCode), LenCode))
	c.TransmissionLabel = truncate(c.TransmissionLabel, LenLabel)
	c.RegistrationCountry = truncate(c.RegistrationCountry, LenCountry)
	c.OriginCountry = truncate(c.OriginCountry, LenCountry)
	c.Condition = Condition(truncate(string(c.Condition), LenCondition))
	c.Availability = Availability(truncate(string(c.Availability), LenCondition))
	c.LocationCity = truncate(c.LocationCity, LenCity)
	c.Currency = truncate(c.Currency, LenCurrency)
	c.Title = truncate(c.Title, LenTitle)
	c.Color = truncate(c.Color, LenColor)
}

// truncate keeps at most max characters, never splitting a multi-byte rune.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// YearDisplay is the year shown to buyers: Year, else the first registration year.
func (c *Car) YearDisplay() *int {
	if c.Year != nil && *c.Year != 0 {
		return c.Year
	}
	if c.FirstRegistration != nil {
		y := time.Time(*c.FirstRegistration).Year()
		return &y
	}
	return nil
}

// MainPhoto returns the stored main photo, else the lowest-ordered loaded photo.
func (c *Car) MainPhoto() string {
	if c.MainPhotoURL != "" {
		return c.MainPhotoURL
	}
	best := -1
	for i, p := range c.Photos {
		if p.ImageURL == "" {
			continue
		}
		if best < 0 || p.SortOrder < c.Photos[best].SortOrder {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return c.Photos[best].ImageURL
}

// Publish marks the car as seen upstream at seenAt.
func (c *Car) Publish(seenAt time.Time) {
	c.Status = CarStatusPublished
	c.Active = true
	c.LastSeenAt = &seenAt
	c.SoldAt = nil
}

// Archive retires the car; an existing sold timestamp is kept.
func (c *Car) Archive(now time.Time) {
	c.Status = CarStatusArchived
	c.Active = false
	if c.SoldAt == nil {
		c.SoldAt = &now
	}
}

// Listed reports whether the public API may show the car.
func (c *Car) Listed() bool {
	return c.Active && c.Status == CarStatusPublished
}
