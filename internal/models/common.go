// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields. Rows are hard-deleted.
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL, stored as TEXT on SQLite
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type CarStatus string

const (
	CarStatusDraft     CarStatus = "draft"
	CarStatusPublished CarStatus = "published"
	CarStatusArchived  CarStatus = "archived"
)

// FuelCode is the internal fuel vocabulary used for storage and admin.
type FuelCode string

const (
	FuelPetrol     FuelCode = "petrol"
	FuelDiesel     FuelCode = "diesel"
	FuelLPGPropane FuelCode = "lpg_propane"
	FuelCNGMethane FuelCode = "cng_methane"
	FuelHybrid     FuelCode = "hybrid"
	FuelElectric   FuelCode = "electric"
	FuelPHEVPetrol FuelCode = "phev_petrol"
	FuelPHEVDiesel FuelCode = "phev_diesel"
	FuelMHEVPetrol FuelCode = "mhev_petrol"
	FuelMHEVDiesel FuelCode = "mhev_diesel"
	FuelOther      FuelCode = "other"
)

var FuelCodes = []FuelCode{
	FuelPetrol, FuelDiesel, FuelLPGPropane, FuelCNGMethane, FuelHybrid, FuelElectric,
	FuelPHEVPetrol, FuelPHEVDiesel, FuelMHEVPetrol, FuelMHEVDiesel, FuelOther,
}

// Electrified reports whether the drivetrain is never paired with a manual gearbox.
func (f FuelCode) Electrified() bool {
	switch f {
	case FuelHybrid, FuelElectric, FuelPHEVPetrol, FuelPHEVDiesel, FuelMHEVPetrol, FuelMHEVDiesel:
		return true
	}
	return false
}

// PlugIn reports whether the code belongs to the plug-in hybrid family.
func (f FuelCode) PlugIn() bool {
	return f == FuelPHEVPetrol || f == FuelPHEVDiesel
}

// FuelCanonical is the cross-source vocabulary used by public filters.
type FuelCanonical string

const (
	CanonPetrol       FuelCanonical = "petrol"
	CanonDiesel       FuelCanonical = "diesel"
	CanonHybridPetrol FuelCanonical = "hybrid_petrol"
	CanonHybridDiesel FuelCanonical = "hybrid_diesel"
	CanonPHEVPetrol   FuelCanonical = "phev_petrol"
	CanonPHEVDiesel   FuelCanonical = "phev_diesel"
	CanonElectric     FuelCanonical = "electric"
	CanonLPG          FuelCanonical = "lpg"
	CanonCNG          FuelCanonical = "cng"
	CanonHydrogen     FuelCanonical = "hydrogen"
)

var FuelCanonicals = []FuelCanonical{
	CanonPetrol, CanonDiesel, CanonHybridPetrol, CanonHybridDiesel, CanonPHEVPetrol,
	CanonPHEVDiesel, CanonElectric, CanonLPG, CanonCNG, CanonHydrogen,
}

type TransmissionCode string

const (
	TransmissionAutomatic TransmissionCode = "automatic"
	TransmissionManual    TransmissionCode = "manual"
	TransmissionRobot     TransmissionCode = "robot"
	TransmissionCVT       TransmissionCode = "cvt"
	TransmissionOther     TransmissionCode = "other"
)

var TransmissionCodes = []TransmissionCode{
	TransmissionAutomatic, TransmissionManual, TransmissionRobot, TransmissionCVT, TransmissionOther,
}

type BodyType string

const (
	BodySedan     BodyType = "sedan"
	BodyHatchback BodyType = "hatchback"
	BodyWagon     BodyType = "wagon"
	BodySUV       BodyType = "suv"
	BodyCoupe     BodyType = "coupe"
	BodyCabrio    BodyType = "cabrio"
	BodyMinivan   BodyType = "minivan"
	BodyPickup    BodyType = "pickup"
	BodyVan       BodyType = "van"
	BodyOther     BodyType = "other"
)

var BodyTypes = []BodyType{
	BodySedan, BodyHatchback, BodyWagon, BodySUV, BodyCoupe,
	BodyCabrio, BodyMinivan, BodyPickup, BodyVan, BodyOther,
}

type DriveType string

const (
	DriveFWD DriveType = "fwd"
	DriveRWD DriveType = "rwd"
	DriveAWD DriveType = "awd"
)

type Condition string

const (
	ConditionNew           Condition = "new"
	ConditionUsed          Condition = "used"
	ConditionAfterAccident Condition = "after_accident"
	ConditionForParts      Condition = "for_parts"
)

type Availability string

const (
	AvailabilityInStock  Availability = "in_stock"
	AvailabilityOnOrder  Availability = "on_order"
	AvailabilityReserved Availability = "reserved"
	AvailabilitySold     Availability = "sold"
)
