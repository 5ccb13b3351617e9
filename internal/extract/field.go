// internal/extract/field.go
package extract

// Field names one semantic attribute of an advert.
type Field int

const (
	FieldMake Field = iota
	FieldModel
	FieldGeneration
	FieldYear
	FieldSeats
	FieldBodyType
	FieldMileage
	FieldEngine
	FieldPower
	FieldFuel
	FieldTransmission
	FieldDrive
	FieldColor
	FieldCity
	FieldRegistrationCountry
	FieldCondition
	FieldAvailability
	FieldOriginCountry

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldMake:                "make",
	FieldModel:               "model",
	FieldGeneration:          "generation",
	FieldYear:                "year",
	FieldSeats:               "seats",
	FieldBodyType:            "body_type",
	FieldMileage:             "mileage_km",
	FieldEngine:              "engine_cc",
	FieldPower:               "power_hp",
	FieldFuel:                "fuel_type",
	FieldTransmission:        "transmission",
	FieldDrive:               "drive",
	FieldColor:               "color",
	FieldCity:                "location_city",
	FieldRegistrationCountry: "registration_country",
	FieldCondition:           "condition",
	FieldAvailability:        "availability",
	FieldOriginCountry:       "origin_country",
}

func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

// Fields lists every field in declaration order.
func Fields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// ParseField is the inverse of Field.String.
func ParseField(name string) (Field, bool) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}
