// internal/normalize/fuel.go
package normalize

import (
	"strings"

	"github.com/javajoker/autoimport/internal/models"
)

// Fuel maps a raw fuel string in any supported language onto the internal
// fuel code. Categories overlap, so the order of the checks matters.
func Fuel(raw string) models.FuelCode {
	s := lower(raw)
	if s == "" {
		return models.FuelOther
	}

	if isElectric(s) {
		return models.FuelElectric
	}

	if ContainsAny(s, phevMarkers) {
		diesel, petrol := ContainsAny(s, DieselWords), ContainsAny(s, PetrolWords)
		switch {
		case diesel && !petrol:
			return models.FuelPHEVDiesel
		case petrol && !diesel:
			return models.FuelPHEVPetrol
		}
		// undecided plug-in labels stay generic; the reconciler may refine them
		return models.FuelHybrid
	}

	if ContainsAny(s, mhevMarkers) {
		if ContainsAny(s, DieselWords) && !ContainsAny(s, PetrolWords) {
			return models.FuelMHEVDiesel
		}
		return models.FuelMHEVPetrol
	}

	if ContainsAny(s, hybridMarkers) {
		return models.FuelHybrid
	}

	if ContainsAny(s, lpgMarkers) {
		return models.FuelLPGPropane
	}
	if ContainsAny(s, cngMarkers) {
		return models.FuelCNGMethane
	}

	if ContainsAny(s, DieselWords) {
		return models.FuelDiesel
	}
	if ContainsAny(s, PetrolWords) || ContainsAny(s, petrolEngineCodes) {
		return models.FuelPetrol
	}

	// a bare gas label without a sub-variant is propane
	if strings.Contains(s, "gaz") || strings.Contains(s, "газ") {
		return models.FuelLPGPropane
	}

	return models.FuelOther
}

func isElectric(s string) bool {
	return ContainsAny(s, electricMarkers) || strings.HasPrefix(s, "электр") || in(s, electricExact)
}
