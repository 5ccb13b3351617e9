// internal/models/fuel.go
package models

import (
	"regexp"
	"strings"
)

var canonicalByCode = map[FuelCode]FuelCanonical{
	FuelPetrol:     CanonPetrol,
	FuelDiesel:     CanonDiesel,
	FuelLPGPropane: CanonLPG,
	FuelCNGMethane: CanonCNG,
	FuelHybrid:     CanonHybridPetrol,
	FuelElectric:   CanonElectric,
	FuelPHEVPetrol: CanonPHEVPetrol,
	FuelPHEVDiesel: CanonPHEVDiesel,
	FuelMHEVPetrol: CanonHybridPetrol,
	FuelMHEVDiesel: CanonHybridDiesel,
}

// canonical keyword hits, checked in order after the hybrid rules
var canonicalKeywords = []struct {
	keyword string
	canon   FuelCanonical
}{
	{"petrol", CanonPetrol},
	{"gasoline", CanonPetrol},
	{"benzin", CanonPetrol},
	{"бензин", CanonPetrol},
	{"diesel", CanonDiesel},
	{"дизел", CanonDiesel},
	{"motorin", CanonDiesel},
	{"electric", CanonElectric},
	{"электр", CanonElectric},
	{"lpg", CanonLPG},
	{"propan", CanonLPG},
	{"cng", CanonCNG},
	{"metan", CanonCNG},
	{"hydrogen", CanonHydrogen},
}

var separatorRe = regexp.MustCompile(`[_\-\s]+`)

// DeriveFuelCanonical maps the stored fuel fields onto the public filter
// vocabulary. The internal code wins when it is known; the raw text and the
// label are consulted otherwise. ok is false when nothing matched.
func DeriveFuelCanonical(raw, label, code string) (FuelCanonical, bool) {
	if canon, found := canonicalByCode[FuelCode(strings.TrimSpace(strings.ToLower(code)))]; found {
		return canon, true
	}
	for _, s := range []string{raw, label} {
		if canon, ok := canonicalFromText(s); ok {
			return canon, true
		}
	}
	return "", false
}

func canonicalFromText(raw string) (FuelCanonical, bool) {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return "", false
	}
	s = separatorRe.ReplaceAllString(s, " ")

	hybrid := strings.Contains(s, "hybrid") || strings.Contains(s, "hibrid") || strings.Contains(s, "гибрид")
	diesel := strings.Contains(s, "diesel") || strings.Contains(s, "дизел")
	plugIn := strings.Contains(s, "plug") || strings.Contains(s, "phev") || strings.Contains(s, "плагин")

	switch {
	case plugIn && (hybrid || strings.Contains(s, "phev")):
		if diesel {
			return CanonPHEVDiesel, true
		}
		return CanonPHEVPetrol, true
	case hybrid || strings.Contains(s, "mhev"):
		if diesel {
			return CanonHybridDiesel, true
		}
		return CanonHybridPetrol, true
	}

	if s == "ev" || s == "bev" {
		return CanonElectric, true
	}
	for _, kw := range canonicalKeywords {
		if strings.Contains(s, kw.keyword) {
			return kw.canon, true
		}
	}
	if s == "h2" || strings.Contains(s, " h2") {
		return CanonHydrogen, true
	}
	return "", false
}
