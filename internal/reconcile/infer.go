// internal/reconcile/infer.go
package reconcile

import (
	"regexp"
	"strings"

	"github.com/javajoker/autoimport/internal/models"
	"github.com/javajoker/autoimport/internal/normalize"
)

var (
	// fuel words plus engine badges that only come in one fuel
	textDieselMarkers = append(append([]string{}, normalize.DieselWords...),
		"tdi", "dci", "blue dci", "cdi", "multijet", "hdi", "bluehdi", "bluetec")
	textPetrolMarkers = append(append([]string{}, normalize.PetrolWords...),
		"tsi", "tfsi", "mpi", "t-jet", "tjet", "ecoboost", "gdi", "tgdi", "t-gdi",
		"skyactiv-g", "skyactiv g")

	textMHEVMarkers = []string{
		"mhev", "mild hybrid", "mild-hybrid", "48v",
		"мягкий гибрид", "мягкий-гибрид", "mild hibrid", "mild-hibrid",
	}
	textHybridMarkers = append([]string{
		"hybrid", "hibrid", "гибрид", "гибридный", "гибридная",
	}, textMHEVMarkers...)
	// standalone so that "Chevrolet" does not read as a hybrid
	hevToken = regexp.MustCompile(`(?:^|[^\p{L}])hev(?:$|[^\p{L}])`)
	textPHEVMarkers = []string{
		"plug-in", "plug in", "phev", "плагин-гибрид", "плагин гибрид",
		"plug-in hybrid", "plug in hybrid", "plug-in hibrid",
	}
	// words that turn a soft electric hint into a hybrid
	notPureEVMarkers = []string{
		"plug-in", "plug in", "phev", "плагин", "hybrid", "hibrid", "гибрид",
	}

	hardEVMarkers = []string{
		"100% electric", "full electric", "battery electric", "bev",
		"vehicul electric", "электромобиль", "электрокар", "электроавто",
		"электромобіль", "электрический автомобиль", "электрическое авто",
		"electromobil", "electromobilă", "electromobila",
	}
	softEVMarkers = []string{
		"electro", "электро", "электрическ", "electrica", "electrică",
		"машина электрическая", "plug-in electric", "plug in electric",
	}
	batteryCapacity = regexp.MustCompile(`\b\d{2,3}\s*kwh\b`)
	// "electronic" and "электронный" mention equipment, not the drivetrain
	electronicWords = strings.NewReplacer("electron", "", "электрон", "")

	lpgTextMarkers = []string{"gpl", "lpg", "gaz/gpl", "propan", "propane", "пропан"}
	cngTextMarkers = []string{"cng", "metan", "methan", "metane", "metano", "метан"}

	badgeDiesel  = regexp.MustCompile(`\b[a-z]{1,4}\s*[- ]?\s*\d{3}\s*de\b`)
	badgePetrol  = regexp.MustCompile(`\b[a-z]{1,4}\s*[- ]?\s*\d{3}\s*e\b`)
	dieselSuffix = regexp.MustCompile(`\b\d{2,3}d\b`)
	plugWords    = []string{"plug", "phev", "плагин"}
)

// Badge is what a Mercedes-Benz trim badge says about a plug-in hybrid.
type Badge int

const (
	BadgeUnknown Badge = iota
	BadgeDieselPHEV
	BadgePetrolPHEV
)

// MercedesBadge reads the "de"/"e" suffix convention of Mercedes plug-in
// hybrids: "E 300 de" is a diesel plug-in, "GLC300e" a petrol one.
func MercedesBadge(title, maker, model string) Badge {
	t := strings.ToLower(title + " " + maker + " " + model)
	if !strings.Contains(t, "mercedes") {
		return BadgeUnknown
	}
	if badgeDiesel.MatchString(t) {
		return BadgeDieselPHEV
	}
	if badgePetrol.MatchString(t) {
		return BadgePetrolPHEV
	}
	if (strings.Contains(t, "bluetec") || dieselSuffix.MatchString(t)) && normalize.ContainsAny(t, plugWords) {
		return BadgeDieselPHEV
	}
	return BadgeUnknown
}

// evSignals reports a certain and a probable battery-electric mention.
func evSignals(txt string) (hard, soft bool) {
	if batteryCapacity.MatchString(txt) {
		return true, true
	}
	return normalize.ContainsAny(txt, hardEVMarkers), normalize.ContainsAny(electronicWords.Replace(txt), softEVMarkers)
}

// InferFuel guesses a fuel code from free text. ok is false when the text
// carries no fuel signal at all.
func InferFuel(title, body, maker, model string) (code models.FuelCode, ok bool) {
	switch MercedesBadge(title, maker, model) {
	case BadgeDieselPHEV:
		return models.FuelPHEVDiesel, true
	case BadgePetrolPHEV:
		return models.FuelPHEVPetrol, true
	}

	txt := strings.ToLower(title + " " + body)
	diesel := normalize.ContainsAny(txt, textDieselMarkers)
	petrol := normalize.ContainsAny(txt, textPetrolMarkers)

	hardEV, softEV := evSignals(txt)
	if hardEV || (softEV && !normalize.ContainsAny(txt, notPureEVMarkers)) {
		return models.FuelElectric, true
	}

	switch {
	case normalize.ContainsAny(txt, textPHEVMarkers):
		switch {
		case diesel && !petrol:
			return models.FuelPHEVDiesel, true
		case petrol && !diesel:
			return models.FuelPHEVPetrol, true
		}
		return models.FuelHybrid, true
	case normalize.ContainsAny(txt, textMHEVMarkers):
		if diesel && !petrol {
			return models.FuelMHEVDiesel, true
		}
		return models.FuelMHEVPetrol, true
	case normalize.ContainsAny(txt, textHybridMarkers), hevToken.MatchString(txt):
		return models.FuelHybrid, true
	case diesel:
		return models.FuelDiesel, true
	case petrol:
		return models.FuelPetrol, true
	case normalize.ContainsAny(txt, lpgTextMarkers):
		return models.FuelLPGPropane, true
	case normalize.ContainsAny(txt, cngTextMarkers):
		return models.FuelCNGMethane, true
	}
	return "", false
}
