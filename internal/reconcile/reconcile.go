// internal/reconcile/reconcile.go

// Package reconcile resolves conflicts between independently normalized
// fields of one advert.
package reconcile

import (
	"strings"

	"github.com/javajoker/autoimport/internal/models"
	"github.com/javajoker/autoimport/internal/normalize"
)

var (
	phevDieselWords = append(append([]string{}, normalize.DieselWords...),
		"tdi", "cdi", "bluetec", "bluehdi", "hdi", "multijet", "blue dci")
	phevPetrolWords = append(append([]string{}, normalize.PetrolWords...),
		"tsi", "tfsi", "mpi", "ecoboost", "tjet", "t-jet", "gdi", "tgdi", "t-gdi")
)

// Input is the state of the contested fields before reconciliation.
type Input struct {
	Fuel         models.FuelCode
	Transmission models.TransmissionCode
	Year         *int

	// FuelFromHTML is set when the fuel string came from the page table.
	FuelFromHTML bool

	Title string
	Body  string
	Make  string
	Model string
}

// Result carries the reconciled fields. Fields without a usable signal keep
// their input value.
type Result struct {
	Fuel         models.FuelCode
	Transmission models.TransmissionCode
	Year         *int
}

// Reconcile applies, in order: free-text fuel refinement (skipped for a
// recognised page value), plug-in hybrid sub-variant resolution, the
// electrified-means-automatic rule, and the year backfill.
func Reconcile(in Input) Result {
	out := Result{Fuel: in.Fuel, Transmission: in.Transmission, Year: in.Year}
	text := strings.ToLower(in.Title + " " + in.Body)

	needRefine := !in.FuelFromHTML || out.Fuel == "" || out.Fuel == models.FuelOther
	if needRefine {
		out.Fuel = refineFuel(out.Fuel, text, in)
	}

	if out.Fuel.Electrified() {
		switch out.Transmission {
		case models.TransmissionManual, models.TransmissionRobot, models.TransmissionOther, "":
			out.Transmission = models.TransmissionAutomatic
		}
	}

	if out.Year == nil || *out.Year == 0 {
		if y, ok := YearFromText(in.Title, in.Body); ok {
			out.Year = &y
		}
	}
	return out
}

func refineFuel(code models.FuelCode, text string, in Input) models.FuelCode {
	if guess, ok := InferFuel(in.Title, in.Body, in.Make, in.Model); ok {
		code = guess
	}

	plugged := normalize.ContainsAny(text, plugWords)
	switch MercedesBadge(in.Title, in.Make, in.Model) {
	case BadgeDieselPHEV:
		code = models.FuelPHEVDiesel
	case BadgePetrolPHEV:
		if plugged {
			code = models.FuelPHEVPetrol
		}
	}

	if code.PlugIn() || plugged {
		diesel := normalize.ContainsAny(text, phevDieselWords)
		petrol := normalize.ContainsAny(text, phevPetrolWords)
		switch {
		case diesel:
			// both present resolves to diesel
			code = models.FuelPHEVDiesel
		case petrol:
			code = models.FuelPHEVPetrol
		}
	}
	return code
}

// YearFromText returns the first plausible year in title, else in body.
func YearFromText(title, body string) (int, bool) {
	if y, ok := normalize.ParseYear(title); ok {
		return y, true
	}
	return normalize.ParseYear(body)
}
