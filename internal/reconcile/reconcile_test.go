// internal/reconcile/reconcile_test.go
package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/autoimport/internal/models"
)

func intPtr(v int) *int { return &v }

func TestElectrifiedNeverKeepsManualGearbox(t *testing.T) {
	electrified := []models.FuelCode{
		models.FuelHybrid, models.FuelElectric,
		models.FuelPHEVPetrol, models.FuelPHEVDiesel,
		models.FuelMHEVPetrol, models.FuelMHEVDiesel,
	}
	gearboxes := []models.TransmissionCode{
		models.TransmissionManual, models.TransmissionRobot, models.TransmissionOther, "",
	}
	for _, fuel := range electrified {
		for _, gearbox := range gearboxes {
			for _, fromHTML := range []bool{true, false} {
				out := Reconcile(Input{Fuel: fuel, Transmission: gearbox, FuelFromHTML: fromHTML, Year: intPtr(2020)})
				require.True(t, out.Fuel.Electrified(), "%s/%s", fuel, gearbox)
				assert.Equal(t, models.TransmissionAutomatic, out.Transmission, "%s/%s", fuel, gearbox)
			}
		}
	}
}

func TestConventionalGearboxUntouched(t *testing.T) {
	out := Reconcile(Input{Fuel: models.FuelDiesel, Transmission: models.TransmissionManual, FuelFromHTML: true})
	assert.Equal(t, models.TransmissionManual, out.Transmission)

	out = Reconcile(Input{Fuel: models.FuelHybrid, Transmission: models.TransmissionCVT, FuelFromHTML: true})
	assert.Equal(t, models.TransmissionCVT, out.Transmission)
}

func TestRecognisedPageFuelIsTrusted(t *testing.T) {
	out := Reconcile(Input{
		Fuel:         models.FuelPetrol,
		Transmission: models.TransmissionManual,
		FuelFromHTML: true,
		Title:        "VW Passat 2.0 TDI diesel",
	})
	assert.Equal(t, models.FuelPetrol, out.Fuel)
	assert.Equal(t, models.TransmissionManual, out.Transmission)
}

func TestPageOtherIsRefined(t *testing.T) {
	out := Reconcile(Input{
		Fuel:         models.FuelOther,
		FuelFromHTML: true,
		Title:        "VW Passat 2.0 TDI",
	})
	assert.Equal(t, models.FuelDiesel, out.Fuel)
}

func TestAPIFuelRefinedFromText(t *testing.T) {
	out := Reconcile(Input{
		Fuel:         models.FuelPetrol,
		Transmission: models.TransmissionManual,
		Title:        "BMW 330e plug-in hybrid",
		Body:         "benzin + electric",
	})
	assert.Equal(t, models.FuelPHEVPetrol, out.Fuel)
	assert.Equal(t, models.TransmissionAutomatic, out.Transmission)
}

func TestPlugInWithBothFuelWordsResolvesToDiesel(t *testing.T) {
	out := Reconcile(Input{
		Fuel:  models.FuelOther,
		Title: "Volvo XC60 T8 plug-in hybrid",
		Body:  "benzin, not diesel",
	})
	assert.Equal(t, models.FuelPHEVDiesel, out.Fuel)
}

func TestMercedesBadgeOverrides(t *testing.T) {
	out := Reconcile(Input{
		Fuel:         models.FuelHybrid,
		Transmission: models.TransmissionManual,
		Title:        "Mercedes-Benz E 300 de",
		Make:         "Mercedes-Benz",
		Model:        "E-Class",
	})
	assert.Equal(t, models.FuelPHEVDiesel, out.Fuel)
	assert.Equal(t, models.TransmissionAutomatic, out.Transmission)

	out = Reconcile(Input{Fuel: models.FuelOther, FuelFromHTML: true, Title: "Mercedes GLC 300e 4Matic"})
	assert.Equal(t, models.FuelPHEVPetrol, out.Fuel)
}

func TestMercedesBadge(t *testing.T) {
	tests := []struct {
		title string
		want  Badge
	}{
		{"Mercedes-Benz E 300 de", BadgeDieselPHEV},
		{"Mercedes GLC300e", BadgePetrolPHEV},
		{"Mercedes C220d plug-in bluetec", BadgeDieselPHEV},
		{"Mercedes C 220 d", BadgeUnknown},
		{"BMW 530e", BadgeUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MercedesBadge(tt.title, "", ""), tt.title)
	}
}

func TestInferFuel(t *testing.T) {
	tests := []struct {
		title string
		want  models.FuelCode
		ok    bool
	}{
		{"Nissan Leaf 40 kWh", models.FuelElectric, true},
		{"Renault Zoe electro", models.FuelElectric, true},
		{"Toyota RAV4 hybrid electro", models.FuelHybrid, true},
		{"Audi A6 mild hybrid TDI", models.FuelMHEVDiesel, true},
		{"VW Golf 2.0 TDI", models.FuelDiesel, true},
		{"Hyundai Tucson 1.6 T-GDI", models.FuelPetrol, true},
		{"Dacia Logan GPL", models.FuelLPGPropane, true},
		{"Fiat Panda metan", models.FuelCNGMethane, true},
		{"ВАЗ 2107 пропан", models.FuelLPGPropane, true},
		{"Opel Zafira метан", models.FuelCNGMethane, true},
		{"Chevrolet Cruze 1.6", "", false},
		{"Skoda Octavia climatronic electronic", "", false},
	}
	for _, tt := range tests {
		got, ok := InferFuel(tt.title, "", "", "")
		assert.Equal(t, tt.ok, ok, tt.title)
		assert.Equal(t, tt.want, got, tt.title)
	}
}

func TestYearBackfill(t *testing.T) {
	out := Reconcile(Input{Fuel: models.FuelDiesel, FuelFromHTML: true, Title: "BMW 320d 2014, impecabil"})
	require.NotNil(t, out.Year)
	assert.Equal(t, 2014, *out.Year)

	out = Reconcile(Input{Fuel: models.FuelDiesel, FuelFromHTML: true, Year: intPtr(0), Title: "BMW", Body: "an 2011"})
	require.NotNil(t, out.Year)
	assert.Equal(t, 2011, *out.Year)

	out = Reconcile(Input{Fuel: models.FuelDiesel, FuelFromHTML: true, Year: intPtr(2010), Title: "BMW 2014"})
	assert.Equal(t, 2010, *out.Year)

	out = Reconcile(Input{Fuel: models.FuelDiesel, FuelFromHTML: true, Title: "BMW 320d"})
	assert.Nil(t, out.Year)
}

func TestHybridByModel(t *testing.T) {
	tests := []struct {
		maker, model, text string
		want               bool
	}{
		{"Toyota", "C-HR", "", true},
		{"Toyota", "Corolla", "corolla hybrid 1.8", true},
		{"Toyota", "Corolla", "1.6 benzin", false},
		{"Mitsubishi", "Outlander", "outlander phev 2019", true},
		{"Mitsubishi", "Outlander", "2.2 diesel", false},
		{"Kia", "Niro", "", true},
		{"Hyundai", "IONIQ", "", true},
		{"BMW", "330e", "", true},
		{"BMW", "X5", "xdrive 45e", true},
		{"BMW", "320d", "", false},
		{"Volvo", "XC60", "T8 plug-in", true},
		{"Skoda", "Octavia", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HybridByModel(tt.maker, tt.model, tt.text), "%s %s %s", tt.maker, tt.model, tt.text)
	}
}
