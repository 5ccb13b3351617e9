// internal/services/repair_service_test.go
package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/javajoker/autoimport/internal/models"
)

func (s *ServicesTestSuite) TestFixSpecs() {
	chr := s.seedCar(models.Car{
		ExternalID: "1", Title: "Toyota C-HR 1.8 2018", Make: "Toyota", Model: "C-HR",
		FuelTypeRaw: "Другое", FuelTypeCode: models.FuelOther, TransmissionCode: models.TransmissionManual,
	}, true)
	logan := s.seedCar(models.Car{
		ExternalID: "2", Title: "Dacia Logan 2015", Make: "Dacia", Model: "Logan", Year: intPtr(2015),
		FuelTypeCode: models.FuelPetrol, FuelTypeLabel: "Бензин", TransmissionCode: models.TransmissionManual,
	}, true)

	report, err := NewRepairService(s.db, testSourceConfig).FixSpecs(context.Background(), nil)
	s.Require().NoError(err)
	s.Equal(2, report.Scanned)
	s.Equal(1, report.Fixed)

	var fixed models.Car
	s.Require().NoError(s.db.First(&fixed, "id = ?", chr.ID).Error)
	s.Equal(models.FuelHybrid, fixed.FuelTypeCode)
	s.Equal("Гибрид", fixed.FuelTypeLabel)
	s.Equal(models.CanonHybridPetrol, fixed.FuelTypeCanonical)
	s.Equal(models.TransmissionAutomatic, fixed.TransmissionCode)
	s.Equal("Автомат", fixed.TransmissionLabel)
	s.Require().NotNil(fixed.Year)
	s.Equal(2018, *fixed.Year)

	var untouched models.Car
	s.Require().NoError(s.db.First(&untouched, "id = ?", logan.ID).Error)
	s.Equal(models.FuelPetrol, untouched.FuelTypeCode)
	s.Equal(models.TransmissionManual, untouched.TransmissionCode)
}

func (s *ServicesTestSuite) TestFixSpecsByID() {
	chr := s.seedCar(models.Car{
		ExternalID: "1", Title: "Toyota C-HR", Make: "Toyota", Model: "C-HR",
		FuelTypeCode: models.FuelOther, TransmissionCode: models.TransmissionManual,
	}, true)
	s.seedCar(models.Car{
		ExternalID: "2", Title: "Toyota Prius", Make: "Toyota", Model: "Prius",
		FuelTypeCode: models.FuelOther, TransmissionCode: models.TransmissionManual,
	}, true)

	report, err := NewRepairService(s.db, testSourceConfig).FixSpecs(context.Background(), []uuid.UUID{chr.ID})
	s.Require().NoError(err)
	s.Equal(1, report.Scanned)
	s.Equal(1, report.Fixed)

	var prius models.Car
	s.Require().NoError(s.db.First(&prius, "external_id = ?", "2").Error)
	s.Equal(models.FuelOther, prius.FuelTypeCode)
}

func (s *ServicesTestSuite) TestScanMismatches() {
	gearbox := s.seedCar(models.Car{
		ExternalID: "1", Title: "Dacia Logan", TransmissionRaw: "Автомат",
		FuelTypeRaw: "Бензин", FuelTypeCode: models.FuelPetrol, TransmissionCode: models.TransmissionManual,
	}, true)
	fuel := s.seedCar(models.Car{
		ExternalID: "2", Title: "Skoda Octavia", TransmissionRaw: "Механика",
		FuelTypeRaw: "Дизель", FuelTypeCode: models.FuelPetrol, TransmissionCode: models.TransmissionManual,
	}, true)
	// forced automatic and a refined plug-in are both expected
	s.seedCar(models.Car{
		ExternalID: "3", Title: "Volvo XC60 T8 plug-in", TransmissionRaw: "Механика",
		FuelTypeRaw: "Бензин", FuelTypeCode: models.FuelPHEVPetrol, TransmissionCode: models.TransmissionAutomatic,
	}, true)
	electrifiedManual := s.seedCar(models.Car{
		ExternalID: "4", Title: "Toyota Auris", FuelTypeCode: models.FuelHybrid, TransmissionCode: models.TransmissionManual,
	}, false)

	mismatches, err := NewRepairService(s.db, testSourceConfig).ScanMismatches(context.Background())
	s.Require().NoError(err)

	byID := map[uuid.UUID]Mismatch{}
	for _, m := range mismatches {
		byID[m.CarID] = m
	}
	s.Len(byID, 3)

	s.Require().Contains(byID, gearbox.ID)
	s.Equal([]string{"raw gearbox reads as automatic, stored manual"}, byID[gearbox.ID].TransmissionReasons)
	s.Empty(byID[gearbox.ID].FuelReasons)

	s.Require().Contains(byID, fuel.ID)
	s.Equal(models.FuelDiesel, byID[fuel.ID].FuelGuess)
	s.Equal([]string{"raw fuel reads as diesel, stored petrol"}, byID[fuel.ID].FuelReasons)

	s.Require().Contains(byID, electrifiedManual.ID)
	s.Equal([]string{"hybrid car stored with manual gearbox"}, byID[electrifiedManual.ID].TransmissionReasons)
}
