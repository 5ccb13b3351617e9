// internal/services/admin_service_test.go
package services

import (
	"time"

	"github.com/javajoker/autoimport/internal/models"
)

func (s *ServicesTestSuite) TestDashboardStats() {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	s.seedCar(models.Car{ExternalID: "1", FuelTypeCode: models.FuelDiesel, Year: intPtr(2015), PriceEUR: 10000}, true)
	s.seedCar(models.Car{ExternalID: "2", FuelTypeCode: models.FuelOther, PriceEUR: 20000}, true)
	s.seedCar(models.Car{ExternalID: "3", FuelTypeCode: models.FuelHybrid, TransmissionCode: models.TransmissionManual, Year: intPtr(2019), PriceEUR: 30000}, true)

	archived := models.Car{Source: "999", ExternalID: "4"}
	archived.Publish(now.AddDate(0, -1, 0))
	archived.Archive(now.AddDate(0, 0, -3))
	s.Require().NoError(s.db.Create(&archived).Error)

	service := NewAdminService(s.db, testSourceConfig)
	service.now = func() time.Time { return now }

	stats, err := service.GetDashboardStats()
	s.Require().NoError(err)
	s.Equal(int64(4), stats.TotalCars)
	s.Equal(int64(3), stats.ListedCars)
	s.Equal(int64(1), stats.ArchivedCars)
	s.Equal(int64(1), stats.ArchivedThisMonth)
	s.Equal(int64(1), stats.MissingYear)
	s.Equal(int64(1), stats.UnknownFuel)
	s.Equal(int64(1), stats.ElectrifiedManual)
	s.InDelta(20000.0, stats.AveragePriceEUR, 0.01)
	s.Require().NotNil(stats.LastSeenAt)
}
