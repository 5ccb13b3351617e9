// internal/services/car_service_test.go
package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/autoimport/internal/models"
	"github.com/javajoker/autoimport/internal/utils"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func (s *ServicesTestSuite) seedCar(car models.Car, listed bool) *models.Car {
	car.Source = "999"
	car.Publish(time.Now())
	if !listed {
		car.Archive(time.Now())
	}
	s.Require().NoError(s.db.Create(&car).Error)
	return &car
}

func (s *ServicesTestSuite) seedCatalogue() (toyota, bmw, audi *models.Car) {
	toyota = s.seedCar(models.Car{
		ExternalID: "1", Title: "Toyota C-HR", Make: "Toyota", Model: "C-HR", Year: intPtr(2019),
		FuelTypeCode: models.FuelHybrid, TransmissionCode: models.TransmissionAutomatic,
		BodyType: models.BodySUV, PriceEUR: 18500, MileageKm: 120000,
	}, true)
	s.Require().NoError(s.db.Create(&models.Photo{CarID: toyota.ID, ImageURL: "b.jpg", SortOrder: 1}).Error)
	s.Require().NoError(s.db.Create(&models.Photo{CarID: toyota.ID, ImageURL: "a.jpg", SortOrder: 0, IsPrimary: true}).Error)

	bmw = s.seedCar(models.Car{
		ExternalID: "2", Title: "BMW 320d", Make: "BMW", Model: "320", Year: intPtr(2015),
		FuelTypeCode: models.FuelDiesel, TransmissionCode: models.TransmissionManual,
		BodyType: models.BodySedan, PriceEUR: 9000, MileageKm: 240000,
	}, true)
	audi = s.seedCar(models.Car{
		ExternalID: "3", Title: "Audi A4", Make: "Audi", Model: "A4", Year: intPtr(2012),
		FuelTypeCode: models.FuelDiesel, TransmissionCode: models.TransmissionManual,
		BodyType: models.BodyWagon, PriceEUR: 6000,
	}, false)
	return toyota, bmw, audi
}

func (s *ServicesTestSuite) TestSearchCarsHidesArchived() {
	s.seedCatalogue()
	cars, total, err := NewCarService(s.db).SearchCars(CarSearchParams{})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(cars, 2)
	for _, car := range cars {
		s.NotEqual("Audi", car.Make)
	}
}

func (s *ServicesTestSuite) TestSearchCarsFilters() {
	toyota, bmw, _ := s.seedCatalogue()
	service := NewCarService(s.db)

	cases := []struct {
		name   string
		params CarSearchParams
		want   []uuid.UUID
	}{
		{"canonical fuel", CarSearchParams{FuelTypeCanonical: "diesel"}, []uuid.UUID{bmw.ID}},
		{"fuel code", CarSearchParams{FuelTypeCode: "hybrid"}, []uuid.UUID{toyota.ID}},
		{"make ignores case", CarSearchParams{Make: "bmw"}, []uuid.UUID{bmw.ID}},
		{"search", CarSearchParams{PaginationParams: utils.PaginationParams{Search: "c-hr"}}, []uuid.UUID{toyota.ID}},
		{"year", CarSearchParams{YearMin: intPtr(2016)}, []uuid.UUID{toyota.ID}},
		{"price", CarSearchParams{PriceMax: floatPtr(10000)}, []uuid.UUID{bmw.ID}},
		{"mileage", CarSearchParams{MileageMax: intPtr(150000)}, []uuid.UUID{toyota.ID}},
		{"body", CarSearchParams{BodyType: "sedan"}, []uuid.UUID{bmw.ID}},
		{"gearbox", CarSearchParams{TransmissionCode: "automatic"}, []uuid.UUID{toyota.ID}},
		{"price ascending", CarSearchParams{PaginationParams: utils.PaginationParams{Ordering: "price"}}, []uuid.UUID{bmw.ID, toyota.ID}},
		{"year descending", CarSearchParams{PaginationParams: utils.PaginationParams{Ordering: "-year"}}, []uuid.UUID{toyota.ID, bmw.ID}},
		{"second page", CarSearchParams{PaginationParams: utils.PaginationParams{Page: 2, Limit: 1, Ordering: "price"}}, []uuid.UUID{toyota.ID}},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			cars, _, err := service.SearchCars(tc.params)
			s.Require().NoError(err)
			got := make([]uuid.UUID, 0, len(cars))
			for _, car := range cars {
				got = append(got, car.ID)
			}
			s.Equal(tc.want, got)
		})
	}
}

func (s *ServicesTestSuite) TestGetCar() {
	toyota, _, audi := s.seedCatalogue()
	service := NewCarService(s.db)

	car, err := service.GetCar(toyota.ID)
	s.Require().NoError(err)
	s.Require().Len(car.Photos, 2)
	s.Equal("a.jpg", car.Photos[0].ImageURL)
	s.Equal(models.CanonHybridPetrol, car.FuelTypeCanonical)

	_, err = service.GetCar(audi.ID)
	s.ErrorIs(err, ErrCarNotFound)

	_, err = service.GetCar(uuid.New())
	s.ErrorIs(err, ErrCarNotFound)
}

func (s *ServicesTestSuite) TestGetFilters() {
	s.seedCatalogue()

	filters, err := NewCarService(s.db).GetFilters("ru")
	s.Require().NoError(err)

	s.Equal([]FilterOption{
		{Value: "BMW", Label: "BMW", Count: 1},
		{Value: "Toyota", Label: "Toyota", Count: 1},
	}, filters.Makes)
	s.Contains(filters.FuelTypes, FilterOption{Value: "diesel", Label: "Дизель", Count: 1})
	s.Contains(filters.Transmissions, FilterOption{Value: "automatic", Label: "Автомат", Count: 1})

	// every canonical fuel is offered, even without cars
	s.Len(filters.FuelCanonical, len(models.FuelCanonicals))
	s.Contains(filters.FuelCanonical, FilterOption{Value: "hydrogen", Label: "Водород", Count: 0})
	s.Contains(filters.FuelCanonical, FilterOption{Value: "hybrid_petrol", Label: "Гибрид (бензин)", Count: 1})

	s.Require().NotNil(filters.Year.Min)
	s.Equal(2015.0, *filters.Year.Min)
	s.Equal(2019.0, *filters.Year.Max)
	s.Equal(18500.0, *filters.Price.Max)
}
