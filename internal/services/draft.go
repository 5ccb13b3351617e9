// internal/services/draft.go
package services

import (
	"strings"

	"github.com/javajoker/autoimport/internal/config"
	"github.com/javajoker/autoimport/internal/extract"
	"github.com/javajoker/autoimport/internal/models"
	"github.com/javajoker/autoimport/internal/normalize"
	"github.com/javajoker/autoimport/internal/reconcile"
	"github.com/javajoker/autoimport/internal/source"
)

// Draft is a normalized car built from one advert, before it is written.
type Draft struct {
	Car    models.Car
	Images []string
	Values map[extract.Field]extract.Value

	// FuelFromHTML records whether the fuel string came from the page table.
	FuelFromHTML bool
}

// BuildDraft runs extraction, normalization and reconciliation over the
// three views of an advert. It performs no I/O.
func BuildDraft(cfg config.SourceConfig, synonyms *extract.Synonyms, externalID string, advert source.Advert, features []source.Feature, page source.PageResult) Draft {
	e := extract.New(synonyms, advert, features, page)

	values := make(map[extract.Field]extract.Value, len(extract.Fields()))
	for _, f := range extract.Fields() {
		values[f] = e.Field(f)
	}
	text := func(f extract.Field) string { return values[f].Text }

	title := e.Title().Text
	body := e.Body().Text
	maker, model := text(extract.FieldMake), text(extract.FieldModel)

	var year *int
	if y, ok := normalize.ParseYear(text(extract.FieldYear)); ok {
		year = &y
	}

	fuelFromHTML := values[extract.FieldFuel].Origin == extract.OriginHTML
	rec := reconcile.Reconcile(reconcile.Input{
		Fuel:         normalize.Fuel(text(extract.FieldFuel)),
		Transmission: normalize.Transmission(text(extract.FieldTransmission)),
		Year:         year,
		FuelFromHTML: fuelFromHTML,
		Title:        title,
		Body:         body,
		Make:         maker,
		Model:        model,
	})

	mileage, _ := normalize.ParseInt(text(extract.FieldMileage))
	price, currency := e.Price()
	images := e.Images(cfg.ImageBaseURL)

	if title == "" {
		title = strings.TrimSpace(maker + " " + model)
	}

	car := models.Car{
		Source:     cfg.Name,
		ExternalID: externalID,

		Make:       maker,
		Model:      model,
		Generation: text(extract.FieldGeneration),
		Year:       rec.Year,
		Seats:      optionalInt(normalize.ParseInt(text(extract.FieldSeats))),
		BodyType:   normalize.Body(text(extract.FieldBodyType)),
		MileageKm:  mileage,
		EngineCC:   optionalInt(normalize.ParseEngineCC(text(extract.FieldEngine))),
		PowerHP:    optionalInt(normalize.ParsePower(text(extract.FieldPower))),
		Drive:      normalize.Drive(text(extract.FieldDrive)),

		FuelTypeRaw:   text(extract.FieldFuel),
		FuelTypeCode:  rec.Fuel,
		FuelTypeLabel: normalize.FuelLabel(rec.Fuel, cfg.Lang),

		TransmissionRaw:   text(extract.FieldTransmission),
		TransmissionCode:  rec.Transmission,
		TransmissionLabel: normalize.TransmissionLabel(rec.Transmission, cfg.Lang),

		RegistrationCountry: text(extract.FieldRegistrationCountry),
		OriginCountry:       text(extract.FieldOriginCountry),
		Condition:           normalize.Condition(text(extract.FieldCondition)),
		Availability:        normalize.Availability(text(extract.FieldAvailability)),
		LocationCity:        text(extract.FieldCity),

		PriceEUR:     price,
		Currency:     currency,
		Title:        title,
		Description:  body,
		Color:        text(extract.FieldColor),
		MainPhotoURL: e.MainPhoto(images),
		RawSpecs:     rawSpecs(values, page),
	}
	car.Truncate()

	return Draft{Car: car, Images: images, Values: values, FuelFromHTML: fuelFromHTML}
}

// Photos lays the draft images out in order, the first one primary.
func (d Draft) Photos() []models.Photo {
	photos := make([]models.Photo, 0, len(d.Images))
	for i, url := range d.Images {
		photos = append(photos, models.Photo{
			CarID:     d.Car.ID,
			ImageURL:  url,
			SortOrder: i,
			IsPrimary: i == 0,
		})
	}
	return photos
}

func rawSpecs(values map[extract.Field]extract.Value, page source.PageResult) models.JSONB {
	specs := models.JSONB{"page_available": page.Available()}
	for _, f := range extract.Fields() {
		v := values[f]
		if !v.Found() {
			continue
		}
		specs[f.String()] = map[string]interface{}{
			"value":  v.Text,
			"origin": string(v.Origin),
		}
	}
	return specs
}

func optionalInt(v int, ok bool) *int {
	if !ok {
		return nil
	}
	return &v
}
