// internal/extract/extractor.go
package extract

import (
	"strings"

	"github.com/javajoker/autoimport/internal/source"
)

// Extractor resolves raw field strings for one advert from its three
// views: the page table, the API features, and the title text.
type Extractor struct {
	synonyms *Synonyms
	advert   source.Advert
	features []source.Feature
	page     source.Page
	pageVals map[Field]string
}

// New builds an extractor. An unavailable page contributes nothing.
func New(synonyms *Synonyms, advert source.Advert, features []source.Feature, page source.PageResult) *Extractor {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	e := &Extractor{
		synonyms: synonyms,
		advert:   advert,
		features: features,
	}
	if page.Available() {
		e.page = page.Page
	}
	e.pageVals = synonyms.PageValues(e.page.Pairs)
	return e
}

// Title prefers the page's og:title over the API title.
func (e *Extractor) Title() Value {
	return FirstNonEmpty(
		Probe{OriginHTML, func() string { return e.page.Title }},
		Probe{OriginAPI, func() string { return e.advert.Title }},
	)
}

// Body prefers the page's og:description over the API body.
func (e *Extractor) Body() Value {
	return FirstNonEmpty(
		Probe{OriginHTML, func() string { return e.page.Description }},
		Probe{OriginAPI, func() string { return e.advert.Body }},
	)
}

// Field resolves f through its probe chain.
func (e *Extractor) Field(f Field) Value {
	return FirstNonEmpty(e.probes(f)...)
}

// Page exposes the parsed page for price and photo resolution.
func (e *Extractor) Page() source.Page {
	return e.page
}

func (e *Extractor) probes(f Field) []Probe {
	html := Probe{OriginHTML, func() string { return e.pageVals[f] }}
	api := Probe{OriginAPI, func() string { return e.featureText(f) }}

	switch f {
	case FieldMake:
		return []Probe{html, api, {OriginTitle, func() string { maker, _ := SplitTitle(e.Title().Text); return maker }}}
	case FieldModel:
		return []Probe{html, api, {OriginTitle, func() string { _, model := SplitTitle(e.Title().Text); return model }}}
	case FieldGeneration, FieldRegistrationCountry, FieldCondition, FieldAvailability, FieldOriginCountry:
		// the title split never yields a generation
		return []Probe{api}
	case FieldTransmission:
		return []Probe{html, api, {OriginAdvert, func() string { return e.advert.Transmission }}}
	case FieldYear, FieldSeats, FieldBodyType, FieldMileage, FieldEngine, FieldPower,
		FieldFuel, FieldDrive, FieldColor, FieldCity:
		return []Probe{html, api}
	}
	return nil
}

func (e *Extractor) featureText(f Field) string {
	feat, ok := e.synonyms.FindFeature(e.features, f)
	if !ok {
		return ""
	}
	return feat.Text()
}

// SplitTitle takes the first word of a title as the make and the rest as
// the model.
func SplitTitle(title string) (maker, model string) {
	parts := strings.Fields(title)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
