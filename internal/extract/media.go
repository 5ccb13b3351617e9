// internal/extract/media.go
package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/javajoker/autoimport/internal/normalize"
)

// MaxPhotos caps the stored photo set.
const MaxPhotos = 30

var nonPriceChars = regexp.MustCompile(`[^\d.]`)

// Images resolves the photo list: API images, else the features image
// block, else URLs scraped from the page. Relative references are resolved
// against cdnBase, duplicates dropped, and the result capped at MaxPhotos.
func (e *Extractor) Images(cdnBase string) []string {
	refs := e.advert.Images
	if len(refs) == 0 {
		for _, f := range e.features {
			if f.IsImageBlock() {
				refs = append(refs, f.ImageRefs()...)
			}
		}
	}
	if len(refs) == 0 {
		refs = e.page.Images
	}
	return resolveImages(refs, cdnBase)
}

func resolveImages(refs []string, cdnBase string) []string {
	base := strings.TrimRight(cdnBase, "/") + "/"
	seen := make(map[string]bool, len(refs))
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
			ref = base + strings.TrimLeft(ref, "/")
		}
		if seen[ref] {
			continue
		}
		seen[ref] = true
		out = append(out, ref)
		if len(out) == MaxPhotos {
			break
		}
	}
	return out
}

// MainPhoto is the page's og:image, else the first resolved image.
func (e *Extractor) MainPhoto(images []string) string {
	if e.page.MainPhotoURL != "" {
		return e.page.MainPhotoURL
	}
	if len(images) > 0 {
		return images[0]
	}
	return ""
}

// Price reads the amount from the page meta tags, falling back to the API
// price block when the page has none or it is zero. Currency comes from the
// page, else the API unit, else EUR; unknown units collapse to EUR.
func (e *Extractor) Price() (amount float64, currency string) {
	if clean := nonPriceChars.ReplaceAllString(e.page.PriceAmount, ""); clean != "" {
		if v, err := strconv.ParseFloat(clean, 64); err == nil {
			amount = v
		}
	}
	if strings.TrimSpace(e.page.Currency) != "" {
		currency = normalize.Currency(e.page.Currency)
	}

	if amount == 0 {
		amount = e.advert.Price.Value
		if currency == "" {
			currency = normalize.Currency(e.advert.Price.Unit)
		}
	}
	if currency == "" {
		currency = "EUR"
	}
	if amount < 0 {
		amount = 0
	}
	return math.Round(amount*100) / 100, currency
}
