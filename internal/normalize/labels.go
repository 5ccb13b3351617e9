// internal/normalize/labels.go
package normalize

import (
	"github.com/javajoker/autoimport/internal/i18n"
	"github.com/javajoker/autoimport/internal/models"
)

// FuelLabel is the display label stored next to the fuel code.
func FuelLabel(code models.FuelCode, lang string) string {
	return i18n.T(lang, i18n.FuelKey(string(code)))
}

func TransmissionLabel(code models.TransmissionCode, lang string) string {
	return i18n.T(lang, i18n.TransmissionKey(string(code)))
}

func BodyLabel(body models.BodyType, lang string) string {
	return i18n.T(lang, i18n.BodyKey(string(body)))
}
