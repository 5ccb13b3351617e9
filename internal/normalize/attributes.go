// internal/normalize/attributes.go
package normalize

import (
	"strings"

	"github.com/javajoker/autoimport/internal/models"
)

// Transmission maps a raw gearbox string onto a transmission code.
func Transmission(raw string) models.TransmissionCode {
	s := lower(raw)
	switch {
	case s == "":
		return models.TransmissionOther
	case ContainsAny(s, automaticMarkers):
		return models.TransmissionAutomatic
	case ContainsAny(s, cvtMarkers):
		return models.TransmissionCVT
	case ContainsAny(s, robotMarkers):
		return models.TransmissionRobot
	case ContainsAny(s, manualMarkers):
		return models.TransmissionManual
	}
	return models.TransmissionOther
}

var bodyRules = []struct {
	body     models.BodyType
	keywords []string
}{
	{models.BodySedan, []string{"седан", "sedan", "berlina", "berlină", "berline"}},
	{models.BodyHatchback, []string{"хэтч", "хетч", "hatch"}},
	{models.BodyWagon, []string{"универс", "universal", "wagon", "estate", "touring", "break", "combi", "familiar"}},
	{models.BodySUV, []string{
		"кроссов", "crossover", "cross-over", "cross over", "suv",
		"внедоро", "offroad", "off-road", "off road", "4x4",
	}},
	{models.BodyCoupe, []string{"купе", "coupe", "coupé"}},
	{models.BodyCabrio, []string{
		"кабрио", "cabrio", "roadster", "spider", "spyder",
		"decapotabil", "convertible",
	}},
	{models.BodyMinivan, []string{
		"минив", "minivan", "mpv", "monovolum", "mono-volum", "mono volum",
		"monocab", "multi purpose", "multi-purpose",
	}},
	{models.BodyPickup, []string{"пикап", "pick-up", "pick up", "pickup"}},
	{models.BodyVan, []string{"фург", "furgon", "van"}},
}

// Body maps a raw body style onto one of nine body codes, else "other".
func Body(raw string) models.BodyType {
	s := lower(raw)
	if s == "" {
		return models.BodyOther
	}
	for _, rule := range bodyRules {
		if ContainsAny(s, rule.keywords) {
			return rule.body
		}
	}
	return models.BodyOther
}

// Drive defaults to front-wheel drive when nothing else matches.
func Drive(raw string) models.DriveType {
	s := lower(raw)
	switch {
	case ContainsAny(s, awdMarkers):
		return models.DriveAWD
	case ContainsAny(s, []string{"spate", "зад", "rwd"}):
		return models.DriveRWD
	}
	return models.DriveFWD
}

func Condition(raw string) models.Condition {
	s := lower(raw)
	switch {
	case ContainsAny(s, []string{"nou", "нов"}):
		return models.ConditionNew
	case ContainsAny(s, []string{"accident", "дтп"}):
		return models.ConditionAfterAccident
	case ContainsAny(s, []string{"piese", "част"}):
		return models.ConditionForParts
	}
	return models.ConditionUsed
}

func Availability(raw string) models.Availability {
	s := lower(raw)
	switch {
	case ContainsAny(s, []string{"în stoc", "in stoc", "налич"}):
		return models.AvailabilityInStock
	case ContainsAny(s, []string{"la comandă", "la comanda", "заказ"}):
		return models.AvailabilityOnOrder
	case ContainsAny(s, []string{"rezerv", "резерв"}):
		return models.AvailabilityReserved
	case ContainsAny(s, []string{"vândut", "vandut", "продан"}):
		return models.AvailabilitySold
	}
	return models.AvailabilityInStock
}

// Currency maps an upstream price unit onto EUR, USD or MDL. EUR is the default.
func Currency(unit string) string {
	s := strings.ToLower(unit)
	switch {
	case strings.Contains(s, "usd"), strings.Contains(s, "$"):
		return "USD"
	case strings.Contains(s, "mdl"), strings.Contains(s, "lei"):
		return "MDL"
	}
	return "EUR"
}
