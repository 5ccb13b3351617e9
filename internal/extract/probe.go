// internal/extract/probe.go
package extract

import "strings"

// Origin records which view of the advert produced a value.
type Origin string

const (
	OriginNone   Origin = ""
	OriginHTML   Origin = "html"
	OriginAPI    Origin = "api"
	OriginTitle  Origin = "title"
	OriginAdvert Origin = "advert"
)

// Value is a raw field string together with its origin.
type Value struct {
	Text   string
	Origin Origin
}

func (v Value) Found() bool {
	return v.Origin != OriginNone
}

// Probe looks for a value in one view of the advert.
type Probe struct {
	Origin Origin
	Lookup func() string
}

// FirstNonEmpty runs probes in order and returns the first non-blank result.
func FirstNonEmpty(probes ...Probe) Value {
	for _, p := range probes {
		if p.Lookup == nil {
			continue
		}
		if text := strings.TrimSpace(p.Lookup()); text != "" {
			return Value{Text: text, Origin: p.Origin}
		}
	}
	return Value{}
}
