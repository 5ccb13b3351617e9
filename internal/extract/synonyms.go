// internal/extract/synonyms.go
package extract

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/javajoker/autoimport/internal/source"
)

//go:embed synonyms.yaml
var synonymsYAML []byte

// Synonyms is the immutable label dictionary used to locate a field in the
// API feature list and in the page characteristics table.
type Synonyms struct {
	features [fieldCount][]string
	page     map[string]Field
}

type synonymsDoc struct {
	Features map[string][]string `yaml:"features"`
	Page     map[string][]string `yaml:"page"`
}

var defaultSynonyms = mustLoadSynonyms(synonymsYAML)

// DefaultSynonyms returns the embedded dictionary.
func DefaultSynonyms() *Synonyms {
	return defaultSynonyms
}

func mustLoadSynonyms(data []byte) *Synonyms {
	s, err := LoadSynonyms(data)
	if err != nil {
		panic(err)
	}
	return s
}

// LoadSynonyms parses a dictionary and checks that every field has feature
// synonyms and that no key names an unknown field.
func LoadSynonyms(data []byte) (*Synonyms, error) {
	var doc synonymsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse synonyms: %w", err)
	}

	s := &Synonyms{page: make(map[string]Field)}
	for name, words := range doc.Features {
		f, ok := ParseField(name)
		if !ok {
			return nil, fmt.Errorf("synonyms: unknown feature field %q", name)
		}
		for _, w := range words {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				s.features[f] = append(s.features[f], w)
			}
		}
	}
	for _, f := range Fields() {
		if len(s.features[f]) == 0 {
			return nil, fmt.Errorf("synonyms: no feature synonyms for %s", f)
		}
	}

	for name, labels := range doc.Page {
		f, ok := ParseField(name)
		if !ok {
			return nil, fmt.Errorf("synonyms: unknown page field %q", name)
		}
		for _, l := range labels {
			key := normalizeLabel(l)
			if prev, dup := s.page[key]; dup && prev != f {
				return nil, fmt.Errorf("synonyms: page label %q maps to both %s and %s", key, prev, f)
			}
			s.page[key] = f
		}
	}
	return s, nil
}

func normalizeLabel(label string) string {
	return strings.Trim(strings.ToLower(label), " :")
}

// FindFeature returns the first feature whose title contains a synonym of f
// or whose code contains the synonym with spaces turned into underscores.
func (s *Synonyms) FindFeature(features []source.Feature, f Field) (source.Feature, bool) {
	for _, feat := range features {
		title := strings.ToLower(feat.Title)
		code := strings.ToLower(feat.Code)
		for _, syn := range s.features[f] {
			if strings.Contains(title, syn) {
				return feat, true
			}
			if code != "" && strings.Contains(code, strings.ReplaceAll(syn, " ", "_")) {
				return feat, true
			}
		}
	}
	return source.Feature{}, false
}

// PageValues maps table rows onto fields. The first row for a field wins.
func (s *Synonyms) PageValues(pairs []source.Pair) map[Field]string {
	out := make(map[Field]string)
	for _, p := range pairs {
		f, ok := s.page[normalizeLabel(p.Label)]
		if !ok {
			continue
		}
		if _, seen := out[f]; seen {
			continue
		}
		if v := strings.TrimSpace(p.Value); v != "" {
			out[f] = v
		}
	}
	return out
}
