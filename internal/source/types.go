// internal/source/types.go
package source

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Advert is the API view of one listing. Fields upstream may send as
// strings, numbers or nested objects are flattened to text.
type Advert struct {
	ID            string
	Title         string
	Body          string
	Price         Price
	Images        []string
	SubcategoryID string
	Transmission  string
	Raw           []byte
}

type Price struct {
	Value float64
	Unit  string
}

// AdvertList is one page of the listing feed.
type AdvertList struct {
	Adverts  []Advert
	Subtotal int
	PageSize int
}

// Feature is one structured attribute of an advert.
type Feature struct {
	ID    string
	Title string
	Code  string
	Type  string
	Value gjson.Result
}

// Text renders the feature value as a display string.
func (f Feature) Text() string {
	return textOf(f.Value)
}

// ImageRefs returns the image references carried by an image-block feature.
func (f Feature) ImageRefs() []string {
	return imageRefs(f.Value)
}

// IsImageBlock reports whether the feature holds the advert's photo set.
func (f Feature) IsImageBlock() bool {
	t := strings.ToLower(f.Type)
	return t == "upload_images" || t == "images" || f.ID == "14" || f.ID == "images"
}

// FeatureSet is the decoded features endpoint response.
type FeatureSet struct {
	Features []Feature
	Raw      []byte
}

// ParseAdvert decodes an advert document. Missing keys decode to zero values.
func ParseAdvert(raw []byte) Advert {
	return advertFrom(gjson.ParseBytes(raw), raw)
}

func advertFrom(r gjson.Result, raw []byte) Advert {
	return Advert{
		ID:            r.Get("id").String(),
		Title:         strings.TrimSpace(textOf(r.Get("title"))),
		Body:          strings.TrimSpace(textOf(r.Get("body"))),
		Price:         Price{Value: r.Get("price.value").Float(), Unit: r.Get("price.unit").String()},
		Images:        imageRefs(r.Get("images")),
		SubcategoryID: r.Get("categories.subcategory.id").String(),
		Transmission:  textOf(r.Get("transmission")),
		Raw:           raw,
	}
}

// ParseAdvertList decodes one listing page.
func ParseAdvertList(raw []byte) AdvertList {
	r := gjson.ParseBytes(raw)
	list := AdvertList{
		Subtotal: int(r.Get("subtotal").Int()),
		PageSize: int(r.Get("page_size").Int()),
	}
	r.Get("adverts").ForEach(func(_, item gjson.Result) bool {
		list.Adverts = append(list.Adverts, advertFrom(item, []byte(item.Raw)))
		return true
	})
	return list
}

// ParseFeatures flattens features_groups[].features, falling back to a
// top-level features array when no group carries any.
func ParseFeatures(raw []byte) FeatureSet {
	r := gjson.ParseBytes(raw)
	set := FeatureSet{Raw: raw}
	r.Get("features_groups").ForEach(func(_, group gjson.Result) bool {
		group.Get("features").ForEach(func(_, f gjson.Result) bool {
			set.Features = append(set.Features, featureFrom(f))
			return true
		})
		return true
	})
	if len(set.Features) == 0 {
		if top := r.Get("features"); top.IsArray() {
			top.ForEach(func(_, f gjson.Result) bool {
				set.Features = append(set.Features, featureFrom(f))
				return true
			})
		}
	}
	return set
}

func featureFrom(f gjson.Result) Feature {
	code := f.Get("code").String()
	if code == "" {
		code = f.Get("slug").String()
	}
	return Feature{
		ID:    f.Get("id").String(),
		Title: f.Get("title").String(),
		Code:  code,
		Type:  f.Get("type").String(),
		Value: f.Get("value"),
	}
}

var textKeys = []string{"title", "name", "label", "value"}

func textOf(r gjson.Result) string {
	switch {
	case !r.Exists() || r.Type == gjson.Null:
		return ""
	case r.Type == gjson.String:
		return r.Str
	case r.IsArray():
		var parts []string
		r.ForEach(func(_, item gjson.Result) bool {
			if s := textOf(item); s != "" {
				parts = append(parts, s)
			}
			return true
		})
		return strings.Join(parts, ", ")
	case r.IsObject():
		for _, k := range textKeys {
			if v := r.Get(k); v.Type == gjson.String && v.Str != "" {
				return v.Str
			}
		}
		if v := r.Get("value"); v.Exists() {
			return v.String()
		}
		return r.Raw
	}
	return r.Raw
}

var imageKeys = []string{"url", "path", "name", "filename", "file", "value", "src"}

func imageRefs(r gjson.Result) []string {
	var out []string
	push := func(v gjson.Result) {
		if v.Type == gjson.String {
			if v.Str != "" {
				out = append(out, v.Str)
			}
			return
		}
		if v.IsObject() {
			for _, k := range imageKeys {
				if s := v.Get(k); s.Type == gjson.String && s.Str != "" {
					out = append(out, s.Str)
					return
				}
			}
		}
	}
	if r.IsArray() {
		r.ForEach(func(_, item gjson.Result) bool {
			push(item)
			return true
		})
	} else {
		push(r)
	}
	return out
}
