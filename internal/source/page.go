// internal/source/page.go
package source

import (
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	rowSelector   = `[class*="group__row__"]`
	keySelector   = `[class*="group__key__"]`
	valueSelector = `[class*="group__value__"]`
)

var (
	scriptImagePattern = regexp.MustCompile(`(?i)(https?://[^\s"']*?(?:BoardImages|999\.md)[^\s"']*\.(?:jpg|jpeg|png))`)
	imageExtPattern    = regexp.MustCompile(`(?i)\.(?:jpg|jpeg|png|webp)(?:\?|$)`)
)

// Pair is one label/value row of the characteristics table, in document order.
type Pair struct {
	Label string
	Value string
}

// Page holds what the public listing page contributes: the characteristics
// table, the showcase meta tags and every image URL found on the page.
type Page struct {
	Pairs        []Pair
	PriceAmount  string
	Currency     string
	Title        string
	Description  string
	MainPhotoURL string
	Images       []string
}

// PageResult is the outcome of the best-effort HTML fetch. Err is set when
// the page is unavailable; callers degrade to the API view.
type PageResult struct {
	Page Page
	HTML string
	Err  error
}

func (r PageResult) Available() bool {
	return r.Err == nil
}

// ParsePage extracts the characteristics table, meta tags and images.
func ParsePage(r io.Reader) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Page{}, err
	}

	p := Page{
		PriceAmount:  metaContent(doc, "product:price:amount"),
		Currency:     metaContent(doc, "product:price:currency"),
		Title:        metaContent(doc, "og:title"),
		Description:  metaContent(doc, "og:description"),
		MainPhotoURL: metaContent(doc, "og:image"),
	}
	p.Pairs = tablePairs(doc)
	p.Images = pageImages(doc)
	return p, nil
}

func metaContent(doc *goquery.Document, property string) string {
	v, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	return strings.TrimSpace(v)
}

func tablePairs(doc *goquery.Document) []Pair {
	var pairs []Pair
	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		key := row.Find(keySelector).First()
		val := row.Find(valueSelector).First()
		if key.Length() == 0 || val.Length() == 0 {
			return
		}
		label, value := spacedText(key), spacedText(val)
		if label != "" && value != "" {
			pairs = append(pairs, Pair{Label: label, Value: value})
		}
	})
	if len(pairs) > 0 {
		return pairs
	}

	// layouts without row containers: pair every key with the nearest value
	doc.Find(keySelector).Each(func(_ int, key *goquery.Selection) {
		label := spacedText(key)
		if label == "" {
			return
		}
		parent := key.Parent()
		val := parent.ChildrenFiltered(valueSelector).First()
		if val.Length() == 0 {
			val = key.NextAllFiltered(valueSelector).First()
		}
		if val.Length() == 0 {
			val = parent.Find(valueSelector).First()
		}
		if val.Length() == 0 {
			return
		}
		if value := spacedText(val); value != "" {
			pairs = append(pairs, Pair{Label: label, Value: value})
		}
	})
	return pairs
}

func pageImages(doc *goquery.Document) []string {
	var out []string
	doc.Find(`meta[property="og:image"], meta[property="og:image:secure_url"]`).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("content"); ok && strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	})
	doc.Find("img, a").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range []string{"src", "data-src", "href"} {
			v, ok := s.Attr(attr)
			if !ok || v == "" {
				continue
			}
			if strings.Contains(v, "BoardImages") || (strings.Contains(v, "999.md") && imageExtPattern.MatchString(v)) {
				out = append(out, v)
			}
		}
	})
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		out = append(out, scriptImagePattern.FindAllString(s.Text(), -1)...)
	})
	return out
}

// spacedText joins the trimmed text nodes under s with single spaces, so
// "<b>2.0</b><i>l</i>" reads "2.0 l" rather than "2.0l".
func spacedText(s *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}
