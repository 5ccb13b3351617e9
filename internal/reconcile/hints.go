// internal/reconcile/hints.go
package reconcile

import (
	"regexp"
	"strings"

	"github.com/javajoker/autoimport/internal/normalize"
)

var (
	plugInHints    = []string{"phev", "plug-in", "plugin", "plug in"}
	hybridHints    = []string{"hybrid", "гибрид", "hibrid"}
	bmwPlugInBadge = regexp.MustCompile(`\b\d{2,3}e\b`)
)

// HybridByModel reports models that are only sold, or almost only sold, as
// hybrids, and plug-in mentions in the text. It is used to repair stored
// cars whose fuel was never recognised.
func HybridByModel(maker, model, text string) bool {
	mk := strings.ToLower(strings.TrimSpace(maker))
	md := strings.ToLower(strings.TrimSpace(model))
	t := strings.ToLower(text)

	switch {
	case normalize.ContainsAny(t, plugInHints):
		return true
	case mk == "toyota":
		return md == "c-hr" || md == "chr" || md == "prius" || normalize.ContainsAny(t, hybridHints)
	case mk == "mitsubishi":
		return strings.Contains(md, "outlander") && normalize.ContainsAny(t, []string{"phev", "plug"})
	case mk == "kia":
		return strings.Contains(md, "niro")
	case mk == "hyundai":
		return strings.Contains(md, "ioniq")
	case mk == "bmw":
		return bmwPlugInBadge.MatchString(md + " " + t)
	}
	return false
}
