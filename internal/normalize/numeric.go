// internal/normalize/numeric.go
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	minYear = 1960

	minBareEngineCC = 600
	maxBareEngineCC = 7000

	// horsepower per kilowatt, in thousandths
	kwToHPMilli = 1341
)

var (
	digitRun = regexp.MustCompile(`\d+`)
	// "1 995" and "1 995" style thousands separators
	groupedDigits = regexp.MustCompile(`(^|[^\d.,])(\d{1,3})[ \x{00a0}\x{202f}](\d{3})(\D|$)`)

	engineCCPattern = regexp.MustCompile(`(\d{3,5})\s*(?:cm3|cm³|cc|cmc|см3|см³|см\^3|см куб)`)
	// the trailing group rejects "л.с." while allowing "2.0 л." at the end of a phrase
	engineLitrePattern = regexp.MustCompile(
		`(?:^|[^\d.,])(\d{1,2}(?:[.,]\d{1,3})?)\s*(?:litri|litru|litre|литра|литры|литров|l|л)(?:$|[^\p{L}.]|\.$|\.[^\p{L}])`)
	bareEnginePattern = regexp.MustCompile(`\b(\d{3,5})\b`)

	powerHPPattern = regexp.MustCompile(`(\d{2,4})\s*(?:cp|hp|ps|л\.\s?с\.?|лс|л-с)(?:$|[^\p{L}])`)
	powerKWPattern = regexp.MustCompile(`(\d{2,4}(?:[.,]\d{1,2})?)\s*(?:kw|квт|кв)(?:$|[^\p{L}])`)

	currentYear = func() int { return time.Now().Year() }
)

// ParseInt concatenates every digit in s. "163 000 km" yields 163000.
func ParseInt(s string) (int, bool) {
	digits := strings.Join(digitRun.FindAllString(s, -1), "")
	if digits == "" || len(digits) > 12 {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseYear returns the first standalone four-digit number in
// [1960, current year + 1]. Digits inside longer numbers such as a
// mileage of 120000 are never taken for a year.
func ParseYear(s string) (int, bool) {
	maxYear := currentYear() + 1
	for _, run := range digitRun.FindAllString(s, -1) {
		if len(run) != 4 {
			continue
		}
		year, _ := strconv.Atoi(run)
		if year >= minYear && year <= maxYear {
			return year, true
		}
	}
	return 0, false
}

// ParseEngineCC reads displacement in cubic centimetres from an explicit cc
// token, a litre value, or a bare plausible number.
func ParseEngineCC(raw string) (int, bool) {
	s := strings.ToLower(joinDigitGroups(raw))
	if s == "" {
		return 0, false
	}

	if m := engineCCPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, true
	}
	if m := engineLitrePattern.FindStringSubmatch(s); m != nil {
		if cc, ok := scaleDecimal(m[1], 1000, 1); ok && cc > 0 {
			return cc, true
		}
	}
	if m := bareEnginePattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n >= minBareEngineCC && n <= maxBareEngineCC {
			return n, true
		}
	}
	return 0, false
}

// ParsePower reads horsepower from an hp token, converts a kW token, and
// finally falls back to the digits of a unit-less value.
func ParsePower(raw string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}

	if m := powerHPPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, true
	}
	if m := powerKWPattern.FindStringSubmatch(s); m != nil {
		return scaleDecimal(m[1], kwToHPMilli, 1000)
	}
	if strings.Contains(s, "kw") || strings.Contains(s, "квт") {
		return 0, false
	}
	return ParseInt(s)
}

func joinDigitGroups(s string) string {
	for {
		next := groupedDigits.ReplaceAllString(s, "${1}${2}${3}${4}")
		if next == s {
			return s
		}
		s = next
	}
}

// scaleDecimal computes round-half-up(value * num / den) where value is a
// decimal string using "." or "," as separator, without floating point.
func scaleDecimal(value string, num, den int64) (int, bool) {
	value = strings.Replace(value, ",", ".", 1)
	intPart, fracPart, _ := strings.Cut(value, ".")
	scale := int64(1)
	for range fracPart {
		scale *= 10
	}
	mantissa, err := strconv.ParseInt(intPart+fracPart, 10, 64)
	if err != nil {
		return 0, false
	}
	total := mantissa * num
	div := scale * den
	return int((2*total + div) / (2 * div)), true
}
