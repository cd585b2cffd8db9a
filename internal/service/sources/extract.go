package sources

import (
	"regexp"
	"strconv"
	"strings"
)

// Silver trades in a narrow band; anything outside this range is a parsing
// artifact, not a price.
const (
	minSanePrice = 15
	maxSanePrice = 100
)

// Patterns are tried in order of specificity. Page layouts change, so the
// ladder ends with a loose dollar-amount match and a typical-range scan.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{1,2}\.\d{2})\s*(?:USD|per ounce|oz|ounce)`),
	regexp.MustCompile(`(?i)silver.*?price.*?(\d{1,2}\.\d{2})`),
	regexp.MustCompile(`(?i)(\d{1,2}\.\d{2})\s*USD.*?silver`),
	regexp.MustCompile(`\$(\d{1,2}\.\d{2})`),
}

var typicalRangePattern = regexp.MustCompile(`\b([4-5][0-9]\.\d{2})\b`)

// ExtractPrice scans an HTML or text blob for a plausible silver spot price.
// Returns false when nothing in the sane range is found.
func ExtractPrice(blob string) (float64, bool) {
	blob = strings.ReplaceAll(blob, ",", "")

	for _, pattern := range pricePatterns {
		m := pattern.FindStringSubmatch(blob)
		if m == nil {
			continue
		}
		if price, err := strconv.ParseFloat(m[1], 64); err == nil && saneSilverPrice(price) {
			return price, true
		}
	}

	if m := typicalRangePattern.FindStringSubmatch(blob); m != nil {
		if price, err := strconv.ParseFloat(m[1], 64); err == nil && saneSilverPrice(price) {
			return price, true
		}
	}
	return 0, false
}

func saneSilverPrice(p float64) bool {
	return p >= minSanePrice && p <= maxSanePrice
}
