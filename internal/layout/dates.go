package layout

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	fillerWords   = regexp.MustCompile(`(?i)\b(of|the|day|dated|as on|on)\b`)
	extraSpace    = regexp.MustCompile(`[\s,]+`)
)

// Day-first layouts tried before falling back to dateparse.
var dayFirstLayouts = []string{
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"Jan 2 2006",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"02/01/06",
	"2/1/06",
	"02-01-06",
	"2-1-06",
	"2006-01-02",
}

// ParseDate parses a loosely written date such as "30th June 2025",
// "30/06/2025" or "June 30, 2025". Numeric dates are read day first.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	cleaned := ordinalSuffix.ReplaceAllString(s, "$1")
	cleaned = fillerWords.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(extraSpace.ReplaceAllString(cleaned, " "))

	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}

	t, err := dateparse.ParseAny(cleaned, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q: %w", raw, err)
	}
	return t, nil
}

// FormatAsOn renders an as-on date as DD/MM/YYYY. The raw text is returned
// with ok=false when it cannot be parsed.
func FormatAsOn(raw string) (formatted string, ok bool) {
	t, err := ParseDate(raw)
	if err != nil {
		return raw, false
	}
	return t.Format("02/01/2006"), true
}

// MonthYear renders an as-on date as "January 2006" for file names. When the
// date cannot be parsed, slashes and hyphens in the raw text become spaces.
func MonthYear(raw string) string {
	t, err := ParseDate(raw)
	if err != nil {
		return strings.NewReplacer("/", " ", "-", " ").Replace(raw)
	}
	return t.Format("January 2006")
}
