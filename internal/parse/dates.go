package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var monthsByName = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var (
	mdySlashRe  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	mdyDashRe   = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
	ymdRe       = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	monthNameRe = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})$`)
)

// fallbackLayouts is tried last, in order, when no dedicated matcher fires.
var fallbackLayouts = []string{
	"2006/01/02",
	"01/02/06",
	"2 January 2006",
	time.RFC3339,
}

// ParseDate converts a date-like string into a calendar date. Matchers are
// tried in fixed priority order; the first that yields a real date wins.
// Unparseable input returns nil, never an error: callers treat a nil date
// as "unknown".
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if m := mdySlashRe.FindStringSubmatch(s); m != nil {
		if t := makeDate(m[3], m[1], m[2]); t != nil {
			return t
		}
	}
	if m := mdyDashRe.FindStringSubmatch(s); m != nil {
		if t := makeDate(m[3], m[1], m[2]); t != nil {
			return t
		}
	}
	if m := ymdRe.FindStringSubmatch(s); m != nil {
		if t := makeDate(m[1], m[2], m[3]); t != nil {
			return t
		}
	}
	if m := monthNameRe.FindStringSubmatch(s); m != nil {
		if month, ok := monthsByName[strings.ToLower(m[1])]; ok {
			if t := makeDate(m[3], strconv.Itoa(int(month)), m[2]); t != nil {
				return t
			}
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &t
		}
	}

	return nil
}

// makeDate assembles a date from decimal components, rejecting values that
// don't round-trip (e.g. 02/30/2024 normalizes to March and is discarded).
func makeDate(year, month, day string) *time.Time {
	y, errY := strconv.Atoi(year)
	m, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	if errY != nil || errM != nil || errD != nil {
		return nil
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return nil
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return nil
	}
	return &t
}
