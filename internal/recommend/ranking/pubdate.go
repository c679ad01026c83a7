package ranking

import (
	"math"
	"strconv"
	"time"
)

const daysPerYear = 365.25

// ParsePubDate parses the book-search API's YYYYMMDD publication date. Only
// the first eight characters are considered. The second return value is false
// when the string is too short, non-numeric, or not a valid calendar date.
func ParsePubDate(s string) (time.Time, bool) {
	if len(s) < 8 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(s[4:6])
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(s[6:8])
	if err != nil {
		return time.Time{}, false
	}
	if year < 1 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. Feb 30 -> Mar 2); reject those.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// RecencyScore converts a publication date into a freshness signal in [0, 1]
// using exponential decay: a book published at the reference time scores 1.0,
// a book exactly one half-life old scores 0.5. Unparseable dates score a fixed
// 0.3. Future-dated books clamp to 1.0 instead of overshooting.
func RecencyScore(pubdate string, halfLifeYears float64, now time.Time) float64 {
	published, ok := ParsePubDate(pubdate)
	if !ok {
		return unknownDateScore
	}
	if halfLifeYears <= 0 {
		halfLifeYears = DefaultHalfLifeYears
	}
	yearsAgo := now.Sub(published).Hours() / 24 / daysPerYear
	return clamp01(math.Pow(0.5, yearsAgo/halfLifeYears))
}
