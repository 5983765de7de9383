package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// sheetsEpochOffset is the number of days between the spreadsheet epoch
// (1899-12-30) and the Unix epoch.
const sheetsEpochOffset = 25569

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"jun": time.June, "jul": time.July, "aug": time.August, "sep": time.September,
	"sept": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

var (
	ordinalRe    = regexp.MustCompile(`(?i)(\d+)(?:st|nd|rd|th)`)
	dateSplitRe  = regexp.MustCompile(`[\s,/\-]+`)
	isoDateRe    = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	leadingIntRe = regexp.MustCompile(`^\s*(\d+)`)
)

// LookupMonth resolves a full or abbreviated English month name.
func LookupMonth(name string) (time.Month, bool) {
	m, ok := months[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// LeadingInt extracts the integer at the start of s ("14th (Sat)" -> 14).
func LeadingInt(s string) (int, bool) {
	m := leadingIntRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// MatchISODate returns the year, month and day of the first YYYY-MM-DD
// pattern found in s.
func MatchISODate(s string) (year, month, day int, ok bool) {
	m := isoDateRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	month, _ = strconv.Atoi(m[2])
	day, _ = strconv.Atoi(m[3])
	return year, month, day, true
}

// ParseDate resolves free-form text such as "22nd February 2026",
// "Sun, 1 Mar 2026" or "16/Mar/2026" to a UTC midnight. Tokens are
// classified as year (> 31), day (1-31, first wins) or month name. Text that
// does not yield all three components is reported as unparseable.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if y, m, d, ok := MatchISODate(s); ok {
		return calendarDate(y, time.Month(m), d)
	}

	cleaned := ordinalRe.ReplaceAllString(s, "$1")
	var (
		day, year int
		month     time.Month
	)
	for _, part := range dateSplitRe.Split(cleaned, -1) {
		if part == "" {
			continue
		}
		if n, ok := LeadingInt(part); ok {
			switch {
			case n > 31:
				year = n
				continue
			case n >= 1 && day == 0:
				day = n
				continue
			}
		}
		if m, ok := LookupMonth(part); ok {
			month = m
		}
	}
	if day == 0 || month == 0 || year == 0 {
		return time.Time{}, false
	}
	return calendarDate(year, month, day)
}

// calendarDate rejects days that time.Date would roll into the next month.
func calendarDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// SerialToDate converts a spreadsheet day-count serial to a UTC time.
func SerialToDate(serial float64) time.Time {
	secs := int64((serial - sheetsEpochOffset) * 86400)
	return time.Unix(secs, 0).UTC()
}

// MidnightUTC truncates t to the start of its UTC calendar day.
func MidnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey returns year*10000 + month*100 + day.
func DateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// FormatShortDate renders t as "1 Mar 2026".
func FormatShortDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), t.Month().String()[:3], t.Year())
}

// EndOfFollowingMonth returns the last day of the month after t's month.
func EndOfFollowingMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+2, 0, 0, 0, 0, 0, time.UTC)
}
