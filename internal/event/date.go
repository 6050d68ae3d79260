package event

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrUnparseableDate is returned when a listing's date text matches none of
// the known formats. Callers drop the listing; there is no fallback date.
var ErrUnparseableDate = errors.New("unparseable date")

// venueZone is the civil timezone every listing is written in. Parsed values
// are wall-clock times in this zone, converted to instants with whatever UTC
// offset (standard or daylight) is in effect on that calendar date.
const venueZone = "America/Vancouver"

var location = mustLoadLocation(venueZone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("load %s: %v", name, err))
	}
	return loc
}

// Location returns the reference timezone listings are anchored to.
func Location() *time.Location {
	return location
}

// dateLayout pairs a time layout with what the format omits. The slice is
// ordered most-specific first and tried in order; the ordering is load-bearing
// because a less specific layout could silently mis-parse a fuller string.
type dateLayout struct {
	format   string
	hasYear  bool
	timeOnly bool
}

var dateLayouts = []dateLayout{
	{format: "Monday, January 2, 2006 3:04 PM", hasYear: true},
	{format: "Monday, January 2, 2006 3 PM", hasYear: true},
	{format: "Mon, Jan 2, 2006 3:04 PM", hasYear: true},
	{format: "Mon, Jan 2, 2006 3 PM", hasYear: true},
	{format: "January 2, 2006 3:04 PM", hasYear: true},
	{format: "January 2, 2006 3 PM", hasYear: true},
	{format: "Jan 2, 2006 3:04 PM", hasYear: true},
	{format: "Jan 2, 2006 3 PM", hasYear: true},
	{format: "January 2 2006 3:04 PM", hasYear: true},
	{format: "Jan 2 2006 3:04 PM", hasYear: true},
	{format: "Monday, January 2, 2006", hasYear: true},
	{format: "Mon, Jan 2, 2006", hasYear: true},
	{format: "January 2, 2006", hasYear: true},
	{format: "Jan 2, 2006", hasYear: true},
	{format: "January 2 2006", hasYear: true},
	{format: "Jan 2 2006", hasYear: true},
	{format: "Monday, January 2 3:04 PM"},
	{format: "Monday, January 2 3 PM"},
	{format: "Mon, Jan 2 3:04 PM"},
	{format: "Mon, Jan 2 3 PM"},
	{format: "January 2 3:04 PM"},
	{format: "January 2 3 PM"},
	{format: "Jan 2 3:04 PM"},
	{format: "Jan 2 3 PM"},
	{format: "Monday, January 2"},
	{format: "Mon, Jan 2"},
	{format: "January 2"},
	{format: "Jan 2"},
	{format: "2006-01-02 15:04", hasYear: true},
	{format: "2006-01-02", hasYear: true},
	{format: "1/2/2006 3:04 PM", hasYear: true},
	{format: "1/2/2006", hasYear: true},
	{format: "3:04 PM", timeOnly: true},
	{format: "3 PM", timeOnly: true},
	{format: "15:04", timeOnly: true},
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	commaSpacing  = regexp.MustCompile(`\s*,\s*`)
	ordinalSuffix = regexp.MustCompile(`(?i)(\d+)(st|nd|rd|th)\b`)
	meridiemGlue  = regexp.MustCompile(`(?i)(\d)\s*(am|pm)\b`)
	leadingPrefix = regexp.MustCompile(`(?i)^(?:doors|show)\s*(?:@|at|:)?\s*`)
)

// normalizeDateText applies the unconditional preprocessing chain, in order:
// collapse whitespace, normalize comma spacing, strip ordinal suffixes, drop
// abbreviation periods, split a digit from its meridiem marker, strip a
// leading doors/show prefix.
func normalizeDateText(raw string) string {
	s := whitespaceRun.ReplaceAllString(strings.TrimSpace(raw), " ")
	s = commaSpacing.ReplaceAllString(s, ", ")
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, ".", "")
	s = meridiemGlue.ReplaceAllStringFunc(s, func(m string) string {
		sub := meridiemGlue.FindStringSubmatch(m)
		return sub[1] + " " + strings.ToUpper(sub[2])
	})
	s = leadingPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseDate parses free-text date/time into an instant anchored in the venue
// timezone. ref supplies the civil date for time-only strings and the year
// for year-omitting formats: the reference year is assumed, advanced by one
// when the result would land more than 14 days in the past (year-end listings
// for next-January dates omit the year; a few-days-old listing should not be
// pushed a year forward).
func ParseDate(raw string, ref time.Time) (time.Time, error) {
	s := normalizeDateText(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, raw)
	}
	for _, l := range dateLayouts {
		t, err := time.Parse(l.format, s)
		if err != nil {
			continue
		}
		return anchor(t, l, ref), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, raw)
}

func anchor(t time.Time, l dateLayout, ref time.Time) time.Time {
	refLocal := ref.In(location)
	switch {
	case l.timeOnly:
		return time.Date(refLocal.Year(), refLocal.Month(), refLocal.Day(),
			t.Hour(), t.Minute(), 0, 0, location)
	case !l.hasYear:
		candidate := time.Date(refLocal.Year(), t.Month(), t.Day(),
			t.Hour(), t.Minute(), 0, 0, location)
		if candidate.Before(ref.AddDate(0, 0, -14)) {
			candidate = time.Date(refLocal.Year()+1, t.Month(), t.Day(),
				t.Hour(), t.Minute(), 0, 0, location)
		}
		return candidate
	default:
		return time.Date(t.Year(), t.Month(), t.Day(),
			t.Hour(), t.Minute(), 0, 0, location)
	}
}

var (
	doorsToken = regexp.MustCompile(`(?i)\bdoors?\b\s*(?:@|at|:)?\s*(\d{1,2}(?::\d{2})?\s*(?:am|pm)?)`)
	showToken  = regexp.MustCompile(`(?i)\b(?:show|music|start)s?\b\s*(?:@|at|:)?\s*(\d{1,2}(?::\d{2})?\s*(?:am|pm)?)`)
)

// ExtractDoorsAndShow pulls a doors time and a show time out of a free-text
// blob. Each matched time substring goes back through ParseDate; a missing
// or unparseable token yields nil for that field, never an error.
func ExtractDoorsAndShow(text string, ref time.Time) (doors, show *time.Time) {
	if m := doorsToken.FindStringSubmatch(text); m != nil {
		if t, err := ParseDate(m[1], ref); err == nil {
			doors = &t
		}
	}
	if m := showToken.FindStringSubmatch(text); m != nil {
		if t, err := ParseDate(m[1], ref); err == nil {
			show = &t
		}
	}
	return doors, show
}
