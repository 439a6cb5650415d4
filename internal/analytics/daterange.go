package analytics

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DateRange is the symbolic period selected in a filter panel.
type DateRange string

const (
	RangeAll          DateRange = "all"
	RangeYTD          DateRange = "ytd"
	RangeQTD          DateRange = "qtd"
	RangeMTD          DateRange = "mtd"
	RangeLast3Months  DateRange = "last3months"
	RangeLast6Months  DateRange = "last6months"
	RangeLast12Months DateRange = "last12months"
)

var dateRanges = []DateRange{RangeAll, RangeYTD, RangeQTD, RangeMTD, RangeLast3Months, RangeLast6Months, RangeLast12Months}

// ParseDateRange reports whether s is a known range tag.
func ParseDateRange(s string) (DateRange, bool) {
	r := DateRange(s)
	return r, slices.Contains(dateRanges, r)
}

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// monthWindow is an inclusive range of absolute month indexes (year*12 + month-1).
type monthWindow struct {
	from, to int
}

func (w monthWindow) contains(idx int) bool {
	return idx >= w.from && idx <= w.to
}

func monthIndex(year int, month time.Month) int {
	return year*12 + int(month) - 1
}

// financeWindow resolves a range tag against the anchor month. ok is false for
// "all" and for unrecognised tags, which both mean no date constraint.
func financeWindow(r DateRange, anchor time.Time) (monthWindow, bool) {
	a := monthIndex(anchor.Year(), anchor.Month())
	m := int(anchor.Month()) - 1
	switch r {
	case RangeMTD:
		return monthWindow{a, a}, true
	case RangeQTD:
		return monthWindow{a - m%3, a}, true
	case RangeYTD:
		return monthWindow{a - m, a}, true
	case RangeLast3Months:
		return monthWindow{a - 2, a}, true
	case RangeLast6Months:
		return monthWindow{a - 5, a}, true
	case RangeLast12Months:
		return monthWindow{a - 11, a}, true
	default:
		return monthWindow{}, false
	}
}

// window resolves the date constraint of f. Explicit bounds win over the range
// tag; a missing side is open.
func (f FilterState) window(anchor time.Time) (monthWindow, bool) {
	from, okFrom := parseMonth(f.DateStart)
	to, okTo := parseMonth(f.DateEnd)
	if !okFrom && !okTo {
		return financeWindow(f.DateRange, anchor)
	}
	w := monthWindow{from: math.MinInt, to: math.MaxInt}
	if okFrom {
		w.from = from
	}
	if okTo {
		w.to = to
	}
	return w, true
}

// parseMonth parses "YYYY-MM" (a longer "YYYY-MM-DD" is accepted too).
func parseMonth(s string) (int, bool) {
	if len(s) < 7 {
		return 0, false
	}
	t, err := time.Parse(monthLayout, s[:7])
	if err != nil {
		return 0, false
	}
	return monthIndex(t.Year(), t.Month()), true
}

// labelMonth resolves a "Jan".."Dec" label into the anchor year. Full
// "YYYY-MM" values are passed through parseMonth.
func labelMonth(label string, anchorYear int) (int, bool) {
	for i, l := range monthLabels {
		if strings.EqualFold(l, strings.TrimSpace(label)) {
			return anchorYear*12 + i, true
		}
	}
	return parseMonth(label)
}

// hrRangeStart returns the earliest hire date admitted by the tag, relative to
// now. ok is false when the tag imposes no constraint.
func hrRangeStart(r DateRange, now time.Time) (time.Time, bool) {
	loc := now.Location()
	switch r {
	case RangeYTD:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc), true
	case RangeQTD:
		q := (int(now.Month()) - 1) / 3
		return time.Date(now.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, loc), true
	case RangeMTD:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc), true
	case RangeLast12Months:
		return now.AddDate(0, 0, -365), true
	case RangeLast6Months:
		return now.AddDate(0, 0, -180), true
	case RangeLast3Months:
		return now.AddDate(0, 0, -90), true
	default:
		return time.Time{}, false
	}
}

// parseDay parses an HR date in the location of ref.
func parseDay(s string, ref time.Time) (time.Time, bool) {
	if len(s) < 10 {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dayLayout, s[:10], ref.Location())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// yearsBetween returns the elapsed time in 365.25-day years.
func yearsBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24 / 365.25
}

// FormatMonth renders an absolute month index as "YYYY-MM".
func FormatMonth(idx int) string {
	year, month := idx/12, idx%12+1
	m := strconv.Itoa(month)
	if month < 10 {
		m = "0" + m
	}
	return strconv.Itoa(year) + "-" + m
}
