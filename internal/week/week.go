// Package week derives the reportable Sunday-to-Saturday calendar weeks.
package week

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Range is one reportable week. End is always Start plus six days.
type Range struct {
	Label string
	Start time.Time
	End   time.Time
}

// StartDate returns the range start formatted as YYYY-MM-DD.
func (r Range) StartDate() string {
	return r.Start.Format("2006-01-02")
}

// EndDate returns the range end formatted as YYYY-MM-DD.
func (r Range) EndDate() string {
	return r.End.Format("2006-01-02")
}

// Display formats the range the way the report header shows it,
// e.g. "2026.01.04 ~ 2026.01.10".
func (r Range) Display() string {
	return r.Start.Format("2006.01.02") + " ~ " + r.End.Format("2006.01.02")
}

// Shifted returns the range moved by the given number of days on both ends.
// The label is not recomputed; callers use it for the prior-period queries
// where only the dates matter.
func (r Range) Shifted(days int) Range {
	return Range{
		Label: r.Label,
		Start: r.Start.AddDate(0, 0, days),
		End:   r.End.AddDate(0, 0, days),
	}
}

// ComputeWeeks returns the count most recent Sunday-to-Saturday weeks
// anchored to ref, most recent first. The label carries the ISO week number
// of the week's start date, which near a year boundary can look out of order
// (1주차 next to 52주차); SortKey compensates for that.
func ComputeWeeks(count int, ref time.Time) []Range {
	ref = time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	daysSinceSunday := int(ref.Weekday()) // Sunday == 0
	lastSunday := ref.AddDate(0, 0, -daysSinceSunday)

	ranges := make([]Range, 0, count)
	for i := 0; i < count; i++ {
		start := lastSunday.AddDate(0, 0, -7*i)
		end := start.AddDate(0, 0, 6)
		_, isoWeek := start.ISOWeek()
		ranges = append(ranges, Range{
			Label: fmt.Sprintf("%d주차", isoWeek),
			Start: start,
			End:   end,
		})
	}
	return ranges
}

// Find returns the range matching label, or the most recent range when the
// label is empty or unknown. ok reports whether the label matched.
func Find(ranges []Range, label string) (Range, bool) {
	for _, r := range ranges {
		if r.Label == label {
			return r, true
		}
	}
	if len(ranges) == 0 {
		return Range{}, false
	}
	return ranges[0], false
}

var weekNumRe = regexp.MustCompile(`\d+`)

// Number extracts the numeric week from a label like "52주차". Unparseable
// labels yield 0.
func Number(label string) int {
	m := weekNumRe.FindString(label)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// SortKey maps a week number to a chronologically sortable key. When the set
// of weeks straddles a year boundary (maxWeek at or above 49), the low
// numbers 1..4 belong to the new year and must sort after week 52/53 of the
// old one. The key is for ordering only, never for display.
func SortKey(weekNum, maxWeek int) int {
	if weekNum <= 4 && maxWeek >= 49 {
		return 52 + weekNum
	}
	return weekNum
}
