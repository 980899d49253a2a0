package week

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeWeeksShape(t *testing.T) {
	// 2026-08-31 is a Monday; the most recent Sunday is 2026-08-30.
	ranges := ComputeWeeks(12, date(2026, time.August, 31))
	require.Len(t, ranges, 12)

	assert.Equal(t, "2026-08-30", ranges[0].StartDate())
	assert.Equal(t, "2026-09-05", ranges[0].EndDate())

	for i, r := range ranges {
		assert.Equal(t, r.Start.AddDate(0, 0, 6), r.End, "week %d span", i)
		assert.Equal(t, time.Sunday, r.Start.Weekday())
		assert.Equal(t, time.Saturday, r.End.Weekday())
		if i > 0 {
			// Strictly decreasing, contiguous, non-overlapping.
			assert.Equal(t, ranges[i-1].Start.AddDate(0, 0, -7), r.Start)
		}
	}

	seen := map[string]bool{}
	for _, r := range ranges {
		assert.False(t, seen[r.Label], "duplicate label %s", r.Label)
		seen[r.Label] = true
	}
}

func TestComputeWeeksFromSunday(t *testing.T) {
	// A Sunday reference anchors to itself.
	ranges := ComputeWeeks(1, date(2026, time.August, 30))
	require.Len(t, ranges, 1)
	assert.Equal(t, "2026-08-30", ranges[0].StartDate())
}

func TestComputeWeeksLabels(t *testing.T) {
	ranges := ComputeWeeks(2, date(2026, time.August, 31))
	// ISO week of Sunday 2026-08-30 is 35 (ISO weeks run Mon-Sun, so the
	// Sunday start still belongs to the prior ISO week).
	_, w0 := ranges[0].Start.ISOWeek()
	_, w1 := ranges[1].Start.ISOWeek()
	assert.Equal(t, Number(ranges[0].Label), w0)
	assert.Equal(t, Number(ranges[1].Label), w1)
}

func TestFind(t *testing.T) {
	ranges := ComputeWeeks(4, date(2026, time.August, 31))

	r, ok := Find(ranges, ranges[2].Label)
	assert.True(t, ok)
	assert.Equal(t, ranges[2].StartDate(), r.StartDate())

	// Unknown or empty label falls back to the most recent week.
	r, ok = Find(ranges, "999주차")
	assert.False(t, ok)
	assert.Equal(t, ranges[0].StartDate(), r.StartDate())

	r, ok = Find(ranges, "")
	assert.False(t, ok)
	assert.Equal(t, ranges[0].StartDate(), r.StartDate())
}

func TestShifted(t *testing.T) {
	ranges := ComputeWeeks(1, date(2026, time.August, 31))
	prior := ranges[0].Shifted(-7)
	assert.Equal(t, "2026-08-23", prior.StartDate())
	assert.Equal(t, "2026-08-29", prior.EndDate())
}

func TestSortKeyYearBoundary(t *testing.T) {
	// Labels as they come out of a January run: 1..4 follow 52/51/50...
	nums := []int{2, 1, 52, 51, 50, 49}
	maxWeek := 52

	sorted := append([]int(nil), nums...)
	sort.Slice(sorted, func(i, j int) bool {
		return SortKey(sorted[i], maxWeek) < SortKey(sorted[j], maxWeek)
	})
	assert.Equal(t, []int{49, 50, 51, 52, 1, 2}, sorted)
}

func TestSortKeyNoBoundary(t *testing.T) {
	// Mid-year: low week numbers sort naturally.
	assert.Equal(t, 3, SortKey(3, 35))
	assert.Equal(t, 35, SortKey(35, 35))
	// Boundary case only remaps 1..4.
	assert.Equal(t, 5, SortKey(5, 52))
	assert.Equal(t, 53, SortKey(1, 52))
}

func TestNumber(t *testing.T) {
	assert.Equal(t, 52, Number("52주차"))
	assert.Equal(t, 1, Number("1주차"))
	assert.Equal(t, 0, Number("주차"))
	assert.Equal(t, 0, Number(""))
}
