package streaks

import (
	"sort"
	"strings"
	"time"
)

// DaySet is the set of calendar dates with at least one entry.
type DaySet map[string]struct{}

func (c *Calendar) DistinctDays(timestamps []time.Time) DaySet {
	days := make(DaySet, len(timestamps))
	for _, ts := range timestamps {
		days[c.DateKey(ts)] = struct{}{}
	}
	return days
}

func (d DaySet) Has(day string) bool {
	_, ok := d[day]
	return ok
}

// Sorted returns the dates in ascending order.
func (d DaySet) Sorted() []string {
	out := make([]string, 0, len(d))
	for day := range d {
		out = append(out, day)
	}
	sort.Strings(out)
	return out
}

// InMonth counts the dates that fall inside monthKey.
func (d DaySet) InMonth(monthKey string) int {
	prefix := monthKey[:7]
	n := 0
	for day := range d {
		if strings.HasPrefix(day, prefix) {
			n++
		}
	}
	return n
}

// CurrentStreak walks backwards from today one civil day at a time and stops
// at the first missing date. No entry today means no streak.
func CurrentStreak(days DaySet, today string) int {
	streak := 0
	for day := today; day != "" && days.Has(day); day = ShiftDate(day, -1) {
		streak++
	}
	return streak
}

// LongestRun is the longest run of consecutive dates anywhere in the set.
func LongestRun(days DaySet) int {
	longest, run := 0, 0
	prev := ""
	for _, day := range days.Sorted() {
		if prev != "" && ShiftDate(prev, 1) == day {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = day
	}
	return longest
}

type Summary struct {
	Current int
	Longest int
	Days    DaySet
}

// Summarize is the one streak computation shared by the persisted streak
// update and every read-only view.
func Summarize(cal *Calendar, timestamps []time.Time, now time.Time) Summary {
	days := cal.DistinctDays(timestamps)
	current := CurrentStreak(days, cal.DateKey(now))
	return Summary{
		Current: current,
		Longest: max(LongestRun(days), current),
		Days:    days,
	}
}
