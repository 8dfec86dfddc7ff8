// Package streak computes contribution streak statistics from daily
// observations. Compute is a pure fold: no clock, no I/O, safe to call
// concurrently.
package streak

import (
	"sort"
	"time"
)

// Day is the observed activity for exactly one calendar day.
type Day struct {
	Date  time.Time
	Count int
}

// Result holds the aggregate streak statistics for one user.
type Result struct {
	// Longest is the maximum run of consecutive positive-count days anywhere
	// in the input.
	Longest int
	// Current is the run of consecutive positive-count days still alive at
	// today (or yesterday), 0 when the streak has lapsed.
	Current int
	// Total is the sum of all counts.
	Total int
	// LastContribution is the most recent date with a positive count, nil when
	// the input holds no activity at all.
	LastContribution *time.Time
}

// Midnight normalizes t to 00:00:00 UTC so whole-day arithmetic is exact.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole-day distance from a to b, both normalized.
func daysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)) / (24 * time.Hour))
}

// Compute folds an unordered set of daily observations into streak statistics.
// The caller supplies today explicitly so the computation is deterministic.
//
// A zero count on today itself does not break a running streak: the day may
// not be over yet. Independently, a streak whose last positive day is more
// than one day before today reports Current == 0, even when the input has
// gaps instead of explicit zero-count days.
//
// Duplicate dates are not deduplicated; each observation feeds the total.
func Compute(days []Day, today time.Time) Result {
	if len(days) == 0 {
		return Result{}
	}

	sorted := make([]Day, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	today = Midnight(today)

	var (
		running      int
		longest      int
		total        int
		lastPositive time.Time
		havePositive bool
	)

	for i, d := range sorted {
		date := Midnight(d.Date)
		total += d.Count
		if d.Count > 0 {
			lastPositive = date
			havePositive = true
		}

		if i == 0 {
			if d.Count > 0 {
				running = 1
			}
		} else {
			prev := Midnight(sorted[i-1].Date)
			switch {
			case daysBetween(prev, date) == 1 && d.Count > 0:
				running++
			case d.Count > 0:
				// Non-adjacent positive day starts a fresh chain.
				running = 1
			case !date.Equal(today):
				running = 0
			}
			// Zero count on today leaves running untouched: grace period for
			// the still-open day.
		}

		if running > longest {
			longest = running
		}
	}

	// Lapse check: the chain only counts as ongoing when its last positive
	// day is today or yesterday.
	current := 0
	if havePositive && daysBetween(lastPositive, today) <= 1 {
		current = running
	}

	res := Result{Longest: longest, Current: current, Total: total}
	if havePositive {
		res.LastContribution = &lastPositive
	}
	return res
}
