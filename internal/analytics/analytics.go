// Package analytics computes derived views over receipt snapshots.
//
// Every function is pure and stateless: it takes a snapshot, returns plain
// results, and is recomputed on each call. Working sets are small, so no
// caching is done. All monetary math is integer cents; receipts whose date
// does not parse are skipped rather than failing the whole aggregation.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/RiceStickChicken/receipt-tracker/internal/receipt"
)

// Window is a half-open time window [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Days returns the number of calendar days the window spans.
func (w Window) Days() int {
	return int(math.Round(w.End.Sub(w.Start).Hours() / 24))
}

// MonthOf returns the window covering the calendar month containing t.
func MonthOf(t time.Time) Window {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// LastNDays returns the trailing n-day window ending with (and including)
// the calendar day containing now.
func LastNDays(now time.Time, n int) Window {
	end := midnight(now).AddDate(0, 0, 1)
	return Window{Start: end.AddDate(0, 0, -n), End: end}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the most recent Monday midnight at or before t.
func startOfWeek(t time.Time) time.Time {
	d := midnight(t)
	return d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
}

// Recent returns up to n receipts ranked by date descending, ties broken
// by CreatedAt descending. Receipts with unparsable dates rank last.
func Recent(rs []receipt.Receipt, n int) []receipt.Receipt {
	ranked := make([]receipt.Receipt, len(rs))
	copy(ranked, rs)
	sort.SliceStable(ranked, func(i, j int) bool {
		di, erri := receipt.ParseDate(ranked[i].Date)
		dj, errj := receipt.ParseDate(ranked[j].Date)
		switch {
		case erri != nil && errj != nil:
			return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
		case erri != nil:
			return false
		case errj != nil:
			return true
		case !di.Equal(dj):
			return di.After(dj)
		default:
			return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
		}
	})
	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Total sums the cents of receipts whose date falls within the window.
func Total(rs []receipt.Receipt, w Window) int64 {
	var total int64
	for _, r := range rs {
		d, err := receipt.ParseDate(r.Date)
		if err != nil {
			continue
		}
		if w.Contains(d) {
			total += r.TotalCents
		}
	}
	return total
}

// Count returns the number of receipts whose date falls within the window.
func Count(rs []receipt.Receipt, w Window) int {
	count := 0
	for _, r := range rs {
		d, err := receipt.ParseDate(r.Date)
		if err != nil {
			continue
		}
		if w.Contains(d) {
			count++
		}
	}
	return count
}

// Average returns the window total divided by the receipt count, rounded
// to the nearest cent. An empty window averages to zero.
func Average(rs []receipt.Receipt, w Window) int64 {
	count := int64(Count(rs, w))
	if count == 0 {
		return 0
	}
	return (Total(rs, w) + count/2) / count
}

// AveragePerDay returns the window total divided by the window's day span,
// rounded to the nearest cent. Zero when the window holds no receipts.
func AveragePerDay(rs []receipt.Receipt, w Window) int64 {
	if Count(rs, w) == 0 {
		return 0
	}
	days := int64(w.Days())
	if days <= 0 {
		return 0
	}
	return (Total(rs, w) + days/2) / days
}

// WeekBucket is one fixed 7-day bucket of a weekly trend.
type WeekBucket struct {
	Start      time.Time `json:"start"`
	Label      string    `json:"label"` // M/D of the bucket's Monday
	TotalCents int64     `json:"totalCents"`
}

// WeeklyBuckets partitions the trailing nWeeks Monday-anchored weeks,
// including the week containing now, into fixed 7-day buckets and sums
// receipt cents per bucket. Empty buckets report zero, not absent; each
// receipt lands in at most one bucket.
func WeeklyBuckets(rs []receipt.Receipt, now time.Time, nWeeks int) []WeekBucket {
	if nWeeks <= 0 {
		return []WeekBucket{}
	}
	thisWeek := startOfWeek(now)
	buckets := make([]WeekBucket, nWeeks)
	for i := 0; i < nWeeks; i++ {
		start := thisWeek.AddDate(0, 0, -7*(nWeeks-1-i))
		buckets[i] = WeekBucket{
			Start: start,
			Label: start.Format("1/2"),
		}
	}
	for _, r := range rs {
		d, err := receipt.ParseDate(r.Date)
		if err != nil {
			continue
		}
		for i := range buckets {
			w := Window{Start: buckets[i].Start, End: buckets[i].Start.AddDate(0, 0, 7)}
			if w.Contains(d) {
				buckets[i].TotalCents += r.TotalCents
				break
			}
		}
	}
	return buckets
}

// CategoryTotal is an amount aggregated by category label.
type CategoryTotal struct {
	Category   string `json:"category"`
	TotalCents int64  `json:"totalCents"`
}

// CategorySplit groups window receipts by category and sums cents per
// group, sorted by total descending. Equal totals sort by category name so
// the result is deterministic.
func CategorySplit(rs []receipt.Receipt, w Window) []CategoryTotal {
	sums := make(map[string]int64)
	for _, r := range rs {
		d, err := receipt.ParseDate(r.Date)
		if err != nil {
			continue
		}
		if w.Contains(d) {
			sums[r.Category] += r.TotalCents
		}
	}
	split := make([]CategoryTotal, 0, len(sums))
	for cat, total := range sums {
		split = append(split, CategoryTotal{Category: cat, TotalCents: total})
	}
	sort.Slice(split, func(i, j int) bool {
		if split[i].TotalCents != split[j].TotalCents {
			return split[i].TotalCents > split[j].TotalCents
		}
		return split[i].Category < split[j].Category
	})
	return split
}

// LeadingCategory returns the top entry of the window's category split.
// ok is false when the window holds no receipts.
func LeadingCategory(rs []receipt.Receipt, w Window) (string, bool) {
	split := CategorySplit(rs, w)
	if len(split) == 0 {
		return "", false
	}
	return split[0].Category, true
}

// MonthTotal is the spend of one calendar month.
type MonthTotal struct {
	Year       int        `json:"year"`
	Month      time.Month `json:"month"`
	TotalCents int64      `json:"totalCents"`
}

// MonthlyTotals sums receipt cents per calendar month, sorted ascending by
// month. Months with no receipts are absent.
func MonthlyTotals(rs []receipt.Receipt) []MonthTotal {
	type ym struct {
		y int
		m time.Month
	}
	sums := make(map[ym]int64)
	for _, r := range rs {
		d, err := receipt.ParseDate(r.Date)
		if err != nil {
			continue
		}
		sums[ym{d.Year(), d.Month()}] += r.TotalCents
	}
	totals := make([]MonthTotal, 0, len(sums))
	for k, total := range sums {
		totals = append(totals, MonthTotal{Year: k.y, Month: k.m, TotalCents: total})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Year != totals[j].Year {
			return totals[i].Year < totals[j].Year
		}
		return totals[i].Month < totals[j].Month
	})
	return totals
}
