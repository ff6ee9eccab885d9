package domain

import (
	"sort"
	"time"
)

// Default projection parameters.
const (
	// DefaultHorizonMonths is the forward-looking window for the
	// monthly breakdown calendar.
	DefaultHorizonMonths = 12

	// DefaultUpcomingWindowDays bounds the upcoming-renewals filter.
	DefaultUpcomingWindowDays = 14

	// MaxHistoryRecords caps reconstructed payment history per
	// subscription. An explicit ceiling, so implausibly old reference
	// dates stay cheap to project.
	MaxHistoryRecords = 120
)

// Payment is a single reconstructed charge.
type Payment struct {
	Date   time.Time
	Amount float64
}

// MonthBucket is one calendar-month slot in the horizon aggregate.
type MonthBucket struct {
	Month time.Time
	Total float64
}

// StartOfDay returns the midnight-normalized form of t in its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfMonth returns the first day of t's calendar month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// AddMonths advances t by the given number of calendar months, clamping
// the day to the target month's length. Stepping from Jan 31 lands on
// Feb 28 (29 in leap years), and subsequent steps walk from the clamped
// day rather than restoring the original anchor day.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	total := int(m) - 1 + months
	year := y + total/12
	month := time.Month(total%12 + 1)
	if total < 0 {
		// Go's integer division truncates toward zero.
		year = y + (total-11)/12
		month = time.Month((total%12+12)%12 + 1)
	}

	if max := daysInMonth(year, month); d > max {
		d = max
	}

	return time.Date(year, month, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// dayAfter reports whether a falls on a later calendar day than b.
func dayAfter(a, b time.Time) bool {
	return StartOfDay(a).After(StartOfDay(b))
}

// NextChargeDate resolves the next occurring charge of s relative to now.
//
// Comparison is by calendar day, so a charge due today at any time of
// day counts as due today rather than overdue. When the series is
// terminated by the end date, the last charge at or before the end date
// is returned with ok=false, even if that charge lies in the past.
func NextChargeDate(s *Subscription, now time.Time) (date time.Time, ok bool) {
	today := StartOfDay(now)
	candidate := s.referenceDate
	step := s.cycle.Months()

	for StartOfDay(candidate).Before(today) {
		next := AddMonths(candidate, step)
		if s.endDate != nil && dayAfter(next, *s.endDate) {
			return candidate, false
		}
		candidate = next
	}

	return candidate, true
}

// PaymentHistory reconstructs the charges of s that have already
// occurred, newest first. Walks from the reference date in cycle-sized
// steps while the charge day is at or before today and at or before the
// end date, emitting at most MaxHistoryRecords records.
func PaymentHistory(s *Subscription, now time.Time) []Payment {
	today := StartOfDay(now)
	if StartOfDay(s.referenceDate).After(today) {
		return nil
	}

	step := s.cycle.Months()
	var payments []Payment

	for d := s.referenceDate; !StartOfDay(d).After(today); d = AddMonths(d, step) {
		if s.endDate != nil && dayAfter(d, *s.endDate) {
			break
		}
		payments = append(payments, Payment{Date: d, Amount: s.amount})
		if len(payments) >= MaxHistoryRecords {
			break
		}
	}

	// Newest first.
	for i, j := 0, len(payments)-1; i < j; i, j = i+1, j-1 {
		payments[i], payments[j] = payments[j], payments[i]
	}

	return payments
}

// TotalSpent returns the sum of all reconstructed charges of s.
func TotalSpent(s *Subscription, now time.Time) float64 {
	return float64(len(PaymentHistory(s, now))) * s.amount
}

// MonthlyTotal sums the month-normalized cost of all active subscriptions.
func MonthlyTotal(subscriptions []*Subscription, now time.Time) float64 {
	var total float64
	for _, s := range subscriptions {
		if s.IsActive(now) {
			total += s.MonthlyCost()
		}
	}
	return total
}

// YearlyTotal is the monthly total extrapolated to a full year.
func YearlyTotal(subscriptions []*Subscription, now time.Time) float64 {
	return MonthlyTotal(subscriptions, now) * 12
}

// Upcoming returns the active subscriptions whose next charge falls
// within windowDays of now, inclusive, sorted ascending by charge date.
// Ties keep input order.
func Upcoming(subscriptions []*Subscription, now time.Time, windowDays int) []*Subscription {
	today := StartOfDay(now)
	windowEnd := today.AddDate(0, 0, windowDays)

	type entry struct {
		sub  *Subscription
		date time.Time
	}

	var entries []entry
	for _, s := range subscriptions {
		if !s.IsActive(now) {
			continue
		}
		date, ok := NextChargeDate(s, now)
		if !ok {
			continue
		}
		day := StartOfDay(date)
		if day.Before(today) || day.After(windowEnd) {
			continue
		}
		entries = append(entries, entry{sub: s, date: day})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].date.Before(entries[j].date)
	})

	result := make([]*Subscription, len(entries))
	for i, e := range entries {
		result[i] = e.sub
	}
	return result
}

// MonthlyBreakdown projects upcoming charges into a gap-free series of
// horizonMonths calendar-month buckets starting at now's month. Each
// charge contributes its full amount to the bucket of its month; yearly
// subscriptions land in exactly one bucket per year.
func MonthlyBreakdown(subscriptions []*Subscription, now time.Time, horizonMonths int) []MonthBucket {
	if horizonMonths <= 0 {
		horizonMonths = DefaultHorizonMonths
	}

	horizonStart := StartOfMonth(now)
	buckets := make([]MonthBucket, horizonMonths)
	for i := range buckets {
		buckets[i].Month = AddMonths(horizonStart, i)
	}
	horizonEnd := AddMonths(horizonStart, horizonMonths)

	for _, s := range subscriptions {
		if !s.IsActive(now) {
			continue
		}

		date, ok := NextChargeDate(s, now)
		if !ok {
			continue
		}

		step := s.cycle.Months()

		// Re-walk forward defensively if the resolved date precedes
		// the horizon start.
		for date.Before(horizonStart) {
			date = AddMonths(date, step)
		}

		for date.Before(horizonEnd) {
			if s.endDate != nil && dayAfter(date, *s.endDate) {
				break
			}
			if idx := monthIndex(horizonStart, date); idx >= 0 && idx < horizonMonths {
				buckets[idx].Total += s.amount
			}
			date = AddMonths(date, step)
		}
	}

	return buckets
}

// monthIndex returns the zero-based offset of t's calendar month from start.
func monthIndex(start, t time.Time) int {
	return (t.Year()-start.Year())*12 + int(t.Month()) - int(start.Month())
}
