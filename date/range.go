package date

import "fmt"

// Range represents a range of dates, boundaries included.
type Range struct{ From, To Date }

// NewRange returns the range [from, to].
func NewRange(from, to Date) Range { return Range{From: from, To: to} }

// Lookback returns the range of the given number of weeks ending on 'to'.
func Lookback(to Date, weeks int) Range { return Range{From: to.AddWeeks(-weeks), To: to} }

// LookbackDays returns the range of the given number of days ending on 'to'.
func LookbackDays(to Date, days int) Range { return Range{From: to.Add(-days), To: to} }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns the number of days covered by the range.
func (r Range) Days() int { return r.From.DaysUntil(r.To) + 1 }

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }

// Months returns r.From and each of its monthly anniversaries up to r.To.
func (r Range) Months() []Date {
	var dates []Date
	for i, d := 0, r.From; !d.After(r.To); i, d = i+1, r.From.AddMonth(i+1) {
		dates = append(dates, d)
	}
	return dates
}
