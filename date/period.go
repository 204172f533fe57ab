package date

import (
	"fmt"
	"strings"
)

// Period is a calendar granularity. It is also the candle interval of a price series,
// hence the names used by candle APIs.
type Period int

const (
	Daily Period = iota
	Weekly
	Monthly
)

var periodNames = [...]string{Daily: "day", Weekly: "week", Monthly: "month"}

func (p Period) String() string {
	if p < 0 || int(p) >= len(periodNames) {
		panic(fmt.Sprintf("unknown period %d", p))
	}
	return periodNames[p]
}

// ParsePeriod parses a period name, as a noun ("day") or an adverb ("daily").
func ParsePeriod(name string) (Period, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for p, n := range periodNames {
		if name == n || name == n+"ly" || (n == "day" && name == "daily") {
			return Period(p), nil
		}
	}
	return Daily, fmt.Errorf("unknown period %q", name)
}
