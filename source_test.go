package algo

import (
	"context"
	"time"

	"github.com/perryizgr8/algo/date"
)

// fakeSource serves in-memory candles, filtered by range.
type fakeSource struct {
	series map[string][]Candle // by instrument key
	errs   map[string][]error  // errors returned by the next calls, by key
	calls  map[string]int
	ranges map[string][]date.Range
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		series: map[string][]Candle{},
		errs:   map[string][]error{},
		calls:  map[string]int{},
		ranges: map[string][]date.Range{},
	}
}

// add registers closes for key, one candle per (day, close) pair.
func (f *fakeSource) add(key string, points ...any) *fakeSource {
	for i := 0; i+1 < len(points); i += 2 {
		f.series[key] = append(f.series[key], Candle{
			Date:  date.MustParse(points[i].(string)),
			Close: M(points[i+1].(float64)),
		})
	}
	return f
}

func (f *fakeSource) Candles(ctx context.Context, key string, interval date.Period, r date.Range) ([]Candle, error) {
	f.calls[key]++
	f.ranges[key] = append(f.ranges[key], r)
	if errs := f.errs[key]; len(errs) > 0 {
		err := errs[0]
		f.errs[key] = errs[1:]
		if err != nil {
			return nil, err
		}
	}
	res := []Candle{}
	for _, c := range f.series[key] {
		if r.Contains(c.Date) {
			res = append(res, c)
		}
	}
	return res, nil
}

// rateLimitError mimics a provider error caused by a rate limit.
type rateLimitError struct{}

func (rateLimitError) Error() string        { return "429 too many requests" }
func (rateLimitError) Is(target error) bool { return target == ErrRateLimited }

// noSleep records the requested backoff delays instead of sleeping.
func noSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}
