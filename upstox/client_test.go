package upstox

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/perryizgr8/algo"
	"github.com/perryizgr8/algo/cache"
	"github.com/perryizgr8/algo/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const candlesResponse = `{
	"status": "success",
	"data": {
		"candles": [
			["2025-01-31T00:00:00+05:30", 1250.5, 1280, 1230.1, 1265.35, 5234567, 0],
			["2024-12-31T00:00:00+05:30", 1200, 1260, 1190, 1210.4, 4234567, 0]
		]
	}
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	c := NewClient("secret", WithBaseURL(srv.URL), WithRateLimit(1000))
	return c, &calls
}

var window = date.NewRange(date.New(2024, 12, 1), date.New(2025, 1, 31))

func TestCandles(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/historical-candle/NSE_EQ|INE002A01018/month/2025-01-31/2024-12-01", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "2.0", r.Header.Get("Api-Version"))
		w.Write([]byte(candlesResponse))
	})

	candles, err := c.Candles(context.Background(), "NSE_EQ|INE002A01018", date.Monthly, window)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, date.New(2024, 12, 31), candles[0].Date, "candles are sorted")
	assert.True(t, candles[0].Close.Equal(algo.M(1210.4)))
	assert.True(t, candles[1].Close.Equal(algo.M(1265.35)))
	assert.Equal(t, int64(5234567), candles[1].Volume)
	assert.Equal(t, 1, *calls)
}

func TestCandlesCache(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(candlesResponse))
	})
	cc, err := cache.New(t.TempDir(), time.Hour)
	require.NoError(t, err)
	WithCache(cc)(c)

	for range 3 {
		candles, err := c.Candles(context.Background(), "KEY", date.Monthly, window)
		require.NoError(t, err)
		assert.Len(t, candles, 2)
	}
	assert.Equal(t, 1, *calls, "responses are served from the cache")

	_, err = c.Candles(context.Background(), "KEY", date.Daily, window)
	require.NoError(t, err)
	assert.Equal(t, 2, *calls, "another interval is another request")
}

func TestCandlesCacheUnwritable(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(candlesResponse))
	})
	dir := filepath.Join(t.TempDir(), "cache")
	cc, err := cache.New(dir, time.Hour)
	require.NoError(t, err)
	WithCache(cc)(c)
	require.NoError(t, os.RemoveAll(dir))

	candles, err := c.Candles(context.Background(), "KEY", date.Monthly, window)
	require.NoError(t, err, "the cache is optional")
	assert.Len(t, candles, 2)
	assert.Equal(t, 1, *calls)
}

func TestCandlesEmpty(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"candles":[]}}`))
	})
	candles, err := c.Candles(context.Background(), "KEY", date.Daily, window)
	require.NoError(t, err)
	assert.Empty(t, candles)
}

func TestCandlesErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		rateLimit bool
	}{
		{"rate limit", http.StatusTooManyRequests, `{"status":"error"}`, true},
		{"unauthorized", http.StatusUnauthorized, `{"status":"error"}`, false},
		{"error status", http.StatusOK, `{"status":"error","errors":[]}`, false},
		{"malformed", http.StatusOK, `<html>`, false},
		{"bad candle", http.StatusOK, `{"status":"success","data":{"candles":[["nope"]]}}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.Candles(context.Background(), "KEY", date.Daily, window)
			require.Error(t, err)
			assert.Equal(t, tt.rateLimit, errors.Is(err, algo.ErrRateLimited))
		})
	}
}

func TestBreakerOpens(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	for range 10 {
		_, err := c.Candles(context.Background(), "KEY", date.Daily, window)
		assert.Error(t, err)
	}
	assert.Equal(t, 5, *calls, "the breaker opens after 5 consecutive failures")
}

func TestParseInstruments(t *testing.T) {
	master := strings.Join([]string{
		"instrument_key,exchange_token,tradingsymbol,name,last_price,expiry,strike,tick_size,lot_size,instrument_type,option_type,exchange",
		"NSE_EQ|INE002A01018,2885,RELIANCE,RELIANCE INDUSTRIES LTD,1265.35,,,0.05,1,EQ,,NSE",
		"NSE_EQ|INE467B01029,11536,TCS,TATA CONSULTANCY SERV LT,4100.1,,,0.05,1,EQ,,NSE",
		"BSE_EQ|INE002A01018,500325,RELIANCE,RELIANCE INDUSTRIES LTD,1265.35,,,0.05,1,EQ,,BSE",
		"NSE_FO|12345,12345,RELIANCE25JANFUT,RELIANCE,1270,2025-01-30,,0.05,250,FUTSTK,,NSE",
	}, "\n")

	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	w.Write([]byte(master))
	w.Close()

	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(gz.Bytes())
	})
	list, err := c.FetchInstruments(context.Background(), c.baseURL+"/complete.csv.gz")
	require.NoError(t, err)
	assert.Equal(t, []algo.Instrument{
		{Symbol: "RELIANCE", Key: "NSE_EQ|INE002A01018", Name: "RELIANCE INDUSTRIES LTD"},
		{Symbol: "TCS", Key: "NSE_EQ|INE467B01029", Name: "TATA CONSULTANCY SERV LT"},
	}, list)

	_, err = ParseInstruments(strings.NewReader("a,b\n1,2\n"))
	assert.Error(t, err, "missing columns")
}
