package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const candlesURL = "https://api-v2.upstox.com/historical-candle/NSE_EQ|INE002A01018/month/2025-01-31/2024-01-31"

// newTestCache returns a cache whose clock can be moved with the returned pointer.
func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *time.Time) {
	t.Helper()
	c, err := New(filepath.Join(t.TempDir(), "cache"), ttl)
	require.NoError(t, err)
	now := time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestSignature(t *testing.T) {
	a := Signature(candlesURL, map[string]string{"interval": "month", "instkey": "X"})
	b := Signature(candlesURL, map[string]string{"instkey": "X", "interval": "month"})
	assert.Equal(t, a, b, "parameter order must not change the signature")
	assert.Len(t, a, 40)

	assert.NotEqual(t, a, Signature(candlesURL, map[string]string{"instkey": "Y", "interval": "month"}))
	assert.Equal(t, Signature(candlesURL, nil), Signature(candlesURL, map[string]string{}))
}

func TestGetSet(t *testing.T) {
	c, now := newTestCache(t, time.Hour)
	params := map[string]string{"interval": "month"}

	_, ok := c.Get(candlesURL, params)
	assert.False(t, ok, "empty cache must miss")

	require.NoError(t, c.Set(candlesURL, params, []byte(`{"status":"success"}`)))

	got, ok := c.Get(candlesURL, params)
	require.True(t, ok)
	assert.JSONEq(t, `{"status":"success"}`, string(got))

	// other params, other entry.
	_, ok = c.Get(candlesURL, map[string]string{"interval": "day"})
	assert.False(t, ok)

	// expiry removes the file.
	*now = now.Add(time.Hour + time.Second)
	_, ok = c.Get(candlesURL, params)
	assert.False(t, ok, "expired entry must miss")
	_, err := os.Stat(c.path(Signature(candlesURL, params)))
	assert.True(t, os.IsNotExist(err), "expired entry must be removed")
}

func TestSetRejectsInvalidJSON(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	assert.Error(t, c.Set(candlesURL, nil, []byte("<html>")))
}

func TestCorruptedEntryIsPurged(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	file := c.path(Signature(candlesURL, nil))
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0644))

	_, ok := c.Get(candlesURL, nil)
	assert.False(t, ok)
	_, err := os.Stat(file)
	assert.True(t, os.IsNotExist(err), "corrupted entry must be removed")
}

func TestStatsAndClear(t *testing.T) {
	c, now := newTestCache(t, time.Hour)

	require.NoError(t, c.Set(candlesURL, map[string]string{"n": "1"}, []byte(`1`)))
	*now = now.Add(50 * time.Minute)
	require.NoError(t, c.Set(candlesURL, map[string]string{"n": "2"}, []byte(`2`)))
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), "broken.json"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), "README.txt"), []byte("ignored"), 0644))

	*now = now.Add(20 * time.Minute) // first entry is 70 minutes old now.

	s, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{Dir: c.Dir(), TTL: time.Hour, Total: 3, Valid: 1, Expired: 2}, s)

	removed, err := c.ClearExpired()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok := c.Get(candlesURL, map[string]string{"n": "2"})
	assert.True(t, ok, "fresh entry must survive ClearExpired")

	removed, err = c.ClearAll()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	s, err = c.Stats()
	require.NoError(t, err)
	assert.Zero(t, s.Total)
	_, err = os.Stat(filepath.Join(c.Dir(), "README.txt"))
	assert.NoError(t, err, "non cache files are left alone")
}

func TestNewDefaultsTTL(t *testing.T) {
	c, err := New(t.TempDir(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, c.TTL())
}
