// Package cache implements a file based cache for remote API responses.
//
// Each entry lives in its own JSON file named after a hash of the request
// signature (url and parameters). Entries expire after a time-to-live; expired
// or corrupted entries are treated as misses and removed from disk.
//
// The cache assumes a single active process: concurrent runs sharing the same
// directory are not coordinated.
package cache

import (
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTTL is the default time-to-live of a cache entry.
const DefaultTTL = time.Hour

const ext = ".json"

// Cache is a directory of cached responses.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// entry is the on-disk format of a cached response.
type entry struct {
	Timestamp float64           `json:"timestamp"` // unix seconds
	URL       string            `json:"url"`
	Params    map[string]string `json:"params"`
	Response  json.RawMessage   `json:"response"`
}

// New returns a cache storing its entries in dir, creating it if needed.
func New(dir string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %q: %w", dir, err)
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the time-to-live of the entries.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Signature returns the deterministic key of a request.
//
// Params are serialized with sorted keys, so the same request always maps to the same key.
func Signature(url string, params map[string]string) string {
	if params == nil {
		params = map[string]string{}
	}
	// encoding/json sorts map keys.
	b, _ := json.Marshal(struct {
		URL    string            `json:"url"`
		Params map[string]string `json:"params"`
	}{url, params})
	return fmt.Sprintf("%x", sha1.Sum(b))
}

func (c *Cache) path(key string) string { return filepath.Join(c.dir, key+ext) }

// Get returns the cached response of a request, if present and fresh.
func (c *Cache) Get(url string, params map[string]string) ([]byte, bool) {
	file := c.path(Signature(url, params))
	e, err := c.read(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Str("file", file).Msg("corrupted cache entry removed")
		c.remove(file)
		return nil, false
	}
	age := c.age(e)
	if age > c.ttl {
		c.remove(file)
		return nil, false
	}
	log.Debug().Str("url", url).Dur("age", age).Msg("cache hit")
	return e.Response, true
}

// Set stores the response of a request. Response must be valid JSON.
func (c *Cache) Set(url string, params map[string]string, response []byte) error {
	if !json.Valid(response) {
		return fmt.Errorf("cannot cache response for %s: not a valid json document", url)
	}
	if params == nil {
		params = map[string]string{}
	}
	e := entry{
		Timestamp: float64(c.now().UnixNano()) / float64(time.Second),
		URL:       url,
		Params:    params,
		Response:  response,
	}
	content, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.path(Signature(url, params)), content, 0644); err != nil {
		return fmt.Errorf("cannot cache response for %s: %w", url, err)
	}
	log.Debug().Str("url", url).Msg("cache set")
	return nil
}

// ClearExpired removes expired and corrupted entries and returns how many were removed.
func (c *Cache) ClearExpired() (int, error) {
	files, err := c.files()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, file := range files {
		e, err := c.read(file)
		if err == nil && c.age(e) <= c.ttl {
			continue
		}
		if err := os.Remove(file); err == nil {
			removed++
		}
	}
	if removed > 0 {
		log.Info().Int("count", removed).Msg("cleaned up expired cache files")
	}
	return removed, nil
}

// ClearAll removes every entry and returns how many were removed.
func (c *Cache) ClearAll() (int, error) {
	files, err := c.files()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, file := range files {
		if err := os.Remove(file); err != nil {
			return removed, fmt.Errorf("cannot remove cache file %q: %w", file, err)
		}
		removed++
	}
	return removed, nil
}

// Stats summarizes the content of the cache.
type Stats struct {
	Dir     string
	TTL     time.Duration
	Total   int
	Valid   int
	Expired int // corrupted entries count as expired
}

// Stats scans the cache directory.
func (c *Cache) Stats() (Stats, error) {
	s := Stats{Dir: c.dir, TTL: c.ttl}
	files, err := c.files()
	if err != nil {
		return s, err
	}
	for _, file := range files {
		s.Total++
		e, err := c.read(file)
		if err != nil || c.age(e) > c.ttl {
			s.Expired++
			continue
		}
		s.Valid++
	}
	return s, nil
}

// files lists the entry files. A missing directory is an empty cache.
func (c *Cache) files() ([]string, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot list cache directory %q: %w", c.dir, err)
	}
	var files []string
	for _, d := range dirEntries {
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			continue
		}
		files = append(files, filepath.Join(c.dir, d.Name()))
	}
	return files, nil
}

func (c *Cache) read(file string) (e entry, err error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(content, &e); err != nil {
		return e, fmt.Errorf("invalid cache entry %q: %w", file, err)
	}
	if e.Response == nil {
		return e, fmt.Errorf("invalid cache entry %q: no response", file)
	}
	return e, nil
}

func (c *Cache) age(e entry) time.Duration {
	stored := time.Unix(0, int64(e.Timestamp*float64(time.Second)))
	return c.now().Sub(stored)
}

func (c *Cache) remove(file string) {
	if err := os.Remove(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("file", file).Msg("cannot remove cache entry")
	}
}
