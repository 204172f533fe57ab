package universe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/perryizgr8/algo"
	"github.com/rs/zerolog/log"
)

// ConstituentURLs are the published Nifty 200 constituent lists, tried in order.
var ConstituentURLs = []string{
	"https://nsearchives.nseindia.com/content/indices/ind_nifty200list.csv",
	"https://www1.nseindia.com/content/indices/ind_nifty200list.csv",
}

// DefaultMinCoverage is the ratio of constituents that must be matched to an instrument.
const DefaultMinCoverage = 0.9

// FetchConstituents downloads the index constituents from the first working address.
func FetchConstituents(ctx context.Context, client *http.Client, urls ...string) ([]Entry, error) {
	if len(urls) == 0 {
		urls = ConstituentURLs
	}
	var errs []error
	for _, addr := range urls {
		entries, err := fetchConstituents(ctx, client, addr)
		if err == nil {
			log.Info().Str("url", addr).Int("constituents", len(entries)).Msg("constituents fetched")
			return entries, nil
		}
		log.Warn().Err(err).Str("url", addr).Msg("cannot fetch constituents")
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("cannot fetch constituents: %w", errors.Join(errs...))
}

func fetchConstituents(ctx context.Context, client *http.Client, addr string) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	// the archive rejects requests without a browser like identity.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Accept", "text/csv,*/*")
	req.Header.Set("Referer", "https://www.nseindia.com/")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("cannot http GET %v: %v", addr, resp.Status)
	}
	rows, err := readCSV(resp.Body)
	if err != nil {
		return nil, err
	}
	return decode(rows)
}

// Match sets the instrument key of every constituent whose symbol is found
// among instruments. It returns the matched entries and the unmatched symbols.
func Match(constituents []Entry, instruments []algo.Instrument) (matched []Entry, unmatched []string) {
	bySymbol := make(map[string]algo.Instrument, len(instruments))
	for _, in := range instruments {
		if _, exists := bySymbol[in.Symbol]; !exists {
			bySymbol[in.Symbol] = in
		}
	}
	for _, e := range constituents {
		in, ok := bySymbol[e.Symbol]
		if !ok {
			unmatched = append(unmatched, e.Symbol)
			continue
		}
		e.Key = in.Key
		if e.ISIN == "" {
			e.ISIN = in.ISIN
		}
		if e.Company == "" {
			e.Company = in.Name
		}
		e.Series = "EQ"
		matched = append(matched, e)
	}
	return matched, unmatched
}

// Diff returns the symbols of next missing in prev (added) and of prev missing in next (removed).
func Diff(prev, next []Entry) (added, removed []string) {
	in := func(list []Entry, symbol string) bool {
		return slices.ContainsFunc(list, func(e Entry) bool { return e.Symbol == symbol })
	}
	for _, e := range next {
		if !in(prev, e.Symbol) {
			added = append(added, e.Symbol)
		}
	}
	for _, e := range prev {
		if !in(next, e.Symbol) {
			removed = append(removed, e.Symbol)
		}
	}
	return added, removed
}

// Backup copies file into dir as <name>_backup_<YYYYmmdd_HHMMSS><ext>.
// It returns "" without error if file does not exist.
func Backup(file, dir string, now time.Time) (string, error) {
	content, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cannot backup %q: %w", file, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("cannot create backup directory %q: %w", dir, err)
	}
	ext := filepath.Ext(file)
	name := strings.TrimSuffix(filepath.Base(file), ext)
	backup := filepath.Join(dir, fmt.Sprintf("%s_backup_%s%s", name, now.Format("20060102_150405"), ext))
	if err := os.WriteFile(backup, content, 0644); err != nil {
		return "", fmt.Errorf("cannot write backup %q: %w", backup, err)
	}
	return backup, nil
}

// InstrumentSource lists the tradable instruments.
type InstrumentSource interface {
	FetchInstruments(ctx context.Context, addr string) ([]algo.Instrument, error)
}

// Updater rebuilds the universe file from the published constituents and the
// broker instrument master.
type Updater struct {
	HTTP            *http.Client
	Instruments     InstrumentSource
	ConstituentURLs []string // ConstituentURLs if empty
	MinCoverage     float64  // DefaultMinCoverage if zero
	BackupDir       string

	now func() time.Time
}

// UpdateOptions tunes Update.
type UpdateOptions struct {
	Force  bool // write even if the coverage is too low
	DryRun bool // compute without writing anything
}

// UpdateResult describes an update.
type UpdateResult struct {
	Constituents int
	Matched      []Entry
	Unmatched    []string
	Coverage     float64
	Added        []string
	Removed      []string
	Backup       string // backup file, if any
	Written      bool
}

// ErrLowCoverage reports that too few constituents could be matched.
var ErrLowCoverage = errors.New("low coverage")

// Update fetches, matches and writes the universe file.
func (u *Updater) Update(ctx context.Context, file string, opts UpdateOptions) (*UpdateResult, error) {
	client := u.HTTP
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	constituents, err := FetchConstituents(ctx, client, u.ConstituentURLs...)
	if err != nil {
		return nil, err
	}
	instruments, err := u.Instruments.FetchInstruments(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("cannot fetch instruments: %w", err)
	}
	res := &UpdateResult{Constituents: len(constituents)}
	res.Matched, res.Unmatched = Match(constituents, instruments)
	if len(constituents) > 0 {
		res.Coverage = float64(len(res.Matched)) / float64(len(constituents))
	}
	if prev, err := Load(file); err == nil {
		res.Added, res.Removed = Diff(prev, res.Matched)
	} else {
		log.Debug().Err(err).Msg("no previous universe to compare with")
	}

	minCoverage := u.MinCoverage
	if minCoverage == 0 {
		minCoverage = DefaultMinCoverage
	}
	if res.Coverage < minCoverage && !opts.Force {
		return res, fmt.Errorf("%w: %.1f%% of the constituents matched, %.1f%% required", ErrLowCoverage, 100*res.Coverage, 100*minCoverage)
	}
	if opts.DryRun {
		return res, nil
	}

	now := time.Now
	if u.now != nil {
		now = u.now
	}
	backupDir := u.BackupDir
	if backupDir == "" {
		backupDir = filepath.Join(filepath.Dir(file), "backups")
	}
	if res.Backup, err = Backup(file, backupDir, now()); err != nil {
		return res, err
	}
	if err := Save(file, res.Matched); err != nil {
		return res, err
	}
	res.Written = true
	log.Info().Str("file", file).Int("instruments", len(res.Matched)).Msg("universe updated")
	return res, nil
}
