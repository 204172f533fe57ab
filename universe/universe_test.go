package universe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/perryizgr8/algo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entries = []Entry{
	{Company: "Reliance Industries Ltd.", Industry: "Oil Gas & Consumable Fuels", Symbol: "RELIANCE", Series: "EQ", ISIN: "INE002A01018", Key: "NSE_EQ|INE002A01018"},
	{Company: "Tata Consultancy Services Ltd.", Industry: "Information Technology", Symbol: "TCS", Series: "EQ", ISIN: "INE467B01029", Key: "NSE_EQ|INE467B01029"},
}

func TestSaveLoad(t *testing.T) {
	for _, name := range []string{"universe.xlsx", "universe.csv"} {
		t.Run(name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(file, entries))

			got, err := Load(file)
			require.NoError(t, err)
			assert.Equal(t, entries, got)

			u, err := Open(file)
			require.NoError(t, err)
			in, ok := u.Lookup("TCS")
			require.True(t, ok)
			assert.Equal(t, "NSE_EQ|INE467B01029", in.Key)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.xlsx"))
	assert.Error(t, err)

	file := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(file, []byte("Name,Key\nA,B\n"), 0644))
	_, err = Load(file)
	assert.Error(t, err, "no Symbol column")

	file = filepath.Join(dir, "nokey.csv")
	require.NoError(t, os.WriteFile(file, []byte("Symbol\nA\n"), 0644))
	_, err = Open(file)
	assert.Error(t, err, "instruments need a key")
}

func TestMatchAndDiff(t *testing.T) {
	constituents := []Entry{
		{Company: "Reliance Industries Ltd.", Symbol: "RELIANCE", Series: "EQ", ISIN: "INE002A01018"},
		{Company: "Gone Ltd.", Symbol: "GONE", Series: "EQ"},
	}
	instruments := []algo.Instrument{
		{Symbol: "RELIANCE", Key: "NSE_EQ|INE002A01018"},
		{Symbol: "INFY", Key: "NSE_EQ|INE009A01021"},
	}
	matched, unmatched := Match(constituents, instruments)
	assert.Equal(t, []string{"GONE"}, unmatched)
	require.Len(t, matched, 1)
	assert.Equal(t, "NSE_EQ|INE002A01018", matched[0].Key)

	added, removed := Diff(entries, matched)
	assert.Empty(t, added)
	assert.Equal(t, []string{"TCS"}, removed)
}

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "ind_nifty200list.xlsx")
	now := time.Date(2025, 1, 31, 14, 5, 9, 0, time.UTC)

	backup, err := Backup(file, filepath.Join(dir, "backups"), now)
	require.NoError(t, err)
	assert.Empty(t, backup, "nothing to backup")

	require.NoError(t, os.WriteFile(file, []byte("content"), 0644))
	backup, err = Backup(file, filepath.Join(dir, "backups"), now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backups", "ind_nifty200list_backup_20250131_140509.xlsx"), backup)
	content, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "content", string(content))
}

type fakeInstruments []algo.Instrument

func (f fakeInstruments) FetchInstruments(context.Context, string) ([]algo.Instrument, error) {
	return f, nil
}

const constituentsCSV = "Company Name,Industry,Symbol,Series,ISIN Code\n" +
	"Reliance Industries Ltd.,Oil Gas & Consumable Fuels,RELIANCE,EQ,INE002A01018\n" +
	"Tata Consultancy Services Ltd.,Information Technology,TCS,EQ,INE467B01029\n" +
	"Infosys Ltd.,Information Technology,INFY,EQ,INE009A01021\n"

func newUpdater(t *testing.T, instruments fakeInstruments) (*Updater, string) {
	t.Helper()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(down.Close)
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(constituentsCSV))
	}))
	t.Cleanup(up.Close)
	dir := t.TempDir()
	u := &Updater{
		HTTP:            up.Client(),
		Instruments:     instruments,
		ConstituentURLs: []string{down.URL, up.URL},
		BackupDir:       filepath.Join(dir, "backups"),
		now:             func() time.Time { return time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC) },
	}
	return u, filepath.Join(dir, "universe.xlsx")
}

func TestUpdate(t *testing.T) {
	u, file := newUpdater(t, fakeInstruments{
		{Symbol: "RELIANCE", Key: "NSE_EQ|INE002A01018"},
		{Symbol: "TCS", Key: "NSE_EQ|INE467B01029"},
		{Symbol: "INFY", Key: "NSE_EQ|INE009A01021"},
	})
	require.NoError(t, Save(file, entries))

	res, err := u.Update(context.Background(), file, UpdateOptions{})
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Equal(t, 3, res.Constituents)
	assert.InDelta(t, 1.0, res.Coverage, 1e-9)
	assert.Equal(t, []string{"INFY"}, res.Added)
	assert.Empty(t, res.Removed)
	assert.FileExists(t, res.Backup)

	got, err := Load(file)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestUpdateLowCoverage(t *testing.T) {
	u, file := newUpdater(t, fakeInstruments{{Symbol: "RELIANCE", Key: "NSE_EQ|INE002A01018"}})

	res, err := u.Update(context.Background(), file, UpdateOptions{})
	assert.True(t, errors.Is(err, ErrLowCoverage))
	assert.False(t, res.Written)
	assert.NoFileExists(t, file)

	res, err = u.Update(context.Background(), file, UpdateOptions{Force: true, DryRun: true})
	require.NoError(t, err)
	assert.False(t, res.Written, "dry run")
	assert.NoFileExists(t, file)

	res, err = u.Update(context.Background(), file, UpdateOptions{Force: true})
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Empty(t, res.Backup, "no previous file")
}
