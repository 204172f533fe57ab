// Package universe loads, saves and updates the instrument universe file.
//
// The universe is a table with the columns "Company Name", "Industry",
// "Symbol", "Series", "ISIN Code" and "instrument_key", stored as a spreadsheet
// (.xlsx) or as CSV.
package universe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/perryizgr8/algo"
	"github.com/xuri/excelize/v2"
)

// Columns of a universe file.
var Columns = []string{"Company Name", "Industry", "Symbol", "Series", "ISIN Code", "instrument_key"}

// Entry is a row of the universe file.
type Entry struct {
	Company  string
	Industry string
	Symbol   string
	Series   string
	ISIN     string
	Key      string // instrument key, empty until matched
}

func (e Entry) record() []string {
	return []string{e.Company, e.Industry, e.Symbol, e.Series, e.ISIN, e.Key}
}

// Instrument converts the entry.
func (e Entry) Instrument() algo.Instrument {
	return algo.Instrument{Symbol: e.Symbol, Key: e.Key, Name: e.Company, ISIN: e.ISIN}
}

// Open loads a universe file into an algo.Universe.
func Open(file string) (*algo.Universe, error) {
	entries, err := Load(file)
	if err != nil {
		return nil, err
	}
	instruments := make([]algo.Instrument, len(entries))
	for i, e := range entries {
		instruments[i] = e.Instrument()
	}
	u, err := algo.NewUniverse(instruments)
	if err != nil {
		return nil, fmt.Errorf("invalid universe %q: %w", file, err)
	}
	return u, nil
}

// Load reads a universe file, .xlsx or .csv.
func Load(file string) ([]Entry, error) {
	var rows [][]string
	switch strings.ToLower(filepath.Ext(file)) {
	case ".xlsx":
		f, err := excelize.OpenFile(file)
		if err != nil {
			return nil, fmt.Errorf("cannot open universe: %w", err)
		}
		defer f.Close()
		rows, err = f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("cannot read universe %q: %w", file, err)
		}
	default:
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("cannot open universe: %w", err)
		}
		defer f.Close()
		rows, err = readCSV(f)
		if err != nil {
			return nil, fmt.Errorf("cannot read universe %q: %w", file, err)
		}
	}
	entries, err := decode(rows)
	if err != nil {
		return nil, fmt.Errorf("invalid universe %q: %w", file, err)
	}
	return entries, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

// decode maps rows to entries by header name. Symbol is required; other columns are optional.
func decode(rows [][]string) ([]Entry, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	col := map[string]int{}
	for i, h := range rows[0] {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := col["Symbol"]; !ok {
		return nil, fmt.Errorf("no %q column", "Symbol")
	}
	field := func(row []string, name string) string {
		if i, ok := col[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	var entries []Entry
	for _, row := range rows[1:] {
		e := Entry{
			Company:  field(row, "Company Name"),
			Industry: field(row, "Industry"),
			Symbol:   field(row, "Symbol"),
			Series:   field(row, "Series"),
			ISIN:     field(row, "ISIN Code"),
			Key:      field(row, "instrument_key"),
		}
		if e.Symbol == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Save writes entries to file, as a spreadsheet or as CSV depending on its extension.
func Save(file string, entries []Entry) error {
	if strings.ToLower(filepath.Ext(file)) != ".xlsx" {
		f, err := os.Create(file)
		if err != nil {
			return err
		}
		cw := csv.NewWriter(f)
		cw.Write(Columns)
		for _, e := range entries {
			cw.Write(e.record())
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	write := func(row int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		list := make([]any, len(values))
		for i, v := range values {
			list[i] = v
		}
		return f.SetSheetRow(sheet, cell, &list)
	}
	if err := write(1, Columns); err != nil {
		return err
	}
	for i, e := range entries {
		if err := write(i+2, e.record()); err != nil {
			return err
		}
	}
	if err := f.SaveAs(file); err != nil {
		return fmt.Errorf("cannot save universe %q: %w", file, err)
	}
	return nil
}
