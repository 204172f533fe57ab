package algo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ledgerHeader is the header of a ledger file.
var ledgerHeader = []string{"Symbol", "Units"}

// DecodeLedger reads a ledger from CSV records "Symbol,Units".
//
// The CASH row holds the cash balance as a decimal amount. Other rows hold
// whole, non negative unit counts. Duplicate symbols are rejected.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	ledger := NewLedger(Money{})
	if len(records) == 0 {
		return ledger, nil
	}
	symbolCol, unitsCol, err := columns(records[0])
	if err != nil {
		return nil, err
	}
	hasCash := false
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) <= max(symbolCol, unitsCol) {
			if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
				continue
			}
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, len(records[0]), len(rec))
		}
		symbol := strings.TrimSpace(rec[symbolCol])
		value := strings.TrimSpace(rec[unitsCol])
		if symbol == "" {
			continue
		}
		if strings.EqualFold(symbol, CashSymbol) {
			if hasCash {
				return nil, fmt.Errorf("line %d: duplicate %s row", line, CashSymbol)
			}
			cash, err := ParseMoney(value)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			ledger.cash, hasCash = cash, true
			continue
		}
		if ledger.index(symbol) >= 0 {
			return nil, fmt.Errorf("line %d: duplicate symbol %q", line, symbol)
		}
		units, err := ParseUnits(value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %q: %w", line, symbol, err)
		}
		ledger.stocks = append(ledger.stocks, Stock{Symbol: symbol, Units: units})
	}
	return ledger, nil
}

// columns locates the Symbol and Units columns in a header.
func columns(header []string) (symbol, units int, err error) {
	symbol, units = -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "symbol":
			symbol = i
		case "units":
			units = i
		}
	}
	if symbol < 0 || units < 0 {
		return 0, 0, fmt.Errorf("invalid header %q: want %q", strings.Join(header, ","), strings.Join(ledgerHeader, ","))
	}
	return symbol, units, nil
}

// EncodeLedger writes the ledger as CSV records, stocks in ledger order then the CASH row.
func EncodeLedger(w io.Writer, l *Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader); err != nil {
		return err
	}
	for _, pos := range l.Positions() {
		var rec []string
		switch p := pos.(type) {
		case Stock:
			rec = []string{p.Symbol, p.Units.String()}
		case CashBalance:
			rec = []string{CashSymbol, p.Amount.Decimal().StringFixed(2)}
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write position: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadLedger reads the ledger file. A missing file is created empty.
func LoadLedger(file string) (*Ledger, error) {
	f, err := os.Open(file)
	if errors.Is(err, fs.ErrNotExist) {
		l := NewLedger(Money{})
		if err := SaveLedger(file, l); err != nil {
			return nil, err
		}
		log.Info().Str("file", file).Msg("created empty portfolio")
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open portfolio: %w", err)
	}
	defer f.Close()
	l, err := DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("cannot decode portfolio %q: %w", file, err)
	}
	return l, nil
}

// SaveLedger overwrites the ledger file atomically: the content is written to a
// temporary file in the same directory, then renamed.
func SaveLedger(file string, l *Ledger) error {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("persist error: cannot create directory %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(file)+".*.tmp")
	if err != nil {
		return fmt.Errorf("persist error: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after rename
	if err := EncodeLedger(tmp, l); err != nil {
		tmp.Close()
		return fmt.Errorf("persist error: cannot encode portfolio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persist error: %w", err)
	}
	if err := os.Rename(tmp.Name(), file); err != nil {
		return fmt.Errorf("persist error: cannot replace %q: %w", file, err)
	}
	log.Debug().Str("file", file).Int("stocks", len(l.stocks)).Msg("portfolio saved")
	return nil
}
