package upstox

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/perryizgr8/algo"
)

// InstrumentsURL is the instrument master file of every exchange.
const InstrumentsURL = "https://assets.upstox.com/market-quote/instruments/exchange/complete.csv.gz"

// FetchInstruments downloads the instrument master and returns the NSE equities.
func (c *Client) FetchInstruments(ctx context.Context, addr string) ([]algo.Instrument, error) {
	if addr == "" {
		addr = InstrumentsURL
	}
	body, err := c.get(ctx, addr, "*/*")
	if err != nil {
		return nil, err
	}
	var r io.Reader = bytes.NewReader(body)
	// the master is gzipped, unless a transport already inflated it.
	if len(body) > 2 && body[0] == 0x1f && body[1] == 0x8b {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("cannot inflate instrument master: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return ParseInstruments(r)
}

// ParseInstruments decodes an instrument master CSV, keeping NSE equities only.
func ParseInstruments(r io.Reader) ([]algo.Instrument, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read instrument master header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, name := range []string{"instrument_key", "tradingsymbol", "name", "instrument_type", "exchange"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("instrument master has no %q column", name)
		}
	}
	field := func(rec []string, name string) string {
		if i, ok := col[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	var res []algo.Instrument
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read instrument master: %w", err)
		}
		exchange := field(rec, "exchange")
		if exchange != "NSE" && exchange != "NSE_EQ" || field(rec, "instrument_type") != "EQ" || field(rec, "name") == "" {
			continue
		}
		res = append(res, algo.Instrument{
			Symbol: field(rec, "tradingsymbol"),
			Key:    field(rec, "instrument_key"),
			Name:   field(rec, "name"),
			ISIN:   field(rec, "isin"),
		})
	}
	return res, nil
}
