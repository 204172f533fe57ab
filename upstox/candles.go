package upstox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"

	"github.com/PaesslerAG/jsonpath"
	"github.com/perryizgr8/algo"
	"github.com/perryizgr8/algo/date"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

/*
	{
	    "status": "success",
	    "data": {
	        "candles": [
	            ["2025-01-31T00:00:00+05:30", 1250.5, 1280, 1230.1, 1265.35, 5234567, 0],
	            ...
	        ]
	    }
	}
*/

// candlesURL returns the address of a historical candle request.
func (c *Client) candlesURL(key string, interval date.Period, r date.Range) string {
	return fmt.Sprintf("%s/historical-candle/%s/%s/%s/%s", c.baseURL, url.PathEscape(key), interval, r.To, r.From)
}

// Candles returns the candles of an instrument at the given interval, over r,
// in chronological order.
//
// Responses are cached. A successful response without candles returns an empty slice.
func (c *Client) Candles(ctx context.Context, key string, interval date.Period, r date.Range) ([]algo.Candle, error) {
	addr := c.candlesURL(key, interval, r)
	params := map[string]string{
		"instkey":    key,
		"start_date": r.From.String(),
		"end_date":   r.To.String(),
		"interval":   interval.String(),
	}
	if c.cache != nil {
		if body, ok := c.cache.Get(addr, params); ok {
			return parseCandles(body)
		}
	}
	body, err := c.get(ctx, addr, "application/json")
	if err != nil {
		return nil, err
	}
	candles, err := parseCandles(body)
	if err != nil {
		return nil, fmt.Errorf("invalid response for %s: %w", key, err)
	}
	if c.cache != nil {
		if err := c.cache.Set(addr, params, body); err != nil {
			log.Warn().Err(err).Str("instrument_key", key).Msg("cannot cache candles")
		}
	}
	return candles, nil
}

// parseCandles decodes a historical candle response.
func parseCandles(body []byte) ([]algo.Candle, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	status, err := jsonpath.Get("$.status", doc)
	if err != nil {
		return nil, fmt.Errorf("no status: %w", err)
	}
	if status != "success" {
		return nil, fmt.Errorf("status %v", status)
	}
	raw, err := jsonpath.Get("$.data.candles", doc)
	if err != nil {
		// a success without candles is an empty series.
		return []algo.Candle{}, nil
	}
	rows, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("candles is a %T, not a list", raw)
	}
	candles := make([]algo.Candle, 0, len(rows))
	for i, row := range rows {
		c, err := parseCandle(row)
		if err != nil {
			return nil, fmt.Errorf("candle #%d: %w", i, err)
		}
		candles = append(candles, c)
	}
	slices.SortFunc(candles, func(a, b algo.Candle) int { return a.Date.Time().Compare(b.Date.Time()) })
	return candles, nil
}

// parseCandle decodes [timestamp, open, high, low, close, volume, open interest].
func parseCandle(row any) (c algo.Candle, err error) {
	fields, ok := row.([]any)
	if !ok || len(fields) < 5 {
		return c, fmt.Errorf("unexpected candle %v", row)
	}
	ts, ok := fields[0].(string)
	if !ok {
		return c, fmt.Errorf("unexpected timestamp %v", fields[0])
	}
	if c.Date, err = date.ParseTimestamp(ts); err != nil {
		return c, err
	}
	prices := make([]algo.Money, 4)
	for i := range prices {
		v, ok := fields[i+1].(float64)
		if !ok {
			return c, fmt.Errorf("unexpected price %v", fields[i+1])
		}
		prices[i] = algo.M(decimal.NewFromFloat(v))
	}
	c.Open, c.High, c.Low, c.Close = prices[0], prices[1], prices[2], prices[3]
	if len(fields) > 5 {
		if v, ok := fields[5].(float64); ok {
			c.Volume = int64(v)
		}
	}
	return c, nil
}
