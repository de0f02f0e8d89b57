package delta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"optionflow/logger"
	"optionflow/models"
)

// Tickers fetches every option ticker for one underlying asset, following
// cursor pagination to completion.
func (c *Client) Tickers(ctx context.Context, underlying string, contractTypes []string) ([]models.Ticker, error) {
	params := url.Values{}
	if len(contractTypes) > 0 {
		params.Set("contract_types", strings.Join(contractTypes, ","))
	}
	if underlying != "" {
		params.Set("underlying_asset_symbols", underlying)
	}

	raw, err := c.FetchAll(ctx, "/v2/tickers", params)
	if err != nil {
		return nil, err
	}

	tickers := make([]models.Ticker, 0, len(raw))
	for _, r := range raw {
		var tk models.Ticker
		if err := json.Unmarshal(r, &tk); err != nil {
			return nil, fmt.Errorf("decode ticker: %w", err)
		}
		tickers = append(tickers, tk)
	}

	log := c.log.WithComponent("delta_client").WithFields(logger.Fields{"underlying": underlying})
	logger.LogDataFlowEntry(log, "delta_api", "normalizer", len(tickers), "tickers")
	return tickers, nil
}

// Candles fetches OHLCV history for one instrument. The endpoint returns
// an already-complete parallel-array payload, so no pagination applies.
// An empty payload means "no data" and is not an error.
func (c *Client) Candles(ctx context.Context, symbol string, resolution string, start, end time.Time) (models.OHLCV, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("resolution", resolution)
	params.Set("start", strconv.FormatInt(start.Unix(), 10))
	params.Set("end", strconv.FormatInt(end.Unix(), 10))

	var out models.OHLCV
	if err := c.fetchOne(ctx, "/v2/history/candles", params, &out); err != nil {
		return models.OHLCV{}, err
	}
	return out, nil
}

// Resolution renders a minute count in the endpoint's resolution notation.
func Resolution(minutes int) string {
	if minutes >= 60 && minutes%60 == 0 {
		return fmt.Sprintf("%dh", minutes/60)
	}
	return fmt.Sprintf("%dm", minutes)
}
