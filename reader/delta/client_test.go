package delta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appconfig "optionflow/config"
)

// testClient builds a client against the given test server with a high
// rate limit so tests do not throttle.
func testClient(t *testing.T, serverURL string, pageSize int) *Client {
	t.Helper()
	c, err := NewClient(appconfig.DeltaSourceConfig{
		BaseURL:   serverURL,
		PageSize:  pageSize,
		Timeout:   time.Second,
		RateLimit: appconfig.RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 100},
	}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func listPage(n int, after string) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"symbol":"S%d"}`, i)
	}
	meta := ""
	if after != "" {
		meta = fmt.Sprintf(`,"meta":{"after":"%s"}`, after)
	}
	return fmt.Sprintf(`{"success":true,"result":[%s]%s}`, strings.Join(items, ","), meta)
}

func TestFetchAllFollowsCursor(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.RawQuery)
		if r.URL.Query().Get("page_size") != "1000" {
			t.Errorf("unexpected page_size: %s", r.URL.Query().Get("page_size"))
		}
		switch r.URL.Query().Get("after") {
		case "":
			fmt.Fprint(w, listPage(1000, "cursor-1"))
		case "cursor-1":
			fmt.Fprint(w, listPage(1000, "cursor-2"))
		case "cursor-2":
			// Final page still (incorrectly) echoes a cursor; the short
			// page must terminate the loop regardless.
			fmt.Fprint(w, listPage(340, "cursor-3"))
		default:
			t.Errorf("unexpected cursor: %s", r.URL.Query().Get("after"))
		}
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 1000)
	out, err := c.FetchAll(context.Background(), "/v2/tickers", nil)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(out) != 2340 {
		t.Fatalf("expected 2340 records, got %d", len(out))
	}
	if len(requests) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(requests))
	}
}

func TestFetchAllStopsWithoutCursor(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// Full page but no meta.after: exhaustion.
		fmt.Fprint(w, listPage(2, ""))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 2)
	out, err := c.FetchAll(context.Background(), "/v2/products", nil)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(out) != 2 || calls != 1 {
		t.Fatalf("expected one full page, got %d records in %d calls", len(out), calls)
	}
}

func TestFetchAllEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"result":[]}`)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 10)
	out, err := c.FetchAll(context.Background(), "/v2/tickers", nil)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty result, got %d", len(out))
	}
}

func TestGetHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, strings.Repeat("x", 1000))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 10)
	_, err := c.FetchAll(context.Background(), "/v2/tickers", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Errorf("unexpected status: %d", apiErr.Status)
	}
	if apiErr.Path != "/v2/tickers" {
		t.Errorf("unexpected path: %s", apiErr.Path)
	}
	if len(apiErr.Detail) > maxErrorDetailLen+3 {
		t.Errorf("detail not truncated: %d chars", len(apiErr.Detail))
	}
}

func TestGetApplicationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"error":{"code":"invalid_contract_type"}}`)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 10)
	_, err := c.Tickers(context.Background(), "BTC", []string{"call_options"})
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Status != http.StatusOK {
		t.Errorf("unexpected status: %d", apiErr.Status)
	}
	if apiErr.Detail != "invalid_contract_type" {
		t.Errorf("unexpected detail: %s", apiErr.Detail)
	}
}

func TestGetStringError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"error":"rate limit exceeded"}`)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 10)
	_, err := c.FetchAll(context.Background(), "/v2/tickers", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Detail != "rate limit exceeded" {
		t.Errorf("unexpected detail: %s", apiErr.Detail)
	}
}

func TestTickersDecodesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("contract_types"); got != "call_options,put_options" {
			t.Errorf("unexpected contract_types: %s", got)
		}
		if got := r.URL.Query().Get("underlying_asset_symbols"); got != "BTC" {
			t.Errorf("unexpected underlying: %s", got)
		}
		fmt.Fprint(w, `{"success":true,"result":[{"symbol":"C-BTC-95200-200225","product_id":7,"mark_price":"123.5","oi":"10","quotes":{"best_bid":"120","bid_iv":"0.6"},"greeks":{"delta":"0.52"}}]}`)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 100)
	tickers, err := c.Tickers(context.Background(), "BTC", []string{"call_options", "put_options"})
	if err != nil {
		t.Fatalf("Tickers: %v", err)
	}
	if len(tickers) != 1 {
		t.Fatalf("expected 1 ticker, got %d", len(tickers))
	}
	tk := tickers[0]
	if tk.Symbol != "C-BTC-95200-200225" || tk.ProductID != 7 {
		t.Errorf("unexpected identity: %+v", tk)
	}
	if !tk.MarkPrice.Valid || tk.MarkPrice.Float64 != 123.5 {
		t.Errorf("mark price not decoded: %+v", tk.MarkPrice)
	}
	if !tk.Quotes.BestBid.Valid || tk.Quotes.BestBid.Float64 != 120 {
		t.Errorf("best bid not decoded: %+v", tk.Quotes.BestBid)
	}
	if tk.Quotes.BestAsk.Valid {
		t.Errorf("absent best ask should be missing: %+v", tk.Quotes.BestAsk)
	}
	if !tk.Greeks.Delta.Valid || tk.Greeks.Delta.Float64 != 0.52 {
		t.Errorf("delta not decoded: %+v", tk.Greeks.Delta)
	}
}

func TestCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("resolution"); got != "5m" {
			t.Errorf("unexpected resolution: %s", got)
		}
		payload := map[string]any{
			"success": true,
			"result": map[string]any{
				"t": []int64{1700000000, 1700000060},
				"o": []float64{10, 11},
				"h": []float64{12, 12},
				"l": []float64{9, 10},
				"c": []float64{11, 10.5},
				"v": []float64{100, 50},
			},
		}
		json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 100)
	end := time.Now()
	candles, err := c.Candles(context.Background(), "C-BTC-95200-200225", Resolution(5), end.Add(-time.Hour), end)
	if err != nil {
		t.Fatalf("Candles: %v", err)
	}
	if len(candles.T) != 2 || candles.T[0] != 1700000000 {
		t.Fatalf("unexpected candle payload: %+v", candles)
	}
}

func TestResolution(t *testing.T) {
	if got := Resolution(5); got != "5m" {
		t.Errorf("unexpected resolution: %s", got)
	}
	if got := Resolution(60); got != "1h" {
		t.Errorf("unexpected resolution: %s", got)
	}
	if got := Resolution(240); got != "4h" {
		t.Errorf("unexpected resolution: %s", got)
	}
}
