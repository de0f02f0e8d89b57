package symbols

import (
	"testing"
	"time"

	"optionflow/models"
)

func TestParseCall(t *testing.T) {
	sym, ok := Parse("C-BTC-95200-200225")
	if !ok {
		t.Fatalf("expected symbol to parse")
	}
	if sym.OptionType != models.Call {
		t.Errorf("unexpected option type: %s", sym.OptionType)
	}
	if sym.Asset != "BTC" {
		t.Errorf("unexpected asset: %s", sym.Asset)
	}
	if sym.Strike != 95200 {
		t.Errorf("unexpected strike: %f", sym.Strike)
	}
	if sym.ExpiryDate != "2025-02-20" {
		t.Errorf("unexpected expiry date: %s", sym.ExpiryDate)
	}
	if sym.ExpiryRaw != "200225" {
		t.Errorf("unexpected raw expiry: %s", sym.ExpiryRaw)
	}

	want := time.Date(2025, time.February, 20, 8, 0, 0, 0, time.UTC).UnixMilli()
	if sym.ExpiryMs != want {
		t.Errorf("expiry ms = %d, want %d", sym.ExpiryMs, want)
	}
}

func TestParsePutFractionalStrike(t *testing.T) {
	sym, ok := Parse("P-XRP-0.55-281125")
	if !ok {
		t.Fatalf("expected symbol to parse")
	}
	if sym.OptionType != models.Put || sym.Strike != 0.55 {
		t.Errorf("unexpected parse result: %+v", sym)
	}
	if sym.ExpiryDate != "2025-11-28" {
		t.Errorf("unexpected expiry date: %s", sym.ExpiryDate)
	}
}

func TestParseMalformed(t *testing.T) {
	cases := []struct {
		name   string
		symbol string
	}{
		{"empty", ""},
		{"too few segments", "C-BTC-95200"},
		{"wrong type char", "X-BTC-95200-200225"},
		{"lowercase type char", "c-BTC-95200-200225"},
		{"non numeric strike", "C-BTC-abc-200225"},
		{"short expiry", "C-BTC-95200-2002"},
		{"non digit expiry", "C-BTC-95200-2002ab"},
		{"perpetual", "BTCUSD"},
	}
	for _, tc := range cases {
		if _, ok := Parse(tc.symbol); ok {
			t.Errorf("%s: expected parse failure for %q", tc.name, tc.symbol)
		}
	}
}

func TestParseExpiryMatchesInputDigits(t *testing.T) {
	// The decoded day/month/year must echo the symbol's digits exactly.
	sym, ok := Parse("C-ETH-3500-010126")
	if !ok {
		t.Fatalf("expected symbol to parse")
	}
	if sym.ExpiryDate != "2026-01-01" {
		t.Errorf("unexpected expiry date: %s", sym.ExpiryDate)
	}
	if FormatExpiry(sym.ExpiryRaw) != "01-01-2026" {
		t.Errorf("unexpected display expiry: %s", FormatExpiry(sym.ExpiryRaw))
	}
}

func TestFormatExpiry(t *testing.T) {
	if got := FormatExpiry("200225"); got != "20-02-2025" {
		t.Errorf("unexpected format: %s", got)
	}
	// Defensive no-op for short inputs.
	if got := FormatExpiry("2002"); got != "2002" {
		t.Errorf("short input should pass through: %s", got)
	}
	if got := FormatExpiry(""); got != "" {
		t.Errorf("empty input should pass through: %q", got)
	}
}
