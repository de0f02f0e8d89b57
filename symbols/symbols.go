package symbols

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"optionflow/models"
)

// The exchange lists and settles option contracts at 08:00 UTC. Decoding
// expiries at that fixed hour gives every contract a stable, comparable
// sort key independent of the local timezone.
const settlementHourUTC = 8

// Parse decodes an option symbol of the form {C|P}-{ASSET}-{STRIKE}-{DDMMYY}.
// It reports false for anything that does not match: fewer than four
// segments, an unknown type character, a non-numeric or negative strike, or
// an expiry segment shorter than six characters or containing non-digits.
// No partial result is returned.
func Parse(symbol string) (models.OptionSymbol, bool) {
	parts := strings.Split(symbol, "-")
	if len(parts) < 4 {
		return models.OptionSymbol{}, false
	}

	var optionType models.OptionType
	switch parts[0] {
	case "C":
		optionType = models.Call
	case "P":
		optionType = models.Put
	default:
		return models.OptionSymbol{}, false
	}

	strike, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || math.IsNaN(strike) || math.IsInf(strike, 0) || strike < 0 {
		return models.OptionSymbol{}, false
	}

	if len(parts[3]) < 6 {
		return models.OptionSymbol{}, false
	}
	raw := parts[3][:6]
	for _, c := range raw {
		if c < '0' || c > '9' {
			return models.OptionSymbol{}, false
		}
	}

	day, _ := strconv.Atoi(raw[0:2])
	month, _ := strconv.Atoi(raw[2:4])
	yy, _ := strconv.Atoi(raw[4:6])
	year := 2000 + yy

	expiry := time.Date(year, time.Month(month), day, settlementHourUTC, 0, 0, 0, time.UTC)

	return models.OptionSymbol{
		OptionType: optionType,
		Asset:      parts[1],
		Strike:     strike,
		ExpiryDate: fmt.Sprintf("%04d-%02d-%02d", year, month, day),
		ExpiryMs:   expiry.UnixMilli(),
		ExpiryRaw:  raw,
	}, true
}

// FormatExpiry reformats a six digit DDMMYY expiry into the display form
// DD-MM-YYYY. Inputs shorter than six characters are returned unchanged.
func FormatExpiry(raw string) string {
	if len(raw) < 6 {
		return raw
	}
	return fmt.Sprintf("%s-%s-20%s", raw[0:2], raw[2:4], raw[4:6])
}
