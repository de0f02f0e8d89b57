package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// OptFloat is a numeric field that distinguishes "no value" from zero.
// Exchange payloads deliver numbers inconsistently (JSON numbers, quoted
// numbers, null, empty strings); anything that does not parse as a finite
// number becomes an invalid OptFloat rather than a zero or an error.
type OptFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a valid OptFloat holding v.
func Float(v float64) OptFloat {
	return OptFloat{Float64: v, Valid: true}
}

// Or returns the held value, or def when no value is present.
func (f OptFloat) Or(def float64) float64 {
	if !f.Valid {
		return def
	}
	return f.Float64
}

func (f *OptFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*f = OptFloat{}
		return nil
	}
	if bytes.HasPrefix([]byte(s), []byte(`"`)) {
		var quoted string
		if err := json.Unmarshal(data, &quoted); err != nil {
			*f = OptFloat{}
			return nil
		}
		s = strings.TrimSpace(quoted)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*f = OptFloat{}
		return nil
	}
	*f = OptFloat{Float64: v, Valid: true}
	return nil
}

func (f OptFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f.Float64, 'f', -1, 64)), nil
}

// MarshalCSV serializes a missing value as the empty string.
func (f OptFloat) MarshalCSV() (string, error) {
	if !f.Valid {
		return "", nil
	}
	return strconv.FormatFloat(f.Float64, 'f', -1, 64), nil
}

// UnmarshalCSV treats the empty string as a missing value.
func (f *OptFloat) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*f = OptFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*f = OptFloat{}
		return nil
	}
	*f = OptFloat{Float64: v, Valid: true}
	return nil
}
