package chain

import (
	"sort"

	"optionflow/models"
)

// ExpiryGroup holds the records sharing one expiry timestamp.
type ExpiryGroup struct {
	ExpiryMs int64
	Records  []models.OptionRecord
}

// Expiry identifies one distinct expiry across a record set.
type Expiry struct {
	ExpiryMs   int64
	ExpiryDate string
	ExpiryRaw  string
}

// GroupByExpiry groups records by expiry timestamp. Groups are returned
// in ascending expiry order; within a group the input order is kept.
// Sorting by strike is a presentation concern and happens downstream.
func GroupByExpiry(records []models.OptionRecord) []ExpiryGroup {
	byExpiry := make(map[int64][]models.OptionRecord)
	keys := make([]int64, 0)
	for _, rec := range records {
		if _, seen := byExpiry[rec.ExpiryMs]; !seen {
			keys = append(keys, rec.ExpiryMs)
		}
		byExpiry[rec.ExpiryMs] = append(byExpiry[rec.ExpiryMs], rec)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	groups := make([]ExpiryGroup, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, ExpiryGroup{ExpiryMs: k, Records: byExpiry[k]})
	}
	return groups
}

// TopByOpenInterest filters records to one option type, sorts them
// descending by open interest (missing treated as zero) and truncates to
// topN. The sort is stable so equal open-interest values keep their input
// order, which makes instrument selection for candle retrieval
// deterministic.
func TopByOpenInterest(records []models.OptionRecord, optionType models.OptionType, topN int) []models.OptionRecord {
	filtered := make([]models.OptionRecord, 0, len(records))
	for _, rec := range records {
		if rec.OptionType == optionType {
			filtered = append(filtered, rec)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].OpenInterest.Or(0) > filtered[j].OpenInterest.Or(0)
	})
	if topN < 0 {
		topN = 0
	}
	if len(filtered) > topN {
		filtered = filtered[:topN]
	}
	return filtered
}

// DistinctExpiries extracts the first-seen record per expiry timestamp,
// sorted ascending.
func DistinctExpiries(records []models.OptionRecord) []Expiry {
	seen := make(map[int64]struct{})
	expiries := make([]Expiry, 0)
	for _, rec := range records {
		if _, ok := seen[rec.ExpiryMs]; ok {
			continue
		}
		seen[rec.ExpiryMs] = struct{}{}
		expiries = append(expiries, Expiry{
			ExpiryMs:   rec.ExpiryMs,
			ExpiryDate: rec.ExpiryDate,
			ExpiryRaw:  rec.ExpiryRaw,
		})
	}
	sort.Slice(expiries, func(i, j int) bool { return expiries[i].ExpiryMs < expiries[j].ExpiryMs })
	return expiries
}
