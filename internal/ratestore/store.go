// Package ratestore persists the rate configuration consumed by the pricing
// engine.
package ratestore

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/Simplici0/estimator/internal/pricing"
)

// Store loads and saves the rate configuration. Callers load it fresh for
// every calculation.
type Store interface {
	Load(ctx context.Context) (pricing.RateConfiguration, error)
	Save(ctx context.Context, rc pricing.RateConfiguration) error
}

// Row is one stored rate value.
type Row struct {
	Category string
	Key      string
	Value    float64
}

// Rows flattens the keyed categories of rc in a stable order. The page cost
// is stored separately.
func Rows(rc pricing.RateConfiguration) []Row {
	var out []Row
	add := func(category string, m map[string]float64) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, Row{Category: category, Key: k, Value: m[k]})
		}
	}
	add(pricing.CategoryBaseRates, stringKeys(rc.BaseRates))
	add(pricing.CategoryFeatureCosts, stringKeys(rc.FeatureCosts))
	add(pricing.CategoryComplexityMultipliers, stringKeys(rc.ComplexityMultipliers))
	add(pricing.CategoryTimelineMultipliers, stringKeys(rc.TimelineMultipliers))
	add(pricing.CategoryTechStackMultipliers, stringKeys(rc.TechStackMultipliers))
	add(pricing.CategoryClientTypeMultipliers, stringKeys(rc.ClientTypeMultipliers))
	return out
}

// FromRows rebuilds a configuration from stored rows.
func FromRows(rows []Row, pageCost float64) (pricing.RateConfiguration, error) {
	rc := pricing.NewRateConfiguration()
	rc.PageCostPerPage = pageCost
	for _, r := range rows {
		switch r.Category {
		case pricing.CategoryBaseRates:
			rc.BaseRates[pricing.ProjectType(r.Key)] = r.Value
		case pricing.CategoryFeatureCosts:
			rc.FeatureCosts[pricing.Feature(r.Key)] = r.Value
		case pricing.CategoryComplexityMultipliers:
			rc.ComplexityMultipliers[pricing.Complexity(r.Key)] = r.Value
		case pricing.CategoryTimelineMultipliers:
			rc.TimelineMultipliers[pricing.TimelineUrgency(r.Key)] = r.Value
		case pricing.CategoryTechStackMultipliers:
			rc.TechStackMultipliers[pricing.TechStack(r.Key)] = r.Value
		case pricing.CategoryClientTypeMultipliers:
			rc.ClientTypeMultipliers[pricing.ClientType(r.Key)] = r.Value
		default:
			return pricing.RateConfiguration{}, eris.Errorf("ratestore: unknown category %q", r.Category)
		}
	}
	return rc, nil
}

// CheckValues rejects negative, NaN, infinite and oversized values. Missing
// categories are not an error here; pricing.Problems reports those.
func CheckValues(rc pricing.RateConfiguration) error {
	if err := checkValue(pricing.CategoryPageCostPerPage, "", rc.PageCostPerPage); err != nil {
		return err
	}
	for _, r := range Rows(rc) {
		if err := checkValue(r.Category, r.Key, r.Value); err != nil {
			return err
		}
	}
	return nil
}

// CheckKeys rejects keys that are not members of their category's enum.
func CheckKeys(rc pricing.RateConfiguration) error {
	valid := map[string][]string{
		pricing.CategoryBaseRates:             enumStrings(pricing.ProjectTypes()),
		pricing.CategoryFeatureCosts:          enumStrings(pricing.AllFeatures()),
		pricing.CategoryComplexityMultipliers: enumStrings(pricing.Complexities()),
		pricing.CategoryTimelineMultipliers:   enumStrings(pricing.TimelineUrgencies()),
		pricing.CategoryTechStackMultipliers:  enumStrings(pricing.TechStacks()),
		pricing.CategoryClientTypeMultipliers: enumStrings(pricing.ClientTypes()),
	}
	for _, r := range Rows(rc) {
		if !slices.Contains(valid[r.Category], r.Key) {
			return fmt.Errorf("%s has unknown key %q", r.Category, r.Key)
		}
	}
	return nil
}

func enumStrings[K ~string](values []K) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// MaxValue caps any single stored rate or multiplier.
const MaxValue = 1e12

func checkValue(category, key string, v float64) error {
	name := category
	if key != "" {
		name = category + "." + key
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%s must be a non-negative number, got %v", name, v)
	}
	if v > MaxValue {
		return fmt.Errorf("%s must be at most %g, got %g", name, MaxValue, v)
	}
	return nil
}

func stringKeys[K ~string](m map[K]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}
