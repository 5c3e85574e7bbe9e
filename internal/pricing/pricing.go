// Package pricing computes project cost estimates from a rate configuration.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	rangeLow  = decimal.RequireFromString("0.85")
	rangeHigh = decimal.RequireFromString("1.15")

	maxBound = decimal.NewFromInt(math.MaxInt64)
	minBound = decimal.NewFromInt(math.MinInt64)
)

// Validate returns the first configuration problem, checked in category
// order, or nil when rates can be used for a calculation.
func Validate(rates RateConfiguration) error {
	if problems := Problems(rates); len(problems) > 0 {
		return problems[0]
	}
	return nil
}

// Problems returns every configuration problem in category order.
func Problems(rates RateConfiguration) []error {
	var problems []error
	if len(rates.BaseRates) == 0 {
		problems = append(problems, ErrBaseRatesRequired)
	}
	if len(rates.FeatureCosts) == 0 {
		problems = append(problems, ErrFeatureCostsRequired)
	}
	if len(rates.ComplexityMultipliers) == 0 {
		problems = append(problems, ErrComplexityMultipliersRequired)
	}
	if len(rates.TimelineMultipliers) == 0 {
		problems = append(problems, ErrTimelineMultipliersRequired)
	}
	if len(rates.TechStackMultipliers) == 0 {
		problems = append(problems, ErrTechStackMultipliersRequired)
	}
	if len(rates.ClientTypeMultipliers) == 0 {
		problems = append(problems, ErrClientTypeMultipliersRequired)
	}
	// NaN fails this comparison too.
	if !(rates.PageCostPerPage > 0) {
		problems = append(problems, ErrPageCostRequired)
	}
	return problems
}

// Calculate computes the cost breakdown for inputs. It validates rates
// first and returns a *ConfigError without computing anything when a
// category is missing. Inputs are not validated; see ValidateInputs.
func Calculate(inputs CalculatorInputs, rates RateConfiguration) (CostBreakdown, error) {
	if err := Validate(rates); err != nil {
		return CostBreakdown{}, err
	}

	var fallbacks []string

	baseCost, ok := rates.BaseRates[inputs.ProjectType]
	if !ok {
		fallbacks = append(fallbacks, CategoryBaseRates+"."+string(inputs.ProjectType))
		baseCost, ok = rates.BaseRates[ProjectOther]
		if !ok {
			fallbacks = append(fallbacks, CategoryBaseRates+"."+string(ProjectOther))
			baseCost = 0
		}
	}

	pageCost := float64(inputs.NumPages) * rates.PageCostPerPage

	featureCosts := make(map[Feature]float64, len(AllFeatures()))
	totalFeatureCost := 0.0
	for _, f := range AllFeatures() {
		if !inputs.Features.Enabled(f) {
			featureCosts[f] = 0
			continue
		}
		cost, ok := rates.FeatureCosts[f]
		if !ok {
			fallbacks = append(fallbacks, CategoryFeatureCosts+"."+string(f))
		}
		featureCosts[f] = cost
		totalFeatureCost += cost
	}

	complexity, found := multiplier(rates.ComplexityMultipliers, inputs.Complexity)
	if !found {
		fallbacks = append(fallbacks, CategoryComplexityMultipliers+"."+string(inputs.Complexity))
	}
	timeline, found := multiplier(rates.TimelineMultipliers, inputs.TimelineUrgency)
	if !found {
		fallbacks = append(fallbacks, CategoryTimelineMultipliers+"."+string(inputs.TimelineUrgency))
	}
	techStack, found := multiplier(rates.TechStackMultipliers, inputs.TechStackComplexity)
	if !found {
		fallbacks = append(fallbacks, CategoryTechStackMultipliers+"."+string(inputs.TechStackComplexity))
	}
	clientType, found := multiplier(rates.ClientTypeMultipliers, inputs.ClientType)
	if !found {
		fallbacks = append(fallbacks, CategoryClientTypeMultipliers+"."+string(inputs.ClientType))
	}

	// Complexity scales the job itself; the other three are adjustments
	// layered on top of the complexity-adjusted subtotal.
	subtotal := (baseCost + pageCost + totalFeatureCost) * complexity
	total := subtotal * timeline * techStack * clientType

	rng, ok := spread(total)
	if !ok {
		return CostBreakdown{}, ErrTotalOutOfRange
	}

	return CostBreakdown{
		BaseCost:             baseCost,
		PageCost:             pageCost,
		FeatureCosts:         featureCosts,
		TotalFeatureCost:     totalFeatureCost,
		ComplexityMultiplier: complexity,
		TimelineMultiplier:   timeline,
		TechStackMultiplier:  techStack,
		ClientTypeMultiplier: clientType,
		Subtotal:             subtotal,
		Total:                total,
		Range:                rng,
		Fallbacks:            fallbacks,
	}, nil
}

// multiplier looks up key in m, returning the neutral 1.0 when absent.
func multiplier[K comparable](m map[K]float64, key K) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 1.0, false
	}
	return v, true
}

// spread returns the ±15% band around total, rounded half away from zero.
// It reports false when total is not finite or a bound does not fit int64.
func spread(total float64) (Range, bool) {
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return Range{}, false
	}
	t := decimal.NewFromFloat(total)
	low := t.Mul(rangeLow).Round(0)
	high := t.Mul(rangeHigh).Round(0)
	for _, b := range []decimal.Decimal{low, high} {
		if b.GreaterThan(maxBound) || b.LessThan(minBound) {
			return Range{}, false
		}
	}
	return Range{Min: low.IntPart(), Max: high.IntPart()}, true
}
