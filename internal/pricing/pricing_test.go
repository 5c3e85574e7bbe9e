package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioRates() RateConfiguration {
	return RateConfiguration{
		BaseRates:       map[ProjectType]float64{ProjectWebsite: 5000, ProjectOther: 3000},
		PageCostPerPage: 200,
		FeatureCosts: map[Feature]float64{
			FeatureCMS: 1000, FeatureAuth: 800, FeaturePayment: 0,
			FeatureAPI: 0, FeatureRealtime: 0, FeatureAnalytics: 0,
		},
		ComplexityMultipliers: map[Complexity]float64{ComplexitySimple: 1.0, ComplexityModerate: 1.3, ComplexityComplex: 1.8},
		TimelineMultipliers:   map[TimelineUrgency]float64{TimelineNormal: 1.0, TimelineFast: 1.2, TimelineUrgent: 1.5},
		TechStackMultipliers:  map[TechStack]float64{TechStackStandard: 1.0},
		ClientTypeMultipliers: map[ClientType]float64{ClientStartup: 0.9},
	}
}

func scenarioInputs() CalculatorInputs {
	return CalculatorInputs{
		ProjectType:         ProjectWebsite,
		Complexity:          ComplexityModerate,
		NumPages:            5,
		Features:            Features{CMS: true, Auth: true},
		TimelineUrgency:     TimelineNormal,
		TechStackComplexity: TechStackStandard,
		ClientType:          ClientStartup,
		Currency:            "USD",
	}
}

// fullRates has every key of every dimension populated.
func fullRates() RateConfiguration {
	return RateConfiguration{
		BaseRates: map[ProjectType]float64{
			ProjectWebsite: 5000, ProjectApp: 12000, ProjectEcommerce: 9000, ProjectSaaS: 15000, ProjectOther: 3000,
		},
		PageCostPerPage: 200,
		FeatureCosts: map[Feature]float64{
			FeatureCMS: 1000, FeatureAuth: 800, FeaturePayment: 1500,
			FeatureAPI: 1200, FeatureRealtime: 2000, FeatureAnalytics: 600,
		},
		ComplexityMultipliers: map[Complexity]float64{ComplexitySimple: 1.0, ComplexityModerate: 1.3, ComplexityComplex: 1.8},
		TimelineMultipliers:   map[TimelineUrgency]float64{TimelineNormal: 1.0, TimelineFast: 1.2, TimelineUrgent: 1.5},
		TechStackMultipliers:  map[TechStack]float64{TechStackStandard: 1.0, TechStackAdvanced: 1.25, TechStackCuttingEdge: 1.5},
		ClientTypeMultipliers: map[ClientType]float64{
			ClientPersonal: 0.8, ClientStartup: 0.9, ClientSmallBusiness: 1.0, ClientMediumBusiness: 1.1,
			ClientEnterprise: 1.4, ClientCharity: 0.7, ClientNonProfit: 0.75,
		},
	}
}

func TestCalculate_ScenarioA(t *testing.T) {
	b, err := Calculate(scenarioInputs(), scenarioRates())
	require.NoError(t, err)

	assert.InDelta(t, 5000, b.BaseCost, 1e-9)
	assert.InDelta(t, 1000, b.PageCost, 1e-9)
	assert.InDelta(t, 1800, b.TotalFeatureCost, 1e-9)
	assert.InDelta(t, 1.3, b.ComplexityMultiplier, 1e-9)
	assert.InDelta(t, 10140, b.Subtotal, 1e-6)
	assert.InDelta(t, 9126, b.Total, 1e-6)
	assert.Equal(t, Range{Min: 7757, Max: 10495}, b.Range)
	assert.Empty(t, b.Fallbacks)

	assert.Len(t, b.FeatureCosts, 6)
	assert.InDelta(t, 1000, b.FeatureCosts[FeatureCMS], 1e-9)
	assert.InDelta(t, 800, b.FeatureCosts[FeatureAuth], 1e-9)
}

func TestCalculate_ScenarioB_EmptyBaseRates(t *testing.T) {
	rates := scenarioRates()
	rates.BaseRates = map[ProjectType]float64{}

	b, err := Calculate(scenarioInputs(), rates)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBaseRatesRequired)
	assert.Contains(t, err.Error(), "Base rates")
	assert.Equal(t, CostBreakdown{}, b)
}

func TestCalculate_ValidationNamesEachCategory(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*RateConfiguration)
		want     *ConfigError
		contains string
	}{
		{"base rates", func(r *RateConfiguration) { r.BaseRates = nil }, ErrBaseRatesRequired, "Base rates"},
		{"feature costs", func(r *RateConfiguration) { r.FeatureCosts = map[Feature]float64{} }, ErrFeatureCostsRequired, "Feature costs"},
		{"complexity", func(r *RateConfiguration) { r.ComplexityMultipliers = nil }, ErrComplexityMultipliersRequired, "Complexity multipliers"},
		{"timeline", func(r *RateConfiguration) { r.TimelineMultipliers = nil }, ErrTimelineMultipliersRequired, "Timeline multipliers"},
		{"tech stack", func(r *RateConfiguration) { r.TechStackMultipliers = nil }, ErrTechStackMultipliersRequired, "Tech stack multipliers"},
		{"client type", func(r *RateConfiguration) { r.ClientTypeMultipliers = nil }, ErrClientTypeMultipliersRequired, "Client type multipliers"},
		{"page cost zero", func(r *RateConfiguration) { r.PageCostPerPage = 0 }, ErrPageCostRequired, "Page cost per page"},
		{"page cost negative", func(r *RateConfiguration) { r.PageCostPerPage = -10 }, ErrPageCostRequired, "Page cost per page"},
		{"page cost NaN", func(r *RateConfiguration) { r.PageCostPerPage = math.NaN() }, ErrPageCostRequired, "Page cost per page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rates := fullRates()
			tt.mutate(&rates)

			_, err := Calculate(scenarioInputs(), rates)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.contains)
			assert.True(t, IsConfigError(err))

			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.want.Category, ce.Category)
		})
	}
}

func TestProblems_ReportsEveryCategoryInOrder(t *testing.T) {
	problems := Problems(RateConfiguration{})
	require.Len(t, problems, 7)
	assert.Equal(t, []error{
		ErrBaseRatesRequired,
		ErrFeatureCostsRequired,
		ErrComplexityMultipliersRequired,
		ErrTimelineMultipliersRequired,
		ErrTechStackMultipliersRequired,
		ErrClientTypeMultipliersRequired,
		ErrPageCostRequired,
	}, problems)

	assert.Empty(t, Problems(fullRates()))
	assert.NoError(t, Validate(fullRates()))
}

func TestCalculate_Deterministic(t *testing.T) {
	in := scenarioInputs()
	in.Features = Features{CMS: true, Payment: true, Realtime: true}
	in.NumPages = 17

	first, err := Calculate(in, fullRates())
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Calculate(in, fullRates())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCalculate_FeatureGating(t *testing.T) {
	rates := fullRates()
	for _, f := range AllFeatures() {
		in := scenarioInputs()
		in.Features = Features{}
		for _, other := range AllFeatures() {
			in.Features.Set(other, other != f)
		}

		b, err := Calculate(in, rates)
		require.NoError(t, err)
		assert.Zero(t, b.FeatureCosts[f], "feature %s is off but costed", f)
		for _, other := range AllFeatures() {
			if other != f {
				assert.InDelta(t, rates.FeatureCosts[other], b.FeatureCosts[other], 1e-9)
			}
		}
	}
}

func TestCalculate_MissingFeatureRateDefaultsToZero(t *testing.T) {
	rates := fullRates()
	delete(rates.FeatureCosts, FeatureRealtime)

	in := scenarioInputs()
	in.Features = Features{Realtime: true, CMS: true}

	b, err := Calculate(in, rates)
	require.NoError(t, err)
	assert.Zero(t, b.FeatureCosts[FeatureRealtime])
	assert.InDelta(t, 1000, b.TotalFeatureCost, 1e-9)
	assert.Equal(t, []string{"featureCosts.realtime"}, b.Fallbacks)
}

func TestCalculate_BaseRateFallsBackToOther(t *testing.T) {
	in := scenarioInputs()
	in.ProjectType = ProjectSaaS

	b, err := Calculate(in, scenarioRates())
	require.NoError(t, err)
	assert.InDelta(t, 3000, b.BaseCost, 1e-9)
	assert.Contains(t, b.Fallbacks, "baseRates.saas")
}

func TestCalculate_BaseRateFallsBackToZero(t *testing.T) {
	rates := scenarioRates()
	rates.BaseRates = map[ProjectType]float64{ProjectApp: 9000}

	b, err := Calculate(scenarioInputs(), rates)
	require.NoError(t, err)
	assert.Zero(t, b.BaseCost)
	assert.Equal(t, []string{"baseRates.website", "baseRates.other"}, b.Fallbacks)
}

func TestCalculate_MissingMultiplierIsNeutral(t *testing.T) {
	in := scenarioInputs()
	in.ClientType = ClientEnterprise
	in.TechStackComplexity = TechStackCuttingEdge

	b, err := Calculate(in, scenarioRates())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, b.ClientTypeMultiplier, 1e-9)
	assert.InDelta(t, 1.0, b.TechStackMultiplier, 1e-9)
	assert.InDelta(t, b.Subtotal, b.Total, 1e-9)
	assert.ElementsMatch(t, []string{"techStackMultipliers.cutting-edge", "clientTypeMultipliers.enterprise"}, b.Fallbacks)
}

func TestCalculate_ComplexityAppliedBeforeAdjustments(t *testing.T) {
	in := scenarioInputs()
	in.Complexity = ComplexityComplex
	in.TimelineUrgency = TimelineUrgent
	in.TechStackComplexity = TechStackAdvanced
	in.ClientType = ClientEnterprise

	rates := fullRates()
	b, err := Calculate(in, rates)
	require.NoError(t, err)

	raw := b.BaseCost + b.PageCost + b.TotalFeatureCost
	assert.InDelta(t, raw*1.8, b.Subtotal, 1e-6)
	assert.InDelta(t, raw*1.8*1.5*1.25*1.4, b.Total, 1e-6)
}

func TestCalculate_Monotonicity(t *testing.T) {
	base := scenarioInputs()
	rates := fullRates()

	ref, err := Calculate(base, rates)
	require.NoError(t, err)

	t.Run("pages", func(t *testing.T) {
		prev := ref.Total
		for pages := base.NumPages + 1; pages < base.NumPages+30; pages++ {
			in := base
			in.NumPages = pages
			b, err := Calculate(in, rates)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, b.Total, prev)
			prev = b.Total
		}
	})

	t.Run("features", func(t *testing.T) {
		in := base
		in.Features = Features{}
		prev, err := Calculate(in, rates)
		require.NoError(t, err)
		for _, f := range AllFeatures() {
			in.Features.Set(f, true)
			b, err := Calculate(in, rates)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, b.Total, prev.Total)
			prev = b
		}
	})

	t.Run("multipliers", func(t *testing.T) {
		bumps := []func(*RateConfiguration, float64){
			func(r *RateConfiguration, d float64) { r.ComplexityMultipliers[base.Complexity] += d },
			func(r *RateConfiguration, d float64) { r.TimelineMultipliers[base.TimelineUrgency] += d },
			func(r *RateConfiguration, d float64) { r.TechStackMultipliers[base.TechStackComplexity] += d },
			func(r *RateConfiguration, d float64) { r.ClientTypeMultipliers[base.ClientType] += d },
		}
		for i, bump := range bumps {
			r := fullRates()
			bump(&r, 0.25)
			b, err := Calculate(base, r)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, b.Total, ref.Total, "multiplier %d", i)
		}
	})
}

func TestCalculate_RangeContainment(t *testing.T) {
	rates := fullRates()
	for _, pt := range ProjectTypes() {
		for _, c := range Complexities() {
			for _, ct := range ClientTypes() {
				in := scenarioInputs()
				in.ProjectType = pt
				in.Complexity = c
				in.ClientType = ct

				b, err := Calculate(in, rates)
				require.NoError(t, err)
				assert.LessOrEqual(t, float64(b.Range.Min), b.Total)
				assert.GreaterOrEqual(t, float64(b.Range.Max), b.Total)
				assert.InDelta(t, 0.30*b.Total, float64(b.Range.Max-b.Range.Min), 1.0)
			}
		}
	}
}

func TestSpread_RoundsHalfAwayFromZero(t *testing.T) {
	// 10 * 0.85 = 8.5 and 10 * 1.15 = 11.5
	r, ok := spread(10)
	require.True(t, ok)
	assert.Equal(t, Range{Min: 9, Max: 12}, r)

	r, ok = spread(0)
	require.True(t, ok)
	assert.Equal(t, Range{Min: 0, Max: 0}, r)
}

func TestSpread_RejectsUnrepresentableTotals(t *testing.T) {
	for _, total := range []float64{math.Inf(1), math.Inf(-1), math.NaN(), 1e19, -1e19} {
		_, ok := spread(total)
		assert.False(t, ok, "total %v", total)
	}

	// 8.1e18 * 1.15 overflows int64 even though the total itself fits.
	_, ok := spread(8.1e18)
	assert.False(t, ok)

	r, ok := spread(1e18)
	require.True(t, ok)
	assert.Equal(t, int64(850_000_000_000_000_000), r.Min)
	assert.Equal(t, int64(1_150_000_000_000_000_000), r.Max)
}

func TestCalculate_OverflowingTotalIsConfigError(t *testing.T) {
	tests := []struct {
		name string
		base float64
	}{
		{"infinite total", 1e308},
		{"range outside int64", 1e18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rates := fullRates()
			rates.BaseRates[ProjectWebsite] = tt.base
			rates.ComplexityMultipliers[ComplexityComplex] = 10

			in := scenarioInputs()
			in.Complexity = ComplexityComplex
			in.ClientType = ClientSmallBusiness

			var b CostBreakdown
			var err error
			require.NotPanics(t, func() { b, err = Calculate(in, rates) })
			require.ErrorIs(t, err, ErrTotalOutOfRange)
			assert.True(t, IsConfigError(err))
			assert.Equal(t, CostBreakdown{}, b)
		})
	}
}

func TestCalculate_IgnoresCurrency(t *testing.T) {
	a := scenarioInputs()
	b := scenarioInputs()
	b.Currency = "EUR"

	ra, err := Calculate(a, scenarioRates())
	require.NoError(t, err)
	rb, err := Calculate(b, scenarioRates())
	require.NoError(t, err)
	assert.Equal(t, ra, rb)
}
