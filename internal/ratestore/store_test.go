package ratestore

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/estimator/internal/db"
	"github.com/Simplici0/estimator/internal/migrations"
	"github.com/Simplici0/estimator/internal/pricing"
)

func sampleRates() pricing.RateConfiguration {
	rc := pricing.NewRateConfiguration()
	rc.BaseRates[pricing.ProjectWebsite] = 3000
	rc.BaseRates[pricing.ProjectOther] = 2500
	rc.FeatureCosts[pricing.FeatureCMS] = 1200
	rc.FeatureCosts[pricing.FeatureAuth] = 900
	rc.ComplexityMultipliers[pricing.ComplexityModerate] = 1.3
	rc.TimelineMultipliers[pricing.TimelineNormal] = 1
	rc.TechStackMultipliers[pricing.TechStackStandard] = 1
	rc.ClientTypeMultipliers[pricing.ClientStartup] = 0.9
	rc.PageCostPerPage = 150
	return rc
}

func openSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "rates.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrations.Up(context.Background(), conn, migrations.SQLite))
	return NewSQLiteStore(conn)
}

func TestRows_RoundTrip(t *testing.T) {
	t.Parallel()

	rc := sampleRates()
	rows := Rows(rc)
	require.Len(t, rows, 8)
	assert.Equal(t, Row{Category: pricing.CategoryBaseRates, Key: "other", Value: 2500}, rows[0])

	back, err := FromRows(rows, rc.PageCostPerPage)
	require.NoError(t, err)
	assert.Equal(t, rc, back)
}

func TestFromRows_UnknownCategory(t *testing.T) {
	t.Parallel()

	_, err := FromRows([]Row{{Category: "discounts", Key: "x", Value: 1}}, 0)
	assert.ErrorContains(t, err, "unknown category")
}

func TestCheckValues(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckValues(sampleRates()))

	tests := []struct {
		name   string
		mutate func(*pricing.RateConfiguration)
		want   string
	}{
		{"negative rate", func(rc *pricing.RateConfiguration) { rc.FeatureCosts[pricing.FeatureAPI] = -1 }, "featureCosts.api"},
		{"nan multiplier", func(rc *pricing.RateConfiguration) { rc.TimelineMultipliers[pricing.TimelineUrgent] = math.NaN() }, "timelineMultipliers.urgent"},
		{"infinite page cost", func(rc *pricing.RateConfiguration) { rc.PageCostPerPage = math.Inf(1) }, "pageCostPerPage"},
		{"oversized base rate", func(rc *pricing.RateConfiguration) { rc.BaseRates[pricing.ProjectWebsite] = 1e308 }, "baseRates.website must be at most"},
		{"oversized multiplier", func(rc *pricing.RateConfiguration) { rc.ComplexityMultipliers[pricing.ComplexityComplex] = 2e12 }, "complexityMultipliers.complex"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := sampleRates()
			tt.mutate(&rc)
			assert.ErrorContains(t, CheckValues(rc), tt.want)
		})
	}
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	t.Parallel()

	store := openSQLite(t)
	ctx := context.Background()

	want := sampleRates()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NoError(t, pricing.Validate(got))
}

func TestSQLiteStore_SaveReplacesEverything(t *testing.T) {
	t.Parallel()

	store := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleRates()))

	next := sampleRates()
	delete(next.FeatureCosts, pricing.FeatureAuth)
	next.PageCostPerPage = 175
	require.NoError(t, store.Save(ctx, next))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.NotContains(t, got.FeatureCosts, pricing.FeatureAuth)
	assert.InDelta(t, 175, got.PageCostPerPage, 1e-9)
}

func TestSQLiteStore_EmptyDatabaseFailsValidation(t *testing.T) {
	t.Parallel()

	store := openSQLite(t)
	got, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, pricing.Validate(got), pricing.ErrBaseRatesRequired)
	assert.Len(t, pricing.Problems(got), 7)
}

func TestSQLiteStore_SaveRejectsNegative(t *testing.T) {
	t.Parallel()

	store := openSQLite(t)
	rc := sampleRates()
	rc.BaseRates[pricing.ProjectApp] = -5

	assert.Error(t, store.Save(context.Background(), rc))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.BaseRates)
}

func TestCheckKeys(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckKeys(sampleRates()))

	rc := sampleRates()
	rc.ClientTypeMultipliers["government"] = 1.2
	assert.ErrorContains(t, CheckKeys(rc), `clientTypeMultipliers has unknown key "government"`)
}
