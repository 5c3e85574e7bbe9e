package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/estimator/internal/pricing"
	"github.com/Simplici0/estimator/internal/quotes"
	"github.com/Simplici0/estimator/internal/ratelimit"
)

func scenarioRequest() map[string]any {
	return map[string]any{
		"projectType":         "website",
		"complexity":          "moderate",
		"numPages":            5,
		"features":            map[string]bool{"cms": true, "auth": true},
		"timelineUrgency":     "normal",
		"techStackComplexity": "standard",
		"clientType":          "startup",
		"contactName":         "Ana",
		"contactEmail":        "ana@example.com",
	}
}

func TestEstimateOptions(t *testing.T) {
	env := newTestServer(t)

	rec := env.do(t, http.MethodGet, "/api/estimate/options", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var got optionsResponse
	decodeBody(t, rec, &got)
	assert.Equal(t, pricing.AllFeatures(), got.Features)
	assert.Equal(t, pricing.ClientTypes(), got.ClientTypes)
	assert.Equal(t, pricing.MaxPages, got.MaxPages)
	assert.Equal(t, "USD", got.DefaultCurrency)
}

func TestEstimateCalculatesAndStoresSnapshot(t *testing.T) {
	env := newTestServer(t)

	rec := env.do(t, http.MethodPost, "/api/estimate", scenarioRequest(), false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got estimateResponse
	decodeBody(t, rec, &got)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "USD", got.Currency)
	assert.InDelta(t, 10140, got.Breakdown.Subtotal, 1e-6)
	assert.InDelta(t, 9126, got.Breakdown.Total, 1e-6)
	assert.Equal(t, pricing.Range{Min: 7757, Max: 10495}, got.Breakdown.Range)
	assert.Equal(t, "USD 9,126.00", got.FormattedTotal)
	assert.Equal(t, "USD 7,757 – USD 10,495", got.FormattedRange)
	assert.Empty(t, got.Breakdown.Fallbacks)

	stored, err := env.srv.quotes.Get(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", stored.ContactName)
	assert.Equal(t, pricing.ProjectWebsite, stored.Inputs.ProjectType)
	assert.Equal(t, got.Breakdown.Range, stored.Breakdown.Range)
}

func TestEstimateAcceptsFormPost(t *testing.T) {
	env := newTestServer(t)

	values := url.Values{
		"projectType":         {"website"},
		"complexity":          {"moderate"},
		"numPages":            {"5"},
		"features":            {"cms", "auth"},
		"timelineUrgency":     {"normal"},
		"techStackComplexity": {"standard"},
		"clientType":          {"startup"},
		"currency":            {"eur"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/estimate", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got estimateResponse
	decodeBody(t, rec, &got)
	assert.Equal(t, "EUR", got.Currency)
	assert.InDelta(t, 9126, got.Breakdown.Total, 1e-6)
	assert.Equal(t, "EUR 9,126.00", got.FormattedTotal)
}

func TestEstimateRejectsInvalidInput(t *testing.T) {
	env := newTestServer(t)

	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{"unknown project type", func(m map[string]any) { m["projectType"] = "castle" }, "projectType"},
		{"negative pages", func(m map[string]any) { m["numPages"] = -1 }, "numPages"},
		{"too many pages", func(m map[string]any) { m["numPages"] = pricing.MaxPages + 1 }, "numPages"},
		{"unknown client type", func(m map[string]any) { m["clientType"] = "government" }, "clientType"},
		{"bad currency", func(m map[string]any) { m["currency"] = "XYZW" }, "currency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := scenarioRequest()
			tt.mutate(body)

			rec := env.do(t, http.MethodPost, "/api/estimate", body, false)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var got map[string]string
			decodeBody(t, rec, &got)
			assert.Equal(t, tt.field, got["field"])
			assert.NotEmpty(t, got["error"])
		})
	}

	rec := env.do(t, http.MethodPost, "/api/estimate", "not an object", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEstimateIncompleteRatesIsUnavailable(t *testing.T) {
	env := newTestServer(t)
	require.NoError(t, env.srv.rates.Save(context.Background(), pricing.NewRateConfiguration()))

	rec := env.do(t, http.MethodPost, "/api/estimate", scenarioRequest(), false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"pricing temporarily unavailable"}`, rec.Body.String())

	list, err := env.srv.quotes.List(context.Background(), quotes.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEstimateIsRateLimited(t *testing.T) {
	env := newTestServer(t)
	env.srv.estimateLimiter = ratelimit.NewMemoryLimiter(1, time.Hour)
	env.handler = env.srv.routes()

	first := env.do(t, http.MethodPost, "/api/estimate", scenarioRequest(), false)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	second := env.do(t, http.MethodPost, "/api/estimate", scenarioRequest(), false)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}
