package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Simplici0/estimator/internal/money"
	"github.com/Simplici0/estimator/internal/pricing"
	"github.com/Simplici0/estimator/internal/quotes"
)

const maxBodyBytes = 64 << 10

// estimateRequest is the public calculator form plus optional contact
// details stored with the snapshot.
type estimateRequest struct {
	pricing.CalculatorInputs
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail"`
}

type estimateResponse struct {
	ID             string                `json:"id"`
	Currency       string                `json:"currency"`
	Breakdown      pricing.CostBreakdown `json:"breakdown"`
	FormattedTotal string                `json:"formattedTotal"`
	FormattedRange string                `json:"formattedRange"`
}

type optionsResponse struct {
	ProjectTypes      []pricing.ProjectType     `json:"projectTypes"`
	Complexities      []pricing.Complexity      `json:"complexities"`
	TimelineUrgencies []pricing.TimelineUrgency `json:"timelineUrgencies"`
	TechStacks        []pricing.TechStack       `json:"techStacks"`
	ClientTypes       []pricing.ClientType      `json:"clientTypes"`
	Features          []pricing.Feature         `json:"features"`
	MaxPages          int                       `json:"maxPages"`
	DefaultCurrency   string                    `json:"defaultCurrency"`
}

func (s *server) handleEstimateOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, optionsResponse{
		ProjectTypes:      pricing.ProjectTypes(),
		Complexities:      pricing.Complexities(),
		TimelineUrgencies: pricing.TimelineUrgencies(),
		TechStacks:        pricing.TechStacks(),
		ClientTypes:       pricing.ClientTypes(),
		Features:          pricing.AllFeatures(),
		MaxPages:          pricing.MaxPages,
		DefaultCurrency:   s.currency,
	})
}

func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeEstimateRequest(w, r)
	if err != nil {
		var ie *pricing.InputError
		if errors.As(err, &ie) {
			writeFieldError(w, ie.Field, ie.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in := req.CalculatorInputs

	if strings.TrimSpace(in.Currency) == "" {
		in.Currency = s.currency
	}
	currency, err := money.ParseCurrency(in.Currency)
	if err != nil {
		writeFieldError(w, "currency", "currency is not a valid ISO 4217 code")
		return
	}
	in.Currency = currency

	if err := pricing.ValidateInputs(in); err != nil {
		var ie *pricing.InputError
		if errors.As(err, &ie) {
			writeFieldError(w, ie.Field, ie.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rates, err := s.rates.Load(r.Context())
	if err != nil {
		s.logger.Error("load rate configuration", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "pricing temporarily unavailable")
		return
	}

	breakdown, err := pricing.Calculate(in, rates)
	if err != nil {
		var ce *pricing.ConfigError
		if errors.As(err, &ce) {
			s.logger.Error("rate configuration incomplete",
				zap.String("category", ce.Category),
				zap.String("reason", ce.Message),
			)
		} else {
			s.logger.Error("calculate estimate", zap.Error(err))
		}
		writeError(w, http.StatusServiceUnavailable, "pricing temporarily unavailable")
		return
	}
	if len(breakdown.Fallbacks) > 0 {
		s.logger.Warn("estimate used default values for missing rates",
			zap.Strings("fallbacks", breakdown.Fallbacks),
			zap.String("project_type", string(in.ProjectType)),
		)
	}

	q := &quotes.Quote{
		ContactName:  strings.TrimSpace(req.ContactName),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		Currency:     currency,
		Inputs:       in,
		Breakdown:    breakdown,
	}
	if err := s.quotes.Create(r.Context(), q); err != nil {
		s.logger.Error("store estimate snapshot", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save estimate")
		return
	}

	total, _ := money.Format(breakdown.Total, currency)
	rng, _ := money.FormatRange(breakdown.Range, currency)
	writeJSON(w, http.StatusOK, estimateResponse{
		ID:             q.ID,
		Currency:       currency,
		Breakdown:      breakdown,
		FormattedTotal: total,
		FormattedRange: rng,
	})
}

// decodeEstimateRequest accepts either a JSON body or an HTML form post.
func decodeEstimateRequest(w http.ResponseWriter, r *http.Request) (estimateRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			return estimateRequest{}, err
		}
		return parseEstimateForm(r)
	default:
		var req estimateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return estimateRequest{}, err
		}
		return req, nil
	}
}

// parseEstimateForm reads calculator inputs from form values. Features are
// sent as repeated "features" values.
func parseEstimateForm(r *http.Request) (estimateRequest, error) {
	req := estimateRequest{
		CalculatorInputs: pricing.CalculatorInputs{
			ProjectType:         pricing.ProjectType(strings.TrimSpace(r.FormValue("projectType"))),
			Complexity:          pricing.Complexity(strings.TrimSpace(r.FormValue("complexity"))),
			TimelineUrgency:     pricing.TimelineUrgency(strings.TrimSpace(r.FormValue("timelineUrgency"))),
			TechStackComplexity: pricing.TechStack(strings.TrimSpace(r.FormValue("techStackComplexity"))),
			ClientType:          pricing.ClientType(strings.TrimSpace(r.FormValue("clientType"))),
			Currency:            strings.TrimSpace(r.FormValue("currency")),
		},
		ContactName:  r.FormValue("contactName"),
		ContactEmail: r.FormValue("contactEmail"),
	}

	if raw := strings.TrimSpace(r.FormValue("numPages")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, &pricing.InputError{Field: "numPages", Reason: "must be a whole number"}
		}
		req.NumPages = n
	}

	for _, raw := range r.Form["features"] {
		f := pricing.Feature(strings.TrimSpace(raw))
		if f == "" {
			continue
		}
		if !slices.Contains(pricing.AllFeatures(), f) {
			return req, &pricing.InputError{Field: "features", Reason: fmt.Sprintf("unknown feature %q", f)}
		}
		req.Features.Set(f, true)
	}

	return req, nil
}
