package main

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/estimator/internal/inquiry"
	"github.com/Simplici0/estimator/internal/money"
	"github.com/Simplici0/estimator/internal/pricing"
	"github.com/Simplici0/estimator/internal/quotes"
	"github.com/Simplici0/estimator/internal/ratestore"
)

type ratesResponse struct {
	Rates    pricing.RateConfiguration `json:"rates"`
	Problems []string                  `json:"problems"`
}

type quoteListItem struct {
	ID             string              `json:"id"`
	CreatedAt      time.Time           `json:"createdAt"`
	ContactName    string              `json:"contactName,omitempty"`
	ContactEmail   string              `json:"contactEmail,omitempty"`
	ProjectType    pricing.ProjectType `json:"projectType"`
	ClientType     pricing.ClientType  `json:"clientType"`
	Currency       string              `json:"currency"`
	Total          float64             `json:"total"`
	Range          pricing.Range       `json:"range"`
	FormattedTotal string              `json:"formattedTotal"`
}

type quotesResponse struct {
	Query  string          `json:"query"`
	Quotes []quoteListItem `json:"quotes"`
}

func (s *server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	email, password, err := readCredentials(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if email == "" || password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ok, err := s.auth.validateCredentials(r.Context(), email, password)
	if err != nil {
		s.logger.Error("validate credentials", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to sign in")
		return
	}
	if !ok {
		s.logger.Info("failed login", zap.String("email", email))
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.auth.setSessionCookie(w, email)
	writeJSON(w, http.StatusOK, map[string]string{"email": email})
}

func readCredentials(w http.ResponseWriter, r *http.Request) (string, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", "", err
		}
		return strings.TrimSpace(body.Email), body.Password, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(r.FormValue("email")), r.FormValue("password"), nil
}

func (s *server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleAdminRates(w http.ResponseWriter, r *http.Request) {
	rc, err := s.rates.Load(r.Context())
	if err != nil {
		s.logger.Error("load rate configuration", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load rates")
		return
	}
	writeJSON(w, http.StatusOK, ratesResponse{Rates: rc, Problems: problemMessages(rc)})
}

func (s *server) handleAdminRatesUpdate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	rc := pricing.NewRateConfiguration()
	if err := json.NewDecoder(r.Body).Decode(&rc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := ratestore.CheckKeys(rc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := ratestore.CheckValues(rc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.rates.Save(r.Context(), rc); err != nil {
		s.logger.Error("save rate configuration", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save rates")
		return
	}

	problems := problemMessages(rc)
	email, _ := s.auth.sessionEmail(r)
	s.logger.Info("rate configuration updated",
		zap.String("by", email),
		zap.Int("problems", len(problems)),
	)
	writeJSON(w, http.StatusOK, ratesResponse{Rates: rc, Problems: problems})
}

func problemMessages(rc pricing.RateConfiguration) []string {
	out := make([]string, 0)
	for _, p := range pricing.Problems(rc) {
		out = append(out, p.Error())
	}
	return out
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	list, err := s.quotes.List(r.Context(), quotes.ListQuery{Search: query, Limit: parseLimit(r)})
	if err != nil {
		s.logger.Error("list quotes", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load quotes")
		return
	}

	items := make([]quoteListItem, 0, len(list))
	for _, q := range list {
		total, _ := money.Format(q.Breakdown.Total, q.Currency)
		items = append(items, quoteListItem{
			ID:             q.ID,
			CreatedAt:      q.CreatedAt,
			ContactName:    q.ContactName,
			ContactEmail:   q.ContactEmail,
			ProjectType:    q.Inputs.ProjectType,
			ClientType:     q.Inputs.ClientType,
			Currency:       q.Currency,
			Total:          q.Breakdown.Total,
			Range:          q.Breakdown.Range,
			FormattedTotal: total,
		})
	}
	writeJSON(w, http.StatusOK, quotesResponse{Query: query, Quotes: items})
}

// getQuote loads the snapshot named by the {id} URL parameter, writing the
// error response itself when it fails.
func (s *server) getQuote(w http.ResponseWriter, r *http.Request) (quotes.Quote, bool) {
	id := chi.URLParam(r, "id")
	q, err := s.quotes.Get(r.Context(), id)
	if errors.Is(err, quotes.ErrNotFound) {
		writeError(w, http.StatusNotFound, "quote not found")
		return quotes.Quote{}, false
	}
	if err != nil {
		s.logger.Error("load quote", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load quote")
		return quotes.Quote{}, false
	}
	return q, true
}

func (s *server) handleQuoteDetail(w http.ResponseWriter, r *http.Request) {
	q, ok := s.getQuote(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	q, ok := s.getQuote(w, r)
	if !ok {
		return
	}
	text, err := quotes.Text(q)
	if err != nil {
		s.logger.Error("render quote text", zap.String("id", q.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render quote")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

func (s *server) handleQuotesExport(w http.ResponseWriter, r *http.Request) {
	list, err := s.quotes.List(r.Context(), quotes.ListQuery{
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:  parseLimit(r),
	})
	if err != nil {
		s.logger.Error("list quotes for export", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load quotes")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="estimates.xlsx"`)
	if err := quotes.WriteXLSX(w, list); err != nil {
		s.logger.Error("write quotes export", zap.Error(err))
	}
}

func (s *server) handleInquiriesList(w http.ResponseWriter, r *http.Request) {
	list, err := s.inquiries.List(r.Context(), inquiry.ListQuery{
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:  parseLimit(r),
	})
	if err != nil {
		s.logger.Error("list inquiries", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load inquiries")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"inquiries": list})
}

// parseLimit reads ?limit=, capped at 1000. Invalid values use the store default.
func parseLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return 0
	}
	return min(n, 1000)
}
