package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/estimator/internal/inquiry"
	"github.com/Simplici0/estimator/internal/quotes"
)

func (s *server) handleInquirySubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var in inquiry.Inquiry
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Server-assigned fields.
	in.ID = ""
	in.CreatedAt = time.Time{}

	if id := strings.TrimSpace(in.QuoteID); id != "" {
		if _, err := s.quotes.Get(r.Context(), id); err != nil {
			if errors.Is(err, quotes.ErrNotFound) {
				writeFieldError(w, "quoteId", "quoteId does not match a saved estimate")
				return
			}
			s.logger.Error("check inquiry quote", zap.String("quote_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to submit inquiry")
			return
		}
	}

	if err := s.intake.Submit(r.Context(), &in); err != nil {
		var fe *inquiry.FieldError
		if errors.As(err, &fe) {
			writeFieldError(w, fe.Field, fe.Error())
			return
		}
		s.logger.Error("submit inquiry", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to submit inquiry")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": in.ID})
}
