package main

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/estimator/internal/inquiry"
)

func TestInquirySubmit(t *testing.T) {
	env := newTestServer(t)

	est := env.do(t, http.MethodPost, "/api/estimate", scenarioRequest(), false)
	require.Equal(t, http.StatusOK, est.Code)
	var estimate estimateResponse
	decodeBody(t, est, &estimate)

	rec := env.do(t, http.MethodPost, "/api/inquiries", map[string]string{
		"id":      "client-chosen",
		"name":    " Ana Díaz ",
		"email":   "ana@example.com",
		"company": "Acme",
		"budget":  "10k",
		"message": "We would like to start in June.",
		"quoteId": estimate.ID,
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]string
	decodeBody(t, rec, &created)
	assert.NotEmpty(t, created["id"])
	assert.NotEqual(t, "client-chosen", created["id"])

	list, err := env.srv.inquiries.List(context.Background(), inquiry.ListQuery{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana Díaz", list[0].Name)
	assert.Equal(t, estimate.ID, list[0].QuoteID)

	require.NoError(t, env.srv.intake.Wait(context.Background()))
	sent := env.sender.sent()
	require.Len(t, sent, 2)
	recipients := []string{sent[0].To, sent[1].To}
	assert.ElementsMatch(t, []string{testAdminEmail, "ana@example.com"}, recipients)
	for _, msg := range sent {
		assert.Equal(t, "hello@example.com", msg.From)
		if msg.To == testAdminEmail {
			assert.Equal(t, "ana@example.com", msg.ReplyTo)
		}
	}
}

func TestInquirySubmitRejectsInvalidFields(t *testing.T) {
	env := newTestServer(t)

	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"missing name", map[string]string{"email": "a@example.com", "message": "hi"}, "name"},
		{"bad email", map[string]string{"name": "Ana", "email": "not-an-email", "message": "hi"}, "email"},
		{"missing message", map[string]string{"name": "Ana", "email": "a@example.com"}, "message"},
		{"unknown quote", map[string]string{"name": "Ana", "email": "a@example.com", "message": "hi", "quoteId": "nope"}, "quoteId"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/inquiries", tt.body, false)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var got map[string]string
			decodeBody(t, rec, &got)
			assert.Equal(t, tt.field, got["field"])
		})
	}

	assert.Empty(t, env.sender.sent())
	list, err := env.srv.inquiries.List(context.Background(), inquiry.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAdminInquiriesList(t *testing.T) {
	env := newTestServer(t)

	rec := env.do(t, http.MethodPost, "/api/inquiries", map[string]string{
		"name": "Ana", "email": "ana@example.com", "message": "Hello",
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/admin/inquiries", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Inquiries []inquiry.Inquiry `json:"inquiries"`
	}
	decodeBody(t, rec, &got)
	require.Len(t, got.Inquiries, 1)
	assert.Equal(t, "ana@example.com", got.Inquiries[0].Email)
}
