// Package inquiry handles the project intake form.
package inquiry

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// Inquiry is a submitted intake form, optionally linked to a saved estimate.
type Inquiry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Company     string    `json:"company,omitempty"`
	ProjectType string    `json:"projectType,omitempty"`
	Budget      string    `json:"budget,omitempty"`
	Message     string    `json:"message"`
	QuoteID     string    `json:"quoteId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

const (
	maxNameLen    = 200
	maxMessageLen = 5000
)

// FieldError names the first invalid field of a submission.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Normalize trims surrounding whitespace from every text field.
func (i *Inquiry) Normalize() {
	i.Name = strings.TrimSpace(i.Name)
	i.Email = strings.TrimSpace(i.Email)
	i.Company = strings.TrimSpace(i.Company)
	i.ProjectType = strings.TrimSpace(i.ProjectType)
	i.Budget = strings.TrimSpace(i.Budget)
	i.Message = strings.TrimSpace(i.Message)
	i.QuoteID = strings.TrimSpace(i.QuoteID)
}

// Validate checks required fields and the email address.
func (i *Inquiry) Validate() error {
	if i.Name == "" {
		return &FieldError{Field: "name", Reason: "is required"}
	}
	if utf8.RuneCountInString(i.Name) > maxNameLen {
		return &FieldError{Field: "name", Reason: "is too long"}
	}
	if i.Email == "" {
		return &FieldError{Field: "email", Reason: "is required"}
	}
	addr, err := mail.ParseAddress(i.Email)
	if err != nil || addr.Address != i.Email {
		return &FieldError{Field: "email", Reason: "is not a valid address"}
	}
	if i.Message == "" {
		return &FieldError{Field: "message", Reason: "is required"}
	}
	if utf8.RuneCountInString(i.Message) > maxMessageLen {
		return &FieldError{Field: "message", Reason: "is too long"}
	}
	return nil
}
