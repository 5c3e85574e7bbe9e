// Package quotes stores estimate snapshots and renders them for staff.
package quotes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/Simplici0/estimator/internal/db"
	"github.com/Simplici0/estimator/internal/pricing"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("quote not found")

// Quote is an immutable snapshot of one calculation. Detail views read the
// stored breakdown and never recalculate against current rates.
type Quote struct {
	ID           string                   `json:"id"`
	ContactName  string                   `json:"contactName,omitempty"`
	ContactEmail string                   `json:"contactEmail,omitempty"`
	Currency     string                   `json:"currency"`
	Inputs       pricing.CalculatorInputs `json:"inputs"`
	Breakdown    pricing.CostBreakdown    `json:"breakdown"`
	CreatedAt    time.Time                `json:"createdAt"`
}

// ListQuery filters List. Search matches project type, client type and
// contact fields.
type ListQuery struct {
	Search string
	Limit  int
}

const defaultListLimit = 100

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Create persists q, assigning ID and CreatedAt when they are empty.
func (s *Store) Create(ctx context.Context, q *Quote) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = s.now().UTC()
	}

	inputs, err := json.Marshal(q.Inputs)
	if err != nil {
		return eris.Wrap(err, "quotes: encode inputs")
	}
	breakdown, err := json.Marshal(q.Breakdown)
	if err != nil {
		return eris.Wrap(err, "quotes: encode breakdown")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quotes (
			id, project_type, client_type, contact_name, contact_email, currency,
			total, range_min, range_max, inputs_json, breakdown_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		q.ID, string(q.Inputs.ProjectType), string(q.Inputs.ClientType), q.ContactName, q.ContactEmail, q.Currency,
		q.Breakdown.Total, q.Breakdown.Range.Min, q.Breakdown.Range.Max, string(inputs), string(breakdown), q.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "quotes: insert")
	}
	return nil
}

const selectColumns = `id, contact_name, contact_email, currency, inputs_json, breakdown_json, created_at`

// Get loads one snapshot.
func (s *Store) Get(ctx context.Context, id string) (Quote, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM quotes WHERE id = ?`, id)
	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Quote{}, ErrNotFound
	}
	if err != nil {
		return Quote{}, eris.Wrapf(err, "quotes: get %s", id)
	}
	return q, nil
}

// List returns snapshots newest first.
func (s *Store) List(ctx context.Context, query ListQuery) ([]Quote, error) {
	search := strings.TrimSpace(query.Search)
	like := db.ContainsPattern(search)
	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM quotes
		WHERE (? = ''
			OR project_type LIKE ? ESCAPE '\'
			OR client_type LIKE ? ESCAPE '\'
			OR contact_name LIKE ? ESCAPE '\'
			OR contact_email LIKE ? ESCAPE '\')
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, search, like, like, like, like, limit)
	if err != nil {
		return nil, eris.Wrap(err, "quotes: list")
	}
	defer rows.Close()

	out := make([]Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, eris.Wrap(err, "quotes: scan")
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "quotes: iterate")
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(sc scanner) (Quote, error) {
	var (
		q                        Quote
		inputsJSON, breakdownRaw string
	)
	if err := sc.Scan(&q.ID, &q.ContactName, &q.ContactEmail, &q.Currency, &inputsJSON, &breakdownRaw, &q.CreatedAt); err != nil {
		return Quote{}, err
	}
	if err := json.Unmarshal([]byte(inputsJSON), &q.Inputs); err != nil {
		return Quote{}, eris.Wrap(err, "decode inputs")
	}
	if err := json.Unmarshal([]byte(breakdownRaw), &q.Breakdown); err != nil {
		return Quote{}, eris.Wrap(err, "decode breakdown")
	}
	q.CreatedAt = q.CreatedAt.UTC()
	return q, nil
}
