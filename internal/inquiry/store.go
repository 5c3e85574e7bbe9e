package inquiry

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/Simplici0/estimator/internal/db"
)

// ListQuery filters List by name, email, company or message text.
type ListQuery struct {
	Search string
	Limit  int
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Create persists i, assigning ID and CreatedAt when they are empty.
func (s *Store) Create(ctx context.Context, i *Inquiry) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = s.now().UTC()
	}

	var quoteID sql.NullString
	if i.QuoteID != "" {
		quoteID = sql.NullString{String: i.QuoteID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inquiries (id, name, email, company, project_type, budget, message, quote_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, i.ID, i.Name, i.Email, i.Company, i.ProjectType, i.Budget, i.Message, quoteID, i.CreatedAt)
	if err != nil {
		return eris.Wrap(err, "inquiry: insert")
	}
	return nil
}

// List returns inquiries newest first.
func (s *Store) List(ctx context.Context, query ListQuery) ([]Inquiry, error) {
	search := strings.TrimSpace(query.Search)
	like := db.ContainsPattern(search)
	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, company, project_type, budget, message, COALESCE(quote_id, ''), created_at
		FROM inquiries
		WHERE (? = ''
			OR name LIKE ? ESCAPE '\'
			OR email LIKE ? ESCAPE '\'
			OR company LIKE ? ESCAPE '\'
			OR message LIKE ? ESCAPE '\')
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, search, like, like, like, like, limit)
	if err != nil {
		return nil, eris.Wrap(err, "inquiry: list")
	}
	defer rows.Close()

	out := make([]Inquiry, 0)
	for rows.Next() {
		var i Inquiry
		if err := rows.Scan(&i.ID, &i.Name, &i.Email, &i.Company, &i.ProjectType, &i.Budget, &i.Message, &i.QuoteID, &i.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "inquiry: scan")
		}
		i.CreatedAt = i.CreatedAt.UTC()
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "inquiry: iterate")
	}
	return out, nil
}
