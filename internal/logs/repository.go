package logs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListByDomain(ctx context.Context, domain string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, domain, route_action, method, status_code, client_host, city, content, created_at
		FROM log_entries
		WHERE domain = $1
		ORDER BY created_at DESC
	`, domain)
	if err != nil {
		return nil, fmt.Errorf("query log entries: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Domain, &e.RouteAction, &e.Method, &e.StatusCode,
			&e.ClientHost, &e.City, &e.Content, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log entries: %w", err)
	}

	return entries, nil
}

func (r *Repository) Insert(ctx context.Context, domain string, input EntryInput) (Entry, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Entry{}, fmt.Errorf("generate entry id: %w", err)
	}

	e := Entry{
		ID:          id.String(),
		Domain:      domain,
		RouteAction: input.RouteAction,
		Method:      input.Method,
		StatusCode:  input.StatusCode,
		ClientHost:  input.ClientHost,
		City:        input.City,
		Content:     input.Content,
		CreatedAt:   time.Now().UTC(),
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO log_entries (id, domain, route_action, method, status_code, client_host, city, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.Domain, e.RouteAction, e.Method, e.StatusCode, e.ClientHost, e.City, e.Content, e.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("insert log entry: %w", err)
	}

	return e, nil
}

func (r *Repository) DeleteByID(ctx context.Context, domain, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM log_entries WHERE domain = $1 AND id = $2
	`, domain, id)
	if err != nil {
		return fmt.Errorf("delete log entry: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *Repository) DeleteByDomain(ctx context.Context, domain string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM log_entries WHERE domain = $1
	`, domain)
	if err != nil {
		return 0, fmt.Errorf("delete domain log entries: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return affected, nil
}

// DeleteOlderThan removes entries created before cutoff, at most
// batchSize per call; the maintenance endpoint drives it.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	res, err := r.db.ExecContext(ctx, `
		WITH stale AS (
			SELECT id
			FROM log_entries
			WHERE created_at < $1
			ORDER BY created_at ASC
			LIMIT $2
		)
		DELETE FROM log_entries t
		USING stale
		WHERE t.id = stale.id
	`, cutoff, batchSize)
	if err != nil {
		return 0, fmt.Errorf("delete stale log entries: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("stale log entries rows affected: %w", err)
	}

	return affected, nil
}
