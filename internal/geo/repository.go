package geo

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

func (r *Repository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ip, city, region, country, loc, org, created_at
		FROM geo_records
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query geo records: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.IP, &rec.City, &rec.Region, &rec.Country,
			&rec.Loc, &rec.Org, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan geo record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate geo records: %w", err)
	}

	return records, nil
}

func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Record{}, fmt.Errorf("generate record id: %w", err)
	}

	rec.ID = id.String()
	rec.CreatedAt = time.Now().UTC()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO geo_records (id, ip, city, region, country, loc, org, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.IP, rec.City, rec.Region, rec.Country, rec.Loc, rec.Org, rec.CreatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("insert geo record: %w", err)
	}

	return rec, nil
}

func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	res, err := r.db.ExecContext(ctx, `
		WITH stale AS (
			SELECT id
			FROM geo_records
			WHERE created_at < $1
			ORDER BY created_at ASC
			LIMIT $2
		)
		DELETE FROM geo_records t
		USING stale
		WHERE t.id = stale.id
	`, cutoff, batchSize)
	if err != nil {
		return 0, fmt.Errorf("delete stale geo records: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("stale geo records rows affected: %w", err)
	}

	return affected, nil
}
