package archive

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JaimeStill/scribe/pkg/repository"
)

type store interface {
	SaveReport(ctx context.Context, e entry) error
	SaveExport(ctx context.Context, e entry) error
	Recent(ctx context.Context, limit int) ([]Record, error)
}

type repo struct {
	db *sql.DB
}

func (r *repo) SaveReport(ctx context.Context, e entry) error {
	return insert(ctx, r.db, `
		INSERT INTO reports(item_id, name, report, generated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (item_id) DO NOTHING`,
		e.itemID, e.name, e.body, e.at,
	)
}

func (r *repo) SaveExport(ctx context.Context, e entry) error {
	return insert(ctx, r.db, `
		INSERT INTO exports(item_id, address, exported_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id) DO NOTHING`,
		e.itemID, e.body, e.at,
	)
}

func insert(ctx context.Context, db repository.DB, query string, args ...any) error {
	written, err := repository.InsertOnce(ctx, db, query, args...)
	if err != nil {
		return repository.MapError(err, ErrDuplicate)
	}
	if !written {
		return ErrDuplicate
	}
	return nil
}

func (r *repo) Recent(ctx context.Context, limit int) ([]Record, error) {
	q := `
		SELECT r.item_id, r.name, r.report, r.generated_at, e.address, e.exported_at
		FROM reports r
		LEFT JOIN exports e ON e.item_id = r.item_id
		ORDER BY r.generated_at DESC
		LIMIT $1`

	records, err := repository.QueryMany(ctx, r.db, q, []any{limit}, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	return records, nil
}

func scanRecord(s repository.Scanner) (Record, error) {
	var (
		rec        Record
		address    sql.NullString
		exportedAt sql.NullTime
	)
	if err := s.Scan(&rec.ItemID, &rec.Name, &rec.Report, &rec.GeneratedAt, &address, &exportedAt); err != nil {
		return Record{}, err
	}
	if address.Valid {
		rec.Address = &address.String
	}
	if exportedAt.Valid {
		rec.ExportedAt = &exportedAt.Time
	}
	return rec, nil
}
