package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/scribe/pkg/repository"
)

var errDuplicate = errors.New("duplicate")

func TestMapError(t *testing.T) {
	other := errors.New("some other error")
	fkErr := &pgconn.PgError{Code: "23503"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"other pg error", fkErr, fkErr},
		{"passthrough", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repository.MapError(tt.err, errDuplicate); got != tt.want {
				t.Errorf("MapError() = %v, want %v", got, tt.want)
			}
		})
	}
}

type result struct {
	rows int64
	err  error
}

func (r result) LastInsertId() (int64, error) { return 0, nil }
func (r result) RowsAffected() (int64, error) { return r.rows, r.err }

type execDB struct {
	res   sql.Result
	err   error
	query string
	args  []any
}

func (d *execDB) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errors.New("not implemented")
}

func (d *execDB) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	d.query = query
	d.args = args
	return d.res, d.err
}

func TestInsertOnce(t *testing.T) {
	execErr := errors.New("connection reset")

	tests := []struct {
		name    string
		db      *execDB
		want    bool
		wantErr error
	}{
		{"written", &execDB{res: result{rows: 1}}, true, nil},
		{"conflict", &execDB{res: result{rows: 0}}, false, nil},
		{"exec error", &execDB{err: execErr}, false, execErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repository.InsertOnce(context.Background(), tt.db, "INSERT", 1, "a")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("written = %v, want %v", got, tt.want)
			}
			if len(tt.db.args) != 2 {
				t.Errorf("args = %v, want 2 forwarded", tt.db.args)
			}
		})
	}
}
