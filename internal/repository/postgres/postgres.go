// Package postgres implements the repository ports on PostgreSQL through
// database/sql and the pgx stdlib driver. It contains no business logic.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"districtops/internal/repository"
)

// SQLSTATE codes mapped to repository sentinels.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// IsNoRowsError reports whether err means the row does not exist.
func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, repository.ErrNotFound)
}

// mapErr converts driver errors into repository sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, pgErr.ConstraintName)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s", repository.ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

// withTx runs fn in a transaction, rolling back on any error.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// nullTime maps an optional timestamp to a nullable column.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// timePtr maps a nullable column back to an optional timestamp.
func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// Store bundles every postgres repository over one pool.
type Store struct {
	db *sql.DB
}

// NewStore wraps db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ repository.Store = (*Store)(nil)

// Registrations returns the registration repository.
func (s *Store) Registrations() repository.RegistrationRepository { return NewRegistrationPostgres(s.db) }

// Reports returns the report repository.
func (s *Store) Reports() repository.ReportRepository { return NewReportPostgres(s.db) }

// Contracts returns the contract repository.
func (s *Store) Contracts() repository.ContractRepository { return NewContractPostgres(s.db) }

// Invoices returns the invoice repository.
func (s *Store) Invoices() repository.InvoiceRepository { return NewInvoicePostgres(s.db) }

// Bids returns the bid repository.
func (s *Store) Bids() repository.BidRepository { return NewBidPostgres(s.db) }

// Compliance returns the compliance repository.
func (s *Store) Compliance() repository.ComplianceRepository { return NewCompliancePostgres(s.db) }
