package postgres

import (
	"context"
	"database/sql"

	"districtops/internal/model"
	"districtops/internal/repository"
)

const invoiceColumns = `id, contract_id, district_id, invoice_number, invoice_date, invoiced_amount,
		verified_amount, gps_verified, status, reviewed_by, reviewed_at, version, created_at`

// InvoicePostgres implements repository.InvoiceRepository.
type InvoicePostgres struct {
	db *sql.DB
}

// NewInvoicePostgres creates a new InvoicePostgres repository.
func NewInvoicePostgres(db *sql.DB) *InvoicePostgres {
	return &InvoicePostgres{db: db}
}

var _ repository.InvoiceRepository = (*InvoicePostgres)(nil)

func scanInvoice(s rowScanner) (*model.Invoice, error) {
	var inv model.Invoice
	var status string
	var verified sql.NullFloat64
	var reviewedAt sql.NullTime
	if err := s.Scan(
		&inv.ID,
		&inv.ContractID,
		&inv.DistrictID,
		&inv.InvoiceNumber,
		&inv.InvoiceDate,
		&inv.InvoicedAmount,
		&verified,
		&inv.GPSVerified,
		&status,
		&inv.ReviewedBy,
		&reviewedAt,
		&inv.Version,
		&inv.CreatedAt,
	); err != nil {
		return nil, err
	}
	inv.Status = model.InvoiceStatus(status)
	if verified.Valid {
		v := verified.Float64
		inv.VerifiedAmount = &v
	}
	inv.ReviewedAt = timePtr(reviewedAt)
	return &inv, nil
}

// Create inserts an invoice at version 1.
func (p *InvoicePostgres) Create(ctx context.Context, inv *model.Invoice) error {
	const q = `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1, $12)
	`
	var verified any
	if inv.VerifiedAmount != nil {
		verified = *inv.VerifiedAmount
	}
	if _, err := p.db.ExecContext(ctx, q,
		inv.ID,
		inv.ContractID,
		inv.DistrictID,
		inv.InvoiceNumber,
		inv.InvoiceDate,
		inv.InvoicedAmount,
		verified,
		inv.GPSVerified,
		string(inv.Status),
		inv.ReviewedBy,
		nullTime(inv.ReviewedAt),
		inv.CreatedAt,
	); err != nil {
		return mapErr(err)
	}
	inv.Version = 1
	return nil
}

// FindByID fetches a single invoice.
func (p *InvoicePostgres) FindByID(ctx context.Context, id string) (*model.Invoice, error) {
	const q = `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(p.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return inv, nil
}

// List returns invoices matching f, ordered by invoice date.
func (p *InvoicePostgres) List(ctx context.Context, f repository.InvoiceFilter) ([]model.Invoice, error) {
	const q = `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE ($1 = '' OR district_id = $1)
		  AND ($2 = '' OR contract_id::text = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY invoice_date, id
	`
	rows, err := p.db.QueryContext(ctx, q, f.DistrictID, f.ContractID, string(f.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveReconciliation records the verified amount and its audit entry in one
// transaction, guarded by version. Status is left untouched.
func (p *InvoicePostgres) SaveReconciliation(ctx context.Context, id string, version int64, verified float64, gpsVerified bool, entry model.AuditEntry) error {
	const q = `
		UPDATE invoices
		SET verified_amount = $1, gps_verified = $2, version = version + 1
		WHERE id = $3 AND version = $4
	`
	ref := model.EntityRef{Kind: model.KindInvoice, ID: id}
	return withTx(ctx, p.db, func(tx *sql.Tx) error {
		if err := execVersioned(ctx, tx, ref, q, verified, gpsVerified, id, version); err != nil {
			return err
		}
		return insertAudit(ctx, tx, entry)
	})
}
