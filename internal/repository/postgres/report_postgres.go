package postgres

import (
	"context"
	"database/sql"

	"districtops/internal/model"
	"districtops/internal/repository"
)

// ReportPostgres implements repository.ReportRepository.
type ReportPostgres struct {
	db *sql.DB
}

// NewReportPostgres creates a new ReportPostgres repository.
func NewReportPostgres(db *sql.DB) *ReportPostgres {
	return &ReportPostgres{db: db}
}

var _ repository.ReportRepository = (*ReportPostgres)(nil)

// Create inserts a report at version 1.
func (p *ReportPostgres) Create(ctx context.Context, r *model.Report) error {
	const q = `
		INSERT INTO reports (id, kind, district_id, contract_id, title, details, status, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8)
	`
	var contractID any
	if r.ContractID != "" {
		contractID = r.ContractID
	}
	if _, err := p.db.ExecContext(ctx, q,
		r.ID,
		string(r.Kind),
		r.DistrictID,
		contractID,
		r.Title,
		r.Details,
		string(r.Status),
		r.CreatedAt,
	); err != nil {
		return mapErr(err)
	}
	r.Version = 1
	return nil
}

// List returns a district's reports, optionally of one kind.
func (p *ReportPostgres) List(ctx context.Context, districtID string, kind model.EntityKind) ([]model.Report, error) {
	const q = `
		SELECT id, kind, district_id, contract_id, title, details, status, version, created_at
		FROM reports
		WHERE district_id = $1 AND ($2 = '' OR kind = $2)
		ORDER BY created_at, id
	`
	rows, err := p.db.QueryContext(ctx, q, districtID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Report, 0)
	for rows.Next() {
		var r model.Report
		var k, status string
		var contractID sql.NullString
		if err := rows.Scan(
			&r.ID,
			&k,
			&r.DistrictID,
			&contractID,
			&r.Title,
			&r.Details,
			&status,
			&r.Version,
			&r.CreatedAt,
		); err != nil {
			return nil, err
		}
		r.Kind = model.EntityKind(k)
		r.Status = model.ReviewStatus(status)
		r.ContractID = contractID.String
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
