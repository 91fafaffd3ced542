package postgres

import (
	"context"
	"database/sql"

	"districtops/internal/model"
	"districtops/internal/repository"
)

const contractColumns = `id, district_id, contractor_name, contact_name, contact_email, contact_phone,
		start_date, end_date, annual_value, route_count, rate_per_route, rate_per_mile, status, created_at`

const sampleColumns = `id, contract_id, period, on_time_pct, complaints, safety_incidents, routes_completed, routes_missed, created_at`

// ContractPostgres implements repository.ContractRepository.
type ContractPostgres struct {
	db *sql.DB
}

// NewContractPostgres creates a new ContractPostgres repository.
func NewContractPostgres(db *sql.DB) *ContractPostgres {
	return &ContractPostgres{db: db}
}

var _ repository.ContractRepository = (*ContractPostgres)(nil)

func scanContract(s rowScanner) (*model.Contract, error) {
	var c model.Contract
	var status string
	if err := s.Scan(
		&c.ID,
		&c.DistrictID,
		&c.ContractorName,
		&c.ContactName,
		&c.ContactEmail,
		&c.ContactPhone,
		&c.StartDate,
		&c.EndDate,
		&c.AnnualValue,
		&c.RouteCount,
		&c.RatePerRoute,
		&c.RatePerMile,
		&status,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	c.Status = model.ContractStatus(status)
	return &c, nil
}

// Create inserts a contract.
func (p *ContractPostgres) Create(ctx context.Context, c *model.Contract) error {
	const q = `
		INSERT INTO contracts (` + contractColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := p.db.ExecContext(ctx, q,
		c.ID,
		c.DistrictID,
		c.ContractorName,
		c.ContactName,
		c.ContactEmail,
		c.ContactPhone,
		c.StartDate,
		c.EndDate,
		c.AnnualValue,
		c.RouteCount,
		c.RatePerRoute,
		c.RatePerMile,
		string(c.Status),
		c.CreatedAt,
	)
	return mapErr(err)
}

// FindByID fetches a single contract.
func (p *ContractPostgres) FindByID(ctx context.Context, id string) (*model.Contract, error) {
	const q = `SELECT ` + contractColumns + ` FROM contracts WHERE id = $1`
	c, err := scanContract(p.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

// List returns a district's contracts, oldest first.
func (p *ContractPostgres) List(ctx context.Context, districtID string) ([]model.Contract, error) {
	const q = `
		SELECT ` + contractColumns + `
		FROM contracts
		WHERE district_id = $1
		ORDER BY created_at, id
	`
	rows, err := p.db.QueryContext(ctx, q, districtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Contract, 0)
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// AddInsurance records a policy for a contract.
func (p *ContractPostgres) AddInsurance(ctx context.Context, r *model.InsuranceRecord) error {
	const q = `
		INSERT INTO insurance_records (id, contract_id, policy_number, provider, coverage_amount, expiration_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := p.db.ExecContext(ctx, q,
		r.ID,
		r.ContractID,
		r.PolicyNumber,
		r.Provider,
		r.CoverageAmount,
		r.ExpirationDate,
		r.CreatedAt,
	)
	return mapErr(err)
}

// ListInsurance returns a contract's policies, soonest expiration first.
func (p *ContractPostgres) ListInsurance(ctx context.Context, contractID string) ([]model.InsuranceRecord, error) {
	const q = `
		SELECT id, contract_id, policy_number, provider, coverage_amount, expiration_date, created_at
		FROM insurance_records
		WHERE contract_id = $1
		ORDER BY expiration_date, id
	`
	rows, err := p.db.QueryContext(ctx, q, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.InsuranceRecord, 0)
	for rows.Next() {
		var r model.InsuranceRecord
		if err := rows.Scan(
			&r.ID,
			&r.ContractID,
			&r.PolicyNumber,
			&r.Provider,
			&r.CoverageAmount,
			&r.ExpirationDate,
			&r.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// AddPerformanceSample inserts a monthly sample. The (contract_id, period)
// unique constraint surfaces as repository.ErrDuplicate.
func (p *ContractPostgres) AddPerformanceSample(ctx context.Context, s *model.PerformanceSample) error {
	const q = `
		INSERT INTO performance_samples (` + sampleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := p.db.ExecContext(ctx, q,
		s.ID,
		s.ContractID,
		s.Period,
		s.OnTimePct,
		s.Complaints,
		s.SafetyIncidents,
		s.RoutesCompleted,
		s.RoutesMissed,
		s.CreatedAt,
	)
	return mapErr(err)
}

// ListPerformanceSamples returns a contract's samples by period.
func (p *ContractPostgres) ListPerformanceSamples(ctx context.Context, contractID string) ([]model.PerformanceSample, error) {
	const q = `
		SELECT ` + sampleColumns + `
		FROM performance_samples
		WHERE contract_id = $1
		ORDER BY period
	`
	rows, err := p.db.QueryContext(ctx, q, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.PerformanceSample, 0)
	for rows.Next() {
		var s model.PerformanceSample
		if err := rows.Scan(
			&s.ID,
			&s.ContractID,
			&s.Period,
			&s.OnTimePct,
			&s.Complaints,
			&s.SafetyIncidents,
			&s.RoutesCompleted,
			&s.RoutesMissed,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
