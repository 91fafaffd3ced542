package postgres

import (
	"context"
	"database/sql"

	"districtops/internal/model"
	"districtops/internal/repository"
)

const registrationColumns = `id, district_id, student_name, date_of_birth, grade, school,
		address_line, city, state, zip, school_year,
		iep, section_504, mckinney_vento, foster_care, boundary_check,
		status, prior_registration_id, version, created_at`

const documentColumns = `id, registration_id, document_type, filename, storage_path, size, content_type, created_at`

// RegistrationPostgres implements repository.RegistrationRepository.
type RegistrationPostgres struct {
	db *sql.DB
}

// NewRegistrationPostgres creates a new RegistrationPostgres repository.
func NewRegistrationPostgres(db *sql.DB) *RegistrationPostgres {
	return &RegistrationPostgres{db: db}
}

var _ repository.RegistrationRepository = (*RegistrationPostgres)(nil)

func scanRegistration(s rowScanner) (*model.Registration, error) {
	var r model.Registration
	var status string
	var prior sql.NullString
	if err := s.Scan(
		&r.ID,
		&r.DistrictID,
		&r.StudentName,
		&r.DateOfBirth,
		&r.Grade,
		&r.School,
		&r.Address.Line,
		&r.Address.City,
		&r.Address.State,
		&r.Address.Zip,
		&r.SchoolYear,
		&r.Programs.IEP,
		&r.Programs.Section504,
		&r.Programs.McKinneyVento,
		&r.Programs.FosterCare,
		&r.DistrictBoundaryCheck,
		&status,
		&prior,
		&r.Version,
		&r.CreatedAt,
	); err != nil {
		return nil, err
	}
	r.Status = model.ReviewStatus(status)
	r.PriorRegistrationID = prior.String
	return &r, nil
}

// Create inserts a registration at version 1 and returns the stored row.
func (p *RegistrationPostgres) Create(ctx context.Context, reg *model.Registration) (*model.Registration, error) {
	const q = `
		INSERT INTO registrations (` + registrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, 1, $19)
		RETURNING ` + registrationColumns + `
	`
	var prior any
	if reg.PriorRegistrationID != "" {
		prior = reg.PriorRegistrationID
	}
	row := p.db.QueryRowContext(ctx, q,
		reg.ID,
		reg.DistrictID,
		reg.StudentName,
		reg.DateOfBirth,
		reg.Grade,
		reg.School,
		reg.Address.Line,
		reg.Address.City,
		reg.Address.State,
		reg.Address.Zip,
		reg.SchoolYear,
		reg.Programs.IEP,
		reg.Programs.Section504,
		reg.Programs.McKinneyVento,
		reg.Programs.FosterCare,
		reg.DistrictBoundaryCheck,
		string(reg.Status),
		prior,
		reg.CreatedAt,
	)
	out, err := scanRegistration(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// FindByID fetches a single registration.
func (p *RegistrationPostgres) FindByID(ctx context.Context, id string) (*model.Registration, error) {
	const q = `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	out, err := scanRegistration(p.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// ListBySchoolYear returns a district's registrations for one school year.
func (p *RegistrationPostgres) ListBySchoolYear(ctx context.Context, districtID, schoolYear string) ([]model.Registration, error) {
	const q = `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE district_id = $1 AND school_year = $2
		ORDER BY created_at, id
	`
	rows, err := p.db.QueryContext(ctx, q, districtID, schoolYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Registration, 0)
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// AddDocument records an uploaded residency document.
func (p *RegistrationPostgres) AddDocument(ctx context.Context, doc *model.ResidencyDocument) error {
	const q = `
		INSERT INTO residency_documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := p.db.ExecContext(ctx, q,
		doc.ID,
		doc.RegistrationID,
		doc.DocumentType,
		doc.Filename,
		doc.StoragePath,
		doc.Size,
		doc.ContentType,
		doc.CreatedAt,
	)
	return mapErr(err)
}

// ListDocuments returns a registration's documents, oldest first.
func (p *RegistrationPostgres) ListDocuments(ctx context.Context, registrationID string) ([]model.ResidencyDocument, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM residency_documents
		WHERE registration_id = $1
		ORDER BY created_at, id
	`
	rows, err := p.db.QueryContext(ctx, q, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ResidencyDocument, 0)
	for rows.Next() {
		var d model.ResidencyDocument
		if err := rows.Scan(
			&d.ID,
			&d.RegistrationID,
			&d.DocumentType,
			&d.Filename,
			&d.StoragePath,
			&d.Size,
			&d.ContentType,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// CountDocuments counts documents for many registrations in one query.
func (p *RegistrationPostgres) CountDocuments(ctx context.Context, registrationIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(registrationIDs))
	if len(registrationIDs) == 0 {
		return out, nil
	}
	const q = `
		SELECT registration_id, COUNT(*)
		FROM residency_documents
		WHERE registration_id = ANY($1)
		GROUP BY registration_id
	`
	rows, err := p.db.QueryContext(ctx, q, registrationIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertAttestation replaces the attestation for the registration and school year.
func (p *RegistrationPostgres) UpsertAttestation(ctx context.Context, att *model.Attestation) error {
	const q = `
		INSERT INTO attestations (registration_id, school_year, statement, signer_name, signed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (registration_id, school_year)
		DO UPDATE SET statement = EXCLUDED.statement, signer_name = EXCLUDED.signer_name, signed_at = EXCLUDED.signed_at
	`
	_, err := p.db.ExecContext(ctx, q,
		att.RegistrationID,
		att.SchoolYear,
		att.Statement,
		att.SignerName,
		att.SignedAt,
	)
	return mapErr(err)
}

// FindAttestation returns the canonical attestation for a cycle.
func (p *RegistrationPostgres) FindAttestation(ctx context.Context, registrationID, schoolYear string) (*model.Attestation, error) {
	const q = `
		SELECT registration_id, school_year, statement, signer_name, signed_at
		FROM attestations
		WHERE registration_id = $1 AND school_year = $2
	`
	var a model.Attestation
	if err := p.db.QueryRowContext(ctx, q, registrationID, schoolYear).Scan(
		&a.RegistrationID,
		&a.SchoolYear,
		&a.Statement,
		&a.SignerName,
		&a.SignedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}
