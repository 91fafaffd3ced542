package postgres

import (
	"context"
	"database/sql"

	"districtops/internal/model"
	"districtops/internal/repository"
)

// CompliancePostgres implements repository.ComplianceRepository.
type CompliancePostgres struct {
	db *sql.DB
}

// NewCompliancePostgres creates a new CompliancePostgres repository.
func NewCompliancePostgres(db *sql.DB) *CompliancePostgres {
	return &CompliancePostgres{db: db}
}

var _ repository.ComplianceRepository = (*CompliancePostgres)(nil)

func (p *CompliancePostgres) AddStateReport(ctx context.Context, r *model.StateReport) error {
	const q = `
		INSERT INTO state_reports (id, district_id, report_type, school_year, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := p.db.ExecContext(ctx, q, r.ID, r.DistrictID, r.ReportType, r.SchoolYear, r.SubmittedAt)
	return mapErr(err)
}

func (p *CompliancePostgres) AddTraining(ctx context.Context, r *model.TrainingRecord) error {
	const q = `
		INSERT INTO training_records (id, district_id, program, due_date, completed, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := p.db.ExecContext(ctx, q, r.ID, r.DistrictID, r.Program, r.DueDate, r.Completed, nullTime(r.CompletedAt))
	return mapErr(err)
}

func (p *CompliancePostgres) AddProtectedStudent(ctx context.Context, r *model.ProtectedStudentRecord) error {
	const q = `
		INSERT INTO protected_students (id, district_id, student_name, school_of_origin, transportation_provided, identified_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := p.db.ExecContext(ctx, q, r.ID, r.DistrictID, r.StudentName, r.SchoolOfOrigin, r.TransportationProvided, r.IdentifiedAt)
	return mapErr(err)
}

func (p *CompliancePostgres) AddAgreement(ctx context.Context, r *model.DataSharingAgreement) error {
	const q = `
		INSERT INTO data_sharing_agreements (id, district_id, vendor_name, signed, signed_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := p.db.ExecContext(ctx, q, r.ID, r.DistrictID, r.VendorName, r.Signed, nullTime(r.SignedAt), nullTime(r.ExpiresAt))
	return mapErr(err)
}

func (p *CompliancePostgres) AddBreach(ctx context.Context, r *model.BreachRecord) error {
	const q = `
		INSERT INTO breach_records (id, district_id, vendor_name, description, discovered_at, parents_notified, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := p.db.ExecContext(ctx, q, r.ID, r.DistrictID, r.VendorName, r.Description, r.DiscoveredAt, r.ParentsNotified, nullTime(r.ResolvedAt))
	return mapErr(err)
}

// Snapshot reads every artifact of a district inside one read-only
// transaction so the categories are mutually consistent.
func (p *CompliancePostgres) Snapshot(ctx context.Context, districtID string) (*model.ComplianceSnapshot, error) {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	snap := &model.ComplianceSnapshot{}
	readers := []func(context.Context, *sql.Tx, string, *model.ComplianceSnapshot) error{
		readStateReports,
		readTrainings,
		readProtectedStudents,
		readAgreements,
		readBreaches,
	}
	for _, read := range readers {
		if err := read(ctx, tx, districtID, snap); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return snap, nil
}

func readStateReports(ctx context.Context, tx *sql.Tx, districtID string, snap *model.ComplianceSnapshot) error {
	const q = `
		SELECT id, district_id, report_type, school_year, submitted_at
		FROM state_reports WHERE district_id = $1 ORDER BY submitted_at, id
	`
	rows, err := tx.QueryContext(ctx, q, districtID)
	if err != nil {
		return err
	}
	defer rows.Close()
	snap.StateReports = make([]model.StateReport, 0)
	for rows.Next() {
		var r model.StateReport
		if err := rows.Scan(&r.ID, &r.DistrictID, &r.ReportType, &r.SchoolYear, &r.SubmittedAt); err != nil {
			return err
		}
		snap.StateReports = append(snap.StateReports, r)
	}
	return rows.Err()
}

func readTrainings(ctx context.Context, tx *sql.Tx, districtID string, snap *model.ComplianceSnapshot) error {
	const q = `
		SELECT id, district_id, program, due_date, completed, completed_at
		FROM training_records WHERE district_id = $1 ORDER BY due_date, id
	`
	rows, err := tx.QueryContext(ctx, q, districtID)
	if err != nil {
		return err
	}
	defer rows.Close()
	snap.Trainings = make([]model.TrainingRecord, 0)
	for rows.Next() {
		var r model.TrainingRecord
		var completedAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.DistrictID, &r.Program, &r.DueDate, &r.Completed, &completedAt); err != nil {
			return err
		}
		r.CompletedAt = timePtr(completedAt)
		snap.Trainings = append(snap.Trainings, r)
	}
	return rows.Err()
}

func readProtectedStudents(ctx context.Context, tx *sql.Tx, districtID string, snap *model.ComplianceSnapshot) error {
	const q = `
		SELECT id, district_id, student_name, school_of_origin, transportation_provided, identified_at
		FROM protected_students WHERE district_id = $1 ORDER BY identified_at, id
	`
	rows, err := tx.QueryContext(ctx, q, districtID)
	if err != nil {
		return err
	}
	defer rows.Close()
	snap.ProtectedStudents = make([]model.ProtectedStudentRecord, 0)
	for rows.Next() {
		var r model.ProtectedStudentRecord
		if err := rows.Scan(&r.ID, &r.DistrictID, &r.StudentName, &r.SchoolOfOrigin, &r.TransportationProvided, &r.IdentifiedAt); err != nil {
			return err
		}
		snap.ProtectedStudents = append(snap.ProtectedStudents, r)
	}
	return rows.Err()
}

func readAgreements(ctx context.Context, tx *sql.Tx, districtID string, snap *model.ComplianceSnapshot) error {
	const q = `
		SELECT id, district_id, vendor_name, signed, signed_at, expires_at
		FROM data_sharing_agreements WHERE district_id = $1 ORDER BY vendor_name, id
	`
	rows, err := tx.QueryContext(ctx, q, districtID)
	if err != nil {
		return err
	}
	defer rows.Close()
	snap.Agreements = make([]model.DataSharingAgreement, 0)
	for rows.Next() {
		var r model.DataSharingAgreement
		var signedAt, expiresAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.DistrictID, &r.VendorName, &r.Signed, &signedAt, &expiresAt); err != nil {
			return err
		}
		r.SignedAt = timePtr(signedAt)
		r.ExpiresAt = timePtr(expiresAt)
		snap.Agreements = append(snap.Agreements, r)
	}
	return rows.Err()
}

func readBreaches(ctx context.Context, tx *sql.Tx, districtID string, snap *model.ComplianceSnapshot) error {
	const q = `
		SELECT id, district_id, vendor_name, description, discovered_at, parents_notified, resolved_at
		FROM breach_records WHERE district_id = $1 ORDER BY discovered_at, id
	`
	rows, err := tx.QueryContext(ctx, q, districtID)
	if err != nil {
		return err
	}
	defer rows.Close()
	snap.Breaches = make([]model.BreachRecord, 0)
	for rows.Next() {
		var r model.BreachRecord
		var resolvedAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.DistrictID, &r.VendorName, &r.Description, &r.DiscoveredAt, &r.ParentsNotified, &resolvedAt); err != nil {
			return err
		}
		r.ResolvedAt = timePtr(resolvedAt)
		snap.Breaches = append(snap.Breaches, r)
	}
	return rows.Err()
}
