package postgres

import (
	"context"
	"database/sql"

	"districtops/internal/model"
	"districtops/internal/repository"
)

const auditColumns = `id, entity_kind, entity_id, district_id, actor_id, action, from_status, to_status, notes, created_at`

type reviewQueries struct {
	load   string
	update string
}

var reportQueries = reviewQueries{
	load:   `SELECT district_id, status, version FROM reports WHERE id = $1 AND kind = $2`,
	update: `UPDATE reports SET status = $1, version = version + 1 WHERE id = $2 AND version = $3 AND kind = $4`,
}

var reviewTables = map[model.EntityKind]reviewQueries{
	model.KindRegistration: {
		load:   `SELECT district_id, status, version FROM registrations WHERE id = $1`,
		update: `UPDATE registrations SET status = $1, version = version + 1 WHERE id = $2 AND version = $3`,
	},
	model.KindInvoice: {
		load: `SELECT district_id, status, version FROM invoices WHERE id = $1`,
		update: `UPDATE invoices SET status = $1, reviewed_by = $4, reviewed_at = $5, version = version + 1
		WHERE id = $2 AND version = $3`,
	},
	model.KindSafetyReport: reportQueries,
	model.KindDriverReport: reportQueries,
}

func loadArgs(ref model.EntityRef) []any {
	switch ref.Kind {
	case model.KindSafetyReport, model.KindDriverReport:
		return []any{ref.ID, string(ref.Kind)}
	}
	return []any{ref.ID}
}

func loadSnapshot(ctx context.Context, q queryer, ref model.EntityRef) (model.Snapshot, error) {
	snap := model.Snapshot{Ref: ref}
	qs, ok := reviewTables[ref.Kind]
	if !ok {
		return snap, repository.ErrNotFound
	}
	row := q.QueryRowContext(ctx, qs.load, loadArgs(ref)...)
	if err := row.Scan(&snap.DistrictID, &snap.Status, &snap.Version); err != nil {
		return snap, mapErr(err)
	}
	return snap, nil
}

// Load implements repository.ReviewRepository.
func (s *Store) Load(ctx context.Context, ref model.EntityRef) (model.Snapshot, error) {
	return loadSnapshot(ctx, s.db, ref)
}

// Commit implements repository.ReviewRepository. The status update and the
// audit insert share one transaction.
func (s *Store) Commit(ctx context.Context, snap model.Snapshot, status string, entry model.AuditEntry) error {
	qs, ok := reviewTables[snap.Ref.Kind]
	if !ok {
		return repository.ErrNotFound
	}

	args := []any{status, snap.Ref.ID, snap.Version}
	switch snap.Ref.Kind {
	case model.KindInvoice:
		args = append(args, entry.ActorID, entry.CreatedAt)
	case model.KindSafetyReport, model.KindDriverReport:
		args = append(args, string(snap.Ref.Kind))
	}

	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := execVersioned(ctx, tx, snap.Ref, qs.update, args...); err != nil {
			return err
		}
		return insertAudit(ctx, tx, entry)
	})
}

// execVersioned runs a version-guarded update and tells a lost race apart
// from a missing row.
func execVersioned(ctx context.Context, tx *sql.Tx, ref model.EntityRef, q string, args ...any) error {
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := loadSnapshot(ctx, tx, ref); err != nil {
		return err
	}
	return repository.ErrConflict
}

func insertAudit(ctx context.Context, q queryer, e model.AuditEntry) error {
	const stmt = `
		INSERT INTO audit_entries (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := q.ExecContext(ctx, stmt,
		e.ID,
		string(e.EntityKind),
		e.EntityID,
		e.DistrictID,
		e.ActorID,
		string(e.Action),
		e.FromStatus,
		e.ToStatus,
		e.Notes,
		e.CreatedAt,
	)
	return err
}

func scanAudit(s rowScanner) (model.AuditEntry, error) {
	var e model.AuditEntry
	var kind, action string
	err := s.Scan(
		&e.ID,
		&kind,
		&e.EntityID,
		&e.DistrictID,
		&e.ActorID,
		&action,
		&e.FromStatus,
		&e.ToStatus,
		&e.Notes,
		&e.CreatedAt,
	)
	e.EntityKind = model.EntityKind(kind)
	e.Action = model.Action(action)
	return e, err
}

func collectAudit(rows *sql.Rows) ([]model.AuditEntry, error) {
	defer rows.Close()
	items := make([]model.AuditEntry, 0)
	for rows.Next() {
		e, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByEntity implements repository.AuditRepository, oldest first.
func (s *Store) ListByEntity(ctx context.Context, ref model.EntityRef) ([]model.AuditEntry, error) {
	const q = `
		SELECT ` + auditColumns + `
		FROM audit_entries
		WHERE entity_kind = $1 AND entity_id = $2
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, q, string(ref.Kind), ref.ID)
	if err != nil {
		return nil, err
	}
	return collectAudit(rows)
}

// ListByDistrict implements repository.AuditRepository, newest first. A
// non-positive limit returns every entry.
func (s *Store) ListByDistrict(ctx context.Context, districtID string, pq repository.PageQuery) (*repository.PageResult[model.AuditEntry], error) {
	const qCount = `SELECT COUNT(*) FROM audit_entries WHERE district_id = $1`
	var total int
	if err := s.db.QueryRowContext(ctx, qCount, districtID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + auditColumns + `
		FROM audit_entries
		WHERE district_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	var limit any
	if pq.Limit > 0 {
		limit = pq.Limit
	}
	offset := pq.Offset
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, qList, districtID, limit, offset)
	if err != nil {
		return nil, err
	}
	items, err := collectAudit(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.AuditEntry]{Items: items, Total: total}, nil
}
