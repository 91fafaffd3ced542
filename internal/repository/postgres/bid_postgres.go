package postgres

import (
	"context"
	"database/sql"

	"districtops/internal/model"
	"districtops/internal/repository"
)

const solicitationColumns = `id, district_id, title, description, route_spec, open_date, close_date, status, reference_rate, created_at`

const responseColumns = `id, solicitation_id, contractor_name, proposed_rate, fleet_details, safety_record, total_score, status, submitted_at`

// BidPostgres implements repository.BidRepository.
type BidPostgres struct {
	db *sql.DB
}

// NewBidPostgres creates a new BidPostgres repository.
func NewBidPostgres(db *sql.DB) *BidPostgres {
	return &BidPostgres{db: db}
}

var _ repository.BidRepository = (*BidPostgres)(nil)

// CreateSolicitation inserts a solicitation.
func (p *BidPostgres) CreateSolicitation(ctx context.Context, s *model.BidSolicitation) error {
	const q = `
		INSERT INTO bid_solicitations (` + solicitationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := p.db.ExecContext(ctx, q,
		s.ID,
		s.DistrictID,
		s.Title,
		s.Description,
		s.RouteSpec,
		s.OpenDate,
		s.CloseDate,
		string(s.Status),
		s.ReferenceRate,
		s.CreatedAt,
	)
	return mapErr(err)
}

// FindSolicitation fetches one solicitation.
func (p *BidPostgres) FindSolicitation(ctx context.Context, id string) (*model.BidSolicitation, error) {
	const q = `SELECT ` + solicitationColumns + ` FROM bid_solicitations WHERE id = $1`
	var s model.BidSolicitation
	var status string
	if err := p.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID,
		&s.DistrictID,
		&s.Title,
		&s.Description,
		&s.RouteSpec,
		&s.OpenDate,
		&s.CloseDate,
		&status,
		&s.ReferenceRate,
		&s.CreatedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	s.Status = model.SolicitationStatus(status)
	return &s, nil
}

// UpdateSolicitationStatus is a compare-and-set on status.
func (p *BidPostgres) UpdateSolicitationStatus(ctx context.Context, id string, from, to model.SolicitationStatus) error {
	const q = `UPDATE bid_solicitations SET status = $1 WHERE id = $2 AND status = $3`
	res, err := p.db.ExecContext(ctx, q, string(to), id, string(from))
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
	if _, err := p.FindSolicitation(ctx, id); err != nil {
		return err
	}
	return repository.ErrConflict
}

// CreateResponse inserts a scored response.
func (p *BidPostgres) CreateResponse(ctx context.Context, r *model.BidResponse) error {
	const q = `
		INSERT INTO bid_responses (` + responseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := p.db.ExecContext(ctx, q,
		r.ID,
		r.SolicitationID,
		r.ContractorName,
		r.ProposedRate,
		r.FleetDetails,
		r.SafetyRecord,
		r.TotalScore,
		string(r.Status),
		r.SubmittedAt,
	)
	return mapErr(err)
}

func scanResponse(s rowScanner) (*model.BidResponse, error) {
	var r model.BidResponse
	var status string
	if err := s.Scan(
		&r.ID,
		&r.SolicitationID,
		&r.ContractorName,
		&r.ProposedRate,
		&r.FleetDetails,
		&r.SafetyRecord,
		&r.TotalScore,
		&status,
		&r.SubmittedAt,
	); err != nil {
		return nil, err
	}
	r.Status = model.BidResponseStatus(status)
	return &r, nil
}

// FindResponse fetches one response.
func (p *BidPostgres) FindResponse(ctx context.Context, id string) (*model.BidResponse, error) {
	const q = `SELECT ` + responseColumns + ` FROM bid_responses WHERE id = $1`
	r, err := scanResponse(p.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return r, nil
}

// ListResponses returns a solicitation's responses in submission order.
func (p *BidPostgres) ListResponses(ctx context.Context, solicitationID string) ([]model.BidResponse, error) {
	const q = `
		SELECT ` + responseColumns + `
		FROM bid_responses
		WHERE solicitation_id = $1
		ORDER BY submitted_at, id
	`
	rows, err := p.db.QueryContext(ctx, q, solicitationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.BidResponse, 0)
	for rows.Next() {
		r, err := scanResponse(rows)
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

// UpdateResponseStatus sets a response's status.
func (p *BidPostgres) UpdateResponseStatus(ctx context.Context, id string, status model.BidResponseStatus) error {
	const q = `UPDATE bid_responses SET status = $1 WHERE id = $2`
	res, err := p.db.ExecContext(ctx, q, string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Award marks the solicitation and the winning response awarded in one
// transaction.
func (p *BidPostgres) Award(ctx context.Context, solicitationID, responseID string) error {
	const awardSolicitation = `UPDATE bid_solicitations SET status = $1 WHERE id = $2 AND status = $3`
	const awardResponse = `UPDATE bid_responses SET status = $1 WHERE id = $2 AND solicitation_id = $3`
	return withTx(ctx, p.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, awardSolicitation, string(model.SolicitationAwarded), solicitationID, string(model.SolicitationClosed))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var status string
			if err := tx.QueryRowContext(ctx, `SELECT status FROM bid_solicitations WHERE id = $1`, solicitationID).Scan(&status); err != nil {
				return mapErr(err)
			}
			return repository.ErrConflict
		}

		res, err = tx.ExecContext(ctx, awardResponse, string(model.BidAwarded), responseID, solicitationID)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}
