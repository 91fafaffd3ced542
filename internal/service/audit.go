package service

import (
	"context"

	"districtops/internal/apperr"
	"districtops/internal/model"
	"districtops/internal/repository"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditPage is a page of a district's audit trail, newest first.
type AuditPage struct {
	Items []model.AuditEntry `json:"data"`
	Total int                `json:"total"`
}

// AuditService reads the append-only audit trail.
type AuditService interface {
	// ForEntity returns every entry for one entity, oldest first. The trail
	// of another district's entity is refused.
	ForEntity(ctx context.Context, actor model.Actor, ref model.EntityRef) ([]model.AuditEntry, error)

	// ForDistrict returns a page of the district's trail.
	ForDistrict(ctx context.Context, districtID string, limit, offset int) (*AuditPage, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService constructs an AuditService.
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) ForEntity(ctx context.Context, actor model.Actor, ref model.EntityRef) ([]model.AuditEntry, error) {
	if !ref.Kind.Valid() {
		return nil, apperr.Validation("unknown entity %q", ref.Kind)
	}
	if ref.ID == "" {
		return nil, apperr.Validation("id is required")
	}
	entries, err := s.repo.ListByEntity(ctx, ref)
	if err != nil {
		return nil, translate(err, string(ref.Kind), ref.ID, "list audit entries for")
	}
	for _, e := range entries {
		if !actor.InDistrict(e.DistrictID) {
			return nil, apperr.OutsideDistrict(string(ref.Kind), ref.ID)
		}
	}
	return entries, nil
}

func (s *auditService) ForDistrict(ctx context.Context, districtID string, limit, offset int) (*AuditPage, error) {
	if districtID == "" {
		return nil, apperr.Validation("district_id is required")
	}
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.ListByDistrict(ctx, districtID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, translate(err, "district", districtID, "list audit entries for")
	}
	return &AuditPage{Items: res.Items, Total: res.Total}, nil
}
