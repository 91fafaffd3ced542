// Package memory is an in-process implementation of the repository ports.
// It backs STORE_BACKEND=memory and service tests, and enforces the same
// version checks as the postgres implementation.
package memory

import (
	"context"
	"sync"

	"districtops/internal/model"
	"districtops/internal/repository"
)

// Store holds every table behind a single lock.
type Store struct {
	mu sync.RWMutex

	registrations map[string]model.Registration
	documents     map[string][]model.ResidencyDocument
	attestations  map[string]model.Attestation
	reports       map[string]model.Report
	contracts     map[string]model.Contract
	insurance     map[string][]model.InsuranceRecord
	samples       map[string][]model.PerformanceSample
	invoices      map[string]model.Invoice
	solicitations map[string]model.BidSolicitation
	responses     map[string]model.BidResponse
	compliance    map[string]*model.ComplianceSnapshot
	audit         []model.AuditEntry
}

// New returns an empty store.
func New() *Store {
	return &Store{
		registrations: make(map[string]model.Registration),
		documents:     make(map[string][]model.ResidencyDocument),
		attestations:  make(map[string]model.Attestation),
		reports:       make(map[string]model.Report),
		contracts:     make(map[string]model.Contract),
		insurance:     make(map[string][]model.InsuranceRecord),
		samples:       make(map[string][]model.PerformanceSample),
		invoices:      make(map[string]model.Invoice),
		solicitations: make(map[string]model.BidSolicitation),
		responses:     make(map[string]model.BidResponse),
		compliance:    make(map[string]*model.ComplianceSnapshot),
	}
}

var _ repository.Store = (*Store)(nil)

// Load implements repository.ReviewRepository.
func (s *Store) Load(_ context.Context, ref model.EntityRef) (model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := model.Snapshot{Ref: ref}
	switch ref.Kind {
	case model.KindRegistration:
		r, ok := s.registrations[ref.ID]
		if !ok {
			return snap, repository.ErrNotFound
		}
		snap.DistrictID, snap.Status, snap.Version = r.DistrictID, string(r.Status), r.Version
	case model.KindInvoice:
		inv, ok := s.invoices[ref.ID]
		if !ok {
			return snap, repository.ErrNotFound
		}
		snap.DistrictID, snap.Status, snap.Version = inv.DistrictID, string(inv.Status), inv.Version
	case model.KindSafetyReport, model.KindDriverReport:
		r, ok := s.reports[ref.ID]
		if !ok || r.Kind != ref.Kind {
			return snap, repository.ErrNotFound
		}
		snap.DistrictID, snap.Status, snap.Version = r.DistrictID, string(r.Status), r.Version
	default:
		return snap, repository.ErrNotFound
	}
	return snap, nil
}

// Commit implements repository.ReviewRepository.
func (s *Store) Commit(_ context.Context, snap model.Snapshot, status string, entry model.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch snap.Ref.Kind {
	case model.KindRegistration:
		r, ok := s.registrations[snap.Ref.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if r.Version != snap.Version {
			return repository.ErrConflict
		}
		r.Status = model.ReviewStatus(status)
		r.Version++
		s.registrations[r.ID] = r
	case model.KindInvoice:
		inv, ok := s.invoices[snap.Ref.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if inv.Version != snap.Version {
			return repository.ErrConflict
		}
		at := entry.CreatedAt
		inv.Status = model.InvoiceStatus(status)
		inv.ReviewedBy = entry.ActorID
		inv.ReviewedAt = &at
		inv.Version++
		s.invoices[inv.ID] = inv
	case model.KindSafetyReport, model.KindDriverReport:
		r, ok := s.reports[snap.Ref.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if r.Version != snap.Version {
			return repository.ErrConflict
		}
		r.Status = model.ReviewStatus(status)
		r.Version++
		s.reports[r.ID] = r
	default:
		return repository.ErrNotFound
	}
	s.audit = append(s.audit, entry)
	return nil
}

// ListByEntity implements repository.AuditRepository.
func (s *Store) ListByEntity(_ context.Context, ref model.EntityRef) ([]model.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.AuditEntry, 0)
	for _, e := range s.audit {
		if e.EntityKind == ref.Kind && e.EntityID == ref.ID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListByDistrict implements repository.AuditRepository, newest first.
func (s *Store) ListByDistrict(_ context.Context, districtID string, pq repository.PageQuery) (*repository.PageResult[model.AuditEntry], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]model.AuditEntry, 0)
	for i := len(s.audit) - 1; i >= 0; i-- {
		if s.audit[i].DistrictID == districtID {
			all = append(all, s.audit[i])
		}
	}
	return &repository.PageResult[model.AuditEntry]{Items: page(all, pq), Total: len(all)}, nil
}

func page[T any](items []T, pq repository.PageQuery) []T {
	if pq.Offset < 0 {
		pq.Offset = 0
	}
	if pq.Offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if pq.Limit > 0 && pq.Offset+pq.Limit < end {
		end = pq.Offset + pq.Limit
	}
	return items[pq.Offset:end]
}
