package memory

import (
	"context"
	"sort"
	"time"

	"districtops/internal/model"
	"districtops/internal/repository"
)

// Registrations returns the registration repository view.
func (s *Store) Registrations() repository.RegistrationRepository { return registrationRepo{s} }

// Reports returns the report repository view.
func (s *Store) Reports() repository.ReportRepository { return reportRepo{s} }

// Contracts returns the contract repository view.
func (s *Store) Contracts() repository.ContractRepository { return contractRepo{s} }

// Invoices returns the invoice repository view.
func (s *Store) Invoices() repository.InvoiceRepository { return invoiceRepo{s} }

// Bids returns the bid repository view.
func (s *Store) Bids() repository.BidRepository { return bidRepo{s} }

// Compliance returns the compliance repository view.
func (s *Store) Compliance() repository.ComplianceRepository { return complianceRepo{s} }

func byCreated(a, b time.Time, idA, idB string) bool {
	if a.Equal(b) {
		return idA < idB
	}
	return a.Before(b)
}

type registrationRepo struct{ s *Store }

func (r registrationRepo) Create(_ context.Context, reg *model.Registration) (*model.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.registrations[reg.ID]; ok {
		return nil, repository.ErrDuplicate
	}
	if reg.PriorRegistrationID != "" {
		for _, other := range r.s.registrations {
			if other.PriorRegistrationID == reg.PriorRegistrationID {
				return nil, repository.ErrDuplicate
			}
		}
	}
	stored := *reg
	stored.Version = 1
	r.s.registrations[reg.ID] = stored
	return &stored, nil
}

func (r registrationRepo) FindByID(_ context.Context, id string) (*model.Registration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	reg, ok := r.s.registrations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &reg, nil
}

func (r registrationRepo) ListBySchoolYear(_ context.Context, districtID, schoolYear string) ([]model.Registration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Registration, 0)
	for _, reg := range r.s.registrations {
		if reg.DistrictID == districtID && reg.SchoolYear == schoolYear {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return byCreated(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (r registrationRepo) AddDocument(_ context.Context, doc *model.ResidencyDocument) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.registrations[doc.RegistrationID]; !ok {
		return repository.ErrNotFound
	}
	r.s.documents[doc.RegistrationID] = append(r.s.documents[doc.RegistrationID], *doc)
	return nil
}

func (r registrationRepo) ListDocuments(_ context.Context, registrationID string) ([]model.ResidencyDocument, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]model.ResidencyDocument{}, r.s.documents[registrationID]...), nil
}

func (r registrationRepo) CountDocuments(_ context.Context, registrationIDs []string) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]int, len(registrationIDs))
	for _, id := range registrationIDs {
		if n := len(r.s.documents[id]); n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

func (r registrationRepo) UpsertAttestation(_ context.Context, att *model.Attestation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.registrations[att.RegistrationID]; !ok {
		return repository.ErrNotFound
	}
	r.s.attestations[att.RegistrationID+"|"+att.SchoolYear] = *att
	return nil
}

func (r registrationRepo) FindAttestation(_ context.Context, registrationID, schoolYear string) (*model.Attestation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	att, ok := r.s.attestations[registrationID+"|"+schoolYear]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &att, nil
}

type reportRepo struct{ s *Store }

func (r reportRepo) Create(_ context.Context, rep *model.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reports[rep.ID]; ok {
		return repository.ErrDuplicate
	}
	stored := *rep
	stored.Version = 1
	r.s.reports[rep.ID] = stored
	rep.Version = 1
	return nil
}

func (r reportRepo) List(_ context.Context, districtID string, kind model.EntityKind) ([]model.Report, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Report, 0)
	for _, rep := range r.s.reports {
		if rep.DistrictID == districtID && (kind == "" || rep.Kind == kind) {
			out = append(out, rep)
		}
	}
	sort.Slice(out, func(i, j int) bool { return byCreated(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

type contractRepo struct{ s *Store }

func (r contractRepo) Create(_ context.Context, c *model.Contract) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contracts[c.ID]; ok {
		return repository.ErrDuplicate
	}
	r.s.contracts[c.ID] = *c
	return nil
}

func (r contractRepo) FindByID(_ context.Context, id string) (*model.Contract, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.contracts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r contractRepo) List(_ context.Context, districtID string) ([]model.Contract, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Contract, 0)
	for _, c := range r.s.contracts {
		if c.DistrictID == districtID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return byCreated(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (r contractRepo) AddInsurance(_ context.Context, rec *model.InsuranceRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contracts[rec.ContractID]; !ok {
		return repository.ErrNotFound
	}
	r.s.insurance[rec.ContractID] = append(r.s.insurance[rec.ContractID], *rec)
	return nil
}

func (r contractRepo) ListInsurance(_ context.Context, contractID string) ([]model.InsuranceRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := append([]model.InsuranceRecord{}, r.s.insurance[contractID]...)
	sort.Slice(out, func(i, j int) bool {
		return byCreated(out[i].ExpirationDate, out[j].ExpirationDate, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r contractRepo) AddPerformanceSample(_ context.Context, smp *model.PerformanceSample) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contracts[smp.ContractID]; !ok {
		return repository.ErrNotFound
	}
	for _, existing := range r.s.samples[smp.ContractID] {
		if existing.Period == smp.Period {
			return repository.ErrDuplicate
		}
	}
	r.s.samples[smp.ContractID] = append(r.s.samples[smp.ContractID], *smp)
	return nil
}

func (r contractRepo) ListPerformanceSamples(_ context.Context, contractID string) ([]model.PerformanceSample, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := append([]model.PerformanceSample{}, r.s.samples[contractID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

type invoiceRepo struct{ s *Store }

func (r invoiceRepo) Create(_ context.Context, inv *model.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contracts[inv.ContractID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.invoices[inv.ID]; ok {
		return repository.ErrDuplicate
	}
	inv.Version = 1
	r.s.invoices[inv.ID] = *inv
	return nil
}

func (r invoiceRepo) FindByID(_ context.Context, id string) (*model.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &inv, nil
}

func (r invoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]model.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.Invoice, 0)
	for _, inv := range r.s.invoices {
		if f.DistrictID != "" && inv.DistrictID != f.DistrictID {
			continue
		}
		if f.ContractID != "" && inv.ContractID != f.ContractID {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return byCreated(out[i].InvoiceDate, out[j].InvoiceDate, out[i].ID, out[j].ID) })
	return out, nil
}

func (r invoiceRepo) SaveReconciliation(_ context.Context, id string, version int64, verified float64, gpsVerified bool, entry model.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return repository.ErrNotFound
	}
	if inv.Version != version {
		return repository.ErrConflict
	}
	v := verified
	inv.VerifiedAmount = &v
	inv.GPSVerified = gpsVerified
	inv.Version++
	r.s.invoices[id] = inv
	r.s.audit = append(r.s.audit, entry)
	return nil
}

type bidRepo struct{ s *Store }

func (r bidRepo) CreateSolicitation(_ context.Context, sol *model.BidSolicitation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.solicitations[sol.ID]; ok {
		return repository.ErrDuplicate
	}
	r.s.solicitations[sol.ID] = *sol
	return nil
}

func (r bidRepo) FindSolicitation(_ context.Context, id string) (*model.BidSolicitation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sol, ok := r.s.solicitations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sol, nil
}

func (r bidRepo) UpdateSolicitationStatus(_ context.Context, id string, from, to model.SolicitationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sol, ok := r.s.solicitations[id]
	if !ok {
		return repository.ErrNotFound
	}
	if sol.Status != from {
		return repository.ErrConflict
	}
	sol.Status = to
	r.s.solicitations[id] = sol
	return nil
}

func (r bidRepo) CreateResponse(_ context.Context, resp *model.BidResponse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.solicitations[resp.SolicitationID]; !ok {
		return repository.ErrNotFound
	}
	r.s.responses[resp.ID] = *resp
	return nil
}

func (r bidRepo) FindResponse(_ context.Context, id string) (*model.BidResponse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	resp, ok := r.s.responses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &resp, nil
}

func (r bidRepo) ListResponses(_ context.Context, solicitationID string) ([]model.BidResponse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.BidResponse, 0)
	for _, resp := range r.s.responses {
		if resp.SolicitationID == solicitationID {
			out = append(out, resp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return byCreated(out[i].SubmittedAt, out[j].SubmittedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (r bidRepo) UpdateResponseStatus(_ context.Context, id string, status model.BidResponseStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	resp, ok := r.s.responses[id]
	if !ok {
		return repository.ErrNotFound
	}
	resp.Status = status
	r.s.responses[id] = resp
	return nil
}

type complianceRepo struct{ s *Store }

func (r complianceRepo) district(id string) *model.ComplianceSnapshot {
	snap, ok := r.s.compliance[id]
	if !ok {
		snap = &model.ComplianceSnapshot{}
		r.s.compliance[id] = snap
	}
	return snap
}

func (r complianceRepo) AddStateReport(_ context.Context, rep *model.StateReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	snap := r.district(rep.DistrictID)
	snap.StateReports = append(snap.StateReports, *rep)
	return nil
}

func (r complianceRepo) AddTraining(_ context.Context, rec *model.TrainingRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	snap := r.district(rec.DistrictID)
	snap.Trainings = append(snap.Trainings, *rec)
	return nil
}

func (r complianceRepo) AddProtectedStudent(_ context.Context, rec *model.ProtectedStudentRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	snap := r.district(rec.DistrictID)
	snap.ProtectedStudents = append(snap.ProtectedStudents, *rec)
	return nil
}

func (r complianceRepo) AddAgreement(_ context.Context, rec *model.DataSharingAgreement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	snap := r.district(rec.DistrictID)
	snap.Agreements = append(snap.Agreements, *rec)
	return nil
}

func (r complianceRepo) AddBreach(_ context.Context, rec *model.BreachRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	snap := r.district(rec.DistrictID)
	snap.Breaches = append(snap.Breaches, *rec)
	return nil
}

// Snapshot returns copies so callers can read while writers append.
func (r complianceRepo) Snapshot(_ context.Context, districtID string) (*model.ComplianceSnapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	snap, ok := r.s.compliance[districtID]
	if !ok {
		return &model.ComplianceSnapshot{}, nil
	}
	return &model.ComplianceSnapshot{
		StateReports:      append([]model.StateReport{}, snap.StateReports...),
		Trainings:         append([]model.TrainingRecord{}, snap.Trainings...),
		ProtectedStudents: append([]model.ProtectedStudentRecord{}, snap.ProtectedStudents...),
		Agreements:        append([]model.DataSharingAgreement{}, snap.Agreements...),
		Breaches:          append([]model.BreachRecord{}, snap.Breaches...),
	}, nil
}

func (r bidRepo) Award(_ context.Context, solicitationID, responseID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sol, ok := r.s.solicitations[solicitationID]
	if !ok {
		return repository.ErrNotFound
	}
	resp, ok := r.s.responses[responseID]
	if !ok || resp.SolicitationID != solicitationID {
		return repository.ErrNotFound
	}
	if sol.Status != model.SolicitationClosed {
		return repository.ErrConflict
	}
	sol.Status = model.SolicitationAwarded
	resp.Status = model.BidAwarded
	r.s.solicitations[solicitationID] = sol
	r.s.responses[responseID] = resp
	return nil
}
