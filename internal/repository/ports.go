package repository

import (
	"context"

	"districtops/internal/model"
)

// ReviewRepository reads and writes the versioned status of reviewable entities.
type ReviewRepository interface {
	// Load returns the current status and version. ErrNotFound if absent.
	Load(ctx context.Context, ref model.EntityRef) (model.Snapshot, error)

	// Commit sets the new status and appends entry in one unit, provided the
	// stored version still equals snap.Version. ErrConflict otherwise.
	Commit(ctx context.Context, snap model.Snapshot, status string, entry model.AuditEntry) error
}

// AuditRepository lists the append-only audit trail.
type AuditRepository interface {
	ListByEntity(ctx context.Context, ref model.EntityRef) ([]model.AuditEntry, error)
	ListByDistrict(ctx context.Context, districtID string, pq PageQuery) (*PageResult[model.AuditEntry], error)
}

// RegistrationRepository persists registrations and their evidence.
type RegistrationRepository interface {
	// Create returns ErrDuplicate when the id or the prior registration is
	// already taken.
	Create(ctx context.Context, reg *model.Registration) (*model.Registration, error)
	FindByID(ctx context.Context, id string) (*model.Registration, error)
	// ListBySchoolYear returns every registration of a district for one school year.
	ListBySchoolYear(ctx context.Context, districtID, schoolYear string) ([]model.Registration, error)

	AddDocument(ctx context.Context, doc *model.ResidencyDocument) error
	ListDocuments(ctx context.Context, registrationID string) ([]model.ResidencyDocument, error)
	// CountDocuments returns document counts keyed by registration id; ids with
	// no documents may be absent.
	CountDocuments(ctx context.Context, registrationIDs []string) (map[string]int, error)

	// UpsertAttestation replaces the canonical attestation for the registration and school year.
	UpsertAttestation(ctx context.Context, att *model.Attestation) error
	FindAttestation(ctx context.Context, registrationID, schoolYear string) (*model.Attestation, error)
}

// ReportRepository persists safety and driver reports.
type ReportRepository interface {
	Create(ctx context.Context, r *model.Report) error
	List(ctx context.Context, districtID string, kind model.EntityKind) ([]model.Report, error)
}

// ContractRepository persists contracts and their per-contract records.
type ContractRepository interface {
	Create(ctx context.Context, c *model.Contract) error
	FindByID(ctx context.Context, id string) (*model.Contract, error)
	List(ctx context.Context, districtID string) ([]model.Contract, error)

	AddInsurance(ctx context.Context, r *model.InsuranceRecord) error
	ListInsurance(ctx context.Context, contractID string) ([]model.InsuranceRecord, error)

	// AddPerformanceSample returns ErrDuplicate when the contract already has a sample for the period.
	AddPerformanceSample(ctx context.Context, s *model.PerformanceSample) error
	ListPerformanceSamples(ctx context.Context, contractID string) ([]model.PerformanceSample, error)
}

// InvoiceFilter narrows invoice listings. Empty fields match everything.
type InvoiceFilter struct {
	DistrictID string
	ContractID string
	Status     model.InvoiceStatus
}

// InvoiceRepository persists invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *model.Invoice) error
	FindByID(ctx context.Context, id string) (*model.Invoice, error)
	List(ctx context.Context, f InvoiceFilter) ([]model.Invoice, error)

	// SaveReconciliation records the verified amount and appends entry, guarded
	// by the invoice version like ReviewRepository.Commit.
	SaveReconciliation(ctx context.Context, id string, version int64, verified float64, gpsVerified bool, entry model.AuditEntry) error
}

// BidRepository persists solicitations and responses.
type BidRepository interface {
	CreateSolicitation(ctx context.Context, s *model.BidSolicitation) error
	FindSolicitation(ctx context.Context, id string) (*model.BidSolicitation, error)
	// UpdateSolicitationStatus moves from -> to; ErrConflict if the stored status is not from.
	UpdateSolicitationStatus(ctx context.Context, id string, from, to model.SolicitationStatus) error

	CreateResponse(ctx context.Context, r *model.BidResponse) error
	FindResponse(ctx context.Context, id string) (*model.BidResponse, error)
	ListResponses(ctx context.Context, solicitationID string) ([]model.BidResponse, error)
	UpdateResponseStatus(ctx context.Context, id string, status model.BidResponseStatus) error
	// Award moves a closed solicitation and one of its responses to awarded
	// together. ErrConflict if the solicitation is not closed.
	Award(ctx context.Context, solicitationID, responseID string) error
}

// ComplianceRepository persists compliance artifacts.
type ComplianceRepository interface {
	AddStateReport(ctx context.Context, r *model.StateReport) error
	AddTraining(ctx context.Context, r *model.TrainingRecord) error
	AddProtectedStudent(ctx context.Context, r *model.ProtectedStudentRecord) error
	AddAgreement(ctx context.Context, r *model.DataSharingAgreement) error
	AddBreach(ctx context.Context, r *model.BreachRecord) error
	Snapshot(ctx context.Context, districtID string) (*model.ComplianceSnapshot, error)
}

// Store is a complete storage backend.
type Store interface {
	ReviewRepository
	AuditRepository
	Registrations() RegistrationRepository
	Reports() ReportRepository
	Contracts() ContractRepository
	Invoices() InvoiceRepository
	Bids() BidRepository
	Compliance() ComplianceRepository
}
