package service

import (
	"context"
	"time"

	"districtops/internal/apperr"
	"districtops/internal/model"
	"districtops/internal/readiness"
	"districtops/internal/repository"
)

// ComplianceService records compliance artifacts and scores audit readiness.
type ComplianceService interface {
	AddStateReport(ctx context.Context, districtID string, r model.StateReport) (*model.StateReport, error)
	AddTraining(ctx context.Context, districtID string, r model.TrainingRecord) (*model.TrainingRecord, error)
	AddProtectedStudent(ctx context.Context, districtID string, r model.ProtectedStudentRecord) (*model.ProtectedStudentRecord, error)
	AddAgreement(ctx context.Context, districtID string, r model.DataSharingAgreement) (*model.DataSharingAgreement, error)
	AddBreach(ctx context.Context, districtID string, r model.BreachRecord) (*model.BreachRecord, error)

	// Readiness scores the district's current snapshot for year. now decides
	// which trainings are overdue.
	Readiness(ctx context.Context, districtID string, year model.SchoolYear, now time.Time) (*readiness.Score, error)
}

type complianceService struct {
	repo      repository.ComplianceRepository
	evaluator *readiness.Evaluator
	now       func() time.Time
}

// NewComplianceService constructs a ComplianceService.
func NewComplianceService(repo repository.ComplianceRepository, evaluator *readiness.Evaluator) ComplianceService {
	return &complianceService{repo: repo, evaluator: evaluator, now: utcNow}
}

func (s *complianceService) AddStateReport(ctx context.Context, districtID string, r model.StateReport) (*model.StateReport, error) {
	r.DistrictID = districtID
	if err := firstErr(required("district_id", r.DistrictID), required("report_type", r.ReportType)); err != nil {
		return nil, err
	}
	year, err := model.ParseSchoolYear(r.SchoolYear)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}
	r.SchoolYear = year.String()
	r.ID = newID()
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = s.now()
	}
	if err := s.repo.AddStateReport(ctx, &r); err != nil {
		return nil, translate(err, "state_report", r.ID, "create")
	}
	return &r, nil
}

func (s *complianceService) AddTraining(ctx context.Context, districtID string, r model.TrainingRecord) (*model.TrainingRecord, error) {
	r.DistrictID = districtID
	if err := firstErr(required("district_id", r.DistrictID), required("program", r.Program)); err != nil {
		return nil, err
	}
	if r.DueDate.IsZero() {
		return nil, apperr.Validation("due_date is required")
	}
	switch {
	case r.Completed && r.CompletedAt == nil:
		at := s.now()
		r.CompletedAt = &at
	case !r.Completed:
		r.CompletedAt = nil
	}
	r.ID = newID()
	if err := s.repo.AddTraining(ctx, &r); err != nil {
		return nil, translate(err, "training_record", r.ID, "create")
	}
	return &r, nil
}

func (s *complianceService) AddProtectedStudent(ctx context.Context, districtID string, r model.ProtectedStudentRecord) (*model.ProtectedStudentRecord, error) {
	r.DistrictID = districtID
	if err := firstErr(
		required("district_id", r.DistrictID),
		required("student_name", r.StudentName),
		required("school_of_origin", r.SchoolOfOrigin),
	); err != nil {
		return nil, err
	}
	r.ID = newID()
	if r.IdentifiedAt.IsZero() {
		r.IdentifiedAt = s.now()
	}
	if err := s.repo.AddProtectedStudent(ctx, &r); err != nil {
		return nil, translate(err, "protected_student", r.ID, "create")
	}
	return &r, nil
}

func (s *complianceService) AddAgreement(ctx context.Context, districtID string, r model.DataSharingAgreement) (*model.DataSharingAgreement, error) {
	r.DistrictID = districtID
	if err := firstErr(required("district_id", r.DistrictID), required("vendor_name", r.VendorName)); err != nil {
		return nil, err
	}
	switch {
	case r.Signed && r.SignedAt == nil:
		at := s.now()
		r.SignedAt = &at
	case !r.Signed:
		r.SignedAt = nil
	}
	r.ID = newID()
	if err := s.repo.AddAgreement(ctx, &r); err != nil {
		return nil, translate(err, "data_sharing_agreement", r.ID, "create")
	}
	return &r, nil
}

func (s *complianceService) AddBreach(ctx context.Context, districtID string, r model.BreachRecord) (*model.BreachRecord, error) {
	r.DistrictID = districtID
	if err := firstErr(required("district_id", r.DistrictID), required("vendor_name", r.VendorName)); err != nil {
		return nil, err
	}
	if r.DiscoveredAt.IsZero() {
		return nil, apperr.Validation("discovered_at is required")
	}
	if r.ResolvedAt != nil && r.ResolvedAt.Before(r.DiscoveredAt) {
		return nil, apperr.Validation("resolved_at must not precede discovered_at")
	}
	r.ID = newID()
	if err := s.repo.AddBreach(ctx, &r); err != nil {
		return nil, translate(err, "breach_record", r.ID, "create")
	}
	return &r, nil
}

func (s *complianceService) Readiness(ctx context.Context, districtID string, year model.SchoolYear, now time.Time) (*readiness.Score, error) {
	ctx, span := tracer.Start(ctx, "compliance.Readiness")
	defer span.End()

	if districtID == "" {
		return nil, fail(span, apperr.Validation("district_id is required"))
	}
	snap, err := s.repo.Snapshot(ctx, districtID)
	if err != nil {
		return nil, fail(span, translate(err, "district", districtID, "load compliance for"))
	}
	score := s.evaluator.Evaluate(*snap, year, now)
	return &score, nil
}
