package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"districtops/internal/apperr"
	"districtops/internal/model"
	"districtops/internal/repository"
	"districtops/internal/review"
)

// ReviewService applies reviewer actions and manages reviewable reports.
type ReviewService interface {
	// ApplyAction runs approve, deny, flag or request_info against a
	// registration, safety report or driver report.
	ApplyAction(ctx context.Context, actor model.Actor, ref model.EntityRef, action model.Action, notes string) (*review.Result, error)

	// CreateReport stores a pending safety or driver report.
	CreateReport(ctx context.Context, districtID string, rep model.Report) (*model.Report, error)

	// ListReports lists a district's reports; an empty kind lists both kinds.
	ListReports(ctx context.Context, districtID string, kind model.EntityKind) ([]model.Report, error)
}

type reviewService struct {
	machine *review.Machine
	reports repository.ReportRepository
	now     func() time.Time
}

// NewReviewService constructs a ReviewService.
func NewReviewService(machine *review.Machine, reports repository.ReportRepository) ReviewService {
	return &reviewService{machine: machine, reports: reports, now: utcNow}
}

func (s *reviewService) ApplyAction(ctx context.Context, actor model.Actor, ref model.EntityRef, action model.Action, notes string) (*review.Result, error) {
	if err := requireReviewer(actor); err != nil {
		return nil, err
	}
	return s.machine.ApplyAction(ctx, review.Request{Ref: ref, Action: action, ActorID: actor.ID, DistrictID: actor.DistrictID, Notes: notes})
}

func isReportKind(k model.EntityKind) bool {
	return k == model.KindSafetyReport || k == model.KindDriverReport
}

func (s *reviewService) CreateReport(ctx context.Context, districtID string, rep model.Report) (*model.Report, error) {
	ctx, span := tracer.Start(ctx, "review.CreateReport")
	defer span.End()

	if !isReportKind(rep.Kind) {
		return nil, fail(span, apperr.Validation("kind must be %s or %s", model.KindSafetyReport, model.KindDriverReport))
	}
	rep.DistrictID = districtID
	if err := firstErr(required("district_id", rep.DistrictID), required("title", rep.Title)); err != nil {
		return nil, fail(span, err)
	}

	rep.ID = newID()
	rep.Status = model.StatusPending
	rep.CreatedAt = s.now()
	if err := s.reports.Create(ctx, &rep); err != nil {
		return nil, fail(span, translate(err, string(rep.Kind), rep.ID, "create"))
	}
	span.SetAttributes(attribute.String("report.id", rep.ID), attribute.String("report.kind", string(rep.Kind)))
	return &rep, nil
}

func (s *reviewService) ListReports(ctx context.Context, districtID string, kind model.EntityKind) ([]model.Report, error) {
	if kind != "" && !isReportKind(kind) {
		return nil, apperr.Validation("unknown report kind %q", kind)
	}
	reps, err := s.reports.List(ctx, districtID, kind)
	if err != nil {
		return nil, translate(err, "report", districtID, "list")
	}
	return reps, nil
}
