package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"districtops/internal/apperr"
	"districtops/internal/metrics"
	"districtops/internal/model"
	"districtops/internal/repository"
	"districtops/internal/review"
)

// InvoiceView is an invoice with its signed discrepancy once reconciled.
type InvoiceView struct {
	model.Invoice
	Discrepancy *float64 `json:"discrepancy_amount,omitempty"`
}

func viewInvoice(inv model.Invoice) InvoiceView {
	v := InvoiceView{Invoice: inv}
	if d, ok := inv.Discrepancy(); ok {
		d = round2(d)
		v.Discrepancy = &d
	}
	return v
}

// Reconciliation carries the independently verified facts for an invoice.
type Reconciliation struct {
	VerifiedAmount float64 `json:"verified_amount"`
	GPSVerified    bool    `json:"gps_verified"`
	Notes          string  `json:"notes"`
}

// BatchError describes why one batch item failed.
type BatchError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchResult is the outcome for one invoice of a bulk approval.
type BatchResult struct {
	ID     string      `json:"id"`
	OK     bool        `json:"ok"`
	Status string      `json:"status,omitempty"`
	Error  *BatchError `json:"error,omitempty"`
}

// BatchReport lists per-item outcomes in request order.
type BatchReport struct {
	Results   []BatchResult `json:"results"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

// InvoiceSummary aggregates a district's invoices. TotalOwedBack sums only
// positive (over-billed) discrepancies; NetDiscrepancy keeps the sign.
type InvoiceSummary struct {
	Count           int     `json:"count"`
	PendingCount    int     `json:"pending_count"`
	ReconciledCount int     `json:"reconciled_count"`
	TotalInvoiced   float64 `json:"total_invoiced"`
	TotalVerified   float64 `json:"total_verified"`
	TotalOwedBack   float64 `json:"total_owed_back"`
	NetDiscrepancy  float64 `json:"net_discrepancy"`
}

// InvoiceService reconciles contractor invoices and drives their review.
type InvoiceService interface {
	Create(ctx context.Context, districtID string, inv model.Invoice) (*InvoiceView, error)
	Get(ctx context.Context, id string) (*InvoiceView, error)
	List(ctx context.Context, f repository.InvoiceFilter) ([]InvoiceView, error)

	// Reconcile records the verified amount. The status is left unchanged.
	Reconcile(ctx context.Context, actor model.Actor, id string, rec Reconciliation) (*InvoiceView, error)

	// Approve and Dispute are only valid from pending.
	Approve(ctx context.Context, actor model.Actor, id, notes string) (*review.Result, error)
	Dispute(ctx context.Context, actor model.Actor, id, notes string) (*review.Result, error)

	// BulkApprove approves each invoice independently with one shared
	// reviewer and timestamp, reporting every failure per item.
	BulkApprove(ctx context.Context, actor model.Actor, ids []string, notes string) (*BatchReport, error)

	Summary(ctx context.Context, districtID string) (*InvoiceSummary, error)
}

type invoiceService struct {
	repo        repository.InvoiceRepository
	machine     *review.Machine
	metrics     *metrics.Metrics
	concurrency int
	maxAttempts int
	now         func() time.Time
}

// NewInvoiceService constructs an InvoiceService. concurrency bounds the
// number of invoices approved in parallel by BulkApprove.
func NewInvoiceService(repo repository.InvoiceRepository, machine *review.Machine, mt *metrics.Metrics, concurrency, maxAttempts int) InvoiceService {
	if concurrency <= 0 {
		concurrency = 1
	}
	if maxAttempts <= 0 {
		maxAttempts = review.DefaultMaxAttempts
	}
	return &invoiceService{
		repo:        repo,
		machine:     machine,
		metrics:     mt,
		concurrency: concurrency,
		maxAttempts: maxAttempts,
		now:         utcNow,
	}
}

func (s *invoiceService) Create(ctx context.Context, districtID string, inv model.Invoice) (*InvoiceView, error) {
	ctx, span := tracer.Start(ctx, "invoice.Create")
	defer span.End()

	inv.DistrictID = districtID
	if err := firstErr(
		required("district_id", inv.DistrictID),
		required("contract_id", inv.ContractID),
		required("invoice_number", inv.InvoiceNumber),
		nonNegative("invoiced_amount", inv.InvoicedAmount),
	); err != nil {
		return nil, fail(span, err)
	}
	if inv.InvoiceDate.IsZero() {
		return nil, fail(span, apperr.Validation("invoice_date is required"))
	}

	inv.ID = newID()
	inv.Status = model.InvoicePending
	inv.VerifiedAmount = nil
	inv.GPSVerified = false
	inv.ReviewedBy = ""
	inv.ReviewedAt = nil
	inv.CreatedAt = s.now()
	if err := s.repo.Create(ctx, &inv); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail(span, apperr.NotFound("contract", inv.ContractID))
		}
		return nil, fail(span, translate(err, "invoice", inv.ID, "create"))
	}
	span.SetAttributes(attribute.String("invoice.id", inv.ID))
	v := viewInvoice(inv)
	return &v, nil
}

func (s *invoiceService) Get(ctx context.Context, id string) (*InvoiceView, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "invoice", id, "load")
	}
	v := viewInvoice(*inv)
	return &v, nil
}

func (s *invoiceService) List(ctx context.Context, f repository.InvoiceFilter) ([]InvoiceView, error) {
	if f.DistrictID == "" {
		return nil, apperr.Validation("district_id is required")
	}
	invs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, translate(err, "invoice", f.DistrictID, "list")
	}
	out := make([]InvoiceView, len(invs))
	for i, inv := range invs {
		out[i] = viewInvoice(inv)
	}
	return out, nil
}

func (s *invoiceService) Reconcile(ctx context.Context, actor model.Actor, id string, rec Reconciliation) (*InvoiceView, error) {
	ctx, span := tracer.Start(ctx, "invoice.Reconcile")
	defer span.End()
	span.SetAttributes(attribute.String("invoice.id", id))

	if err := requireReviewer(actor); err != nil {
		return nil, fail(span, err)
	}
	if err := nonNegative("verified_amount", rec.VerifiedAmount); err != nil {
		return nil, fail(span, err)
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		inv, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, fail(span, translate(err, "invoice", id, "load"))
		}
		if !actor.InDistrict(inv.DistrictID) {
			return nil, fail(span, apperr.OutsideDistrict("invoice", id))
		}
		entry := model.AuditEntry{
			ID:         newID(),
			EntityKind: model.KindInvoice,
			EntityID:   id,
			DistrictID: inv.DistrictID,
			ActorID:    actor.ID,
			Action:     model.ActionReconcile,
			FromStatus: string(inv.Status),
			ToStatus:   string(inv.Status),
			Notes:      reconcileNotes(rec),
			CreatedAt:  s.now(),
		}
		err = s.repo.SaveReconciliation(ctx, id, inv.Version, rec.VerifiedAmount, rec.GPSVerified, entry)
		if err == nil {
			verified := rec.VerifiedAmount
			inv.VerifiedAmount = &verified
			inv.GPSVerified = rec.GPSVerified
			inv.Version++
			v := viewInvoice(*inv)
			return &v, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, fail(span, translate(err, "invoice", id, "reconcile"))
		}
		s.metrics.ObserveReviewConflict(string(model.KindInvoice))
		lastErr = err
	}
	return nil, fail(span, apperr.Conflict("invoice", id, lastErr))
}

func reconcileNotes(rec Reconciliation) string {
	n := fmt.Sprintf("verified_amount=%.2f gps_verified=%t", rec.VerifiedAmount, rec.GPSVerified)
	if rec.Notes != "" {
		n += "; " + rec.Notes
	}
	return n
}

func (s *invoiceService) Approve(ctx context.Context, actor model.Actor, id, notes string) (*review.Result, error) {
	return s.decide(ctx, actor, id, model.ActionApprove, notes, time.Time{})
}

func (s *invoiceService) Dispute(ctx context.Context, actor model.Actor, id, notes string) (*review.Result, error) {
	return s.decide(ctx, actor, id, model.ActionDispute, notes, time.Time{})
}

func (s *invoiceService) decide(ctx context.Context, actor model.Actor, id string, action model.Action, notes string, at time.Time) (*review.Result, error) {
	if err := requireReviewer(actor); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperr.Validation("invoice id is required")
	}
	ref := model.EntityRef{Kind: model.KindInvoice, ID: id}
	req := review.Request{Ref: ref, Action: action, ActorID: actor.ID, DistrictID: actor.DistrictID, Notes: notes, At: at}
	return s.machine.Transition(ctx, req, review.InvoiceDecider(ref, action))
}

func (s *invoiceService) BulkApprove(ctx context.Context, actor model.Actor, ids []string, notes string) (*BatchReport, error) {
	ctx, span := tracer.Start(ctx, "invoice.BulkApprove")
	defer span.End()

	if err := requireReviewer(actor); err != nil {
		return nil, fail(span, err)
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, fail(span, apperr.Validation("at least one invoice id is required"))
	}
	span.SetAttributes(attribute.Int("batch.size", len(ids)))

	at := s.now()
	results := make([]BatchResult, len(ids))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			res, err := s.decide(ctx, actor, id, model.ActionApprove, notes, at)
			if err != nil {
				results[i] = BatchResult{ID: id, Error: &BatchError{Code: apperr.CodeOf(err), Message: apperr.MessageOf(err)}}
				s.metrics.ObserveBatchItem(apperr.KindOf(err).String())
				return nil
			}
			results[i] = BatchResult{ID: id, OK: true, Status: res.Status}
			s.metrics.ObserveBatchItem("success")
			return nil
		})
	}
	_ = g.Wait()

	report := &BatchReport{Results: results}
	for _, r := range results {
		if r.OK {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	span.SetAttributes(attribute.Int("batch.failed", report.Failed))
	return report, nil
}

// dedupe drops blanks and repeats so one invoice is never approved twice in parallel.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (s *invoiceService) Summary(ctx context.Context, districtID string) (*InvoiceSummary, error) {
	invs, err := s.List(ctx, repository.InvoiceFilter{DistrictID: districtID})
	if err != nil {
		return nil, err
	}
	return Summarize(invs), nil
}

// Summarize reduces invoices to their reporting totals.
func Summarize(invs []InvoiceView) *InvoiceSummary {
	sum := &InvoiceSummary{Count: len(invs)}
	for _, v := range invs {
		sum.TotalInvoiced += v.InvoicedAmount
		if v.Status == model.InvoicePending {
			sum.PendingCount++
		}
		d, ok := v.Invoice.Discrepancy()
		if !ok {
			continue
		}
		sum.ReconciledCount++
		sum.TotalVerified += *v.VerifiedAmount
		sum.NetDiscrepancy += d
		if d > 0 {
			sum.TotalOwedBack += d
		}
	}
	sum.TotalInvoiced = round2(sum.TotalInvoiced)
	sum.TotalVerified = round2(sum.TotalVerified)
	sum.TotalOwedBack = round2(sum.TotalOwedBack)
	sum.NetDiscrepancy = round2(sum.NetDiscrepancy)
	return sum
}
