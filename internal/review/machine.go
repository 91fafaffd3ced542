// Package review implements the status lifecycle shared by registrations,
// invoices and reports. Every accepted action writes exactly one status value
// and one audit entry, committed together under an optimistic version check.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"districtops/internal/apperr"
	"districtops/internal/metrics"
	"districtops/internal/model"
	"districtops/internal/repository"
)

// DefaultMaxAttempts bounds read-decide-write cycles lost to concurrent writers.
const DefaultMaxAttempts = 3

var tracer = otel.Tracer("districtops/review")

// Decider maps the current stored status to the next one, or rejects the action.
type Decider func(current string) (string, error)

// Request is one action against one entity.
type Request struct {
	Ref     model.EntityRef
	Action  model.Action
	ActorID string
	// DistrictID restricts the action to entities of that district; empty
	// leaves it unrestricted.
	DistrictID string
	Notes      string
	// At overrides the audit timestamp; batches use it to share one timestamp.
	At time.Time
}

// Result describes a committed transition.
type Result struct {
	Entry    model.AuditEntry `json:"entry"`
	Status   string           `json:"status"`
	Attempts int              `json:"attempts"`
}

// Machine applies review actions through a ReviewRepository.
type Machine struct {
	store       repository.ReviewRepository
	maxAttempts int
	now         func() time.Time
	newID       func() string
	metrics     *metrics.Metrics
}

// Option configures a Machine.
type Option func(*Machine)

// WithMaxAttempts overrides DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.maxAttempts = n
		}
	}
}

// WithClock overrides time.Now for audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithMetrics records action outcomes and version conflicts.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Machine) { m.metrics = mt }
}

// NewMachine constructs a Machine.
func NewMachine(store repository.ReviewRepository, opts ...Option) *Machine {
	m := &Machine{
		store:       store,
		maxAttempts: DefaultMaxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ApplyAction runs one of approve, deny, flag or request_info against a
// registration or report.
func (m *Machine) ApplyAction(ctx context.Context, req Request) (*Result, error) {
	if req.ActorID == "" {
		return nil, apperr.ErrNotAuthenticated
	}
	if _, ok := actionStatus[req.Action]; !ok {
		return nil, apperr.ErrUnknownAction
	}
	if !req.Ref.Kind.Valid() || req.Ref.ID == "" {
		return nil, apperr.Validation("unknown entity %q", req.Ref.Kind)
	}
	if req.Ref.Kind == model.KindInvoice {
		return nil, apperr.Validation("invoices are reviewed with approve_invoice and dispute_invoice")
	}
	return m.Transition(ctx, req, func(current string) (string, error) {
		next, err := NextStatus(model.ReviewStatus(current), req.Action)
		if err != nil {
			return "", apperr.InvalidTransition(string(req.Ref.Kind), req.Ref.ID, current, string(req.Action))
		}
		return string(next), nil
	})
}

// Transition runs the read-decide-write cycle with decide choosing the next
// status. A losing writer re-reads and decides again rather than replaying
// its stale decision.
func (m *Machine) Transition(ctx context.Context, req Request, decide Decider) (*Result, error) {
	ctx, span := tracer.Start(ctx, "review.Transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("entity.kind", string(req.Ref.Kind)),
		attribute.String("entity.id", req.Ref.ID),
		attribute.String("review.action", string(req.Action)),
	)

	if req.ActorID == "" {
		return nil, apperr.ErrNotAuthenticated
	}

	at := req.At
	if at.IsZero() {
		at = m.now()
	}

	var lastErr error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		snap, err := m.store.Load(ctx, req.Ref)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, m.fail(span, req, apperr.NotFound(string(req.Ref.Kind), req.Ref.ID))
			}
			return nil, m.fail(span, req, apperr.Internal(fmt.Sprintf("failed to load %s %s", req.Ref.Kind, req.Ref.ID), err))
		}

		if req.DistrictID != "" && snap.DistrictID != req.DistrictID {
			return nil, m.fail(span, req, apperr.OutsideDistrict(string(req.Ref.Kind), req.Ref.ID))
		}

		next, err := decide(snap.Status)
		if err != nil {
			return nil, m.fail(span, req, err)
		}

		entry := model.AuditEntry{
			ID:         m.newID(),
			EntityKind: req.Ref.Kind,
			EntityID:   req.Ref.ID,
			DistrictID: snap.DistrictID,
			ActorID:    req.ActorID,
			Action:     req.Action,
			FromStatus: snap.Status,
			ToStatus:   next,
			Notes:      req.Notes,
			CreatedAt:  at,
		}

		err = m.store.Commit(ctx, snap, next, entry)
		if err == nil {
			m.metrics.ObserveReviewAction(string(req.Ref.Kind), string(req.Action), "success")
			span.SetAttributes(attribute.Int("review.attempts", attempt))
			return &Result{Entry: entry, Status: next, Attempts: attempt}, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, m.fail(span, req, apperr.Internal(fmt.Sprintf("failed to commit %s %s", req.Ref.Kind, req.Ref.ID), err))
		}
		m.metrics.ObserveReviewConflict(string(req.Ref.Kind))
		lastErr = err
	}
	return nil, m.fail(span, req, apperr.Conflict(string(req.Ref.Kind), req.Ref.ID, lastErr))
}

func (m *Machine) fail(span trace.Span, req Request, err error) error {
	m.metrics.ObserveReviewAction(string(req.Ref.Kind), string(req.Action), apperr.KindOf(err).String())
	span.RecordError(err)
	span.SetStatus(codes.Error, apperr.CodeOf(err))
	return err
}
