// Package service holds the use cases behind the HTTP API. Services validate
// input, call the domain packages and translate repository sentinels into
// apperr kinds.
package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"districtops/internal/apperr"
	"districtops/internal/model"
	"districtops/internal/repository"
)

var tracer = otel.Tracer("districtops/service")

// translate maps a repository error to an apperr error naming the entity.
// Errors that already carry a kind pass through unchanged.
func translate(err error, entity, id, op string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(entity, id)
	case errors.Is(err, repository.ErrConflict):
		return apperr.Conflict(entity, id, err)
	case errors.Is(err, repository.ErrDuplicate):
		return &apperr.Error{
			Kind:    apperr.KindValidation,
			Code:    "DUPLICATE",
			Message: fmt.Sprintf("%s %s already exists", entity, id),
			Err:     err,
		}
	}
	return apperr.Internal(fmt.Sprintf("failed to %s %s", op, entity), err)
}

// fail records err on span and returns it.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, apperr.CodeOf(err))
	return err
}

// requireReviewer enforces the reviewer capability on state-changing review
// calls. Only admins may act without a district.
func requireReviewer(actor model.Actor) error {
	if actor.ID == "" {
		return apperr.ErrNotAuthenticated
	}
	if !actor.CanReview() {
		return apperr.ErrForbidden
	}
	if actor.DistrictID == "" && actor.Role != model.RoleAdmin {
		return apperr.ErrNoDistrict
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation("%s is required", field)
	}
	return nil
}

func nonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return apperr.Validation("%s must be a non-negative number", field)
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func newID() string { return uuid.NewString() }

func utcNow() time.Time { return time.Now().UTC() }

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
