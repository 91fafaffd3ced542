package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"districtops/internal/apperr"
	"districtops/internal/model"
	"districtops/internal/repository"
	"districtops/internal/repository/memory"
	repoMocks "districtops/internal/repository/mocks"
	"districtops/internal/review"
)

var (
	reviewer = model.Actor{ID: "rev-1", Role: model.RoleReviewer, DistrictID: "d1"}
	staff    = model.Actor{ID: "staff-1", Role: model.RoleStaff, DistrictID: "d1"}
)

func newReviewService(store *memory.Store) *reviewService {
	m := review.NewMachine(store, review.WithClock(func() time.Time { return fixedNow }))
	svc := NewReviewService(m, store.Reports()).(*reviewService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestReviewService_ReportLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newReviewService(store)

	rep, err := svc.CreateReport(ctx, "d1", model.Report{Kind: model.KindSafetyReport, Title: "Brake failure on route 12"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, rep.Status)

	ref := model.EntityRef{Kind: model.KindSafetyReport, ID: rep.ID}
	res, err := svc.ApplyAction(ctx, reviewer, ref, model.ActionFlag, "needs photos")
	require.NoError(t, err)
	assert.Equal(t, "under_review", res.Status)

	res, err = svc.ApplyAction(ctx, reviewer, ref, model.ActionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, "approved", res.Status)

	_, err = svc.ApplyAction(ctx, reviewer, ref, model.ActionDeny, "")
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "current status is approved")

	trail, err := NewAuditService(store).ForEntity(ctx, reviewer, ref)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, "pending", trail[0].FromStatus)
	assert.Equal(t, "approved", trail[1].ToStatus)
	assert.Equal(t, "rev-1", trail[1].ActorID)

	reps, err := svc.ListReports(ctx, "d1", model.KindDriverReport)
	require.NoError(t, err)
	assert.Empty(t, reps)
}

func TestReviewService_Authorization(t *testing.T) {
	ctx := context.Background()
	svc := newReviewService(memory.New())
	ref := model.EntityRef{Kind: model.KindRegistration, ID: "r1"}

	_, err := svc.ApplyAction(ctx, model.Actor{}, ref, model.ActionApprove, "")
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)

	_, err = svc.ApplyAction(ctx, staff, ref, model.ActionApprove, "")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.ApplyAction(ctx, reviewer, ref, model.ActionApprove, "")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.ApplyAction(ctx, reviewer, ref, model.Action("escalate"), "")
	assert.ErrorIs(t, err, apperr.ErrUnknownAction)
}

func TestReviewService_CreateReportValidation(t *testing.T) {
	svc := newReviewService(memory.New())

	_, err := svc.CreateReport(context.Background(), "d1", model.Report{Kind: model.KindInvoice, Title: "x"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.CreateReport(context.Background(), "d1", model.Report{Kind: model.KindDriverReport})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.ListReports(context.Background(), "d1", model.KindRegistration)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestReviewService_CommitFailureIsInternal(t *testing.T) {
	ctx := context.Background()
	ref := model.EntityRef{Kind: model.KindRegistration, ID: "r1"}
	snap := model.Snapshot{Ref: ref, DistrictID: "d1", Status: "pending", Version: 3}

	repo := new(repoMocks.MockReviewRepository)
	repo.On("Load", ctx, ref).Return(snap, nil)
	repo.On("Commit", ctx, snap, "approved", mock.MatchedBy(func(e model.AuditEntry) bool {
		return e.FromStatus == "pending" && e.ToStatus == "approved" && e.ActorID == "rev-1"
	})).Return(errors.New("connection reset"))

	svc := NewReviewService(review.NewMachine(repo), memory.New().Reports())
	_, err := svc.ApplyAction(ctx, reviewer, ref, model.ActionApprove, "")

	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "connection reset")
	repo.AssertExpectations(t)
}

func TestReviewService_OtherDistrictIsRefused(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := newReviewService(store)
	regs := newRegistrationService(store.Registrations(), nil)

	reg, err := regs.Submit(ctx, "d2", year2025, validRegistration("Ada", oakSt))
	require.NoError(t, err)
	ref := model.EntityRef{Kind: model.KindRegistration, ID: reg.ID}

	_, err = svc.ApplyAction(ctx, reviewer, ref, model.ActionApprove, "")
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
	assert.Equal(t, "OUT_OF_DISTRICT", apperr.CodeOf(err))

	got, err := store.Registrations().FindByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)
	trail, err := store.ListByDistrict(ctx, "d2", repository.PageQuery{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, trail.Total, "a refused action writes no audit entry")

	unscoped := model.Actor{ID: "rev-9", Role: model.RoleReviewer}
	_, err = svc.ApplyAction(ctx, unscoped, ref, model.ActionApprove, "")
	assert.ErrorIs(t, err, apperr.ErrNoDistrict)

	admin := model.Actor{ID: "adm-1", Role: model.RoleAdmin}
	res, err := svc.ApplyAction(ctx, admin, ref, model.ActionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, "approved", res.Status)
	assert.Equal(t, "d2", res.Entry.DistrictID)
}
