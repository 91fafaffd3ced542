package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"districtops/internal/apperr"
	"districtops/internal/model"
	"districtops/internal/repository/memory"
)

func TestAuditService_ForDistrictPaging(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	reviews := newReviewService(store)
	for i := 0; i < 3; i++ {
		rep, err := reviews.CreateReport(ctx, "d1", model.Report{Kind: model.KindDriverReport, Title: "late pickup"})
		require.NoError(t, err)
		_, err = reviews.ApplyAction(ctx, reviewer, model.EntityRef{Kind: model.KindDriverReport, ID: rep.ID}, model.ActionRequestInfo, "")
		require.NoError(t, err)
	}
	svc := NewAuditService(store)

	page, err := svc.ForDistrict(ctx, "d1", 2, -5)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 2)

	page, err = svc.ForDistrict(ctx, "d1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)

	other, err := svc.ForDistrict(ctx, "d2", 10, 0)
	require.NoError(t, err)
	assert.Zero(t, other.Total)
}

func TestAuditService_Validation(t *testing.T) {
	svc := NewAuditService(memory.New())

	_, err := svc.ForEntity(context.Background(), reviewer, model.EntityRef{Kind: "bus", ID: "1"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.ForEntity(context.Background(), reviewer, model.EntityRef{Kind: model.KindInvoice})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.ForDistrict(context.Background(), "", 10, 0)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAuditService_ForEntityOtherDistrict(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	reviews := newReviewService(store)
	rep, err := reviews.CreateReport(ctx, "d1", model.Report{Kind: model.KindSafetyReport, Title: "door alarm"})
	require.NoError(t, err)
	ref := model.EntityRef{Kind: model.KindSafetyReport, ID: rep.ID}
	_, err = reviews.ApplyAction(ctx, reviewer, ref, model.ActionFlag, "")
	require.NoError(t, err)

	svc := NewAuditService(store)
	_, err = svc.ForEntity(ctx, model.Actor{ID: "rev-2", Role: model.RoleReviewer, DistrictID: "d2"}, ref)
	assert.Equal(t, "OUT_OF_DISTRICT", apperr.CodeOf(err))

	trail, err := svc.ForEntity(ctx, reviewer, ref)
	require.NoError(t, err)
	assert.Len(t, trail, 1)
}
