package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"districtops/internal/apperr"
	"districtops/internal/bidscore"
	"districtops/internal/config"
	"districtops/internal/model"
	"districtops/internal/repository/memory"
)

func newBidService(t *testing.T) *bidService {
	t.Helper()
	scorer, err := bidscore.NewScorer(config.DefaultBidWeights())
	require.NoError(t, err)
	svc := NewBidService(memory.New().Bids(), scorer, 400).(*bidService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func openSolicitation(t *testing.T, svc *bidService) *model.BidSolicitation {
	t.Helper()
	ctx := context.Background()
	sol, err := svc.CreateSolicitation(ctx, "d1", model.BidSolicitation{Title: "2026 regular routes"})
	require.NoError(t, err)
	assert.Equal(t, model.SolicitationDraft, sol.Status)
	sol, err = svc.AdvanceSolicitation(ctx, sol.ID, model.SolicitationOpen)
	require.NoError(t, err)
	return sol
}

func TestBidService_RespondOnlyWhileOpen(t *testing.T) {
	ctx := context.Background()
	svc := newBidService(t)

	draft, err := svc.CreateSolicitation(ctx, "d1", model.BidSolicitation{Title: "draft"})
	require.NoError(t, err)
	_, err = svc.SubmitResponse(ctx, draft.ID, model.BidResponse{ContractorName: "Acme", ProposedRate: 400})
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))

	sol := openSolicitation(t, svc)
	resp, err := svc.SubmitResponse(ctx, sol.ID, model.BidResponse{ContractorName: "Acme", ProposedRate: 500})
	require.NoError(t, err)
	assert.Equal(t, 45.0, resp.TotalScore)
	assert.Equal(t, model.BidSubmitted, resp.Status)

	_, err = svc.AdvanceSolicitation(ctx, sol.ID, model.SolicitationClosed)
	require.NoError(t, err)
	_, err = svc.SubmitResponse(ctx, sol.ID, model.BidResponse{ContractorName: "Late", ProposedRate: 100})
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "current status is closed")
}

func TestBidService_AdvanceSolicitation(t *testing.T) {
	ctx := context.Background()
	svc := newBidService(t)
	sol, err := svc.CreateSolicitation(ctx, "d1", model.BidSolicitation{Title: "routes"})
	require.NoError(t, err)

	_, err = svc.AdvanceSolicitation(ctx, sol.ID, model.SolicitationAwarded)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))

	_, err = svc.AdvanceSolicitation(ctx, "missing", model.SolicitationOpen)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.CreateSolicitation(ctx, "d1", model.BidSolicitation{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.CreateSolicitation(ctx, "d1", model.BidSolicitation{Title: "x", OpenDate: fixedNow, CloseDate: fixedNow})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestBidService_RankUsesSolicitationReference(t *testing.T) {
	ctx := context.Background()
	svc := newBidService(t)
	sol, err := svc.CreateSolicitation(ctx, "d1", model.BidSolicitation{Title: "routes", ReferenceRate: 500})
	require.NoError(t, err)
	_, err = svc.AdvanceSolicitation(ctx, sol.ID, model.SolicitationOpen)
	require.NoError(t, err)

	submit := func(name string, rate float64, safety string, at time.Time) {
		svc.now = func() time.Time { return at }
		_, err := svc.SubmitResponse(ctx, sol.ID, model.BidResponse{ContractorName: name, ProposedRate: rate, SafetyRecord: safety, FleetDetails: "20 buses"})
		require.NoError(t, err)
	}
	submit("Late tie", 550, "clean", fixedNow.Add(2*time.Hour))
	submit("Cheap", 450, "clean", fixedNow.Add(3*time.Hour))
	submit("Early tie", 550, "clean", fixedNow.Add(time.Hour))
	submit("No safety", 550, "", fixedNow)

	ranked, err := svc.RankResponses(ctx, sol.ID)
	require.NoError(t, err)
	require.Len(t, ranked, 4)
	names := []string{ranked[0].ContractorName, ranked[1].ContractorName, ranked[2].ContractorName, ranked[3].ContractorName}
	assert.Equal(t, []string{"Cheap", "Early tie", "Late tie", "No safety"}, names)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 100.0, ranked[0].Components.Price)
	assert.Equal(t, 0.0, ranked[3].Components.Safety)
}

func TestBidService_AwardResponse(t *testing.T) {
	ctx := context.Background()
	svc := newBidService(t)
	sol := openSolicitation(t, svc)

	a, err := svc.SubmitResponse(ctx, sol.ID, model.BidResponse{ContractorName: "Acme", ProposedRate: 400})
	require.NoError(t, err)
	b, err := svc.SubmitResponse(ctx, sol.ID, model.BidResponse{ContractorName: "Best", ProposedRate: 380, SafetyRecord: "clean"})
	require.NoError(t, err)

	_, err = svc.SetResponseStatus(ctx, sol.ID, b.ID, model.BidAwarded)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err), "awarding requires a closed solicitation")

	_, err = svc.SetResponseStatus(ctx, sol.ID, a.ID, model.BidShortlisted)
	require.NoError(t, err)
	_, err = svc.AdvanceSolicitation(ctx, sol.ID, model.SolicitationClosed)
	require.NoError(t, err)

	won, err := svc.SetResponseStatus(ctx, sol.ID, b.ID, model.BidAwarded)
	require.NoError(t, err)
	assert.Equal(t, model.BidAwarded, won.Status)

	got, err := svc.GetSolicitation(ctx, sol.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SolicitationAwarded, got.Status)

	_, err = svc.SetResponseStatus(ctx, sol.ID, a.ID, model.BidAwarded)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err), "a solicitation is awarded once")

	_, err = svc.SetResponseStatus(ctx, sol.ID, b.ID, model.BidRejected)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))

	_, err = svc.SetResponseStatus(ctx, "other", a.ID, model.BidRejected)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.SetResponseStatus(ctx, sol.ID, a.ID, model.BidSubmitted)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestBidService_AwardOnlyThroughResponse(t *testing.T) {
	ctx := context.Background()
	svc := newBidService(t)
	sol := openSolicitation(t, svc)
	_, err := svc.AdvanceSolicitation(ctx, sol.ID, model.SolicitationClosed)
	require.NoError(t, err)

	_, err = svc.AdvanceSolicitation(ctx, sol.ID, model.SolicitationAwarded)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))

	got, err := svc.GetSolicitation(ctx, sol.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SolicitationClosed, got.Status)

	_, err = svc.SetResponseStatus(ctx, sol.ID, "missing", model.BidAwarded)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	got, err = svc.GetSolicitation(ctx, sol.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SolicitationClosed, got.Status)
}
