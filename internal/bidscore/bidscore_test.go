package bidscore

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"districtops/internal/config"
	"districtops/internal/model"
)

func newScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(config.DefaultBidWeights())
	require.NoError(t, err)
	return s
}

func TestPriceComponent(t *testing.T) {
	tests := []struct {
		name      string
		proposed  float64
		reference float64
		want      float64
	}{
		{name: "zero rate", proposed: 0, reference: 400, want: 100},
		{name: "below reference", proposed: 300, reference: 400, want: 100},
		{name: "at reference", proposed: 400, reference: 400, want: 100},
		{name: "25 percent over", proposed: 500, reference: 400, want: 75},
		{name: "double", proposed: 800, reference: 400, want: 0},
		{name: "far over", proposed: 5000, reference: 400, want: 0},
		{name: "no reference", proposed: 100, reference: 0, want: 0},
		{name: "nan", proposed: math.NaN(), reference: 400, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PriceComponent(tt.proposed, tt.reference))
		})
	}
}

func TestPriceComponent_HigherRateNeverScoresHigher(t *testing.T) {
	prev := PriceComponent(0, 450)
	for rate := 0.0; rate <= 1200; rate += 25 {
		got := PriceComponent(rate, 450)
		assert.LessOrEqual(t, got, prev)
		prev = got
	}
}

func TestScore(t *testing.T) {
	s := newScorer(t)

	full := model.BidResponse{ProposedRate: 400, SafetyRecord: "No incidents in 5 years", FleetDetails: "40 buses, 2022+"}
	assert.Equal(t, 100.0, s.Score(full, 400))

	bare := model.BidResponse{ProposedRate: 500}
	// price 75*0.40 + experience 100*0.15
	assert.Equal(t, 45.0, s.Score(bare, 400))

	whitespace := model.BidResponse{ProposedRate: 0, SafetyRecord: "   ", FleetDetails: "\n"}
	assert.Equal(t, 55.0, s.Score(whitespace, 400))
}

func TestScore_AlwaysInRange(t *testing.T) {
	s := newScorer(t)
	rates := []float64{0, -100, 1, 399.99, 400, 10_000, math.Inf(1)}
	for _, rate := range rates {
		for _, safety := range []string{"", "clean"} {
			got := s.Score(model.BidResponse{ProposedRate: rate, SafetyRecord: safety}, 400)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		}
	}
}

func TestScore_CustomWeights(t *testing.T) {
	s, err := NewScorer(config.Weights{config.WeightPrice: 100, config.WeightSafety: 0, config.WeightFleet: 0, config.WeightExperience: 0})
	require.NoError(t, err)
	assert.Equal(t, 50.0, s.Score(model.BidResponse{ProposedRate: 600, SafetyRecord: "x"}, 400))
}

func TestNewScorer_RejectsBadWeights(t *testing.T) {
	_, err := NewScorer(config.Weights{config.WeightPrice: 90, config.WeightSafety: 25, config.WeightFleet: 20, config.WeightExperience: 15})
	assert.Error(t, err)
}

func TestRank(t *testing.T) {
	t0 := time.Date(2026, time.April, 1, 8, 0, 0, 0, time.UTC)
	in := []model.BidResponse{
		{ID: "late-tie", TotalScore: 80, SubmittedAt: t0.Add(2 * time.Hour)},
		{ID: "low", TotalScore: 40, SubmittedAt: t0},
		{ID: "early-tie", TotalScore: 80, SubmittedAt: t0.Add(time.Hour)},
		{ID: "top", TotalScore: 95, SubmittedAt: t0.Add(3 * time.Hour)},
	}

	got := Rank(in)
	ids := []string{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
	assert.Equal(t, []string{"top", "early-tie", "late-tie", "low"}, ids)
}
