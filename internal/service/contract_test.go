package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"districtops/internal/apperr"
	"districtops/internal/config"
	"districtops/internal/model"
	"districtops/internal/performance"
	"districtops/internal/repository/memory"
)

const day = 24 * time.Hour

type failingRegional struct{}

func (failingRegional) RegionalStats(context.Context) (performance.RegionalStats, error) {
	return performance.RegionalStats{}, errors.New("feed unavailable")
}

func newContractService(store *memory.Store, regional RegionalStatsProvider) *contractService {
	svc := NewContractService(store.Contracts(), regional, 90*day, 30*day).(*contractService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func validContract(name string, rate float64) model.Contract {
	return model.Contract{
		ContractorName: name,
		StartDate:      time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC),
		RouteCount:     12,
		RatePerRoute:   rate,
	}
}

func TestContractService_CreateAndEffectiveStatus(t *testing.T) {
	ctx := context.Background()
	svc := newContractService(memory.New(), StaticRegionalStats{})

	c, err := svc.Create(ctx, "d1", validContract("Acme Bus", 400))
	require.NoError(t, err)
	assert.Equal(t, model.ContractActive, c.Status)

	v, err := svc.Get(ctx, c.ID, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, model.ContractActive, v.EffectiveStatus)

	v, err = svc.Get(ctx, c.ID, time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, model.ContractExpiring, v.EffectiveStatus)
	assert.Equal(t, model.ContractActive, v.Status, "derived status is never stored")

	list, err := svc.List(ctx, "d1", time.Date(2026, time.July, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.ContractExpired, list[0].EffectiveStatus)
}

func TestContractService_CreateValidation(t *testing.T) {
	svc := newContractService(memory.New(), StaticRegionalStats{})

	tests := []struct {
		name   string
		mutate func(c *model.Contract)
	}{
		{name: "missing contractor", mutate: func(c *model.Contract) { c.ContractorName = "" }},
		{name: "end before start", mutate: func(c *model.Contract) { c.EndDate = c.StartDate.Add(-day) }},
		{name: "negative rate", mutate: func(c *model.Contract) { c.RatePerRoute = -1 }},
		{name: "derived status", mutate: func(c *model.Contract) { c.Status = model.ContractExpired }},
		{name: "negative routes", mutate: func(c *model.Contract) { c.RouteCount = -3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validContract("Acme", 400)
			tt.mutate(&c)
			_, err := svc.Create(context.Background(), "d1", c)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestContractService_Insurance(t *testing.T) {
	ctx := context.Background()
	svc := newContractService(memory.New(), StaticRegionalStats{})
	c, err := svc.Create(ctx, "d1", validContract("Acme", 400))
	require.NoError(t, err)

	for _, exp := range []time.Time{fixedNow.Add(10 * day), fixedNow.Add(-day), fixedNow.Add(200 * day)} {
		_, err := svc.AddInsurance(ctx, c.ID, model.InsuranceRecord{PolicyNumber: "P-1", Provider: "Mutual", CoverageAmount: 1e6, ExpirationDate: exp})
		require.NoError(t, err)
	}

	recs, err := svc.ListInsurance(ctx, c.ID, fixedNow)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, model.InsuranceExpired, recs[0].Status)
	assert.Equal(t, model.InsuranceExpiring, recs[1].Status)
	assert.Equal(t, model.InsuranceActive, recs[2].Status)

	_, err = svc.AddInsurance(ctx, "missing", model.InsuranceRecord{PolicyNumber: "P", Provider: "M", ExpirationDate: fixedNow})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = svc.ListInsurance(ctx, "missing", fixedNow)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestContractService_RecordPerformance(t *testing.T) {
	ctx := context.Background()
	svc := newContractService(memory.New(), StaticRegionalStats{})
	c, err := svc.Create(ctx, "d1", validContract("Acme", 400))
	require.NoError(t, err)

	_, err = svc.RecordPerformance(ctx, c.ID, model.PerformanceSample{Period: "2025-09", OnTimePct: 96, RoutesCompleted: 100})
	require.NoError(t, err)

	_, err = svc.RecordPerformance(ctx, c.ID, model.PerformanceSample{Period: "2025-09", OnTimePct: 90})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "2025-09")

	bad := []model.PerformanceSample{
		{Period: "September", OnTimePct: 90},
		{Period: "2025-10", OnTimePct: 101},
		{Period: "2025-10", OnTimePct: 90, RoutesMissed: -1},
	}
	for _, smp := range bad {
		_, err := svc.RecordPerformance(ctx, c.ID, smp)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), smp.Period)
	}

	_, err = svc.RecordPerformance(ctx, "missing", model.PerformanceSample{Period: "2025-10", OnTimePct: 90})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestContractService_RankingsAndBenchmark(t *testing.T) {
	ctx := context.Background()
	regional := NewStaticRegionalStats(config.RegionalConfig{AvgRatePerRoute: 500, AvgOnTimePct: 90, AvgUtilization: 95, DistrictCount: 14, RouteCount: 900})
	svc := newContractService(memory.New(), regional)

	acme, err := svc.Create(ctx, "d1", validContract("Acme", 400))
	require.NoError(t, err)
	best, err := svc.Create(ctx, "d1", validContract("Best Transit", 500))
	require.NoError(t, err)
	_, err = svc.Create(ctx, "d1", validContract("New Co", 450))
	require.NoError(t, err)

	_, err = svc.RecordPerformance(ctx, acme.ID, model.PerformanceSample{Period: "2025-09", OnTimePct: 88, RoutesCompleted: 90, RoutesMissed: 10})
	require.NoError(t, err)
	_, err = svc.RecordPerformance(ctx, best.ID, model.PerformanceSample{Period: "2025-09", OnTimePct: 98, RoutesCompleted: 100, RoutesMissed: 0})
	require.NoError(t, err)

	ranks, err := svc.Rankings(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, ranks, 3)
	assert.Equal(t, "Best Transit", ranks[0].ContractorName)
	assert.Equal(t, performance.GradeA, ranks[0].Grade)
	assert.Equal(t, "Acme", ranks[1].ContractorName)
	assert.Equal(t, "New Co", ranks[2].ContractorName)

	bench, err := svc.Benchmark(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, 450.0, bench.District.AvgRatePerRoute)
	assert.Equal(t, 93.0, bench.District.AvgOnTimePct)
	assert.Equal(t, 95.0, bench.District.AvgUtilization)
	assert.Equal(t, 14, bench.Regional.DistrictCount)
	require.Len(t, bench.Comparisons, 3)
	assert.Equal(t, performance.Favorable, bench.Comparisons[0].Assessment)
	assert.Equal(t, performance.Favorable, bench.Comparisons[1].Assessment)
	assert.Equal(t, performance.AtParity, bench.Comparisons[2].Assessment)

	failing := newContractService(memory.New(), failingRegional{})
	_, err = failing.Benchmark(ctx, "d1")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}
