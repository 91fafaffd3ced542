package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"districtops/internal/apperr"
	"districtops/internal/config"
	"districtops/internal/model"
	"districtops/internal/performance"
	"districtops/internal/repository"
)

// RegionalStatsProvider supplies regional reference metrics for benchmarking.
type RegionalStatsProvider interface {
	RegionalStats(ctx context.Context) (performance.RegionalStats, error)
}

// StaticRegionalStats serves regional statistics from configuration.
type StaticRegionalStats performance.RegionalStats

// NewStaticRegionalStats adapts the regional config block.
func NewStaticRegionalStats(c config.RegionalConfig) StaticRegionalStats {
	return StaticRegionalStats{
		AvgRatePerRoute: c.AvgRatePerRoute,
		AvgOnTimePct:    c.AvgOnTimePct,
		AvgUtilization:  c.AvgUtilization,
		DistrictCount:   c.DistrictCount,
		RouteCount:      c.RouteCount,
	}
}

func (s StaticRegionalStats) RegionalStats(context.Context) (performance.RegionalStats, error) {
	return performance.RegionalStats(s), nil
}

// ContractView is a contract with its read-time status.
type ContractView struct {
	model.Contract
	EffectiveStatus model.ContractStatus `json:"effective_status"`
}

// InsuranceView is an insurance record with its read-time status.
type InsuranceView struct {
	model.InsuranceRecord
	Status model.InsuranceStatus `json:"status"`
}

// BenchmarkReport compares district averages with the regional reference.
type BenchmarkReport struct {
	District    performance.DistrictStats `json:"district"`
	Regional    performance.RegionalStats `json:"regional"`
	Comparisons []performance.Comparison  `json:"comparisons"`
}

// ContractService manages contractor contracts and their performance.
type ContractService interface {
	Create(ctx context.Context, districtID string, c model.Contract) (*model.Contract, error)
	Get(ctx context.Context, id string, now time.Time) (*ContractView, error)
	// List returns the district's contracts with status derived at now.
	List(ctx context.Context, districtID string, now time.Time) ([]ContractView, error)

	AddInsurance(ctx context.Context, contractID string, r model.InsuranceRecord) (*model.InsuranceRecord, error)
	ListInsurance(ctx context.Context, contractID string, now time.Time) ([]InsuranceView, error)

	// RecordPerformance stores one monthly sample. Samples are immutable; a
	// second sample for the same month is rejected.
	RecordPerformance(ctx context.Context, contractID string, smp model.PerformanceSample) (*model.PerformanceSample, error)

	// Rankings rolls up and ranks every contract of the district.
	Rankings(ctx context.Context, districtID string) ([]performance.Rollup, error)

	// Benchmark compares the district with the regional reference.
	Benchmark(ctx context.Context, districtID string) (*BenchmarkReport, error)
}

type contractService struct {
	repo             repository.ContractRepository
	regional         RegionalStatsProvider
	contractHorizon  time.Duration
	insuranceHorizon time.Duration
	now              func() time.Time
}

// NewContractService constructs a ContractService. The horizons decide when
// contracts and insurance policies read as expiring.
func NewContractService(repo repository.ContractRepository, regional RegionalStatsProvider, contractHorizon, insuranceHorizon time.Duration) ContractService {
	return &contractService{
		repo:             repo,
		regional:         regional,
		contractHorizon:  contractHorizon,
		insuranceHorizon: insuranceHorizon,
		now:              utcNow,
	}
}

func (s *contractService) Create(ctx context.Context, districtID string, c model.Contract) (*model.Contract, error) {
	ctx, span := tracer.Start(ctx, "contract.Create")
	defer span.End()

	c.DistrictID = districtID
	if c.Status == "" {
		c.Status = model.ContractActive
	}
	if err := validateContract(c); err != nil {
		return nil, fail(span, err)
	}

	c.ID = newID()
	c.CreatedAt = s.now()
	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, fail(span, translate(err, "contract", c.ID, "create"))
	}
	span.SetAttributes(attribute.String("contract.id", c.ID))
	return &c, nil
}

func validateContract(c model.Contract) error {
	if err := firstErr(
		required("district_id", c.DistrictID),
		required("contractor_name", c.ContractorName),
		nonNegative("annual_value", c.AnnualValue),
		nonNegative("rate_per_route", c.RatePerRoute),
		nonNegative("rate_per_mile", c.RatePerMile),
	); err != nil {
		return err
	}
	if c.RouteCount < 0 {
		return apperr.Validation("route_count must not be negative")
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return apperr.Validation("start_date and end_date are required")
	}
	if !c.EndDate.After(c.StartDate) {
		return apperr.Validation("end_date must be after start_date")
	}
	switch c.Status {
	case model.ContractPending, model.ContractActive, model.ContractDisputed:
	default:
		return apperr.Validation("status %q cannot be set; expiring and expired are derived", c.Status)
	}
	return nil
}

func (s *contractService) Get(ctx context.Context, id string, now time.Time) (*ContractView, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "contract", id, "load")
	}
	return &ContractView{Contract: *c, EffectiveStatus: c.EffectiveStatus(now, s.contractHorizon)}, nil
}

func (s *contractService) List(ctx context.Context, districtID string, now time.Time) ([]ContractView, error) {
	cs, err := s.repo.List(ctx, districtID)
	if err != nil {
		return nil, translate(err, "contract", districtID, "list")
	}
	out := make([]ContractView, len(cs))
	for i, c := range cs {
		out[i] = ContractView{Contract: c, EffectiveStatus: c.EffectiveStatus(now, s.contractHorizon)}
	}
	return out, nil
}

func (s *contractService) AddInsurance(ctx context.Context, contractID string, r model.InsuranceRecord) (*model.InsuranceRecord, error) {
	ctx, span := tracer.Start(ctx, "contract.AddInsurance")
	defer span.End()

	if err := firstErr(
		required("policy_number", r.PolicyNumber),
		required("provider", r.Provider),
		nonNegative("coverage_amount", r.CoverageAmount),
	); err != nil {
		return nil, fail(span, err)
	}
	if r.ExpirationDate.IsZero() {
		return nil, fail(span, apperr.Validation("expiration_date is required"))
	}

	r.ID = newID()
	r.ContractID = contractID
	r.CreatedAt = s.now()
	if err := s.repo.AddInsurance(ctx, &r); err != nil {
		return nil, fail(span, translate(err, "contract", contractID, "add insurance to"))
	}
	return &r, nil
}

func (s *contractService) ListInsurance(ctx context.Context, contractID string, now time.Time) ([]InsuranceView, error) {
	if _, err := s.repo.FindByID(ctx, contractID); err != nil {
		return nil, translate(err, "contract", contractID, "load")
	}
	recs, err := s.repo.ListInsurance(ctx, contractID)
	if err != nil {
		return nil, translate(err, "contract", contractID, "list insurance for")
	}
	out := make([]InsuranceView, len(recs))
	for i, r := range recs {
		out[i] = InsuranceView{InsuranceRecord: r, Status: r.Status(now, s.insuranceHorizon)}
	}
	return out, nil
}

func (s *contractService) RecordPerformance(ctx context.Context, contractID string, smp model.PerformanceSample) (*model.PerformanceSample, error) {
	ctx, span := tracer.Start(ctx, "contract.RecordPerformance")
	defer span.End()

	if _, err := time.Parse("2006-01", smp.Period); err != nil {
		return nil, fail(span, apperr.Validation("period %q must look like 2025-09", smp.Period))
	}
	if smp.OnTimePct < 0 || smp.OnTimePct > 100 {
		return nil, fail(span, apperr.Validation("on_time_pct must be between 0 and 100"))
	}
	if smp.Complaints < 0 || smp.SafetyIncidents < 0 || smp.RoutesCompleted < 0 || smp.RoutesMissed < 0 {
		return nil, fail(span, apperr.Validation("counts must not be negative"))
	}

	smp.ID = newID()
	smp.ContractID = contractID
	smp.CreatedAt = s.now()
	err := s.repo.AddPerformanceSample(ctx, &smp)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, fail(span, apperr.Validation("contract %s already has a performance sample for %s", contractID, smp.Period))
	}
	if err != nil {
		return nil, fail(span, translate(err, "contract", contractID, "record performance for"))
	}
	return &smp, nil
}

func (s *contractService) rollups(ctx context.Context, districtID string) ([]model.Contract, []model.PerformanceSample, []performance.Rollup, error) {
	cs, err := s.repo.List(ctx, districtID)
	if err != nil {
		return nil, nil, nil, translate(err, "contract", districtID, "list")
	}
	var all []model.PerformanceSample
	rollups := make([]performance.Rollup, len(cs))
	for i, c := range cs {
		samples, err := s.repo.ListPerformanceSamples(ctx, c.ID)
		if err != nil {
			return nil, nil, nil, translate(err, "contract", c.ID, "list performance for")
		}
		all = append(all, samples...)
		rollups[i] = performance.Summarize(c, samples)
	}
	return cs, all, rollups, nil
}

func (s *contractService) Rankings(ctx context.Context, districtID string) ([]performance.Rollup, error) {
	ctx, span := tracer.Start(ctx, "contract.Rankings")
	defer span.End()

	_, _, rollups, err := s.rollups(ctx, districtID)
	if err != nil {
		return nil, fail(span, err)
	}
	return performance.Rank(rollups), nil
}

func (s *contractService) Benchmark(ctx context.Context, districtID string) (*BenchmarkReport, error) {
	ctx, span := tracer.Start(ctx, "contract.Benchmark")
	defer span.End()

	cs, samples, _, err := s.rollups(ctx, districtID)
	if err != nil {
		return nil, fail(span, err)
	}
	regional, err := s.regional.RegionalStats(ctx)
	if err != nil {
		return nil, fail(span, apperr.Internal("failed to load regional statistics", err))
	}
	district := performance.DistrictAverages(cs, samples)
	return &BenchmarkReport{
		District:    district,
		Regional:    regional,
		Comparisons: performance.Benchmark(district, regional),
	}, nil
}
