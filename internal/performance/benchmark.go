package performance

import "districtops/internal/model"

// Polarity says which direction of deviation is good for a metric.
type Polarity string

const (
	// LowerIsBetter applies to cost metrics.
	LowerIsBetter Polarity = "lower_is_better"
	// HigherIsBetter applies to quality metrics.
	HigherIsBetter Polarity = "higher_is_better"
)

// Assessment is the verdict for one metric.
type Assessment string

const (
	Favorable   Assessment = "favorable"
	Unfavorable Assessment = "unfavorable"
	AtParity    Assessment = "at_parity"
	NoReference Assessment = "no_reference"
)

// Metric names.
const (
	MetricRatePerRoute = "rate_per_route"
	MetricOnTimePct    = "on_time_pct"
	MetricUtilization  = "utilization_pct"
)

// MetricPolarity is the published polarity of every benchmarked metric.
var MetricPolarity = map[string]Polarity{
	MetricRatePerRoute: LowerIsBetter,
	MetricOnTimePct:    HigherIsBetter,
	MetricUtilization:  HigherIsBetter,
}

// RegionalStats is supplied by the regional statistics collaborator.
type RegionalStats struct {
	AvgRatePerRoute float64 `json:"avg_rate_per_route"`
	AvgOnTimePct    float64 `json:"avg_on_time_pct"`
	AvgUtilization  float64 `json:"avg_utilization_pct"`
	DistrictCount   int     `json:"district_count"`
	RouteCount      int     `json:"route_count"`
}

// DistrictStats are the district's own averages.
type DistrictStats struct {
	AvgRatePerRoute float64 `json:"avg_rate_per_route"`
	AvgOnTimePct    float64 `json:"avg_on_time_pct"`
	AvgUtilization  float64 `json:"avg_utilization_pct"`
	ContractCount   int     `json:"contract_count"`
}

// Comparison is one metric's deviation from the regional average.
type Comparison struct {
	Metric       string     `json:"metric"`
	Polarity     Polarity   `json:"polarity"`
	Yours        float64    `json:"yours"`
	Regional     float64    `json:"regional"`
	DeviationPct float64    `json:"deviation_pct"`
	Assessment   Assessment `json:"assessment"`
}

// Compare computes (yours - regional) / regional * 100 and judges it by polarity.
// A non-positive regional value has no meaningful deviation.
func Compare(metric string, p Polarity, yours, regional float64) Comparison {
	c := Comparison{Metric: metric, Polarity: p, Yours: round2(yours), Regional: round2(regional)}
	if regional <= 0 {
		c.Assessment = NoReference
		return c
	}
	c.DeviationPct = round2((yours - regional) / regional * 100)
	switch {
	case c.DeviationPct == 0:
		c.Assessment = AtParity
	case (p == LowerIsBetter) == (c.DeviationPct < 0):
		c.Assessment = Favorable
	default:
		c.Assessment = Unfavorable
	}
	return c
}

// Benchmark compares every published metric.
func Benchmark(d DistrictStats, r RegionalStats) []Comparison {
	return []Comparison{
		Compare(MetricRatePerRoute, MetricPolarity[MetricRatePerRoute], d.AvgRatePerRoute, r.AvgRatePerRoute),
		Compare(MetricOnTimePct, MetricPolarity[MetricOnTimePct], d.AvgOnTimePct, r.AvgOnTimePct),
		Compare(MetricUtilization, MetricPolarity[MetricUtilization], d.AvgUtilization, r.AvgUtilization),
	}
}

// DistrictAverages derives the district's averages from its contracts and
// every sample recorded against them. Rate per route averages contracts;
// on-time averages samples; utilization is completed over scheduled routes.
func DistrictAverages(contracts []model.Contract, samples []model.PerformanceSample) DistrictStats {
	d := DistrictStats{ContractCount: len(contracts)}
	if len(contracts) > 0 {
		var sum float64
		for _, c := range contracts {
			sum += c.RatePerRoute
		}
		d.AvgRatePerRoute = round2(sum / float64(len(contracts)))
	}
	if len(samples) > 0 {
		var onTime float64
		var completed, missed int
		for _, s := range samples {
			onTime += s.OnTimePct
			completed += s.RoutesCompleted
			missed += s.RoutesMissed
		}
		d.AvgOnTimePct = round2(onTime / float64(len(samples)))
		if scheduled := completed + missed; scheduled > 0 {
			d.AvgUtilization = round2(float64(completed) / float64(scheduled) * 100)
		}
	}
	return d
}
