// Package performance grades contractors from monthly samples and compares a
// district against regional averages. All functions are pure.
package performance

import (
	"math"
	"sort"

	"districtops/internal/model"
)

// Grade is a letter grade for on-time performance.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// breakpoints are inclusive lower bounds, highest first.
var breakpoints = []struct {
	min   float64
	grade Grade
}{
	{95, GradeA},
	{90, GradeB},
	{85, GradeC},
	{80, GradeD},
}

// GradeFor maps an on-time percentage to a letter. A value exactly on a
// breakpoint earns the higher letter.
func GradeFor(onTimePct float64) Grade {
	for _, b := range breakpoints {
		if onTimePct >= b.min {
			return b.grade
		}
	}
	return GradeF
}

// Rollup summarizes all samples of one contract.
type Rollup struct {
	ContractID      string  `json:"contract_id"`
	ContractorName  string  `json:"contractor_name"`
	Samples         int     `json:"samples"`
	MeanOnTimePct   float64 `json:"mean_on_time_pct"`
	Grade           Grade   `json:"grade,omitempty"`
	Complaints      int     `json:"complaints"`
	SafetyIncidents int     `json:"safety_incidents"`
	RoutesCompleted int     `json:"routes_completed"`
	RoutesMissed    int     `json:"routes_missed"`

	// mean is the unrounded average behind MeanOnTimePct.
	mean float64
}

func (r Rollup) exactMean() float64 {
	if r.mean == 0 {
		return r.MeanOnTimePct
	}
	return r.mean
}

// Summarize rolls up samples for a contract. The mean on-time percentage is a
// plain average across months; it is not weighted by route volume. The grade
// is taken from the unrounded mean. A contract without samples has no grade.
func Summarize(c model.Contract, samples []model.PerformanceSample) Rollup {
	r := Rollup{ContractID: c.ID, ContractorName: c.ContractorName, Samples: len(samples)}
	if len(samples) == 0 {
		return r
	}
	var sum float64
	for _, s := range samples {
		sum += s.OnTimePct
		r.Complaints += s.Complaints
		r.SafetyIncidents += s.SafetyIncidents
		r.RoutesCompleted += s.RoutesCompleted
		r.RoutesMissed += s.RoutesMissed
	}
	r.mean = sum / float64(len(samples))
	r.MeanOnTimePct = round2(r.mean)
	r.Grade = GradeFor(r.mean)
	return r
}

// Rank orders rollups by descending mean on-time percentage, then ascending
// missed routes. Contracts without samples sort last. The input is not modified.
func Rank(rollups []Rollup) []Rollup {
	out := append([]Rollup(nil), rollups...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Samples == 0) != (b.Samples == 0) {
			return a.Samples > 0
		}
		if am, bm := a.exactMean(), b.exactMean(); am != bm {
			return am > bm
		}
		if a.RoutesMissed != b.RoutesMissed {
			return a.RoutesMissed < b.RoutesMissed
		}
		return a.ContractorName < b.ContractorName
	})
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
