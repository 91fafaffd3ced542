// Package bidscore scores contractor bid responses against a weighted rubric.
package bidscore

import (
	"math"
	"sort"
	"strings"

	"districtops/internal/config"
	"districtops/internal/model"
)

// Components are the unweighted [0,100] parts of a score.
type Components struct {
	Price      float64 `json:"price"`
	Safety     float64 `json:"safety"`
	Fleet      float64 `json:"fleet"`
	Experience float64 `json:"experience"`
}

// Scorer applies a validated weight map.
type Scorer struct {
	weights config.Weights
}

// NewScorer validates weights (price, safety, fleet, experience summing to 100).
func NewScorer(weights config.Weights) (*Scorer, error) {
	if err := weights.Validate(config.WeightPrice, config.WeightSafety, config.WeightFleet, config.WeightExperience); err != nil {
		return nil, err
	}
	return &Scorer{weights: weights}, nil
}

// PriceComponent falls linearly from 100 at or below the reference rate to 0
// at twice the reference rate. A missing reference scores 0.
func PriceComponent(proposed, reference float64) float64 {
	if reference <= 0 || math.IsNaN(proposed) {
		return 0
	}
	return clamp(100 - (proposed-reference)/reference*100)
}

// SafetyComponent credits any non-blank safety record.
func SafetyComponent(record string) float64 {
	return presence(record)
}

// FleetComponent credits any non-blank fleet description.
func FleetComponent(details string) float64 {
	return presence(details)
}

// ExperienceComponent is a flat baseline credit every responsive bidder earns.
func ExperienceComponent() float64 {
	return 100
}

// Breakdown returns the unweighted components for r.
func Breakdown(r model.BidResponse, referenceRate float64) Components {
	return Components{
		Price:      PriceComponent(r.ProposedRate, referenceRate),
		Safety:     SafetyComponent(r.SafetyRecord),
		Fleet:      FleetComponent(r.FleetDetails),
		Experience: ExperienceComponent(),
	}
}

// Score is the weighted total in [0,100], rounded to two decimals.
func (s *Scorer) Score(r model.BidResponse, referenceRate float64) float64 {
	c := Breakdown(r, referenceRate)
	total := c.Price*s.weights[config.WeightPrice] +
		c.Safety*s.weights[config.WeightSafety] +
		c.Fleet*s.weights[config.WeightFleet] +
		c.Experience*s.weights[config.WeightExperience]
	return math.Round(clamp(total/100)*100) / 100
}

// Rank orders responses by descending score; earlier submissions win ties.
func Rank(responses []model.BidResponse) []model.BidResponse {
	out := append([]model.BidResponse(nil), responses...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out
}

func presence(s string) float64 {
	if strings.TrimSpace(s) == "" {
		return 0
	}
	return 100
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
