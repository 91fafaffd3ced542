// Package flags computes residency risk signals for registrations. Flags are
// derived on every read and never stored.
package flags

import "districtops/internal/model"

// Flag is a computed risk label.
type Flag string

const (
	GISMismatch       Flag = "GIS_MISMATCH"
	MultiRegistration Flag = "MULTI_REGISTRATION"
	MissingDocuments  Flag = "MISSING_DOCUMENTS"
)

// DefaultMultiRegistrationThreshold is the household size at which a shared
// address is flagged.
const DefaultMultiRegistrationThreshold = 4

// Detector evaluates registrations against their sibling population.
type Detector struct {
	threshold int
}

// NewDetector returns a detector flagging addresses shared by at least
// threshold registrations. Non-positive thresholds fall back to the default.
func NewDetector(threshold int) *Detector {
	if threshold <= 0 {
		threshold = DefaultMultiRegistrationThreshold
	}
	return &Detector{threshold: threshold}
}

// AddressCounts tallies registrations per address key. The registration being
// evaluated must be part of regs for its own address to be counted.
func AddressCounts(regs []model.Registration) map[string]int {
	counts := make(map[string]int, len(regs))
	for _, r := range regs {
		counts[r.Address.Key()]++
	}
	return counts
}

// Detect returns flags in detection order: GIS mismatch, multi-registration,
// missing documents. counts comes from AddressCounts over the same district
// and school year.
func (d *Detector) Detect(reg model.Registration, documentCount int, counts map[string]int) []Flag {
	out := make([]Flag, 0, 3)
	if !reg.DistrictBoundaryCheck {
		out = append(out, GISMismatch)
	}
	if counts[reg.Address.Key()] >= d.threshold {
		out = append(out, MultiRegistration)
	}
	if documentCount <= 0 {
		out = append(out, MissingDocuments)
	}
	return out
}

// Has reports whether f is among fs.
func Has(fs []Flag, f Flag) bool {
	for _, x := range fs {
		if x == f {
			return true
		}
	}
	return false
}

// Strings converts flags for export.
func Strings(fs []Flag) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}

// Parse validates an externally supplied flag label.
func Parse(s string) (Flag, bool) {
	switch f := Flag(s); f {
	case GISMismatch, MultiRegistration, MissingDocuments:
		return f, true
	}
	return "", false
}
