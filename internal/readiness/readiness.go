// Package readiness turns a district's compliance artifacts into a weighted
// audit-readiness percentage and a list of items needing attention.
package readiness

import (
	"fmt"
	"math"
	"time"

	"districtops/internal/config"
	"districtops/internal/model"
)

// Category names match the readiness weight keys.
const (
	CategoryStateFilings       = config.WeightStateFilings
	CategoryProtectedTransport = config.WeightProtectedTransport
	CategoryDataSharing        = config.WeightDataSharing
	CategoryTraining           = config.WeightTraining
)

// Categories is the fixed evaluation order.
var Categories = []string{
	CategoryStateFilings,
	CategoryProtectedTransport,
	CategoryDataSharing,
	CategoryTraining,
}

// Attention item kinds.
const (
	ItemCategoryBelowTarget  = "category_below_target"
	ItemOverdueTraining      = "overdue_training"
	ItemUntransportedStudent = "protected_student_without_transport"
	ItemUnsignedAgreement    = "unsigned_agreement"
	ItemUnresolvedBreach     = "unresolved_breach"
	ItemMissingStateReport   = "missing_state_report"
	ItemIncompleteTraining   = "incomplete_training"
)

// Item is one deficiency a compliance officer must act on.
type Item struct {
	Kind     string `json:"kind"`
	Category string `json:"category,omitempty"`
	RecordID string `json:"record_id,omitempty"`
	Message  string `json:"message"`
}

// Score is the aggregated readiness view.
type Score struct {
	SchoolYear string             `json:"school_year"`
	Overall    float64            `json:"overall"`
	Categories map[string]float64 `json:"categories"`
	Attention  []Item             `json:"attention"`
}

// Evaluator computes readiness with a validated weight map.
type Evaluator struct {
	weights        config.Weights
	requiredReport string
}

// NewEvaluator validates weights over the four categories.
func NewEvaluator(weights config.Weights, requiredReportType string) (*Evaluator, error) {
	if err := weights.Validate(Categories...); err != nil {
		return nil, err
	}
	if requiredReportType == "" {
		return nil, fmt.Errorf("required state report type must not be empty")
	}
	return &Evaluator{weights: weights, requiredReport: requiredReportType}, nil
}

// Evaluate scores the snapshot for year. now only decides training overdue-ness.
func (e *Evaluator) Evaluate(s model.ComplianceSnapshot, year model.SchoolYear, now time.Time) Score {
	sub := map[string]float64{
		CategoryStateFilings:       StateFilingScore(s.StateReports, e.requiredReport, year),
		CategoryProtectedTransport: ProtectedTransportScore(s.ProtectedStudents),
		CategoryDataSharing:        AgreementScore(s.Agreements),
		CategoryTraining:           TrainingScore(s.Trainings),
	}

	var total float64
	for _, c := range Categories {
		total += sub[c] * e.weights[c]
	}

	return Score{
		SchoolYear: year.String(),
		Overall:    round2(total / 100),
		Categories: sub,
		Attention:  e.attention(s, sub, year, now),
	}
}

func (e *Evaluator) attention(s model.ComplianceSnapshot, sub map[string]float64, year model.SchoolYear, now time.Time) []Item {
	items := []Item{}
	for _, c := range Categories {
		if CategoryBelowTarget(sub[c]) {
			items = append(items, Item{
				Kind:     ItemCategoryBelowTarget,
				Category: c,
				Message:  fmt.Sprintf("%s is at %.2f%%", c, sub[c]),
			})
		}
	}
	if !HasStateReport(s.StateReports, e.requiredReport, year) {
		items = append(items, Item{
			Kind:     ItemMissingStateReport,
			Category: CategoryStateFilings,
			Message:  fmt.Sprintf("no %s report filed for %s", e.requiredReport, year),
		})
	}
	for _, t := range s.Trainings {
		switch {
		case TrainingOverdue(t, now):
			items = append(items, Item{
				Kind:     ItemOverdueTraining,
				Category: CategoryTraining,
				RecordID: t.ID,
				Message:  fmt.Sprintf("training %q was due %s", t.Program, t.DueDate.Format("2006-01-02")),
			})
		case !t.Completed:
			items = append(items, Item{
				Kind:     ItemIncompleteTraining,
				Category: CategoryTraining,
				RecordID: t.ID,
				Message:  fmt.Sprintf("training %q is not completed", t.Program),
			})
		}
	}
	for _, p := range s.ProtectedStudents {
		if StudentWithoutTransport(p) {
			items = append(items, Item{
				Kind:     ItemUntransportedStudent,
				Category: CategoryProtectedTransport,
				RecordID: p.ID,
				Message:  fmt.Sprintf("%s has no transportation to %s", p.StudentName, p.SchoolOfOrigin),
			})
		}
	}
	for _, a := range s.Agreements {
		if AgreementUnsigned(a) {
			items = append(items, Item{
				Kind:     ItemUnsignedAgreement,
				Category: CategoryDataSharing,
				RecordID: a.ID,
				Message:  fmt.Sprintf("data sharing agreement with %s is unsigned", a.VendorName),
			})
		}
	}
	for _, b := range s.Breaches {
		if BreachNeedsAction(b) {
			items = append(items, Item{
				Kind:     ItemUnresolvedBreach,
				RecordID: b.ID,
				Message:  fmt.Sprintf("breach at %s discovered %s is unresolved", b.VendorName, b.DiscoveredAt.Format("2006-01-02")),
			})
		}
	}
	return items
}

// HasStateReport reports whether reportType was filed for year.
func HasStateReport(reports []model.StateReport, reportType string, year model.SchoolYear) bool {
	want := year.String()
	for _, r := range reports {
		if r.ReportType == reportType && r.SchoolYear == want {
			return true
		}
	}
	return false
}

// StateFilingScore is binary: 100 when the required report exists, else 0.
func StateFilingScore(reports []model.StateReport, reportType string, year model.SchoolYear) float64 {
	if HasStateReport(reports, reportType, year) {
		return 100
	}
	return 0
}

// ProtectedTransportScore is the share of tracked students with transportation.
// An empty set scores 100.
func ProtectedTransportScore(records []model.ProtectedStudentRecord) float64 {
	ok := 0
	for _, r := range records {
		if r.TransportationProvided {
			ok++
		}
	}
	return percent(ok, len(records))
}

// AgreementScore is the share of signed agreements. An empty set scores 100.
func AgreementScore(agreements []model.DataSharingAgreement) float64 {
	ok := 0
	for _, a := range agreements {
		if a.Signed {
			ok++
		}
	}
	return percent(ok, len(agreements))
}

// TrainingScore is the share of completed programs. An empty set scores 100.
func TrainingScore(trainings []model.TrainingRecord) float64 {
	ok := 0
	for _, t := range trainings {
		if t.Completed {
			ok++
		}
	}
	return percent(ok, len(trainings))
}

// CategoryBelowTarget flags any sub-score short of full compliance.
func CategoryBelowTarget(score float64) bool {
	return score < 100
}

// TrainingOverdue flags a program past its due date and not completed.
func TrainingOverdue(t model.TrainingRecord, now time.Time) bool {
	return t.Overdue(now)
}

// StudentWithoutTransport flags a protected student lacking transportation.
func StudentWithoutTransport(p model.ProtectedStudentRecord) bool {
	return !p.TransportationProvided
}

// AgreementUnsigned flags an agreement not yet signed.
func AgreementUnsigned(a model.DataSharingAgreement) bool {
	return !a.Signed
}

// BreachNeedsAction flags a breach without resolution or parent notice.
func BreachNeedsAction(b model.BreachRecord) bool {
	return b.Unresolved()
}

func percent(n, total int) float64 {
	if total == 0 {
		return 100
	}
	return round2(float64(n) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
