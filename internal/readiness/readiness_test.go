package readiness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"districtops/internal/config"
	"districtops/internal/model"
)

var (
	year2025 = model.SchoolYear{Start: 2025}
	now      = time.Date(2025, time.October, 15, 12, 0, 0, 0, time.UTC)
)

func newEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(config.DefaultReadinessWeights(), "transportation_annual")
	require.NoError(t, err)
	return e
}

func filed() []model.StateReport {
	return []model.StateReport{{ID: "sr1", ReportType: "transportation_annual", SchoolYear: "2025-2026"}}
}

func kinds(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Kind
	}
	return out
}

func TestEvaluate_EmptySnapshotWithFiling(t *testing.T) {
	e := newEvaluator(t)

	got := e.Evaluate(model.ComplianceSnapshot{StateReports: filed()}, year2025, now)

	assert.Equal(t, 100.0, got.Overall)
	assert.Equal(t, "2025-2026", got.SchoolYear)
	for _, c := range Categories {
		assert.Equal(t, 100.0, got.Categories[c], c)
	}
	assert.Empty(t, got.Attention)
}

func TestEvaluate_ProtectedTransportProportional(t *testing.T) {
	e := newEvaluator(t)
	students := []model.ProtectedStudentRecord{
		{ID: "p1", TransportationProvided: true},
		{ID: "p2", TransportationProvided: true},
		{ID: "p3", TransportationProvided: true},
	}

	base := e.Evaluate(model.ComplianceSnapshot{StateReports: filed(), ProtectedStudents: students}, year2025, now)
	assert.Equal(t, 100.0, base.Categories[CategoryProtectedTransport])

	students = append(students, model.ProtectedStudentRecord{ID: "p4", StudentName: "Sam", SchoolOfOrigin: "Lincoln ES"})
	got := e.Evaluate(model.ComplianceSnapshot{StateReports: filed(), ProtectedStudents: students}, year2025, now)

	assert.Equal(t, 75.0, got.Categories[CategoryProtectedTransport])
	assert.Equal(t, 93.75, got.Overall)
	assert.Equal(t, []string{ItemCategoryBelowTarget, ItemUntransportedStudent}, kinds(got.Attention))
	assert.Equal(t, "p4", got.Attention[1].RecordID)
}

func TestEvaluate_StateFilingIsBinary(t *testing.T) {
	e := newEvaluator(t)
	reports := []model.StateReport{
		{ReportType: "transportation_annual", SchoolYear: "2024-2025"},
		{ReportType: "ridership_midyear", SchoolYear: "2025-2026"},
	}

	got := e.Evaluate(model.ComplianceSnapshot{StateReports: reports}, year2025, now)

	assert.Equal(t, 0.0, got.Categories[CategoryStateFilings])
	assert.Equal(t, 75.0, got.Overall)
	assert.Equal(t, []string{ItemCategoryBelowTarget, ItemMissingStateReport}, kinds(got.Attention))
}

func TestEvaluate_TrainingAndAgreements(t *testing.T) {
	e := newEvaluator(t)
	done := now.AddDate(0, -1, 0)
	snap := model.ComplianceSnapshot{
		StateReports: filed(),
		Trainings: []model.TrainingRecord{
			{ID: "t1", Program: "Bus evacuation", DueDate: now.AddDate(0, -2, 0), Completed: true, CompletedAt: &done},
			{ID: "t2", Program: "Student privacy", DueDate: now.AddDate(0, 0, -1)},
			{ID: "t3", Program: "First aid", DueDate: now.AddDate(0, 1, 0)},
			{ID: "t4", Program: "Route safety", DueDate: now.AddDate(0, 2, 0), Completed: true},
		},
		Agreements: []model.DataSharingAgreement{
			{ID: "a1", VendorName: "RouteSoft", Signed: true},
			{ID: "a2", VendorName: "BusTrack"},
		},
	}

	got := e.Evaluate(snap, year2025, now)

	assert.Equal(t, 50.0, got.Categories[CategoryTraining])
	assert.Equal(t, 50.0, got.Categories[CategoryDataSharing])
	assert.Equal(t, 75.0, got.Overall)
	assert.Equal(t, []string{
		ItemCategoryBelowTarget,
		ItemCategoryBelowTarget,
		ItemOverdueTraining,
		ItemIncompleteTraining,
		ItemUnsignedAgreement,
	}, kinds(got.Attention))
}

func TestEvaluate_BreachIsAttentionOnly(t *testing.T) {
	e := newEvaluator(t)
	resolved := now.AddDate(0, 0, -3)
	snap := model.ComplianceSnapshot{
		StateReports: filed(),
		Breaches: []model.BreachRecord{
			{ID: "b1", VendorName: "BusTrack", DiscoveredAt: now.AddDate(0, -1, 0)},
			{ID: "b2", VendorName: "RouteSoft", DiscoveredAt: now.AddDate(0, -2, 0), ResolvedAt: &resolved, ParentsNotified: true},
		},
	}

	got := e.Evaluate(snap, year2025, now)

	assert.Equal(t, 100.0, got.Overall)
	require.Len(t, got.Attention, 1)
	assert.Equal(t, ItemUnresolvedBreach, got.Attention[0].Kind)
	assert.Equal(t, "b1", got.Attention[0].RecordID)
}

func TestEvaluate_CustomWeights(t *testing.T) {
	w := config.Weights{
		config.WeightStateFilings:       70,
		config.WeightProtectedTransport: 10,
		config.WeightDataSharing:        10,
		config.WeightTraining:           10,
	}
	e, err := NewEvaluator(w, "transportation_annual")
	require.NoError(t, err)

	got := e.Evaluate(model.ComplianceSnapshot{}, year2025, now)
	assert.Equal(t, 30.0, got.Overall)
}

func TestNewEvaluator_Errors(t *testing.T) {
	_, err := NewEvaluator(config.Weights{config.WeightStateFilings: 100}, "transportation_annual")
	assert.Error(t, err)

	_, err = NewEvaluator(config.DefaultReadinessWeights(), "")
	assert.Error(t, err)
}

func TestPredicates(t *testing.T) {
	assert.True(t, CategoryBelowTarget(99.99))
	assert.False(t, CategoryBelowTarget(100))

	assert.True(t, TrainingOverdue(model.TrainingRecord{DueDate: now.Add(-time.Hour)}, now))
	assert.False(t, TrainingOverdue(model.TrainingRecord{DueDate: now.Add(-time.Hour), Completed: true}, now))
	assert.False(t, TrainingOverdue(model.TrainingRecord{DueDate: now.Add(time.Hour)}, now))

	assert.True(t, StudentWithoutTransport(model.ProtectedStudentRecord{}))
	assert.False(t, StudentWithoutTransport(model.ProtectedStudentRecord{TransportationProvided: true}))

	assert.True(t, AgreementUnsigned(model.DataSharingAgreement{}))
	assert.False(t, AgreementUnsigned(model.DataSharingAgreement{Signed: true}))

	resolved := now
	assert.True(t, BreachNeedsAction(model.BreachRecord{ResolvedAt: &resolved}))
	assert.True(t, BreachNeedsAction(model.BreachRecord{ParentsNotified: true}))
	assert.False(t, BreachNeedsAction(model.BreachRecord{ResolvedAt: &resolved, ParentsNotified: true}))
}
