package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"districtops/internal/apperr"
	"districtops/internal/config"
	"districtops/internal/model"
	"districtops/internal/readiness"
	"districtops/internal/repository/memory"
)

func newComplianceService(t *testing.T) *complianceService {
	t.Helper()
	eval, err := readiness.NewEvaluator(config.DefaultReadinessWeights(), "transportation_annual")
	require.NoError(t, err)
	svc := NewComplianceService(memory.New().Compliance(), eval).(*complianceService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestComplianceService_ReadinessDropsProportionally(t *testing.T) {
	ctx := context.Background()
	svc := newComplianceService(t)

	_, err := svc.AddStateReport(ctx, "d1", model.StateReport{ReportType: "transportation_annual", SchoolYear: "2025-2026"})
	require.NoError(t, err)

	score, err := svc.Readiness(ctx, "d1", year2025, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 100.0, score.Categories[readiness.CategoryProtectedTransport], "no tracked students scores 100")

	for i := 0; i < 3; i++ {
		_, err := svc.AddProtectedStudent(ctx, "d1", model.ProtectedStudentRecord{StudentName: "Student", SchoolOfOrigin: "Lincoln ES", TransportationProvided: true})
		require.NoError(t, err)
	}
	_, err = svc.AddProtectedStudent(ctx, "d1", model.ProtectedStudentRecord{StudentName: "Sam", SchoolOfOrigin: "Lincoln ES"})
	require.NoError(t, err)

	score, err = svc.Readiness(ctx, "d1", year2025, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 75.0, score.Categories[readiness.CategoryProtectedTransport])
	assert.Equal(t, 93.75, score.Overall)

	other, err := svc.Readiness(ctx, "d1", year2025.Next(), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 0.0, other.Categories[readiness.CategoryStateFilings], "filings are per school year")
}

func TestComplianceService_ArtifactDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newComplianceService(t)

	tr, err := svc.AddTraining(ctx, "d1", model.TrainingRecord{Program: "Evacuation drill", DueDate: fixedNow, Completed: true})
	require.NoError(t, err)
	require.NotNil(t, tr.CompletedAt)
	assert.Equal(t, fixedNow, *tr.CompletedAt)

	stale := fixedNow.Add(-time.Hour)
	tr, err = svc.AddTraining(ctx, "d1", model.TrainingRecord{Program: "First aid", DueDate: fixedNow, CompletedAt: &stale})
	require.NoError(t, err)
	assert.Nil(t, tr.CompletedAt, "an incomplete training has no completion time")

	ag, err := svc.AddAgreement(ctx, "d1", model.DataSharingAgreement{VendorName: "RouteSoft", Signed: true})
	require.NoError(t, err)
	require.NotNil(t, ag.SignedAt)

	br, err := svc.AddBreach(ctx, "d1", model.BreachRecord{VendorName: "BusTrack", DiscoveredAt: fixedNow.Add(-48 * time.Hour)})
	require.NoError(t, err)
	assert.NotEmpty(t, br.ID)

	score, err := svc.Readiness(ctx, "d1", year2025, fixedNow)
	require.NoError(t, err)
	kinds := map[string]int{}
	for _, it := range score.Attention {
		kinds[it.Kind]++
	}
	assert.Equal(t, 1, kinds[readiness.ItemUnresolvedBreach])
	assert.Equal(t, 1, kinds[readiness.ItemMissingStateReport])
	assert.Equal(t, 1, kinds[readiness.ItemIncompleteTraining])
}

func TestComplianceService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newComplianceService(t)
	resolved := fixedNow.Add(-72 * time.Hour)

	tests := []struct {
		name string
		call func() error
	}{
		{name: "state report without type", call: func() error {
			_, err := svc.AddStateReport(ctx, "d1", model.StateReport{SchoolYear: "2025-2026"})
			return err
		}},
		{name: "state report bad year", call: func() error {
			_, err := svc.AddStateReport(ctx, "d1", model.StateReport{ReportType: "transportation_annual", SchoolYear: "2025"})
			return err
		}},
		{name: "training without due date", call: func() error {
			_, err := svc.AddTraining(ctx, "d1", model.TrainingRecord{Program: "x"})
			return err
		}},
		{name: "student without school", call: func() error {
			_, err := svc.AddProtectedStudent(ctx, "d1", model.ProtectedStudentRecord{StudentName: "x"})
			return err
		}},
		{name: "agreement without vendor", call: func() error {
			_, err := svc.AddAgreement(ctx, "d1", model.DataSharingAgreement{})
			return err
		}},
		{name: "breach resolved before discovery", call: func() error {
			_, err := svc.AddBreach(ctx, "d1", model.BreachRecord{VendorName: "v", DiscoveredAt: fixedNow, ResolvedAt: &resolved})
			return err
		}},
		{name: "readiness without district", call: func() error {
			_, err := svc.Readiness(ctx, "", year2025, fixedNow)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(tt.call()))
		})
	}
}

func TestComplianceService_StateReportYearIsCanonical(t *testing.T) {
	ctx := context.Background()
	svc := newComplianceService(t)

	r, err := svc.AddStateReport(ctx, "d1", model.StateReport{ReportType: "transportation_annual", SchoolYear: " 2025-02026"})
	require.NoError(t, err)
	assert.Equal(t, "2025-2026", r.SchoolYear)

	score, err := svc.Readiness(ctx, "d1", year2025, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 100.0, score.Categories[readiness.CategoryStateFilings])
}
