package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"districtops/internal/model"
	"districtops/internal/readiness"
)

type MockComplianceService struct {
	mock.Mock
}

func (m *MockComplianceService) AddStateReport(ctx context.Context, districtID string, r model.StateReport) (*model.StateReport, error) {
	args := m.Called(ctx, districtID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StateReport), args.Error(1)
}

func (m *MockComplianceService) AddTraining(ctx context.Context, districtID string, r model.TrainingRecord) (*model.TrainingRecord, error) {
	args := m.Called(ctx, districtID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TrainingRecord), args.Error(1)
}

func (m *MockComplianceService) AddProtectedStudent(ctx context.Context, districtID string, r model.ProtectedStudentRecord) (*model.ProtectedStudentRecord, error) {
	args := m.Called(ctx, districtID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProtectedStudentRecord), args.Error(1)
}

func (m *MockComplianceService) AddAgreement(ctx context.Context, districtID string, r model.DataSharingAgreement) (*model.DataSharingAgreement, error) {
	args := m.Called(ctx, districtID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DataSharingAgreement), args.Error(1)
}

func (m *MockComplianceService) AddBreach(ctx context.Context, districtID string, r model.BreachRecord) (*model.BreachRecord, error) {
	args := m.Called(ctx, districtID, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BreachRecord), args.Error(1)
}

func (m *MockComplianceService) Readiness(ctx context.Context, districtID string, year model.SchoolYear, now time.Time) (*readiness.Score, error) {
	args := m.Called(ctx, districtID, year, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*readiness.Score), args.Error(1)
}
